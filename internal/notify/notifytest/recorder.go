// Package notifytest provides a Notifier that records messages for assertions.
package notifytest

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/notify"
)

type Recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (r *Recorder) Notify(msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.msgs...)
}

// For returns the messages sent to userID, optionally filtered by type.
func (r *Recorder) For(userID uuid.UUID, types ...models.NotificationType) []notify.Message {
	var out []notify.Message
	for _, m := range r.Messages() {
		if m.UserID != userID {
			continue
		}
		if len(types) == 0 {
			out = append(out, m)
			continue
		}
		for _, t := range types {
			if m.Type == t {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}
