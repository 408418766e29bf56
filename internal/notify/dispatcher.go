package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

// Message is one notification addressed to a single user.
type Message struct {
	UserID     uuid.UUID
	Type       models.NotificationType
	Title      string
	Message    string
	References map[string]any
}

// Notifier is what the core services see: enqueue and move on.
type Notifier interface {
	Notify(msg Message)
}

type Saver interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, payload []byte) error
}

// Dispatcher is a bounded outbound queue drained by Run. Notify never blocks:
// when the queue is full the message is logged and dropped.
type Dispatcher struct {
	saver Saver
	pub   Publisher
	queue chan Message
}

func NewDispatcher(saver Saver, pub Publisher, size int) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{saver: saver, pub: pub, queue: make(chan Message, size)}
}

func (d *Dispatcher) Notify(msg Message) {
	select {
	case d.queue <- msg:
	default:
		log.Printf("[notify] queue full, dropping %s for user %s", msg.Type, msg.UserID)
	}
}

// Run delivers queued messages until ctx is cancelled, then flushes what is left.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case msg := <-d.queue:
			d.handle(ctx, msg)
		case <-ctx.Done():
			d.flush()
			return
		}
	}
}

func (d *Dispatcher) flush() {
	ctx := context.Background()
	for {
		select {
		case msg := <-d.queue:
			d.handle(ctx, msg)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg Message) {
	if err := d.Deliver(ctx, msg); err != nil {
		log.Printf("[notify] deliver %s to %s: %v", msg.Type, msg.UserID, err)
	}
}

// Deliver persists the notification and publishes it to the user's sockets.
// A publish failure is logged; the stored row is still readable over HTTP.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message) error {
	refs, err := json.Marshal(msg.References)
	if err != nil {
		return fmt.Errorf("marshal references: %w", err)
	}

	n := models.Notification{
		UserID:     msg.UserID,
		Type:       msg.Type,
		Title:      msg.Title,
		Message:    msg.Message,
		References: datatypes.JSON(refs),
	}
	if err := d.saver.CreateNotification(ctx, &n); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	if d.pub == nil {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"type":         "notification",
		"notification": n,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := d.pub.Publish(ctx, msg.UserID, payload); err != nil {
		log.Printf("[notify] publish to %s: %v", msg.UserID, err)
	}
	return nil
}
