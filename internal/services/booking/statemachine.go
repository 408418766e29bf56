package booking

import (
	"time"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

// Actor is the side of a booking a caller is on.
type Actor string

const (
	ActorPoster Actor = "poster"
	ActorSeeker Actor = "seeker"
)

var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:           {models.BookingAccepted, models.BookingDeclined, models.BookingCancelled},
	models.BookingAccepted:          {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress:        {models.BookingCompletedBySeeker, models.BookingCancelled},
	models.BookingCompletedBySeeker: {models.BookingPaymentPending, models.BookingInProgress},
	models.BookingPaymentPending:    {models.BookingPaid},
	models.BookingPaid:              {},
	models.BookingDeclined:          {},
	models.BookingCancelled:         {},
	models.BookingApplied:           {},
}

// restrictedTo lists the target statuses only one side may move a booking into.
// Targets not listed here may be requested by either side.
var restrictedTo = map[models.BookingStatus]Actor{
	models.BookingAccepted:          ActorSeeker,
	models.BookingDeclined:          ActorSeeker,
	models.BookingInProgress:        ActorSeeker,
	models.BookingCompletedBySeeker: ActorSeeker,
	models.BookingPaymentPending:    ActorPoster,
	models.BookingPaid:              ActorPoster,
}

// CanTransition reports whether from → to is an edge of the lifecycle.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ActorMay reports whether actor is allowed to request the target status.
func ActorMay(actor Actor, to models.BookingStatus) bool {
	required, ok := restrictedTo[to]
	return !ok || required == actor
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.BookingStatus) bool {
	return len(transitions[status]) == 0
}

// stampDate records when the booking entered status.
func stampDate(b *models.Booking, status models.BookingStatus, now time.Time) {
	t := now
	switch status {
	case models.BookingAccepted:
		b.Dates.Accepted = &t
	case models.BookingInProgress:
		b.Dates.Started = &t
	case models.BookingCompletedBySeeker:
		b.Dates.CompletedBySeeker = &t
	case models.BookingPaymentPending:
		b.Dates.Completed = &t
	case models.BookingPaid:
		b.Dates.Paid = &t
	}
}
