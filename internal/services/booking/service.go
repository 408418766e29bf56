package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

// FileRemover deletes stored payment proofs.
type FileRemover interface {
	Remove(path string) error
}

type Service struct {
	Store    store.Store
	Notifier notify.Notifier
	Files    FileRemover
	Now      func() time.Time
}

func NewService(st store.Store, n notify.Notifier, files FileRemover) *Service {
	return &Service{Store: st, Notifier: n, Files: files, Now: time.Now}
}

type CreateInput struct {
	Title       string
	Description string
	Category    string
	Amount      int64
	Address     string
	Coordinates json.RawMessage
	SeekerID    *uuid.UUID
	JobID       *uuid.UUID
}

func (in CreateInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(in.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.Address) == "" {
		missing = append(missing, "location.address")
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.Amount <= 0 {
		return apperr.Validation("payment.amount must be positive")
	}
	if len(in.Coordinates) > 0 && !json.Valid(in.Coordinates) {
		return apperr.Validation("location.coordinates must be valid JSON")
	}
	return nil
}

// Create posts a new booking on behalf of a customer; it starts pending.
func (s *Service) Create(ctx context.Context, caller models.Caller, in CreateInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.SeekerID != nil && *in.SeekerID == caller.UserID {
		return nil, apperr.Validation("a booking cannot be assigned to its poster")
	}
	if in.JobID != nil {
		if _, err := s.Store.GetJob(ctx, *in.JobID); err != nil {
			return nil, err
		}
	}

	now := s.Now()
	b := &models.Booking{
		JobID:       in.JobID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		PosterID:    caller.UserID,
		SeekerID:    in.SeekerID,
		Location: models.Location{
			Address:     strings.TrimSpace(in.Address),
			Coordinates: datatypes.JSON(in.Coordinates),
		},
		Payment: models.BookingPayment{Amount: in.Amount},
		Status:  models.BookingPending,
		Dates:   models.BookingDates{Created: now},
	}
	if err := s.Store.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if b.HasSeeker() {
		s.notify(*b.SeekerID, models.NotifBookingStatus, "New booking request",
			fmt.Sprintf("You have been requested for %q", b.Title), b)
	}
	return b, nil
}

// StatusUpdate is a requested transition. A SeekerID on a pending booking
// without a seeker is an application and implies acceptance.
type StatusUpdate struct {
	Status   models.BookingStatus
	SeekerID *uuid.UUID
}

func (s *Service) UpdateStatus(ctx context.Context, caller models.Caller, bookingID uuid.UUID, upd StatusUpdate) (*models.Booking, error) {
	b, err := s.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if upd.SeekerID != nil && b.Status == models.BookingPending && !b.HasSeeker() {
		return s.apply(ctx, caller, b, *upd.SeekerID)
	}

	if upd.Status == "" {
		return nil, apperr.Validation("status is required")
	}
	if !upd.Status.IsValid() {
		return nil, apperr.Validation("invalid status %q", upd.Status)
	}

	var actor Actor
	switch {
	case b.IsSeeker(caller.UserID):
		actor = ActorSeeker
	case b.IsPoster(caller.UserID):
		actor = ActorPoster
	default:
		return nil, apperr.Unauthorized("only the poster or the job seeker can update this booking")
	}

	from, to := b.Status, upd.Status
	if !CanTransition(from, to) {
		return nil, apperr.InvalidTransition("cannot move booking from %s to %s", from, to)
	}
	if !ActorMay(actor, to) {
		return nil, apperr.Unauthorized("only the %s can set status %s", restrictedTo[to], to)
	}

	now := s.Now()
	b.Status = to
	stampDate(b, to, now)
	if to == models.BookingAccepted {
		b.Payment.Status = string(models.PaymentPending)
	}
	if err := s.Store.UpdateBooking(ctx, b, from); err != nil {
		return nil, err
	}

	s.notifyTransition(b, actor)
	return b, nil
}

// apply assigns the caller as job seeker of an open booking.
func (s *Service) apply(ctx context.Context, caller models.Caller, b *models.Booking, seekerID uuid.UUID) (*models.Booking, error) {
	if seekerID == uuid.Nil {
		return nil, apperr.Validation("seeker_id is invalid")
	}
	if seekerID != caller.UserID {
		return nil, apperr.Unauthorized("you can only apply as yourself")
	}
	if b.IsPoster(caller.UserID) {
		return nil, apperr.Unauthorized("you cannot apply to your own booking")
	}

	now := s.Now()
	b.SeekerID = &seekerID
	b.Status = models.BookingAccepted
	b.Payment.Status = string(models.PaymentPending)
	stampDate(b, models.BookingAccepted, now)

	if err := s.Store.UpdateBooking(ctx, b, models.BookingPending); err != nil {
		return nil, err
	}

	s.notify(b.PosterID, models.NotifBookingStatus, "Booking accepted",
		fmt.Sprintf("A job seeker accepted your booking %q", b.Title), b)
	return b, nil
}

func (s *Service) notifyTransition(b *models.Booking, actor Actor) {
	title := "Booking status updated"
	message := fmt.Sprintf("Booking %q is now %s", b.Title, b.Status)

	if actor == ActorSeeker {
		s.notify(b.PosterID, models.NotifBookingStatus, title, message, b)
	} else if b.HasSeeker() {
		s.notify(*b.SeekerID, models.NotifBookingStatus, title, message, b)
	}

	if b.Status == models.BookingPaymentPending && b.HasSeeker() {
		s.notify(*b.SeekerID, models.NotifPaymentPending, "Payment pending",
			fmt.Sprintf("The customer is preparing payment for %q; confirm it once received", b.Title), b)
	}
}

func (s *Service) notify(userID uuid.UUID, typ models.NotificationType, title, message string, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(notify.Message{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		References: map[string]any{
			"bookingId": b.ID.String(),
			"status":    string(b.Status),
		},
	})
}

// Delete removes a booking and its payments. Admin only, not reversible.
func (s *Service) Delete(ctx context.Context, caller models.Caller, bookingID uuid.UUID) error {
	if !caller.IsAdmin() {
		return apperr.Unauthorized("only admins can delete bookings")
	}

	var proofs []string
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetBooking(ctx, bookingID); err != nil {
			return err
		}
		payments, err := tx.ListPaymentsByBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		for _, p := range payments {
			if err := tx.DeletePayment(ctx, p.ID); err != nil {
				return err
			}
			if p.ProofPath != "" {
				proofs = append(proofs, p.ProofPath)
			}
		}
		return tx.DeleteBooking(ctx, bookingID)
	})
	if err != nil {
		return err
	}

	if s.Files != nil {
		for _, path := range proofs {
			if err := s.Files.Remove(path); err != nil {
				log.Printf("[booking] remove proof %s: %v", path, err)
			}
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.Store.GetBooking(ctx, bookingID)
}

// ParseRole maps the ?role= filter; empty and "either" match both sides.
func ParseRole(raw string) (store.BookingRole, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "either", "all":
		return store.RoleAny, nil
	case "poster":
		return store.RolePoster, nil
	case "seeker":
		return store.RoleSeeker, nil
	}
	return "", apperr.Validation("role must be poster, seeker or either")
}

func (s *Service) ListByUser(ctx context.Context, caller models.Caller, role store.BookingRole) ([]models.Booking, error) {
	return s.Store.ListBookingsByUser(ctx, caller.UserID, role)
}

// ListAvailable returns open bookings the caller did not post.
func (s *Service) ListAvailable(ctx context.Context, caller models.Caller) ([]models.Booking, error) {
	return s.Store.ListAvailableBookings(ctx, caller.UserID)
}

func (s *Service) ListAll(ctx context.Context, caller models.Caller) ([]models.Booking, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Unauthorized("only admins can list all bookings")
	}
	return s.Store.ListAllBookings(ctx)
}
