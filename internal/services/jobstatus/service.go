package jobstatus

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

type Service struct {
	Store store.Store
	Now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{Store: st, Now: time.Now}
}

// Recompute derives the overall status of a job, optionally through one of
// its bookings, and upserts the (job, booking) row. Safe to repeat.
func (s *Service) Recompute(ctx context.Context, jobID uuid.UUID, bookingID *uuid.UUID) (*models.OverallStatus, error) {
	job, err := s.Store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var (
		b         *models.Booking
		paymentID *uuid.UUID
		key       = uuid.Nil
	)
	if bookingID != nil && *bookingID != uuid.Nil {
		b, err = s.Store.GetBooking(ctx, *bookingID)
		if err != nil {
			return nil, err
		}
		if b.JobID == nil || *b.JobID != job.ID {
			return nil, apperr.Validation("booking %s does not belong to job %s", b.ID, job.ID)
		}
		key = b.ID

		p, err := s.Store.GetPaymentByBooking(ctx, b.ID)
		switch {
		case err == nil:
			paymentID = &p.ID
		case !apperr.IsKind(err, apperr.KindNotFound):
			return nil, err
		}
	}

	row := &models.OverallStatus{
		JobID:                job.ID,
		BookingID:            key,
		OverallJobStatus:     DeriveJobStatus(job.Status, b),
		OverallBookingStatus: DeriveBookingStatus(b),
		PaymentID:            paymentID,
		LastUpdated:          s.Now(),
	}
	if err := s.Store.UpsertOverallStatus(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

type BulkResult struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// RecomputeAll walks every booking; per-row failures are counted, not fatal.
func (s *Service) RecomputeAll(ctx context.Context) (*BulkResult, error) {
	bookings, err := s.Store.ListAllBookings(ctx)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Total: len(bookings)}
	for _, b := range bookings {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if b.JobID == nil {
			res.Skipped++
			continue
		}
		id := b.ID
		if _, err := s.Recompute(ctx, *b.JobID, &id); err != nil {
			log.Printf("[jobstatus] recompute job %s booking %s: %v", *b.JobID, b.ID, err)
			res.Errors++
			continue
		}
		res.Updated++
	}
	log.Printf("[jobstatus] bulk recompute: %d updated, %d skipped, %d errors", res.Updated, res.Skipped, res.Errors)
	return res, nil
}

// SyncJob moves an approved or running job to in_progress or paid according
// to its bookings. Jobs in any other status are left alone.
func (s *Service) SyncJob(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.Store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobApproved && job.Status != models.JobInProgress {
		return nil
	}

	bookings, err := s.Store.ListBookingsByJob(ctx, jobID)
	if err != nil {
		return err
	}
	next, ok := deriveJobFromBookings(bookings)
	if !ok || next == job.Status {
		return nil
	}
	return s.Store.UpdateJobStatus(ctx, jobID, next)
}

// Sync runs SyncJob then Recompute for a booking whose payment settled.
// Failures are logged only.
func (s *Service) Sync(ctx context.Context, b *models.Booking) {
	if b == nil || b.JobID == nil {
		return
	}
	if err := s.SyncJob(ctx, *b.JobID); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[jobstatus] sync job %s: %v", *b.JobID, err)
	}
	id := b.ID
	if _, err := s.Recompute(ctx, *b.JobID, &id); err != nil {
		log.Printf("[jobstatus] recompute job %s booking %s: %v", *b.JobID, b.ID, err)
	}
}

func (s *Service) Analytics(ctx context.Context) (*store.StatusCounts, error) {
	return s.Store.OverallStatusCounts(ctx)
}
