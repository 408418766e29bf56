package jobstatus

import "github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"

// DeriveJobStatus folds the job's own status and, when present, one of its
// bookings into the overall job status.
func DeriveJobStatus(job models.JobStatus, b *models.Booking) string {
	switch job {
	case models.JobDeclined:
		return models.OverallDeclined
	case models.JobPaid:
		return models.OverallCompleted
	case models.JobPending:
		return models.OverallPending
	case models.JobApproved, models.JobInProgress:
		return models.OverallActive
	}
	if b != nil {
		switch b.Status {
		case models.BookingApplied, models.BookingAccepted, models.BookingInProgress,
			models.BookingCompletedBySeeker, models.BookingPaymentPending:
			return models.OverallActive
		}
	}
	return models.OverallPending
}

// DeriveBookingStatus returns nil when the booking is absent or not underway.
func DeriveBookingStatus(b *models.Booking) *string {
	if b == nil {
		return nil
	}
	var s string
	switch b.Status {
	case models.BookingPaid:
		s = models.OverallCompleted
	case models.BookingAccepted, models.BookingInProgress,
		models.BookingCompletedBySeeker, models.BookingPaymentPending:
		s = models.OverallActive
	default:
		return nil
	}
	return &s
}

// deriveJobFromBookings picks the coarse job status implied by its bookings.
// ok is false when the bookings say nothing (none, or all declined/cancelled).
func deriveJobFromBookings(bookings []models.Booking) (status models.JobStatus, ok bool) {
	live, paid := 0, 0
	for _, b := range bookings {
		switch b.Status {
		case models.BookingDeclined, models.BookingCancelled:
			continue
		case models.BookingPaid:
			paid++
		}
		live++
	}
	if live == 0 {
		return "", false
	}
	if paid == live {
		return models.JobPaid, true
	}
	for _, b := range bookings {
		switch b.Status {
		case models.BookingAccepted, models.BookingInProgress, models.BookingCompletedBySeeker,
			models.BookingPaymentPending, models.BookingPaid:
			return models.JobInProgress, true
		}
	}
	return "", false
}
