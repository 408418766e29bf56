package jobstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

func TestDeriveJobStatus(t *testing.T) {
	tests := []struct {
		name    string
		job     models.JobStatus
		booking models.BookingStatus
		want    string
	}{
		{"declined job", models.JobDeclined, models.BookingAccepted, models.OverallDeclined},
		{"paid job", models.JobPaid, models.BookingPaid, models.OverallCompleted},
		{"pending job wins over active booking", models.JobPending, models.BookingInProgress, models.OverallPending},
		{"approved job", models.JobApproved, models.BookingPending, models.OverallActive},
		{"in progress job", models.JobInProgress, "", models.OverallActive},
		{"completed job with applied booking", models.JobCompleted, models.BookingApplied, models.OverallActive},
		{"completed job with payment pending booking", models.JobCompleted, models.BookingPaymentPending, models.OverallActive},
		{"completed job with paid booking", models.JobCompleted, models.BookingPaid, models.OverallPending},
		{"completed job without booking", models.JobCompleted, "", models.OverallPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b *models.Booking
			if tt.booking != "" {
				b = &models.Booking{Status: tt.booking}
			}
			assert.Equal(t, tt.want, DeriveJobStatus(tt.job, b))
		})
	}
}

func TestDeriveBookingStatus(t *testing.T) {
	assert.Nil(t, DeriveBookingStatus(nil))

	for status, want := range map[models.BookingStatus]string{
		models.BookingPaid:              models.OverallCompleted,
		models.BookingAccepted:          models.OverallActive,
		models.BookingInProgress:        models.OverallActive,
		models.BookingCompletedBySeeker: models.OverallActive,
		models.BookingPaymentPending:    models.OverallActive,
	} {
		got := DeriveBookingStatus(&models.Booking{Status: status})
		if assert.NotNil(t, got, status) {
			assert.Equal(t, want, *got, status)
		}
	}

	for _, status := range []models.BookingStatus{
		models.BookingPending, models.BookingApplied, models.BookingDeclined, models.BookingCancelled,
	} {
		assert.Nil(t, DeriveBookingStatus(&models.Booking{Status: status}), status)
	}
}

func TestDeriveJobFromBookings(t *testing.T) {
	bs := func(statuses ...models.BookingStatus) []models.Booking {
		out := make([]models.Booking, len(statuses))
		for i, s := range statuses {
			out[i].Status = s
		}
		return out
	}

	_, ok := deriveJobFromBookings(nil)
	assert.False(t, ok)

	_, ok = deriveJobFromBookings(bs(models.BookingCancelled, models.BookingDeclined))
	assert.False(t, ok)

	_, ok = deriveJobFromBookings(bs(models.BookingPending))
	assert.False(t, ok)

	got, ok := deriveJobFromBookings(bs(models.BookingPaid, models.BookingCancelled))
	assert.True(t, ok)
	assert.Equal(t, models.JobPaid, got)

	got, ok = deriveJobFromBookings(bs(models.BookingPaid, models.BookingInProgress))
	assert.True(t, ok)
	assert.Equal(t, models.JobInProgress, got)
}
