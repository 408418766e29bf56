package jobstatus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store/memstore"
)

type fixture struct {
	svc    *Service
	store  *memstore.Store
	poster uuid.UUID
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	f := &fixture{
		store:  st,
		poster: st.PutUser(models.User{Name: "Poster", Role: models.RoleCustomer}).ID,
		now:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(st)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func (f *fixture) job(t *testing.T, status models.JobStatus) *models.Job {
	t.Helper()
	j := &models.Job{PosterID: f.poster, Title: "Garden work", Status: status}
	require.NoError(t, f.store.CreateJob(context.Background(), j))
	return j
}

func (f *fixture) booking(t *testing.T, jobID *uuid.UUID, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{JobID: jobID, Title: "Mow lawn", PosterID: f.poster, Status: status}
	require.NoError(t, f.store.CreateBooking(context.Background(), b))
	return b
}

func TestRecomputeWithBookingAndPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobApproved)
	b := f.booking(t, &j.ID, models.BookingPaymentPending)
	p := &models.Payment{BookingID: b.ID, Amount: 100, PaymentType: models.PaymentTypeManual, Status: models.PaymentAwaitingConfirmation}
	require.NoError(t, f.store.CreatePayment(ctx, p))

	row, err := f.svc.Recompute(ctx, j.ID, &b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OverallActive, row.OverallJobStatus)
	require.NotNil(t, row.OverallBookingStatus)
	assert.Equal(t, models.OverallActive, *row.OverallBookingStatus)
	require.NotNil(t, row.PaymentID)
	assert.Equal(t, p.ID, *row.PaymentID)
	assert.Equal(t, f.now, row.LastUpdated)

	stored, err := f.store.GetOverallStatus(ctx, j.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *row, *stored)
}

func TestRecomputeWithoutBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobDeclined)

	row, err := f.svc.Recompute(ctx, j.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OverallDeclined, row.OverallJobStatus)
	assert.Nil(t, row.OverallBookingStatus)
	assert.Nil(t, row.PaymentID)

	_, err = f.store.GetOverallStatus(ctx, j.ID, uuid.Nil)
	require.NoError(t, err)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobInProgress)
	b := f.booking(t, &j.ID, models.BookingPaid)

	_, err := f.svc.Recompute(ctx, j.ID, &b.ID)
	require.NoError(t, err)
	first, err := f.store.GetOverallStatus(ctx, j.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Recompute(ctx, j.ID, &b.ID)
	require.NoError(t, err)
	second, err := f.store.GetOverallStatus(ctx, j.ID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	counts, err := f.svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Total)
}

func TestRecomputeMissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Recompute(ctx, uuid.New(), nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	j := f.job(t, models.JobApproved)
	missing := uuid.New()
	_, err = f.svc.Recompute(ctx, j.ID, &missing)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRecomputeRejectsBookingOfAnotherJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jobA := f.job(t, models.JobApproved)
	jobB := f.job(t, models.JobApproved)
	other := f.booking(t, &jobB.ID, models.BookingAccepted)
	loose := f.booking(t, nil, models.BookingAccepted)

	_, err := f.svc.Recompute(ctx, jobA.ID, &other.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.svc.Recompute(ctx, jobA.ID, &loose.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.store.GetOverallStatus(ctx, jobA.ID, other.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRecomputeKeepsRowID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobPending)

	first, err := f.svc.Recompute(ctx, j.ID, nil)
	require.NoError(t, err)
	second, err := f.svc.Recompute(ctx, j.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecomputeAllCountsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobApproved)
	f.booking(t, &j.ID, models.BookingAccepted)
	f.booking(t, &j.ID, models.BookingPaid)
	f.booking(t, nil, models.BookingPending)
	orphanJob := uuid.New()
	f.booking(t, &orphanJob, models.BookingPending)

	res, err := f.svc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, &BulkResult{Total: 4, Updated: 2, Skipped: 1, Errors: 1}, res)

	counts, err := f.svc.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Total)
	assert.Equal(t, int64(2), counts.ByJobStatus[models.OverallActive])
	assert.Equal(t, int64(1), counts.ByBookingStatus[models.OverallActive])
	assert.Equal(t, int64(1), counts.ByBookingStatus[models.OverallCompleted])
}

func TestSyncJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobApproved)
	first := f.booking(t, &j.ID, models.BookingPaid)
	second := f.booking(t, &j.ID, models.BookingInProgress)

	require.NoError(t, f.svc.SyncJob(ctx, j.ID))
	got, err := f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobInProgress, got.Status)

	second.Status = models.BookingPaid
	require.NoError(t, f.store.UpdateBooking(ctx, second, models.BookingInProgress))

	require.NoError(t, f.svc.SyncJob(ctx, j.ID))
	got, err = f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobPaid, got.Status)

	f.svc.Sync(ctx, first)
	row, err := f.store.GetOverallStatus(ctx, j.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OverallCompleted, row.OverallJobStatus)
}

func TestSyncJobLeavesPendingJobsAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	j := f.job(t, models.JobPending)
	f.booking(t, &j.ID, models.BookingPaid)

	require.NoError(t, f.svc.SyncJob(ctx, j.ID))
	got, err := f.store.GetJob(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, got.Status)
}
