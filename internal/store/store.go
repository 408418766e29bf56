package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

// BookingRole filters bookings by which side of the booking the user is on.
type BookingRole string

const (
	RoleAny    BookingRole = ""
	RolePoster BookingRole = "poster"
	RoleSeeker BookingRole = "seeker"
)

// StatusCounts aggregates the OverallStatus read model.
type StatusCounts struct {
	Total           int64            `json:"total"`
	ByJobStatus     map[string]int64 `json:"by_job_status"`
	ByBookingStatus map[string]int64 `json:"by_booking_status"`
}

// Store is the persistence contract shared by the booking, payment and
// job-status services. Lookups of missing rows return an apperr NotFound.
type Store interface {
	// Transaction runs fn against a Store bound to a single transaction.
	// Any error returned by fn rolls every write back.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreditUserBalance(ctx context.Context, userID uuid.UUID, amount int64) error
	CreateWalletTransaction(ctx context.Context, trx *models.WalletTransaction) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error

	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// UpdateBooking saves b only while the stored status still equals expected;
	// otherwise it returns an apperr Conflict and writes nothing.
	UpdateBooking(ctx context.Context, b *models.Booking, expected models.BookingStatus) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	ListBookingsByUser(ctx context.Context, userID uuid.UUID, role BookingRole) ([]models.Booking, error)
	ListAvailableBookings(ctx context.Context, excludePoster uuid.UUID) ([]models.Booking, error)
	// ListAllBookings preloads Poster and Seeker.
	ListAllBookings(ctx context.Context) ([]models.Booking, error)
	ListBookingsByJob(ctx context.Context, jobID uuid.UUID) ([]models.Booking, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	// GetPaymentByBooking returns the most recent payment of the booking.
	GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	// GetPaymentByReference never matches an empty reference.
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	ListPaymentsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error)
	// UpdatePayment saves p only while the stored status still equals
	// expected; otherwise it returns an apperr Conflict and writes nothing.
	UpdatePayment(ctx context.Context, p *models.Payment, expected models.PaymentStatus) error
	DeletePayment(ctx context.Context, id uuid.UUID) error

	CreateAward(ctx context.Context, a *models.Award) error
	ListAwardsByUser(ctx context.Context, userID uuid.UUID) ([]models.Award, error)
	FindReward(ctx context.Context, code string) (*models.Reward, error)
	// MarkRewardUsed flips is_used only if it is still false; a reward that
	// was already redeemed yields an apperr Conflict.
	MarkRewardUsed(ctx context.Context, rewardID uuid.UUID, at time.Time) error

	// UpsertOverallStatus leaves o carrying the id of the stored row.
	UpsertOverallStatus(ctx context.Context, o *models.OverallStatus) error
	GetOverallStatus(ctx context.Context, jobID, bookingID uuid.UUID) (*models.OverallStatus, error)
	OverallStatusCounts(ctx context.Context) (*StatusCounts, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error
}
