package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

// ---- users & wallet

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (s *GormStore) CreditUserBalance(ctx context.Context, userID uuid.UUID, amount int64) error {
	result := s.db(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user %s not found", userID)
	}
	return nil
}

func (s *GormStore) CreateWalletTransaction(ctx context.Context, trx *models.WalletTransaction) error {
	return s.db(ctx).Create(trx).Error
}

// ---- jobs

func (s *GormStore) CreateJob(ctx context.Context, job *models.Job) error {
	return s.db(ctx).Create(job).Error
}

func (s *GormStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.db(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "job")
	}
	return &job, nil
}

func (s *GormStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	result := s.db(ctx).Model(&models.Job{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("job %s not found", id)
	}
	return nil
}

// ---- bookings

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.db(ctx).Omit(clause.Associations).Create(b).Error
}

func (s *GormStore) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := s.db(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking")
	}
	return &b, nil
}

func (s *GormStore) UpdateBooking(ctx context.Context, b *models.Booking, expected models.BookingStatus) error {
	b.UpdatedAt = time.Now()
	result := s.db(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, expected).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(b)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetBooking(ctx, b.ID); err != nil {
			return err
		}
		return apperr.Conflict("booking status changed concurrently, expected %s", expected)
	}
	return nil
}

func (s *GormStore) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	result := s.db(ctx).Delete(&models.Booking{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("booking %s not found", id)
	}
	return nil
}

func (s *GormStore) ListBookingsByUser(ctx context.Context, userID uuid.UUID, role BookingRole) ([]models.Booking, error) {
	q := s.db(ctx).Order("created_at DESC")
	switch role {
	case RolePoster:
		q = q.Where("poster_id = ?", userID)
	case RoleSeeker:
		q = q.Where("seeker_id = ?", userID)
	default:
		q = q.Where("poster_id = ? OR seeker_id = ?", userID, userID)
	}
	var out []models.Booking
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) ListAvailableBookings(ctx context.Context, excludePoster uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	err := s.db(ctx).
		Where("status = ? AND poster_id <> ?", models.BookingPending, excludePoster).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListAllBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	err := s.db(ctx).
		Preload("Poster").
		Preload("Seeker").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListBookingsByJob(ctx context.Context, jobID uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	err := s.db(ctx).Where("job_id = ?", jobID).Order("created_at ASC").Find(&out).Error
	return out, err
}

// ---- payments

func (s *GormStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	return s.db(ctx).Omit(clause.Associations).Create(p).Error
}

func (s *GormStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := s.db(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

func (s *GormStore) GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	if err := s.db(ctx).Where("booking_id = ?", bookingID).Order("created_at DESC").First(&p).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

func (s *GormStore) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	if reference == "" {
		return nil, apperr.NotFound("payment not found")
	}
	var p models.Payment
	if err := s.db(ctx).Where("gateway_reference = ?", reference).First(&p).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

func (s *GormStore) ListPaymentsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	err := s.db(ctx).Where("booking_id = ?", bookingID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) UpdatePayment(ctx context.Context, p *models.Payment, expected models.PaymentStatus) error {
	p.UpdatedAt = time.Now()
	result := s.db(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", p.ID, expected).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetPayment(ctx, p.ID); err != nil {
			return err
		}
		return apperr.Conflict("payment status changed concurrently, expected %s", expected)
	}
	return nil
}

func (s *GormStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	result := s.db(ctx).Delete(&models.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("payment %s not found", id)
	}
	return nil
}

// ---- awards

func (s *GormStore) CreateAward(ctx context.Context, a *models.Award) error {
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return err
		}
		for i := range a.Rewards {
			a.Rewards[i].AwardID = a.ID
			if err := tx.Create(&a.Rewards[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("reward code already exists")
	}
	return err
}

func (s *GormStore) ListAwardsByUser(ctx context.Context, userID uuid.UUID) ([]models.Award, error) {
	var out []models.Award
	err := s.db(ctx).Preload("Rewards").Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormStore) FindReward(ctx context.Context, code string) (*models.Reward, error) {
	var r models.Reward
	if err := s.db(ctx).Where("code = ?", code).First(&r).Error; err != nil {
		return nil, notFound(err, "reward")
	}
	return &r, nil
}

func (s *GormStore) MarkRewardUsed(ctx context.Context, rewardID uuid.UUID, at time.Time) error {
	result := s.db(ctx).Model(&models.Reward{}).
		Where("id = ? AND is_used = ?", rewardID, false).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("reward %s already redeemed", rewardID)
	}
	return nil
}

// ---- overall status

func (s *GormStore) UpsertOverallStatus(ctx context.Context, o *models.OverallStatus) error {
	err := s.db(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}, {Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"overall_job_status", "overall_booking_status", "payment_id", "last_updated",
		}),
	}).Create(o).Error
	if err != nil {
		return err
	}
	// on conflict the row keeps its original id
	var stored models.OverallStatus
	if err := s.db(ctx).
		Select("id").
		Where("job_id = ? AND booking_id = ?", o.JobID, o.BookingID).
		Take(&stored).Error; err != nil {
		return err
	}
	o.ID = stored.ID
	return nil
}

func (s *GormStore) GetOverallStatus(ctx context.Context, jobID, bookingID uuid.UUID) (*models.OverallStatus, error) {
	var o models.OverallStatus
	if err := s.db(ctx).Where("job_id = ? AND booking_id = ?", jobID, bookingID).First(&o).Error; err != nil {
		return nil, notFound(err, "overall status")
	}
	return &o, nil
}

func (s *GormStore) OverallStatusCounts(ctx context.Context) (*StatusCounts, error) {
	type row struct {
		Status string
		Count  int64
	}
	out := &StatusCounts{
		ByJobStatus:     map[string]int64{},
		ByBookingStatus: map[string]int64{},
	}

	var jobRows []row
	if err := s.db(ctx).Model(&models.OverallStatus{}).
		Select("overall_job_status AS status, COUNT(*) AS count").
		Group("overall_job_status").
		Scan(&jobRows).Error; err != nil {
		return nil, err
	}
	for _, r := range jobRows {
		out.ByJobStatus[r.Status] = r.Count
		out.Total += r.Count
	}

	var bookingRows []row
	if err := s.db(ctx).Model(&models.OverallStatus{}).
		Select("overall_booking_status AS status, COUNT(*) AS count").
		Where("overall_booking_status IS NOT NULL").
		Group("overall_booking_status").
		Scan(&bookingRows).Error; err != nil {
		return nil, err
	}
	for _, r := range bookingRows {
		out.ByBookingStatus[r.Status] = r.Count
	}
	return out, nil
}

// ---- notifications

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.db(ctx).Create(n).Error
}

func (s *GormStore) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var out []models.Notification
	err := s.db(ctx).Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	result := s.db(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("notification %s not found", id)
	}
	return nil
}
