package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OverallDeclined  = "declined"
	OverallCompleted = "completed"
	OverallPending   = "pending"
	OverallActive    = "active"
)

// OverallStatus is the denormalized read model kept per (job, booking).
// BookingID is uuid.Nil for rows computed without a booking.
type OverallStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_overall_job_booking" json:"job_id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_overall_job_booking" json:"booking_id"`

	OverallJobStatus     string     `gorm:"type:varchar(20);not null;index" json:"overall_job_status"`
	OverallBookingStatus *string    `gorm:"type:varchar(20);index" json:"overall_booking_status"`
	PaymentID            *uuid.UUID `gorm:"type:uuid" json:"payment_id,omitempty"`
	LastUpdated          time.Time  `json:"last_updated"`
}

func (o *OverallStatus) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}
