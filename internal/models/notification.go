package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifBookingStatus    NotificationType = "booking_status"
	NotifPaymentPending   NotificationType = "payment_pending"
	NotifPaymentCreated   NotificationType = "payment_created"
	NotifPaymentProof     NotificationType = "payment_proof"
	NotifPaymentConfirmed NotificationType = "payment_confirmed"
	NotifPaymentReported  NotificationType = "payment_reported"
	NotifPaymentCompleted NotificationType = "payment_completed"
)

type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Type       NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title      string           `gorm:"not null" json:"title"`
	Message    string           `gorm:"type:text" json:"message"`
	References datatypes.JSON   `json:"references,omitempty"`
	IsRead     bool             `gorm:"default:false" json:"is_read"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
