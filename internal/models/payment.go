// internal/models/payment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentTypeManual       PaymentType = "manual"
	PaymentTypePaymentProof PaymentType = "payment_proof"
	PaymentTypeCard         PaymentType = "card"
)

func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeManual, PaymentTypePaymentProof, PaymentTypeCard:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending              PaymentStatus = "pending"
	PaymentAwaitingConfirmation PaymentStatus = "awaiting_confirmation"
	PaymentConfirmed            PaymentStatus = "confirmed"
	PaymentReported             PaymentStatus = "reported"
	PaymentCompleted            PaymentStatus = "completed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentAwaitingConfirmation, PaymentConfirmed, PaymentReported, PaymentCompleted:
		return true
	}
	return false
}

type SeekerConfirmation struct {
	Confirmed   *bool      `json:"confirmed,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
}

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`

	Amount        int64       `gorm:"not null" json:"amount"`
	PaymentType   PaymentType `gorm:"type:varchar(20);not null" json:"payment_type"`
	PaymentMethod string      `gorm:"type:varchar(50)" json:"payment_method"`

	// Proof fields are only populated for payment_proof payments.
	ProofPath        string `gorm:"type:text" json:"proof_path,omitempty"`
	ProofFilename    string `gorm:"type:varchar(255)" json:"proof_filename,omitempty"`
	ProofData        []byte `gorm:"type:bytea" json:"-"`
	ProofContentType string `gorm:"type:varchar(100)" json:"proof_content_type,omitempty"`

	Status             PaymentStatus      `gorm:"type:varchar(30);not null;index" json:"status"`
	SeekerConfirmation SeekerConfirmation `gorm:"embedded;embeddedPrefix:seeker_" json:"seeker_confirmation"`
	CompletedAt        *time.Time         `json:"completed_at,omitempty"`

	OriginalAmount  int64      `json:"original_amount,omitempty"`
	DiscountApplied bool       `gorm:"default:false" json:"discount_applied"`
	DiscountValue   float64    `json:"discount_value,omitempty"`
	DiscountCode    string     `gorm:"type:varchar(50)" json:"discount_code,omitempty"`
	AwardID         *uuid.UUID `gorm:"type:uuid" json:"award_id,omitempty"`

	// Hosted checkout, card payments only.
	GatewayReference string `gorm:"type:varchar(50);index" json:"gateway_reference,omitempty"`
	CheckoutURL      string `gorm:"type:text" json:"checkout_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *Payment) HasProof() bool { return len(p.ProofData) > 0 || p.ProofPath != "" }
