// internal/models/booking.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending           BookingStatus = "pending"
	BookingApplied           BookingStatus = "applied"
	BookingAccepted          BookingStatus = "accepted"
	BookingDeclined          BookingStatus = "declined"
	BookingInProgress        BookingStatus = "in_progress"
	BookingCompletedBySeeker BookingStatus = "completed_by_seeker"
	BookingPaymentPending    BookingStatus = "payment_pending"
	BookingPaid              BookingStatus = "paid"
	BookingCancelled         BookingStatus = "cancelled"
)

var bookingStatuses = map[BookingStatus]bool{
	BookingPending:           true,
	BookingApplied:           true,
	BookingAccepted:          true,
	BookingDeclined:          true,
	BookingInProgress:        true,
	BookingCompletedBySeeker: true,
	BookingPaymentPending:    true,
	BookingPaid:              true,
	BookingCancelled:         true,
}

func (s BookingStatus) IsValid() bool { return bookingStatuses[s] }

type Location struct {
	Address     string         `gorm:"type:text" json:"address"`
	Coordinates datatypes.JSON `json:"coordinates,omitempty"`
}

// BookingPayment is the agreed price; Status mirrors the Payment row once one exists.
type BookingPayment struct {
	Amount int64  `gorm:"not null" json:"amount"`
	Status string `gorm:"type:varchar(30)" json:"status,omitempty"`
}

type BookingDates struct {
	Created           time.Time  `json:"created"`
	Accepted          *time.Time `json:"accepted,omitempty"`
	Started           *time.Time `json:"started,omitempty"`
	CompletedBySeeker *time.Time `json:"completed_by_seeker,omitempty"`
	Completed         *time.Time `json:"completed,omitempty"`
	Paid              *time.Time `json:"paid,omitempty"`
}

type Booking struct {
	ID    uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID *uuid.UUID `gorm:"type:uuid;index" json:"job_id,omitempty"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:varchar(80);index" json:"category"`

	PosterID uuid.UUID  `gorm:"type:uuid;index;not null" json:"poster_id"`
	SeekerID *uuid.UUID `gorm:"type:uuid;index" json:"seeker_id,omitempty"`

	Location Location       `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Payment  BookingPayment `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	Status BookingStatus `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	Dates  BookingDates  `gorm:"embedded;embeddedPrefix:date_" json:"dates"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Poster *User `gorm:"foreignKey:PosterID" json:"poster,omitempty"`
	Seeker *User `gorm:"foreignKey:SeekerID" json:"seeker,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// HasSeeker reports whether a job seeker has been assigned.
func (b *Booking) HasSeeker() bool {
	return b.SeekerID != nil && *b.SeekerID != uuid.Nil
}

func (b *Booking) IsSeeker(userID uuid.UUID) bool {
	return b.HasSeeker() && *b.SeekerID == userID
}

func (b *Booking) IsPoster(userID uuid.UUID) bool {
	return b.PosterID == userID
}
