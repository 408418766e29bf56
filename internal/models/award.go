package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Award groups the reward codes a user earned for one period.
type Award struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Period string    `gorm:"type:varchar(20);index" json:"period"` // e.g. 2026-10

	Rewards []Reward `gorm:"foreignKey:AwardID" json:"rewards"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Reward struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AwardID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"award_id"`
	Code       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Value      float64    `gorm:"not null" json:"value"` // percent off
	ValidUntil time.Time  `json:"valid_until"`
	IsUsed     bool       `gorm:"default:false;index" json:"is_used"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

func (a *Award) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func (r *Reward) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// Redeemable reports whether the code can still be applied at now.
func (r *Reward) Redeemable(now time.Time) bool {
	return !r.IsUsed && r.ValidUntil.After(now)
}
