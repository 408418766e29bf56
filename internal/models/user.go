package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleJobSeeker Role = "jobSeeker"
	RoleAdmin     Role = "admin"
)

// ParseRole matches role names case-insensitively, since tokens carry them lowercased.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleCustomer, RoleJobSeeker, RoleAdmin} {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone string    `gorm:"type:varchar(30)" json:"phone,omitempty"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Balance is the job seeker's earned amount, kept in step with WalletTransaction.
	Balance int64 `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// Caller is the authenticated user a request acts on behalf of.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
