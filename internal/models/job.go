package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobApproved   JobStatus = "approved"
	JobDeclined   JobStatus = "declined"
	JobInProgress JobStatus = "in_progress" // derived from bookings
	JobCompleted  JobStatus = "completed"
	JobPaid       JobStatus = "paid" // derived from bookings
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobPending, JobApproved, JobDeclined, JobInProgress, JobCompleted, JobPaid:
		return true
	}
	return false
}

type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PosterID    uuid.UUID `gorm:"type:uuid;index;not null" json:"poster_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(80)" json:"category"`
	Status      JobStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}
