package models

import (
	"time"

	"github.com/google/uuid"
)

// VacationPeriod is an instructor unavailability window. StartDate and
// EndDate are inclusive "2006-01-02" strings; whole days, no time-of-day.
type VacationPeriod struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstructorID uuid.UUID `gorm:"not null" json:"instructor_id"`
	StartDate    string    `gorm:"size:10;not null" json:"start_date"`
	EndDate      string    `gorm:"size:10;not null" json:"end_date"`
	Reason       *string   `gorm:"type:text" json:"reason"`

	Instructor User `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
