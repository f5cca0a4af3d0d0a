package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionScheduled = "scheduled"
	SessionOngoing   = "ongoing"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// ClassSession is one scheduled class occurrence. StartDate and StartTime are
// stored as "2006-01-02" / "15:04" strings in the session's own timezone;
// the calendar layer combines them into absolute instants on read.
type ClassSession struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	CourseID        *uuid.UUID `json:"course_id"`
	StartDate       string    `gorm:"size:10;not null" json:"start_date"`
	StartTime       string    `gorm:"size:5;not null" json:"start_time"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Timezone        string    `gorm:"size:100;not null;default:'UTC'" json:"timezone"`
	Category        string    `gorm:"size:50;not null;default:'general'" json:"category"`

	InstructorID          uuid.UUID  `gorm:"not null" json:"instructor_id"`
	SecondaryInstructorID *uuid.UUID `json:"secondary_instructor_id"`

	Status           string  `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	CancelReason     *string `gorm:"type:text" json:"cancel_reason"`
	VacationImpacted bool    `gorm:"default:false" json:"vacation_impacted"`

	Room        *string `gorm:"size:100" json:"room"`
	MeetingLink *string `gorm:"size:255" json:"meeting_link"`

	Course     Course  `gorm:"foreignkey:CourseID" json:"course,omitempty"`
	Instructor User    `gorm:"foreignkey:InstructorID" json:"instructor,omitempty"`
	Students   []*User `gorm:"many2many:session_students;" json:"students,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignedTo reports whether the session is taught by the given instructor,
// as primary or secondary.
func (s *ClassSession) AssignedTo(instructorID uuid.UUID) bool {
	if s.InstructorID == instructorID {
		return true
	}
	return s.SecondaryInstructorID != nil && *s.SecondaryInstructorID == instructorID
}
