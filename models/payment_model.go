package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID  `gorm:"not null" json:"student_id"`
	CourseID  *uuid.UUID `json:"course_id"`
	Amount    float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency  string     `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Method    string     `gorm:"size:50;not null" json:"method"`
	Status    string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	Note      *string    `gorm:"type:text" json:"note"`

	RefundStatus *string `gorm:"size:20" json:"refund_status"`
	RefundReason *string `gorm:"type:text" json:"refund_reason"`

	Student User   `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Course  Course `gorm:"foreignkey:CourseID" json:"course,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
