package models

import (
	"time"

	"github.com/google/uuid"
)

type Resource struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CourseID   *uuid.UUID `json:"course_id"`
	UploaderID uuid.UUID  `gorm:"not null" json:"uploader_id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	FileName   string     `gorm:"size:255;not null" json:"file_name"`
	FileURL    string     `gorm:"type:text;not null" json:"file_url"`
	Audience   string     `gorm:"size:20;not null;default:'all'" json:"audience"`
	UploadedAt time.Time  `json:"uploaded_at"`

	Course   Course `gorm:"foreignkey:CourseID" json:"course,omitempty"`
	Uploader User   `gorm:"foreignkey:UploaderID" json:"uploader,omitempty"`
}
