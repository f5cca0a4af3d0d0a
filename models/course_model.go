package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseCategory struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name  string    `gorm:"size:100;not null;unique" json:"name"`
	Color *string   `gorm:"size:7" json:"color"`
}

type Course struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
	PricePerTerm float64   `gorm:"type:numeric(10,2);not null;default:0.00" json:"price_per_term"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`

	Category CourseCategory `gorm:"foreignkey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
