package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'student'" json:"role"`

	ParentID      *uuid.UUID `json:"parent_id"`
	CreditBalance float64    `gorm:"type:numeric(10,2);default:0.00" json:"credit_balance"`

	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url"`
	PhoneNumber       *string `gorm:"size:30" json:"phone_number"`
	TimeZone          *string `gorm:"size:100" json:"time_zone"`

	Conversations []*Conversation `gorm:"many2many:conversation_participants;" json:"-"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`
	IsActive                    bool       `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
