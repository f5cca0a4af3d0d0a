package models

import (
	"time"

	"github.com/google/uuid"
)

type Instructor struct {
	UserID      uuid.UUID `gorm:"primary_key" json:"user_id"`
	Headline    *string   `gorm:"size:255" json:"headline"`
	Bio         *string   `gorm:"type:text" json:"bio"`
	Disciplines *string   `gorm:"size:255" json:"disciplines"`
	Status      string    `gorm:"size:20;not null;default:'active'" json:"status"`
	User        User      `gorm:"foreignkey:UserID" json:"user"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
