package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Subject *string   `gorm:"size:255" json:"subject"`

	Participants []*User   `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
	Messages     []Message `json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
