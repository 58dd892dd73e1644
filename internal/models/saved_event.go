package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SavedEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_event" json:"user_id"`
	EventID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_saved_user_event;index" json:"event_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (s *SavedEvent) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
