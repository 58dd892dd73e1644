package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

type EventReport struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	EventID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"event_id"`
	UserID      *uuid.UUID   `gorm:"type:uuid" json:"user_id,omitempty"`
	Reason      string       `gorm:"not null" json:"reason"`
	Description string       `json:"description,omitempty"`
	Status      ReportStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ReviewedBy  *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r *EventReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// EventClick is an append-only popularity signal.
type EventClick struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EventID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_clicks_event_created" json:"event_id"`
	UserID    *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	Source    string     `gorm:"type:varchar(40);not null;default:'event_detail'" json:"source"`
	CreatedAt time.Time  `gorm:"index:idx_clicks_event_created" json:"created_at"`
}

func (c *EventClick) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
