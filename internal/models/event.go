package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPending   EventStatus = "pending"
	StatusPublished EventStatus = "published"
	StatusExpired   EventStatus = "expired"
	StatusArchived  EventStatus = "archived"
)

// EventStatuses lists every lifecycle state in lifecycle order.
var EventStatuses = []EventStatus{StatusDraft, StatusPending, StatusPublished, StatusExpired, StatusArchived}

func (s EventStatus) Valid() bool {
	for _, st := range EventStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type PriceType string

const (
	PriceFree PriceType = "free"
	PricePaid PriceType = "paid"
)

type Event struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Slug         string          `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Title        string          `gorm:"not null" json:"title"`
	Description  string          `json:"description"`
	Category     string          `gorm:"index" json:"category"`
	Subcategory  string          `json:"subcategory,omitempty"`
	Area         string          `gorm:"index" json:"area"`
	VenueName    string          `gorm:"not null" json:"venue_name"`
	VenueAddress string          `json:"venue_address"`
	PriceType    PriceType       `gorm:"type:varchar(10);not null;default:'free'" json:"price_type"`
	PriceAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price_amount"`
	TicketLink   string          `json:"ticket_link,omitempty"`
	StartDate    time.Time       `gorm:"not null;index" json:"start_date"`
	EndDate      time.Time       `gorm:"not null;index" json:"end_date"`
	StartTime    string          `gorm:"type:varchar(8)" json:"start_time,omitempty"`
	EndTime      string          `gorm:"type:varchar(8)" json:"end_time,omitempty"`
	Status       EventStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Verified     bool            `gorm:"not null;default:false" json:"verified"`
	OrganizerID  *uuid.UUID      `gorm:"type:uuid;index" json:"organizer_id,omitempty"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	Organizer *Organizer `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsPubliclyVisible mirrors the repository's public scope:
// not deleted, published and not yet ended.
func (e *Event) IsPubliclyVisible(now time.Time) bool {
	if e == nil || e.DeletedAt.Valid {
		return false
	}
	if e.Status != StatusPublished {
		return false
	}
	return !e.EndDate.Before(now)
}

// StartsAt combines the start date with the optional wall-clock start time,
// interpreting both in loc. Without a start time the stored instant is used as is.
func (e *Event) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if e.StartTime == "" {
		return e.StartDate
	}
	clock, ok := parseClock(e.StartTime)
	if !ok {
		return e.StartDate
	}
	d := e.StartDate.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
}

func parseClock(v string) (time.Time, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
