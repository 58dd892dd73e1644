package models

import (
	"time"
	// Reminder timezones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// Lead is a reminder lead time before the event start.
type Lead string

const (
	Lead24h Lead = "24h"
	Lead3h  Lead = "3h"
)

// Leads in firing order.
var Leads = []Lead{Lead24h, Lead3h}

func (l Lead) Duration() time.Duration {
	switch l {
	case Lead24h:
		return 24 * time.Hour
	case Lead3h:
		return 3 * time.Hour
	}
	return 0
}

// Column names of the per-lead subscription, delivery flag and status.
func (l Lead) EnabledColumn() string { return "reminder_" + string(l) }
func (l Lead) SentColumn() string    { return "sent_" + string(l) }
func (l Lead) StatusColumn() string  { return "status_" + string(l) }

const DefaultTimezone = "Asia/Dhaka"

type Reminder struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_user_event" json:"user_id"`
	EventID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_reminder_user_event;index" json:"event_id"`
	Reminder24h bool           `gorm:"column:reminder_24h;not null;default:true" json:"reminder_24h"`
	Reminder3h  bool           `gorm:"column:reminder_3h;not null;default:false" json:"reminder_3h"`
	Sent24h     bool           `gorm:"column:sent_24h;not null;default:false" json:"sent_24h"`
	Sent3h      bool           `gorm:"column:sent_3h;not null;default:false" json:"sent_3h"`
	Status24h   ReminderStatus `gorm:"column:status_24h;type:varchar(10);not null;default:'pending'" json:"status_24h"`
	Status3h    ReminderStatus `gorm:"column:status_3h;type:varchar(10);not null;default:'pending'" json:"status_3h"`
	Status      ReminderStatus `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	Timezone    string         `gorm:"type:varchar(64);not null;default:'Asia/Dhaka'" json:"timezone"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Reminder) Enabled(l Lead) bool {
	if l == Lead24h {
		return r.Reminder24h
	}
	return r.Reminder3h
}

func (r *Reminder) Sent(l Lead) bool {
	if l == Lead24h {
		return r.Sent24h
	}
	return r.Sent3h
}

func (r *Reminder) LeadStatus(l Lead) ReminderStatus {
	if l == Lead24h {
		return r.Status24h
	}
	return r.Status3h
}

func (r *Reminder) SetLeadStatus(l Lead, s ReminderStatus) {
	if l == Lead24h {
		r.Status24h = s
		return
	}
	r.Status3h = s
}

func (r *Reminder) SetSent(l Lead, sent bool) {
	if l == Lead24h {
		r.Sent24h = sent
		return
	}
	r.Sent3h = sent
}

// DueReminder is a reminder joined with what the dispatcher needs from its
// event and user.
type DueReminder struct {
	Reminder
	EventTitle     string      `gorm:"column:event_title"`
	EventSlug      string      `gorm:"column:event_slug"`
	EventStatus    EventStatus `gorm:"column:event_status"`
	EventStartDate time.Time   `gorm:"column:event_start_date"`
	EventStartTime string      `gorm:"column:event_start_time"`
	EventVenue     string      `gorm:"column:event_venue"`
	UserEmail      string      `gorm:"column:user_email"`
}
