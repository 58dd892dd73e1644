// Package reminder manages reminder subscriptions and delivers them when
// their event approaches.
package reminder

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventsdhaka/discovery/internal/models"
)

// CanCreate reports whether users may save or subscribe to the event:
// it must be live, published and not yet ended.
func CanCreate(event *models.Event, now time.Time) bool {
	if event == nil || event.DeletedAt.Valid {
		return false
	}
	if event.Status != models.StatusPublished {
		return false
	}
	if event.EndDate.IsZero() {
		return false
	}
	return !event.EndDate.Before(now)
}

// Aggregate derives the overall status from the enabled leads only.
// Failed dominates, sent requires every enabled lead to be sent.
func Aggregate(enabled24, enabled3 bool, status24, status3 models.ReminderStatus) models.ReminderStatus {
	var statuses []models.ReminderStatus
	if enabled24 {
		statuses = append(statuses, status24)
	}
	if enabled3 {
		statuses = append(statuses, status3)
	}
	if len(statuses) == 0 {
		return models.ReminderPending
	}

	allSent := true
	for _, s := range statuses {
		if s == models.ReminderFailed {
			return models.ReminderFailed
		}
		if s != models.ReminderSent {
			allSent = false
		}
	}
	if allSent {
		return models.ReminderSent
	}
	return models.ReminderPending
}

func AggregateOf(r *models.Reminder) models.ReminderStatus {
	return Aggregate(r.Reminder24h, r.Reminder3h, r.Status24h, r.Status3h)
}

type Preferences struct {
	Reminder24h bool
	Reminder3h  bool
	Timezone    string
}

// DefaultPreferences is what saving an event subscribes to.
func DefaultPreferences() Preferences {
	return Preferences{Reminder24h: true, Reminder3h: false, Timezone: models.DefaultTimezone}
}

// ApplyPreferences returns the reminder row to upsert for (userID, eventID).
// existing may be nil or soft-deleted; either way the result is live.
// Enabled leads reset to pending unless that lead was already delivered,
// in which case they stay sent. Disabled leads keep their status.
func ApplyPreferences(existing *models.Reminder, userID, eventID uuid.UUID, prefs Preferences) *models.Reminder {
	r := &models.Reminder{
		UserID:    userID,
		EventID:   eventID,
		Status24h: models.ReminderPending,
		Status3h:  models.ReminderPending,
	}
	if existing != nil {
		copied := *existing
		r = &copied
	}

	r.Reminder24h = prefs.Reminder24h
	r.Reminder3h = prefs.Reminder3h
	r.Timezone = prefs.Timezone
	if r.Timezone == "" {
		r.Timezone = models.DefaultTimezone
	}
	r.DeletedAt.Valid = false

	for _, lead := range models.Leads {
		if !r.Enabled(lead) {
			if r.LeadStatus(lead) == "" {
				r.SetLeadStatus(lead, models.ReminderPending)
			}
			continue
		}
		if r.Sent(lead) {
			r.SetLeadStatus(lead, models.ReminderSent)
		} else {
			r.SetLeadStatus(lead, models.ReminderPending)
		}
	}

	r.Status = AggregateOf(r)
	return r
}

// Option is the single-choice form of the two lead subscriptions.
type Option string

const (
	OptionOff  Option = "off"
	Option24h  Option = "24h"
	Option3h   Option = "3h"
	OptionBoth Option = "both"
)

func (o Option) Valid() bool {
	switch o {
	case OptionOff, Option24h, Option3h, OptionBoth:
		return true
	}
	return false
}

func (o Option) Flags() (reminder24h, reminder3h bool) {
	switch o {
	case Option24h:
		return true, false
	case Option3h:
		return false, true
	case OptionBoth:
		return true, true
	}
	return false, false
}

func OptionOf(reminder24h, reminder3h bool) Option {
	switch {
	case reminder24h && reminder3h:
		return OptionBoth
	case reminder24h:
		return Option24h
	case reminder3h:
		return Option3h
	}
	return OptionOff
}
