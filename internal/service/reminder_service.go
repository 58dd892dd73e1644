package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/reminder"
	"github.com/eventsdhaka/discovery/internal/repository"
)

// ReminderRequest carries the optional reminder fields as sent by the
// client. Option, when set, overrides the two flags.
type ReminderRequest struct {
	EventID     uuid.UUID
	Reminder24h *bool
	Reminder3h  *bool
	Timezone    string
	Option      reminder.Option
}

type ReminderService interface {
	Upsert(ctx context.Context, who Identity, req ReminderRequest) (*models.Reminder, error)
	Delete(ctx context.Context, who Identity, id uuid.UUID) error
}

type reminderService struct {
	reminders repository.ReminderRepository
	events    repository.EventRepository
	now       func() time.Time
}

func NewReminderService(reminders repository.ReminderRepository, events repository.EventRepository) ReminderService {
	return &reminderService{reminders: reminders, events: events, now: time.Now}
}

func (s *reminderService) Upsert(ctx context.Context, who Identity, req ReminderRequest) (*models.Reminder, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	prefs, err := preferencesOf(req)
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	if !reminder.CanCreate(event, s.now()) {
		return nil, ErrNotSaveable
	}

	var result *models.Reminder
	err = s.reminders.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.reminders.FindByUserEvent(ctx, tx, who.UserID, req.EventID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		result = reminder.ApplyPreferences(existing, who.UserID, req.EventID, prefs)
		return s.reminders.Upsert(ctx, tx, result)
	})
	if err != nil {
		return nil, fmt.Errorf("upsert reminder: %w", err)
	}
	return result, nil
}

func (s *reminderService) Delete(ctx context.Context, who Identity, id uuid.UUID) error {
	if !who.Authenticated() {
		return ErrUnauthenticated
	}
	ok, err := s.reminders.SoftDeleteOwned(ctx, id, who.UserID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if !ok {
		return ErrReminderNotFound
	}
	return nil
}

func preferencesOf(req ReminderRequest) (reminder.Preferences, error) {
	prefs := reminder.DefaultPreferences()
	if req.Option != "" {
		if !req.Option.Valid() {
			return prefs, fmt.Errorf("%w %q", ErrInvalidReminderOption, req.Option)
		}
		prefs.Reminder24h, prefs.Reminder3h = req.Option.Flags()
	} else {
		if req.Reminder24h != nil {
			prefs.Reminder24h = *req.Reminder24h
		}
		if req.Reminder3h != nil {
			prefs.Reminder3h = *req.Reminder3h
		}
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return prefs, fmt.Errorf("%w %q", ErrInvalidTimezone, req.Timezone)
		}
		prefs.Timezone = req.Timezone
	}
	return prefs, nil
}
