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

type SaveService interface {
	Save(ctx context.Context, who Identity, eventID uuid.UUID) (*models.SavedEvent, *models.Reminder, error)
	Unsave(ctx context.Context, who Identity, eventID uuid.UUID) error
	ListSaves(ctx context.Context, who Identity) ([]models.SavedEvent, error)
}

type saveService struct {
	saves  repository.SaveRepository
	events repository.EventRepository
	now    func() time.Time
}

func NewSaveService(saves repository.SaveRepository, events repository.EventRepository) SaveService {
	return &saveService{saves: saves, events: events, now: time.Now}
}

// Save bookmarks a published, not yet ended event and subscribes the user
// to the default reminder. A live reminder keeps the preferences the user
// already chose; a missing or deleted one starts from the defaults.
func (s *saveService) Save(ctx context.Context, who Identity, eventID uuid.UUID) (*models.SavedEvent, *models.Reminder, error) {
	if !who.Authenticated() {
		return nil, nil, ErrUnauthenticated
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("find event: %w", err)
	}
	if !reminder.CanCreate(event, s.now()) {
		return nil, nil, ErrNotSaveable
	}

	saved, rem, err := s.saves.Save(ctx, who.UserID, eventID, func(existing *models.Reminder) *models.Reminder {
		prefs := reminder.DefaultPreferences()
		if existing != nil && !existing.DeletedAt.Valid {
			prefs = reminder.Preferences{
				Reminder24h: existing.Reminder24h,
				Reminder3h:  existing.Reminder3h,
				Timezone:    existing.Timezone,
			}
		}
		return reminder.ApplyPreferences(existing, who.UserID, eventID, prefs)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("save event: %w", err)
	}
	return saved, rem, nil
}

// Unsave removes the bookmark and its reminder. Unsaving something that was
// never saved succeeds.
func (s *saveService) Unsave(ctx context.Context, who Identity, eventID uuid.UUID) error {
	if !who.Authenticated() {
		return ErrUnauthenticated
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("find event: %w", err)
	}
	if err := s.saves.Unsave(ctx, who.UserID, eventID); err != nil {
		return fmt.Errorf("unsave event: %w", err)
	}
	return nil
}

func (s *saveService) ListSaves(ctx context.Context, who Identity) ([]models.SavedEvent, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	saves, err := s.saves.ListByUser(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return saves, nil
}
