package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventsdhaka/discovery/internal/models"
)

// ReminderBuilder turns the existing reminder row (nil if none) into the row to store.
type ReminderBuilder func(existing *models.Reminder) *models.Reminder

type SaveRepository interface {
	// Save revives or creates the saved-event row and upserts its reminder
	// in one transaction.
	Save(ctx context.Context, userID, eventID uuid.UUID, build ReminderBuilder) (*models.SavedEvent, *models.Reminder, error)
	// Unsave soft-deletes the saved-event row and its reminder.
	Unsave(ctx context.Context, userID, eventID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedEvent, error)
	CountActiveSaves(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type saveRepository struct {
	db        *gorm.DB
	reminders ReminderRepository
}

func NewSaveRepository(db *gorm.DB, reminders ReminderRepository) SaveRepository {
	return &saveRepository{db: db, reminders: reminders}
}

func (r *saveRepository) Save(ctx context.Context, userID, eventID uuid.UUID, build ReminderBuilder) (*models.SavedEvent, *models.Reminder, error) {
	saved := &models.SavedEvent{UserID: userID, EventID: eventID}
	var reminder *models.Reminder

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"deleted_at": nil,
				"updated_at": time.Now(),
			}),
		}).Create(saved).Error; err != nil {
			return err
		}
		var stored models.SavedEvent
		if err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).First(&stored).Error; err != nil {
			return err
		}
		saved = &stored

		existing, err := r.reminders.FindByUserEvent(ctx, tx, userID, eventID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		reminder = build(existing)
		return r.reminders.Upsert(ctx, tx, reminder)
	})
	if err != nil {
		return nil, nil, err
	}
	return saved, reminder, nil
}

func (r *saveRepository) Unsave(ctx context.Context, userID, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND event_id = ?", userID, eventID).
			Delete(&models.SavedEvent{}).Error; err != nil {
			return err
		}
		return r.reminders.SoftDeleteByUserEvent(ctx, tx, userID, eventID)
	})
}

func (r *saveRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedEvent, error) {
	var saves []models.SavedEvent
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saves).Error
	return saves, err
}

type countRow struct {
	EventID uuid.UUID
	Count   int
}

func (r *saveRepository) CountActiveSaves(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.SavedEvent{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

func toCountMap(rows []countRow) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.EventID] = row.Count
	}
	return out
}
