package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventsdhaka/discovery/internal/models"
)

type ReminderRepository interface {
	// FindByUserEvent includes soft-deleted rows so they can be revived.
	FindByUserEvent(ctx context.Context, tx *gorm.DB, userID, eventID uuid.UUID) (*models.Reminder, error)
	Upsert(ctx context.Context, tx *gorm.DB, reminder *models.Reminder) error
	SoftDeleteByUserEvent(ctx context.Context, tx *gorm.DB, userID, eventID uuid.UUID) error
	SoftDeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error)

	ListActive(ctx context.Context, offset, limit int) ([]models.DueReminder, error)
	ClaimLead(ctx context.Context, id uuid.UUID, lead models.Lead) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, lead models.Lead) error
	MarkFailed(ctx context.Context, id uuid.UUID, lead models.Lead) error
	UpdateAggregate(ctx context.Context, id uuid.UUID, status models.ReminderStatus) error

	GetDB() *gorm.DB
}

type reminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reminderRepository) FindByUserEvent(ctx context.Context, tx *gorm.DB, userID, eventID uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := tx.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

// Upsert inserts the reminder or overwrites the preferences of the existing
// (user, event) row, reviving it if it was soft-deleted.
func (r *reminderRepository) Upsert(ctx context.Context, tx *gorm.DB, reminder *models.Reminder) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reminder_24h", "reminder_3h", "status_24h", "status_3h",
			"status", "timezone", "deleted_at", "updated_at",
		}),
	}).Create(reminder).Error
}

func (r *reminderRepository) SoftDeleteByUserEvent(ctx context.Context, tx *gorm.DB, userID, eventID uuid.UUID) error {
	return tx.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.Reminder{}).Error
}

func (r *reminderRepository) SoftDeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Reminder{})
	return res.RowsAffected == 1, res.Error
}

func (r *reminderRepository) ListActive(ctx context.Context, offset, limit int) ([]models.DueReminder, error) {
	var rows []models.DueReminder
	err := r.db.WithContext(ctx).
		Table("reminders").
		Select(`reminders.*,
			events.title AS event_title,
			events.slug AS event_slug,
			events.status AS event_status,
			events.start_date AS event_start_date,
			events.start_time AS event_start_time,
			events.venue_name AS event_venue,
			users.email AS user_email`).
		Joins("JOIN events ON events.id = reminders.event_id AND events.deleted_at IS NULL").
		Joins("JOIN users ON users.id = reminders.user_id").
		Where("reminders.deleted_at IS NULL").
		Order("reminders.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ClaimLead is the compare-and-swap that makes a send at-most-once: only
// the caller that flips the lead from pending may deliver it.
func (r *reminderRepository) ClaimLead(ctx context.Context, id uuid.UUID, lead models.Lead) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", id).
		Where(clause.Eq{Column: clause.Column{Name: lead.StatusColumn()}, Value: models.ReminderPending}).
		Update(lead.StatusColumn(), models.ReminderSent)
	return res.RowsAffected == 1, res.Error
}

func (r *reminderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, lead models.Lead) error {
	return r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			lead.SentColumn():   true,
			lead.StatusColumn(): models.ReminderSent,
			"updated_at":        time.Now(),
		}).Error
}

func (r *reminderRepository) MarkFailed(ctx context.Context, id uuid.UUID, lead models.Lead) error {
	return r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", id).
		Update(lead.StatusColumn(), models.ReminderFailed).Error
}

func (r *reminderRepository) UpdateAggregate(ctx context.Context, id uuid.UUID, status models.ReminderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id = ?", id).
		Update("status", status).Error
}
