package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/models"
)

type ClickRepository interface {
	Create(ctx context.Context, click *models.EventClick) error
	CountClicksSince(ctx context.Context, eventIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
}

type clickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(ctx context.Context, click *models.EventClick) error {
	return r.db.WithContext(ctx).Create(click).Error
}

func (r *clickRepository) CountClicksSince(ctx context.Context, eventIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.EventClick{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ? AND created_at >= ?", eventIDs, since).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCountMap(rows), nil
}

// Popularity joins click and save counts for the trending scorer.
type Popularity struct {
	ClickRepository
	SaveRepository
}
