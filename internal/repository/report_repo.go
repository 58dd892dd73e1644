package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/models"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.EventReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.EventReport, error)
	// Resolve applies a reviewed transition only if the report is still in from.
	Resolve(ctx context.Context, id uuid.UUID, from, to models.ReportStatus, reviewer uuid.UUID, at time.Time) (bool, error)
	List(ctx context.Context, status *models.ReportStatus) ([]models.EventReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.EventReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.EventReport, error) {
	var report models.EventReport
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) Resolve(ctx context.Context, id uuid.UUID, from, to models.ReportStatus, reviewer uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.EventReport{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":      to,
			"reviewed_by": reviewer,
			"reviewed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *reportRepository) List(ctx context.Context, status *models.ReportStatus) ([]models.EventReport, error) {
	var reports []models.EventReport
	q := r.db.WithContext(ctx)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
