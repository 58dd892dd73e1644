package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/lifecycle"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/repository"
)

const (
	reasonMaxLength      = 80
	descriptionMaxLength = 1000
)

type ReportService interface {
	Create(ctx context.Context, who Identity, eventID uuid.UUID, reason, description string) (*models.EventReport, error)
	Resolve(ctx context.Context, who Identity, id uuid.UUID, status string) (*models.EventReport, error)
	List(ctx context.Context, who Identity, status string) ([]models.EventReport, error)
}

type reportService struct {
	reports   repository.ReportRepository
	events    repository.EventRepository
	publisher Publisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewReportService(reports repository.ReportRepository, events repository.EventRepository, publisher Publisher, log zerolog.Logger) ReportService {
	return &reportService{
		reports:   reports,
		events:    events,
		publisher: publisher,
		log:       log.With().Str("component", "report_service").Logger(),
		now:       time.Now,
	}
}

// Create files a report against a live event. Anonymous reports are kept
// without a user id.
func (s *reportService) Create(ctx context.Context, who Identity, eventID uuid.UUID, reason, description string) (*models.EventReport, error) {
	reason = filter.SanitizeText(reason, reasonMaxLength)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}

	report := &models.EventReport{
		EventID:     eventID,
		Reason:      reason,
		Description: filter.SanitizeText(description, descriptionMaxLength),
		Status:      models.ReportOpen,
	}
	if who.Authenticated() {
		uid := who.UserID
		report.UserID = &uid
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

func (s *reportService) Resolve(ctx context.Context, who Identity, id uuid.UUID, status string) (*models.EventReport, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	to, err := lifecycle.NormalizeReportStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReportTransition, err)
	}

	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("find report: %w", err)
	}

	from := report.Status
	if !lifecycle.CanTransitionReport(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidReportTransition, from, to)
	}
	if from == to {
		return report, nil
	}

	at := s.now().UTC()
	ok, err := s.reports.Resolve(ctx, id, from, to, who.UserID, at)
	if err != nil {
		return nil, fmt.Errorf("resolve report: %w", err)
	}
	if !ok {
		return nil, ErrReportConflict
	}

	reviewer := who.UserID
	report.Status, report.ReviewedBy, report.ReviewedAt = to, &reviewer, &at
	if s.publisher != nil {
		if err := s.publisher.Publish("report.resolved", report); err != nil {
			s.log.Warn().Err(err).Str("report_id", id.String()).Msg("publish report.resolved")
		}
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, who Identity, status string) ([]models.EventReport, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	var filterBy *models.ReportStatus
	if status = strings.TrimSpace(status); status != "" {
		st := models.ReportStatus(strings.ToLower(status))
		switch st {
		case models.ReportOpen, models.ReportReviewed, models.ReportResolved:
			filterBy = &st
		default:
			return nil, fmt.Errorf("%w: unknown report status %q", ErrInvalidInput, status)
		}
	}
	reports, err := s.reports.List(ctx, filterBy)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
