package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/models"
)

type Order string

const (
	OrderSoonest Order = "soonest"
	OrderRecent  Order = "recent"
)

type SearchOptions struct {
	Now    time.Time
	Loc    *time.Location
	Order  Order
	Offset int
	Limit  int
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	FindPublicByID(ctx context.Context, id uuid.UUID, now time.Time) (*models.Event, error)
	FindPublicBySlug(ctx context.Context, slug string, now time.Time) (*models.Event, error)
	// UpdateStatus moves a live event from one status to another and
	// reports whether the row was still in the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) (bool, error)
	// UpdateDetails rewrites the editable fields and status of a live event
	// that is still in status from.
	UpdateDetails(ctx context.Context, event *models.Event, from models.EventStatus) (bool, error)
	// SoftDelete hides a live event that is still in status from.
	SoftDelete(ctx context.Context, id uuid.UUID, from models.EventStatus) (bool, error)
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	DuplicateCandidates(ctx context.Context, start time.Time, window time.Duration, now time.Time) ([]models.Event, error)
	Search(ctx context.Context, f filter.FilterSet, opts SearchOptions) ([]models.Event, int64, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID, offset, limit int) ([]models.Event, int64, error)
	AdminList(ctx context.Context, f AdminFilter, offset, limit int) ([]models.Event, int64, error)
}

// AdminFilter narrows the moderation listing. Soft-deleted events are only
// returned when IncludeDeleted is set.
type AdminFilter struct {
	Status         models.EventStatus
	OrganizerID    *uuid.UUID
	Verified       *bool
	IncludeDeleted bool
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindPublicByID(ctx context.Context, id uuid.UUID, now time.Time) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Scopes(PublicScope(now)).
		Preload("Organizer").
		Where("events.id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindPublicBySlug(ctx context.Context, slug string, now time.Time) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Scopes(PublicScope(now)).
		Preload("Organizer").
		Where("events.slug = ?", slug).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *eventRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("verified", verified)
	return res.RowsAffected == 1, res.Error
}

func (r *eventRepository) UpdateDetails(ctx context.Context, event *models.Event, from models.EventStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND status = ?", event.ID, from).
		Updates(map[string]any{
			"title":         event.Title,
			"description":   event.Description,
			"category":      event.Category,
			"subcategory":   event.Subcategory,
			"area":          event.Area,
			"venue_name":    event.VenueName,
			"venue_address": event.VenueAddress,
			"price_type":    event.PriceType,
			"price_amount":  event.PriceAmount,
			"ticket_link":   event.TicketLink,
			"start_date":    event.StartDate,
			"end_date":      event.EndDate,
			"start_time":    event.StartTime,
			"end_time":      event.EndTime,
			"status":        event.Status,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *eventRepository) SoftDelete(ctx context.Context, id uuid.UUID, from models.EventStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, from).
		Delete(&models.Event{})
	return res.RowsAffected == 1, res.Error
}

// SlugsWithPrefix includes soft-deleted events: their slugs stay reserved.
// Matching ignores case.
func (r *eventRepository) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	base = strings.ToLower(base)
	var slugs []string
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Event{}).
		Where("lower(slug) = ? OR lower(slug) LIKE ?", base, escapeLike(base)+"-%").
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *eventRepository) DuplicateCandidates(ctx context.Context, start time.Time, window time.Duration, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Scopes(PublicScope(now)).
		Where("events.start_date BETWEEN ? AND ?", start.Add(-window), start.Add(window)).
		Order("events.start_date ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Search(ctx context.Context, f filter.FilterSet, opts SearchOptions) ([]models.Event, int64, error) {
	loc := opts.Loc
	if loc == nil {
		loc = time.UTC
	}
	base := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Scopes(PublicScope(opts.Now), FilterScope(f, opts.Now, loc))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := base.Session(&gorm.Session{}).Preload("Organizer")
	switch opts.Order {
	case OrderSoonest:
		q = q.Order("events.start_date ASC").Order("events.id ASC")
	default:
		q = q.Order("events.created_at DESC").Order("events.id ASC")
	}

	var events []models.Event
	if err := q.Offset(opts.Offset).Limit(opts.Limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, offset, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{}).Where("organizer_id = ?", organizerID)
	return paginate(q, "created_at DESC", offset, limit)
}

func (r *eventRepository) AdminList(ctx context.Context, f AdminFilter, offset, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{})
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OrganizerID != nil {
		q = q.Where("organizer_id = ?", *f.OrganizerID)
	}
	if f.Verified != nil {
		q = q.Where("verified = ?", *f.Verified)
	}
	return paginate(q.Preload("Organizer"), "created_at DESC", offset, limit)
}

func paginate(q *gorm.DB, order string, offset, limit int) ([]models.Event, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var events []models.Event
	if err := q.Session(&gorm.Session{}).Order(order).Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
