package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/eventsdhaka/discovery/internal/models"
)

var (
	ErrUnauthenticated         = errors.New("authentication required")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidInput            = errors.New("invalid input")
	ErrEventNotFound           = errors.New("event not found")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrStatusConflict          = errors.New("event status changed concurrently, retry")
	ErrEventLocked             = errors.New("event can no longer be changed by its organizer")
	ErrNotSaveable             = errors.New("event is not open for saving")
	ErrOrganizerProfileMissing = errors.New("organizer profile not found, create organizer profile first")
	ErrReminderNotFound        = errors.New("reminder not found")
	ErrInvalidReminderOption   = errors.New("invalid reminder option")
	ErrInvalidTimezone         = errors.New("invalid timezone")
	ErrReportNotFound          = errors.New("report not found")
	ErrInvalidReportTransition = errors.New("invalid report transition")
	ErrReportConflict          = errors.New("report status changed concurrently, retry")
)

// Identity is the caller as resolved by the identity middleware.
// A zero UserID means an anonymous visitor.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

func (i Identity) Authenticated() bool {
	return i.UserID != uuid.Nil
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated() && i.Role == models.RoleAdmin
}

func (i Identity) IsOrganizer() bool {
	return i.Authenticated() && (i.Role == models.RoleOrganizer || i.Role == models.RoleAdmin)
}

// Publisher emits domain events. A nil Publisher disables publishing.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func (p Page[T]) HasNext() bool {
	return int64(p.Page)*int64(p.Limit) < p.Total
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
