package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventsdhaka/discovery/internal/dedup"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/reminder"
	"github.com/eventsdhaka/discovery/internal/service"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type PaginatedResponse[T any] struct {
	Data    []T   `json:"data"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	HasNext bool  `json:"hasNext"`
}

type EventResponse struct {
	ID            uuid.UUID          `json:"id"`
	Slug          string             `json:"slug"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Category      string             `json:"category"`
	Subcategory   string             `json:"subcategory,omitempty"`
	Area          string             `json:"area"`
	VenueName     string             `json:"venue_name"`
	VenueAddress  string             `json:"venue_address,omitempty"`
	PriceType     models.PriceType   `json:"price_type"`
	PriceAmount   decimal.Decimal    `json:"price_amount"`
	TicketLink    string             `json:"ticket_link,omitempty"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	StartTime     string             `json:"start_time,omitempty"`
	EndTime       string             `json:"end_time,omitempty"`
	Status        models.EventStatus `json:"status"`
	Verified      bool               `json:"verified"`
	OrganizerID   *uuid.UUID         `json:"organizer_id,omitempty"`
	OrganizerName string             `json:"organizer_name,omitempty"`
	Deleted       bool               `json:"deleted,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func ToEventResponse(e *models.Event) EventResponse {
	resp := EventResponse{
		ID:           e.ID,
		Slug:         e.Slug,
		Title:        e.Title,
		Description:  e.Description,
		Category:     e.Category,
		Subcategory:  e.Subcategory,
		Area:         e.Area,
		VenueName:    e.VenueName,
		VenueAddress: e.VenueAddress,
		PriceType:    e.PriceType,
		PriceAmount:  e.PriceAmount,
		TicketLink:   e.TicketLink,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Status:       e.Status,
		Verified:     e.Verified,
		OrganizerID:  e.OrganizerID,
		Deleted:      e.DeletedAt.Valid,
		CreatedAt:    e.CreatedAt,
	}
	if e.Organizer != nil {
		resp.OrganizerName = e.Organizer.Name
	}
	return resp
}

func ToEventPage(p service.Page[models.Event]) PaginatedResponse[EventResponse] {
	data := make([]EventResponse, len(p.Items))
	for i := range p.Items {
		data[i] = ToEventResponse(&p.Items[i])
	}
	return PaginatedResponse[EventResponse]{
		Data:    data,
		Total:   p.Total,
		Page:    p.Page,
		Limit:   p.Limit,
		HasNext: p.HasNext(),
	}
}

type DuplicateResponse struct {
	ID         uuid.UUID `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	StartDate  time.Time `json:"start_date"`
	VenueName  string    `json:"venue_name"`
	Similarity float64   `json:"similarity,omitempty"`
}

func toDuplicate(c *dedup.Candidate, similarity float64) *DuplicateResponse {
	if c == nil {
		return nil
	}
	return &DuplicateResponse{
		ID:         c.ID,
		Slug:       c.Slug,
		Title:      c.Title,
		StartDate:  c.StartDate,
		VenueName:  c.VenueName,
		Similarity: similarity,
	}
}

type SubmissionResponse struct {
	Event             EventResponse      `json:"event"`
	PossibleDuplicate bool               `json:"possible_duplicate"`
	Duplicate         *DuplicateResponse `json:"duplicate,omitempty"`
}

func ToSubmissionResponse(c *service.Created) SubmissionResponse {
	return SubmissionResponse{
		Event:             ToEventResponse(c.Event),
		PossibleDuplicate: c.Duplicate.IsDuplicate,
		Duplicate:         toDuplicate(c.Duplicate.Matched, c.Duplicate.Similarity),
	}
}

type QualityResponse struct {
	Valid     bool               `json:"valid"`
	Errors    []string           `json:"errors"`
	Warnings  []string           `json:"warnings"`
	Duplicate *DuplicateResponse `json:"duplicate"`
}

func ToQualityResponse(r *service.QualityReport) QualityResponse {
	resp := QualityResponse{
		Valid:     r.Valid,
		Errors:    r.Errors,
		Warnings:  r.Warnings,
		Duplicate: toDuplicate(r.Duplicate, 0),
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}

type ReminderResponse struct {
	ID          uuid.UUID             `json:"id"`
	EventID     uuid.UUID             `json:"event_id"`
	Reminder24h bool                  `json:"reminder_24h"`
	Reminder3h  bool                  `json:"reminder_3h"`
	Option      reminder.Option       `json:"option"`
	Status      models.ReminderStatus `json:"status"`
	Status24h   models.ReminderStatus `json:"status_24h"`
	Status3h    models.ReminderStatus `json:"status_3h"`
	Timezone    string                `json:"timezone"`
}

func ToReminderResponse(r *models.Reminder) *ReminderResponse {
	if r == nil {
		return nil
	}
	return &ReminderResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		Reminder24h: r.Reminder24h,
		Reminder3h:  r.Reminder3h,
		Option:      reminder.OptionOf(r.Reminder24h, r.Reminder3h),
		Status:      r.Status,
		Status24h:   r.Status24h,
		Status3h:    r.Status3h,
		Timezone:    r.Timezone,
	}
}

type SaveResponse struct {
	Success  bool              `json:"success"`
	Saved    bool              `json:"saved"`
	Reminder *ReminderResponse `json:"reminder,omitempty"`
}

type SavedEventResponse struct {
	ID      uuid.UUID      `json:"id"`
	EventID uuid.UUID      `json:"event_id"`
	SavedAt time.Time      `json:"saved_at"`
	Event   *EventResponse `json:"event,omitempty"`
}

func ToSavedEventResponse(s *models.SavedEvent) SavedEventResponse {
	resp := SavedEventResponse{ID: s.ID, EventID: s.EventID, SavedAt: s.CreatedAt}
	if s.Event != nil {
		ev := ToEventResponse(s.Event)
		resp.Event = &ev
	}
	return resp
}

type ReportResponse struct {
	ID          uuid.UUID           `json:"id"`
	EventID     uuid.UUID           `json:"event_id"`
	Reason      string              `json:"reason"`
	Description string              `json:"description,omitempty"`
	Status      models.ReportStatus `json:"status"`
	ReviewedBy  *uuid.UUID          `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func ToReportResponse(r *models.EventReport) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      r.Status,
		ReviewedBy:  r.ReviewedBy,
		ReviewedAt:  r.ReviewedAt,
		CreatedAt:   r.CreatedAt,
	}
}

type DispatchResponse struct {
	Success bool `json:"success"`
	reminder.Summary
}

type DigestResponse struct {
	Title       string          `json:"title"`
	Events      []EventResponse `json:"events"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func ToDigestResponse(d *service.Digest) DigestResponse {
	events := make([]EventResponse, len(d.Events))
	for i := range d.Events {
		events[i] = ToEventResponse(&d.Events[i])
	}
	return DigestResponse{Title: d.Title, Events: events, From: d.From, To: d.To, GeneratedAt: d.GeneratedAt}
}
