package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/reminder"
	"github.com/eventsdhaka/discovery/internal/service"
)

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type VerifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

type ResolveReportRequest struct {
	Status string `json:"status"`
}

type CreateReportRequest struct {
	Reason      string `json:"reason" validate:"required,max=80"`
	Description string `json:"description" validate:"max=1000"`
}

type ClickRequest struct {
	Source string `json:"source" validate:"max=40"`
}

type ReminderRequest struct {
	EventID     string `json:"event_id" validate:"required,uuid"`
	Reminder24h *bool  `json:"reminder_24h"`
	Reminder3h  *bool  `json:"reminder_3h"`
	Timezone    string `json:"timezone" validate:"timezone"`
	Option      string `json:"option" validate:"omitempty,oneof=off 24h 3h both"`
}

func (r ReminderRequest) ToService() service.ReminderRequest {
	return service.ReminderRequest{
		EventID:     uuid.MustParse(r.EventID),
		Reminder24h: r.Reminder24h,
		Reminder3h:  r.Reminder3h,
		Timezone:    r.Timezone,
		Option:      reminder.Option(r.Option),
	}
}

// EventSubmissionRequest is the organizer and admin event form.
// Dates are YYYY-MM-DD; end_date defaults to start_date.
type EventSubmissionRequest struct {
	Title        string          `json:"title" validate:"required,max=500"`
	Description  string          `json:"description" validate:"max=5000"`
	Category     string          `json:"category" validate:"required"`
	Subcategory  string          `json:"subcategory"`
	Area         string          `json:"area" validate:"required"`
	VenueName    string          `json:"venue_name" validate:"required"`
	VenueAddress string          `json:"venue_address"`
	PriceType    string          `json:"price_type" validate:"omitempty,oneof=free paid"`
	PriceAmount  decimal.Decimal `json:"price_amount"`
	TicketLink   string          `json:"ticket_link" validate:"omitempty,url"`
	StartDate    string          `json:"start_date" validate:"required"`
	EndDate      string          `json:"end_date"`
	StartTime    string          `json:"start_time" validate:"clock"`
	EndTime      string          `json:"end_time" validate:"clock"`
}

// EventUpdateRequest is the organizer edit form. Status is optional and may
// only move a draft to pending.
type EventUpdateRequest struct {
	EventSubmissionRequest
	Status string `json:"status" validate:"omitempty,oneof=draft pending"`
}

func (r EventUpdateRequest) ToEdit() service.EventEdit {
	edit := service.EventEdit{Submission: r.ToSubmission()}
	if r.Status != "" {
		status := models.EventStatus(r.Status)
		edit.Status = &status
	}
	return edit
}

func (r EventSubmissionRequest) ToSubmission() service.Submission {
	return service.Submission{
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Subcategory:  r.Subcategory,
		Area:         r.Area,
		VenueName:    r.VenueName,
		VenueAddress: r.VenueAddress,
		PriceType:    models.PriceType(r.PriceType),
		PriceAmount:  r.PriceAmount,
		TicketLink:   r.TicketLink,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
	}
}
