package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/calendar"
	"github.com/eventsdhaka/discovery/internal/dedup"
	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/lifecycle"
	"github.com/eventsdhaka/discovery/internal/metrics"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/repository"
	"github.com/eventsdhaka/discovery/internal/slug"
	"github.com/eventsdhaka/discovery/internal/trending"
)

const (
	// trendingPool bounds how many recent candidates are ranked in memory.
	trendingPool = 500

	digestTitle = "This Weekend in Dhaka"
	digestLimit = 20

	titleMaxLength   = 140
	defaultStartTime = "18:00:00"
	dateLayout       = "2006-01-02"
)

// Submission is an event as entered by an organizer or an admin.
// Dates are calendar days (YYYY-MM-DD) in the service timezone.
type Submission struct {
	Title        string
	Description  string
	Category     string
	Subcategory  string
	Area         string
	VenueName    string
	VenueAddress string
	PriceType    models.PriceType
	PriceAmount  decimal.Decimal
	TicketLink   string
	StartDate    string
	EndDate      string
	StartTime    string
	EndTime      string
}

// EventEdit replaces the details of an event its organizer still controls.
// A nil Status keeps the current status.
type EventEdit struct {
	Submission
	Status *models.EventStatus
}

// Digest is a draft of the weekend newsletter: the newest published events
// running entirely within the coming Saturday and Sunday.
type Digest struct {
	Title       string
	Events      []models.Event
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
}

// Created is a stored submission together with its duplicate check.
type Created struct {
	Event     *models.Event
	Duplicate dedup.Result
}

// QualityReport is the dry-run check of a submission.
type QualityReport struct {
	Valid     bool
	Errors    []string
	Warnings  []string
	Duplicate *dedup.Candidate
}

type StatusChange struct {
	EventID uuid.UUID          `json:"event_id"`
	From    models.EventStatus `json:"from"`
	To      models.EventStatus `json:"to"`
	Actor   lifecycle.Actor    `json:"actor"`
	UserID  uuid.UUID          `json:"user_id"`
	At      time.Time          `json:"at"`
}

type EventService interface {
	Get(ctx context.Context, idOrSlug string) (*models.Event, error)
	Browse(ctx context.Context, f filter.FilterSet) (Page[models.Event], error)
	ChangeStatus(ctx context.Context, who Identity, id uuid.UUID, to models.EventStatus) (*models.Event, error)
	SetVerified(ctx context.Context, who Identity, id uuid.UUID, verified bool) (*models.Event, error)
	SubmitAsOrganizer(ctx context.Context, who Identity, in Submission) (*Created, error)
	CreateDraft(ctx context.Context, who Identity, in Submission) (*Created, error)
	CheckQuality(ctx context.Context, in Submission) (*QualityReport, error)
	ListOwn(ctx context.Context, who Identity, page, limit int) (Page[models.Event], error)
	UpdateOwn(ctx context.Context, who Identity, id uuid.UUID, edit EventEdit) (*models.Event, error)
	DeleteOwn(ctx context.Context, who Identity, id uuid.UUID) error
	AdminList(ctx context.Context, who Identity, f repository.AdminFilter, page, limit int) (Page[models.Event], error)
	WeekendDigest(ctx context.Context, who Identity) (*Digest, error)
	ExportCalendar(ctx context.Context, idOrSlug string) (*calendar.Export, error)
	RecordClick(ctx context.Context, who Identity, id uuid.UUID, source string) error
}

type eventService struct {
	events    repository.EventRepository
	users     repository.UserRepository
	clicks    repository.ClickRepository
	scorer    *trending.Scorer
	publisher Publisher
	loc       *time.Location
	siteHost  string
	log       zerolog.Logger
	now       func() time.Time
}

func NewEventService(
	events repository.EventRepository,
	users repository.UserRepository,
	clicks repository.ClickRepository,
	scorer *trending.Scorer,
	publisher Publisher,
	loc *time.Location,
	siteHost string,
	log zerolog.Logger,
) EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &eventService{
		events:    events,
		users:     users,
		clicks:    clicks,
		scorer:    scorer,
		publisher: publisher,
		loc:       loc,
		siteHost:  siteHost,
		log:       log.With().Str("component", "event_service").Logger(),
		now:       time.Now,
	}
}

func (s *eventService) Get(ctx context.Context, idOrSlug string) (*models.Event, error) {
	now := s.now()
	var (
		event *models.Event
		err   error
	)
	if id, perr := uuid.Parse(idOrSlug); perr == nil {
		event, err = s.events.FindPublicByID(ctx, id, now)
	} else {
		event, err = s.events.FindPublicBySlug(ctx, idOrSlug, now)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

func (s *eventService) Browse(ctx context.Context, f filter.FilterSet) (Page[models.Event], error) {
	page := Page[models.Event]{Page: f.Page, Limit: f.Limit}
	opts := repository.SearchOptions{Now: s.now(), Loc: s.loc, Offset: f.Offset(), Limit: f.Limit}

	switch f.Sort {
	case filter.SortSoonest:
		opts.Order = repository.OrderSoonest
	case filter.SortRecent:
		opts.Order = repository.OrderRecent
	default:
		return s.browseTrending(ctx, f, opts)
	}

	events, total, err := s.events.Search(ctx, f, opts)
	if err != nil {
		return page, fmt.Errorf("search events: %w", err)
	}
	page.Items, page.Total = events, total
	return page, nil
}

// browseTrending ranks the most recent candidates by score and pages
// through them in memory.
func (s *eventService) browseTrending(ctx context.Context, f filter.FilterSet, opts repository.SearchOptions) (Page[models.Event], error) {
	page := Page[models.Event]{Page: f.Page, Limit: f.Limit}
	opts.Order, opts.Offset, opts.Limit = repository.OrderRecent, 0, trendingPool

	events, total, err := s.events.Search(ctx, f, opts)
	if err != nil {
		return page, fmt.Errorf("search events: %w", err)
	}
	if total > int64(len(events)) {
		total = int64(len(events))
	}

	ids := make([]uuid.UUID, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	scores, err := s.scorer.ScoreEvents(ctx, ids)
	if err != nil {
		return page, fmt.Errorf("score events: %w", err)
	}
	trending.Rank(events, func(e models.Event) uuid.UUID { return e.ID }, scores)

	start := min(f.Offset(), len(events))
	end := min(start+f.Limit, len(events))
	page.Items, page.Total = events[start:end], total
	return page, nil
}

func (s *eventService) ChangeStatus(ctx context.Context, who Identity, id uuid.UUID, to models.EventStatus) (*models.Event, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsOrganizer() {
		return nil, ErrForbidden
	}

	event, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	actor := lifecycle.ActorAdmin
	if !who.IsAdmin() {
		actor = lifecycle.ActorOrganizer
		if err := s.requireOwner(ctx, who, event); err != nil {
			return nil, err
		}
	}

	from := event.Status
	res := lifecycle.ValidateTransition(from, to, actor)
	metrics.TrackTransition(string(actor), string(from), string(to), res.Valid)
	if !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, res.Message)
	}
	if from == to {
		return event, nil
	}

	ok, err := s.events.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, ErrStatusConflict
	}
	event.Status = to

	s.publish("event.status_changed", StatusChange{
		EventID: id, From: from, To: to, Actor: actor, UserID: who.UserID, At: s.now().UTC(),
	})
	s.log.Info().
		Str("event_id", id.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("actor", string(actor)).
		Msg("event status changed")
	return event, nil
}

func (s *eventService) SetVerified(ctx context.Context, who Identity, id uuid.UUID, verified bool) (*models.Event, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	event, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.events.SetVerified(ctx, id, verified)
	if err != nil {
		return nil, fmt.Errorf("set verified: %w", err)
	}
	if !ok {
		return nil, ErrEventNotFound
	}
	event.Verified = verified
	s.publish("event.verified", map[string]any{"event_id": id, "verified": verified, "user_id": who.UserID})
	return event, nil
}

func (s *eventService) SubmitAsOrganizer(ctx context.Context, who Identity, in Submission) (*Created, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsOrganizer() {
		return nil, ErrForbidden
	}
	org, err := s.users.FindOrganizerByUserID(ctx, who.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizerProfileMissing
		}
		return nil, fmt.Errorf("find organizer: %w", err)
	}
	return s.create(ctx, who, in, models.StatusPending, &org.ID)
}

// CreateDraft stores an admin-entered event as a draft, the landing state
// for extracted or imported events.
func (s *eventService) CreateDraft(ctx context.Context, who Identity, in Submission) (*Created, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.create(ctx, who, in, models.StatusDraft, nil)
}

func (s *eventService) create(ctx context.Context, who Identity, in Submission, status models.EventStatus, organizerID *uuid.UUID) (*Created, error) {
	event, err := s.build(in)
	if err != nil {
		return nil, err
	}
	event.Status = status
	event.OrganizerID = organizerID
	createdBy := who.UserID
	event.CreatedBy = &createdBy

	base := slug.Slugify(event.Title)
	taken, err := s.events.SlugsWithPrefix(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("list slugs: %w", err)
	}
	event.Slug = slug.ResolveUnique(base, taken)

	dup, err := s.checkDuplicate(ctx, event)
	if err != nil {
		return nil, err
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.publish("event.created", event)
	s.log.Info().
		Str("event_id", event.ID.String()).
		Str("slug", event.Slug).
		Str("status", string(event.Status)).
		Bool("possible_duplicate", dup.IsDuplicate).
		Msg("event created")
	return &Created{Event: event, Duplicate: dup}, nil
}

func (s *eventService) checkDuplicate(ctx context.Context, event *models.Event) (dedup.Result, error) {
	existing, err := s.events.DuplicateCandidates(ctx, event.StartDate, dedup.CandidateWindow, s.now())
	if err != nil {
		return dedup.Result{}, fmt.Errorf("load duplicate candidates: %w", err)
	}
	pool := make([]dedup.Candidate, len(existing))
	for i, e := range existing {
		pool[i] = dedup.Candidate{ID: e.ID, Slug: e.Slug, Title: e.Title, StartDate: e.StartDate, VenueName: e.VenueName}
	}
	res := dedup.NewDetector(s.loc).Check(event.Title, event.StartDate, event.VenueName, pool)
	if res.IsDuplicate {
		metrics.TrackDuplicate()
	}
	return res, nil
}

// build turns a submission into an unsaved event. The start instant is the
// start of the start day and the end instant the last second of the end day.
func (s *eventService) build(in Submission) (*models.Event, error) {
	title := filter.SanitizeText(in.Title, titleMaxLength)
	venue := strings.TrimSpace(in.VenueName)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case venue == "":
		return nil, fmt.Errorf("%w: venue name is required", ErrInvalidInput)
	case strings.TrimSpace(in.Category) == "":
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	case strings.TrimSpace(in.Area) == "":
		return nil, fmt.Errorf("%w: area is required", ErrInvalidInput)
	}

	start, err := time.ParseInLocation(dateLayout, in.StartDate, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: start date must be YYYY-MM-DD", ErrInvalidInput)
	}
	endDay := start
	if in.EndDate != "" {
		if endDay, err = time.ParseInLocation(dateLayout, in.EndDate, s.loc); err != nil {
			return nil, fmt.Errorf("%w: end date must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if endDay.Before(start) {
		return nil, fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}
	end := endDay.Add(24*time.Hour - time.Second)

	priceType := in.PriceType
	if priceType != models.PricePaid {
		priceType = models.PriceFree
	}
	startTime := in.StartTime
	if startTime == "" {
		startTime = defaultStartTime
	}
	address := strings.TrimSpace(in.VenueAddress)
	if address == "" {
		address = venue
	}

	return &models.Event{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		Subcategory:  strings.TrimSpace(in.Subcategory),
		Area:         strings.TrimSpace(in.Area),
		VenueName:    venue,
		VenueAddress: address,
		PriceType:    priceType,
		PriceAmount:  in.PriceAmount,
		TicketLink:   strings.TrimSpace(in.TicketLink),
		StartDate:    start,
		EndDate:      end,
		StartTime:    startTime,
		EndTime:      in.EndTime,
	}, nil
}

var maxReasonablePrice = decimal.NewFromInt(100000)

// CheckQuality runs the submission checks without storing anything.
func (s *eventService) CheckQuality(ctx context.Context, in Submission) (*QualityReport, error) {
	report := &QualityReport{}
	event, err := s.build(in)
	if err != nil {
		if !errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		report.Errors = append(report.Errors, strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "))
		return report, nil
	}

	if event.StartDate.Before(s.now()) {
		report.Warnings = append(report.Warnings, "start date is in the past")
	}
	if event.PriceType == models.PricePaid && !event.PriceAmount.IsPositive() {
		report.Warnings = append(report.Warnings, "paid event should have a price amount")
	}
	if event.PriceAmount.GreaterThan(maxReasonablePrice) {
		report.Warnings = append(report.Warnings, "price seems unusually high")
	}
	if event.Description != "" && len([]rune(event.Description)) < 50 {
		report.Warnings = append(report.Warnings, "description is quite short")
	}

	dup, err := s.checkDuplicate(ctx, event)
	if err != nil {
		return nil, err
	}
	if dup.IsDuplicate {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("possible duplicate: similar event found (%.0f%% similarity)", dup.Similarity*100))
		report.Duplicate = dup.Matched
	}
	report.Valid = !dup.IsDuplicate
	return report, nil
}

func (s *eventService) ListOwn(ctx context.Context, who Identity, page, limit int) (Page[models.Event], error) {
	out := Page[models.Event]{Page: page, Limit: limit}
	if !who.Authenticated() {
		return out, ErrUnauthenticated
	}
	if !who.IsOrganizer() {
		return out, ErrForbidden
	}
	org, err := s.users.FindOrganizerByUserID(ctx, who.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, ErrOrganizerProfileMissing
		}
		return out, fmt.Errorf("find organizer: %w", err)
	}
	out.Items, out.Total, err = s.events.ListByOrganizer(ctx, org.ID, offset(page, limit), limit)
	if err != nil {
		return out, fmt.Errorf("list organizer events: %w", err)
	}
	return out, nil
}

// UpdateOwn rewrites a draft or pending event. Status changes follow the
// organizer transitions. The slug is kept so shared links survive edits.
func (s *eventService) UpdateOwn(ctx context.Context, who Identity, id uuid.UUID, edit EventEdit) (*models.Event, error) {
	event, err := s.ownEditable(ctx, who, id)
	if err != nil {
		return nil, err
	}
	next, err := s.build(edit.Submission)
	if err != nil {
		return nil, err
	}

	from, to := event.Status, event.Status
	if edit.Status != nil {
		to = *edit.Status
		res := lifecycle.ValidateTransition(from, to, lifecycle.ActorOrganizer)
		metrics.TrackTransition(string(lifecycle.ActorOrganizer), string(from), string(to), res.Valid)
		if !res.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, res.Message)
		}
	}

	next.ID = event.ID
	next.Slug = event.Slug
	next.Status = to
	next.Verified = event.Verified
	next.OrganizerID = event.OrganizerID
	next.CreatedBy = event.CreatedBy
	next.CreatedAt = event.CreatedAt

	ok, err := s.events.UpdateDetails(ctx, next, from)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if !ok {
		return nil, ErrStatusConflict
	}

	s.publish("event.updated", next)
	if from != to {
		s.publish("event.status_changed", StatusChange{
			EventID: id, From: from, To: to, Actor: lifecycle.ActorOrganizer, UserID: who.UserID, At: s.now().UTC(),
		})
	}
	s.log.Info().
		Str("event_id", id.String()).
		Str("status", string(to)).
		Msg("event updated by organizer")
	return next, nil
}

// DeleteOwn soft-deletes a draft or pending event. Its slug stays reserved.
func (s *eventService) DeleteOwn(ctx context.Context, who Identity, id uuid.UUID) error {
	event, err := s.ownEditable(ctx, who, id)
	if err != nil {
		return err
	}
	ok, err := s.events.SoftDelete(ctx, id, event.Status)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if !ok {
		return ErrStatusConflict
	}
	s.publish("event.deleted", map[string]any{"event_id": id, "user_id": who.UserID})
	s.log.Info().Str("event_id", id.String()).Msg("event deleted by organizer")
	return nil
}

// ownEditable loads an event the caller may still edit: their own (any, for
// admins) and not yet past review.
func (s *eventService) ownEditable(ctx context.Context, who Identity, id uuid.UUID) (*models.Event, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsOrganizer() {
		return nil, ErrForbidden
	}
	event, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() {
		if err := s.requireOwner(ctx, who, event); err != nil {
			return nil, err
		}
	}
	if event.Status != models.StatusDraft && event.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: event is %s", ErrEventLocked, event.Status)
	}
	return event, nil
}

func (s *eventService) AdminList(ctx context.Context, who Identity, f repository.AdminFilter, page, limit int) (Page[models.Event], error) {
	out := Page[models.Event]{Page: page, Limit: limit}
	if !who.Authenticated() {
		return out, ErrUnauthenticated
	}
	if !who.IsAdmin() {
		return out, ErrForbidden
	}
	var err error
	out.Items, out.Total, err = s.events.AdminList(ctx, f, offset(page, limit), limit)
	if err != nil {
		return out, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *eventService) WeekendDigest(ctx context.Context, who Identity) (*Digest, error) {
	if !who.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if !who.IsAdmin() {
		return nil, ErrForbidden
	}
	now := s.now()
	events, _, err := s.events.Search(ctx, filter.FilterSet{ThisWeekend: true}, repository.SearchOptions{
		Now: now, Loc: s.loc, Order: repository.OrderRecent, Limit: digestLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search weekend events: %w", err)
	}
	from, to := filter.WeekendWindow(now.In(s.loc))
	return &Digest{Title: digestTitle, Events: events, From: from, To: to, GeneratedAt: now.UTC()}, nil
}

func (s *eventService) ExportCalendar(ctx context.Context, idOrSlug string) (*calendar.Export, error) {
	event, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	out := calendar.Render(event, s.loc, s.siteHost, s.now())
	return &out, nil
}

func (s *eventService) RecordClick(ctx context.Context, who Identity, id uuid.UUID, source string) error {
	if _, err := s.events.FindPublicByID(ctx, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("find event: %w", err)
	}
	click := &models.EventClick{EventID: id, Source: source}
	if click.Source == "" {
		click.Source = "event_detail"
	}
	if who.Authenticated() {
		uid := who.UserID
		click.UserID = &uid
	}
	if err := s.clicks.Create(ctx, click); err != nil {
		return fmt.Errorf("record click: %w", err)
	}
	return nil
}

func (s *eventService) findLive(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

func (s *eventService) requireOwner(ctx context.Context, who Identity, event *models.Event) error {
	org, err := s.users.FindOrganizerByUserID(ctx, who.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrganizerProfileMissing
		}
		return fmt.Errorf("find organizer: %w", err)
	}
	if event.OrganizerID == nil || *event.OrganizerID != org.ID {
		return ErrForbidden
	}
	return nil
}

func (s *eventService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.log.Warn().Err(err).Str("routing_key", routingKey).Msg("publish domain event")
	}
}
