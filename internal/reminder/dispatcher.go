package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eventsdhaka/discovery/internal/metrics"
	"github.com/eventsdhaka/discovery/internal/models"
)

const DefaultBatchSize = 200

// A lead fires once the event start is within the lead time but no more
// than this much earlier, so an hourly run sees every reminder exactly once.
const FiringWindow = time.Hour

var ErrDispatchRunning = errors.New("reminder dispatch already running")

// Store is the reminder persistence the dispatcher needs.
type Store interface {
	ListActive(ctx context.Context, offset, limit int) ([]models.DueReminder, error)
	// ClaimLead moves a lead from pending to sent and reports whether this
	// caller won the row.
	ClaimLead(ctx context.Context, id uuid.UUID, lead models.Lead) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, lead models.Lead) error
	MarkFailed(ctx context.Context, id uuid.UUID, lead models.Lead) error
	UpdateAggregate(ctx context.Context, id uuid.UUID, status models.ReminderStatus) error
}

type Email struct {
	To         string
	EventTitle string
	EventSlug  string
	Venue      string
	StartsAt   time.Time
	Lead       models.Lead
	Timezone   string
}

type Mailer interface {
	SendReminder(ctx context.Context, email Email) error
}

// Locker guards a whole dispatch run across instances.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Summary struct {
	SentCount int       `json:"sentCount"`
	Failed    int       `json:"failedCount"`
	Scanned   int       `json:"scanned"`
	Timestamp time.Time `json:"timestamp"`
	Window24h time.Time `json:"window24h"`
	Window3h  time.Time `json:"window3h"`
}

type Delivery struct {
	ReminderID uuid.UUID   `json:"reminder_id"`
	UserID     uuid.UUID   `json:"user_id"`
	EventID    uuid.UUID   `json:"event_id"`
	Lead       models.Lead `json:"lead"`
	Error      string      `json:"error,omitempty"`
}

type Dispatcher struct {
	store     Store
	mailer    Mailer
	locker    Locker
	publisher Publisher
	loc       *time.Location
	batchSize int
	log       zerolog.Logger
	now       func() time.Time
}

// NewDispatcher builds a dispatcher that evaluates event start times in loc.
// locker and publisher may be nil.
func NewDispatcher(store Store, mailer Mailer, locker Locker, publisher Publisher, loc *time.Location, batchSize int, log zerolog.Logger) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Dispatcher{
		store:     store,
		mailer:    mailer,
		locker:    locker,
		publisher: publisher,
		loc:       loc,
		batchSize: batchSize,
		log:       log.With().Str("component", "dispatcher").Logger(),
		now:       time.Now,
	}
}

// Run walks every live reminder once and sends the leads that are due.
// Mail failures are recorded per lead and do not stop the run; store
// failures do. Cancelling ctx stops the run between reminders; a lead that
// was already claimed is always settled as delivered or failed.
func (d *Dispatcher) Run(ctx context.Context) (Summary, error) {
	started := time.Now()

	if d.locker != nil {
		ok, err := d.locker.Acquire(ctx)
		if err != nil {
			metrics.TrackDispatchRun("error", time.Since(started))
			return Summary{}, fmt.Errorf("acquire dispatch lock: %w", err)
		}
		if !ok {
			metrics.TrackDispatchRun("skipped", time.Since(started))
			return Summary{}, ErrDispatchRunning
		}
		defer func() {
			if err := d.locker.Release(context.WithoutCancel(ctx)); err != nil {
				d.log.Warn().Err(err).Msg("release dispatch lock")
			}
		}()
	}

	now := d.now()
	summary := Summary{
		Timestamp: now,
		Window24h: now.Add(models.Lead24h.Duration()),
		Window3h:  now.Add(models.Lead3h.Duration()),
	}

	for offset := 0; ; offset += d.batchSize {
		page, err := d.store.ListActive(ctx, offset, d.batchSize)
		if err != nil {
			metrics.TrackDispatchRun("error", time.Since(started))
			return summary, fmt.Errorf("list reminders at offset %d: %w", offset, err)
		}

		for i := range page {
			if err := ctx.Err(); err != nil {
				metrics.TrackDispatchRun("cancelled", time.Since(started))
				return summary, fmt.Errorf("dispatch interrupted: %w", err)
			}
			if err := d.process(ctx, &page[i], now, &summary); err != nil {
				metrics.TrackDispatchRun("error", time.Since(started))
				return summary, err
			}
		}
		summary.Scanned += len(page)

		if len(page) < d.batchSize {
			break
		}
	}

	metrics.TrackDispatchRun("ok", time.Since(started))
	d.log.Info().
		Int("sent", summary.SentCount).
		Int("failed", summary.Failed).
		Int("scanned", summary.Scanned).
		Msg("dispatch finished")
	return summary, nil
}

func (d *Dispatcher) process(ctx context.Context, r *models.DueReminder, now time.Time, summary *Summary) error {
	if r.EventStatus != models.StatusPublished || r.UserEmail == "" {
		return nil
	}

	event := models.Event{StartDate: r.EventStartDate, StartTime: r.EventStartTime}
	startsAt := event.StartsAt(d.loc)
	delta := startsAt.Sub(now)

	// Once a lead is claimed it must reach delivered or failed, otherwise it
	// stays claimed and is never retried.
	settle := context.WithoutCancel(ctx)

	touched := false
	for _, lead := range models.Leads {
		if !r.Enabled(lead) || r.Sent(lead) || r.LeadStatus(lead) != models.ReminderPending {
			continue
		}
		if !Due(delta, lead) {
			continue
		}

		claimed, err := d.store.ClaimLead(ctx, r.ID, lead)
		if err != nil {
			return fmt.Errorf("claim %s lead of reminder %s: %w", lead, r.ID, err)
		}
		if !claimed {
			continue
		}
		touched = true

		sendErr := d.mailer.SendReminder(settle, Email{
			To:         r.UserEmail,
			EventTitle: r.EventTitle,
			EventSlug:  r.EventSlug,
			Venue:      r.EventVenue,
			StartsAt:   startsAt,
			Lead:       lead,
			Timezone:   r.Timezone,
		})
		delivery := Delivery{ReminderID: r.ID, UserID: r.UserID, EventID: r.EventID, Lead: lead}

		if sendErr != nil {
			d.log.Error().Err(sendErr).
				Str("reminder_id", r.ID.String()).
				Str("lead", string(lead)).
				Msg("reminder delivery failed")
			if err := d.store.MarkFailed(settle, r.ID, lead); err != nil {
				return fmt.Errorf("mark %s lead of reminder %s failed: %w", lead, r.ID, err)
			}
			r.SetLeadStatus(lead, models.ReminderFailed)
			summary.Failed++
			metrics.TrackDelivery(string(lead), false)
			delivery.Error = sendErr.Error()
			d.publish("reminder.failed", delivery)
			continue
		}

		if err := d.store.MarkDelivered(settle, r.ID, lead); err != nil {
			return fmt.Errorf("mark %s lead of reminder %s delivered: %w", lead, r.ID, err)
		}
		r.SetLeadStatus(lead, models.ReminderSent)
		r.SetSent(lead, true)
		summary.SentCount++
		metrics.TrackDelivery(string(lead), true)
		d.publish("reminder.sent", delivery)
	}

	if !touched {
		return nil
	}
	if err := d.store.UpdateAggregate(settle, r.ID, AggregateOf(&r.Reminder)); err != nil {
		return fmt.Errorf("update status of reminder %s: %w", r.ID, err)
	}
	return nil
}

func (d *Dispatcher) publish(routingKey string, payload any) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Publish(routingKey, payload); err != nil {
		d.log.Warn().Err(err).Str("routing_key", routingKey).Msg("publish failed")
	}
}

// Due reports whether a lead fires for an event starting delta from now:
// delta must fall in (lead - FiringWindow, lead].
func Due(delta time.Duration, lead models.Lead) bool {
	target := lead.Duration()
	return delta <= target && delta > target-FiringWindow
}
