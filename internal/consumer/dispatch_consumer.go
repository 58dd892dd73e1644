package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/eventsdhaka/discovery/internal/reminder"
)

// RoutingKey triggers one reminder dispatch run.
const RoutingKey = "reminders.dispatch"

// Trigger is the optional message body. An empty body is accepted.
type Trigger struct {
	RequestedBy string    `json:"requested_by"`
	RequestedAt time.Time `json:"requested_at"`
}

type Dispatcher interface {
	Run(ctx context.Context) (reminder.Summary, error)
}

// DispatchConsumer runs the reminder dispatcher for every trigger message,
// one at a time.
type DispatchConsumer struct {
	dispatcher Dispatcher
	log        zerolog.Logger
	done       chan struct{}
	cancel     context.CancelFunc
}

func NewDispatchConsumer(dispatcher Dispatcher, log zerolog.Logger) *DispatchConsumer {
	return &DispatchConsumer{
		dispatcher: dispatcher,
		log:        log.With().Str("component", "dispatch_consumer").Logger(),
		done:       make(chan struct{}),
	}
}

func (dc *DispatchConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	cctx, cancel := context.WithCancel(ctx)
	dc.cancel = cancel

	go func() {
		defer close(dc.done)
		for {
			select {
			case <-cctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					dc.log.Info().Msg("channel closed, stopping consumer")
					return
				}
				dc.handleMessage(cctx, msg)
			}
		}
	}()
}

// Stop cancels the running dispatch, if any, and waits for the loop to exit.
func (dc *DispatchConsumer) Stop() {
	if dc.cancel != nil {
		dc.cancel()
	}
	<-dc.done
}

func (dc *DispatchConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var trigger Trigger
	if len(msg.Body) > 0 {
		if err := json.Unmarshal(msg.Body, &trigger); err != nil {
			dc.log.Error().Err(err).Str("body", string(msg.Body)).Msg("failed to unmarshal trigger")
			_ = msg.Nack(false, false)
			return
		}
	}

	summary, err := dc.dispatcher.Run(ctx)
	switch {
	case err == nil:
		dc.log.Info().
			Str("requested_by", trigger.RequestedBy).
			Int("sent", summary.SentCount).
			Int("failed", summary.Failed).
			Int("scanned", summary.Scanned).
			Msg("dispatch finished")
		_ = msg.Ack(false)
	case errors.Is(err, reminder.ErrDispatchRunning):
		// Another instance holds the run; this trigger is satisfied by it.
		dc.log.Info().Msg("dispatch already running, dropping trigger")
		_ = msg.Ack(false)
	default:
		dc.log.Error().Err(err).Msg("dispatch failed")
		_ = msg.Nack(false, false)
	}
}
