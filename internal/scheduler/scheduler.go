// Package scheduler fires the reminder dispatch endpoint on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Trigger POSTs to the dispatch endpoint with the shared cron secret.
type Trigger struct {
	url    string
	secret string
	client *http.Client
	log    zerolog.Logger
}

func NewTrigger(url, secret string, log zerolog.Logger) *Trigger {
	return &Trigger{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Minute},
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Fire runs one trigger. A 409 means a run is already in progress
// and is not an error.
func (t *Trigger) Fire(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.secret)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post dispatch: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusConflict:
		t.log.Info().Msg("dispatch already running, skipped")
		return nil
	case resp.StatusCode >= 300:
		return fmt.Errorf("dispatch returned %d: %s", resp.StatusCode, body)
	}
	t.log.Info().Bytes("summary", body).Msg("dispatch triggered")
	return nil
}

// New schedules trigger on spec, evaluated in loc. Overlapping ticks are
// skipped while a previous trigger is still waiting on the server.
func New(spec string, loc *time.Location, trigger *Trigger, log zerolog.Logger) (*cron.Cron, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		if err := trigger.Fire(ctx); err != nil {
			log.Error().Err(err).Msg("dispatch trigger failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
