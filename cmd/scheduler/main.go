package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventsdhaka/discovery/config"
	"github.com/eventsdhaka/discovery/internal/scheduler"
	"github.com/eventsdhaka/discovery/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	if cfg.CronSecret == "" {
		log.Fatal().Msg("CRON_SECRET is required")
	}

	trigger := scheduler.NewTrigger(cfg.SchedulerTargetURL, cfg.CronSecret, log)
	c, err := scheduler.New(cfg.SchedulerCron, cfg.Location(), trigger, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid schedule")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.Start()
	log.Info().Str("schedule", cfg.SchedulerCron).Str("target", cfg.SchedulerTargetURL).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
}
