// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taibuivan/meattrack/internal/platform/metrics"
)

// Sweeper deletes expired session rows on a cron schedule.
//
// Validation never depends on it: expired rows are already rejected when read.
type Sweeper struct {
	sessions SessionRepository
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewSweeper constructs a [Sweeper].
func NewSweeper(sessions SessionRepository, logger *slog.Logger) *Sweeper {
	return &Sweeper{sessions: sessions, logger: logger, timeout: time.Minute, now: time.Now}
}

// Sweep runs one pass and returns the number of rows removed.
func (sweeper *Sweeper) Sweep(context context.Context) (int64, error) {
	deleted, err := sweeper.sessions.DeleteExpired(context, sweeper.now().UTC())
	if err != nil {
		return 0, err
	}

	metrics.RecordSessionsSwept(deleted)
	return deleted, nil
}

/*
Start schedules the sweep with a standard 5-field cron expression.

Parameters:
  - schedule: string (e.g. "0 * * * *" or "@every 30m")

Returns:
  - *cron.Cron: The running scheduler; the caller stops it on shutdown
  - error: Invalid schedule
*/
func (sweeper *Sweeper) Start(schedule string) (*cron.Cron, error) {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweeper.timeout)
		defer cancel()

		deleted, err := sweeper.Sweep(ctx)
		if err != nil {
			sweeper.logger.Error("session_sweep_failed", slog.Any("error", err))
			return
		}
		sweeper.logger.Info("session_sweep_finished", slog.Int64("deleted", deleted))
	})
	if err != nil {
		return nil, fmt.Errorf("auth_sweeper_schedule_invalid: %w", err)
	}

	scheduler.Start()
	return scheduler, nil
}
