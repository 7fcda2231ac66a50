// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/douira/vodafone-api-crawl/internal/logger"
)

const janitorJobName = "cache janitor"

// Janitor periodically purges expired entries from a Memory store.
type Janitor struct {
	scheduler gocron.Scheduler
}

// StartJanitor schedules the purge of store every interval until ctx is canceled or Shutdown
// is called.
func StartJanitor(ctx context.Context, store *Memory, interval time.Duration, log *logger.Logger) (*Janitor, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	task := func(context.Context) {
		if purged := store.PurgeExpired(); purged > 0 {
			log.Debug("purged expired cache entries", slog.Int("purged", purged),
				slog.Int("remaining", store.Len()))
		}
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(janitorJobName),
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create %s: %w", janitorJobName, err), scheduler.Shutdown())
	}
	scheduler.Start()
	return &Janitor{scheduler: scheduler}, nil
}

// Shutdown stops the scheduler and waits for a running purge to finish.
func (j *Janitor) Shutdown() error {
	return j.scheduler.Shutdown()
}
