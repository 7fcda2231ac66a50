// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cache

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/douira/vodafone-api-crawl/internal/logger"
)

func TestStartJanitor(t *testing.T) {
	t.Run("expired entries are purged periodically", func(t *testing.T) {
		store := NewMemory(10, time.Millisecond)
		_ = store.Set(t.Context(), "a", []byte("1"))
		_ = store.Set(t.Context(), "b", []byte("2"))

		janitor, err := StartJanitor(t.Context(), store, time.Millisecond*20,
			logger.NewLogger(slog.LevelDebug, io.Discard))
		if err != nil {
			t.Fatalf("failed to start janitor: %s", err)
		}
		defer func() {
			if err := janitor.Shutdown(); err != nil {
				t.Errorf("failed to shut down janitor: %s", err)
			}
		}()

		deadline := time.Now().Add(time.Second * 5)
		for store.Len() > 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond * 10)
		}
		if store.Len() != 0 {
			t.Errorf("expected all entries to be purged, got %d", store.Len())
		}
	})
	t.Run("invalid interval fails", func(t *testing.T) {
		_, err := StartJanitor(t.Context(), NewMemory(1, 0), 0, logger.NewLogger(slog.LevelDebug, io.Discard))
		if err == nil {
			t.Error("expected janitor with zero interval to fail")
		}
	})
}
