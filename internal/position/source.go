// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package position provides the device coordinate sources the location resolver asks for the
// current position.
package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/douira/vodafone-api-crawl/internal/logger"
)

var (
	// ErrPermissionDenied is returned when the device location is unavailable, either because
	// access was refused or because no source could produce a position.
	ErrPermissionDenied = errors.New("device location is unavailable")

	ErrInvalidCoordinate = errors.New("source returned an invalid coordinate")
	ErrNoSources         = errors.New("no position source configured")
)

// Source produces the current device position.
type Source interface {
	Name() string
	Locate(ctx context.Context) (Coordinate, error)
}

// Chain asks its sources in order and returns the first valid position.
type Chain struct {
	sources []Source
	logger  *logger.Logger
}

// NewChain returns a Chain over the given sources. The order of sources is the order they are
// asked in.
func NewChain(log *logger.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, logger: log}
}

func (c *Chain) Name() string {
	return "chain"
}

// Locate returns the position of the first source that yields a valid coordinate. If no source
// succeeds the returned error wraps ErrPermissionDenied together with the causes of all sources.
func (c *Chain) Locate(ctx context.Context) (Coordinate, error) {
	if len(c.sources) == 0 {
		return Coordinate{}, fmt.Errorf("%w: %w", ErrPermissionDenied, ErrNoSources)
	}

	errs := make([]error, 0, len(c.sources))
	for _, source := range c.sources {
		coord, err := source.Locate(ctx)
		if err == nil && !coord.Valid() {
			err = ErrInvalidCoordinate
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Coordinate{}, ctxErr
			}
			c.logger.Debug("position source failed", slog.String("source", source.Name()), logger.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
			continue
		}
		c.logger.Debug("position source succeeded", slog.String("source", source.Name()),
			slog.Float64("accuracy", coord.Acc))
		return coord, nil
	}

	return Coordinate{}, fmt.Errorf("%w: %w", ErrPermissionDenied, errors.Join(errs...))
}
