// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package radius enumerates all addresses around a known map element by combining directly
// tagged addresses with interpolated address ranges.
package radius

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/interpolate"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/osm"
	"github.com/douira/vodafone-api-crawl/internal/overpass"
)

var ErrInvalidRadius = errors.New("radius must be a finite number greater than zero")

// Querier runs a map data query and returns the raw elements.
type Querier interface {
	Query(ctx context.Context, query string) ([]osm.Element, error)
}

// Finder resolves the addresses around an origin element.
type Finder struct {
	querier  Querier
	resolver *interpolate.Resolver
	logger   *logger.Logger
}

func New(querier Querier, resolver *interpolate.Resolver, log *logger.Logger) *Finder {
	return &Finder{querier: querier, resolver: resolver, logger: log}
}

// FindAddressesInRadius fetches the direct and the interpolation elements around the element
// with originID concurrently and resolves them into a deduplicated list of addresses sorted by
// address key. The first failing query cancels the other one and its error is returned.
func (f *Finder) FindAddressesInRadius(ctx context.Context, originID int64, radius float64) ([]address.Address, error) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRadius, radius)
	}

	var direct, interpolation []osm.Element
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		elements, err := f.querier.Query(groupCtx, overpass.DirectAddressQuery(originID, radius))
		if err != nil {
			return fmt.Errorf("failed to query direct addresses: %w", err)
		}
		direct = elements
		return nil
	})
	group.Go(func() error {
		elements, err := f.querier.Query(groupCtx, overpass.InterpolationQuery(originID, radius))
		if err != nil {
			return fmt.Errorf("failed to query interpolation ways: %w", err)
		}
		interpolation = elements
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	index, stats := f.resolver.Resolve(direct, interpolation)
	f.logger.Debug("resolved addresses in radius", slog.Int64("origin", originID),
		slog.Float64("radius", radius), slog.Int("addresses", len(index)),
		slog.Int("direct", stats.Direct), slog.Int("listed", stats.Listed),
		slog.Int("expanded", stats.Expanded), slog.Int("standalone", stats.Standalone),
		slog.Int("skipped", stats.Skipped))
	return index.Addresses(), nil
}
