// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package service wires the configured position sources, geocoder, cache backend and map data
// client into the address operations used by the CLI and the HTTP server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/cache"
	"github.com/douira/vodafone-api-crawl/internal/config"
	"github.com/douira/vodafone-api-crawl/internal/http"
	"github.com/douira/vodafone-api-crawl/internal/interpolate"
	"github.com/douira/vodafone-api-crawl/internal/locate"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/overpass"
	"github.com/douira/vodafone-api-crawl/internal/radius"
)

var ErrNoOrigin = errors.New("current address has no external id to search around")

// Service is the address resolution engine assembled from the configuration.
type Service struct {
	config  *config.Config
	logger  *logger.Logger
	locator *locate.Resolver
	finder  *radius.Finder
	closers []func() error
}

// New builds a Service from conf. lang selects the language of geocoding results. Close must be
// called to release the cache backend.
func New(ctx context.Context, conf *config.Config, log *logger.Logger, lang language.Tag) (*Service, error) {
	return newService(ctx, conf, log, lang, http.New(log))
}

func newService(ctx context.Context, conf *config.Config, log *logger.Logger, lang language.Tag,
	client *http.Client,
) (*Service, error) {
	serv := &Service{config: conf, logger: log}

	sources, err := serv.selectPositionSources(client)
	if err != nil {
		return nil, err
	}
	geocoder, err := serv.selectGeocoder(client, lang)
	if err != nil {
		return nil, err
	}
	store, err := serv.selectCacheStore(ctx)
	if err != nil {
		return nil, err
	}

	adapter := cache.NewAdapter(store, log.With(slog.String("component", "cache")))
	adapter.SetLimits(conf.Cache.MaxKeySize, conf.Cache.MaxValueSize)

	locateLog := log.With(slog.String("component", "locate"))
	serv.locator = locate.New(sources, geocoder, adapter, conf.Region.CountryCode, locateLog)

	radiusLog := log.With(slog.String("component", "radius"))
	serv.finder = radius.New(overpass.New(client, radiusLog, conf.Overpass.Endpoint, conf.Overpass.Timeout),
		interpolate.New(radiusLog), radiusLog)

	log.Debug("address service initialized", slog.String("geocoder", geocoder.Name()),
		slog.String("cache", conf.Cache.Backend), slog.String("country", conf.Region.CountryCode))
	return serv, nil
}

// CurrentAddress returns the postal address at the current device position.
func (s *Service) CurrentAddress(ctx context.Context) (address.Address, error) {
	return s.locator.ResolveCurrentAddress(ctx)
}

// ExternalID returns addr with its map element id attached.
func (s *Service) ExternalID(ctx context.Context, addr address.Address) (address.Address, error) {
	return s.locator.ResolveExternalID(ctx, addr)
}

// AddressesInRadius returns all addresses within radius meters around the map element originID.
// A non-positive radius is replaced by the configured default.
func (s *Service) AddressesInRadius(ctx context.Context, originID int64, radius float64) ([]address.Address, error) {
	if radius <= 0 {
		radius = s.config.Radius.Default
	}
	return s.finder.FindAddressesInRadius(ctx, originID, radius)
}

// AddressesAroundCurrent resolves the current address and returns all addresses within radius
// meters around it.
func (s *Service) AddressesAroundCurrent(ctx context.Context, radius float64) ([]address.Address, error) {
	current, err := s.CurrentAddress(ctx)
	if err != nil {
		return nil, err
	}
	if current.ExternalID == "" {
		return nil, ErrNoOrigin
	}
	originID, err := ParseExternalID(current.ExternalID)
	if err != nil {
		return nil, err
	}
	return s.AddressesInRadius(ctx, originID, radius)
}

// Close stops background jobs and closes the cache backend.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close service: %w", errors.Join(errs...))
	}
	return nil
}
