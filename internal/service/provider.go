// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/douira/vodafone-api-crawl/internal/cache"
	"github.com/douira/vodafone-api-crawl/internal/config"
	"github.com/douira/vodafone-api-crawl/internal/geocode"
	nominatim "github.com/douira/vodafone-api-crawl/internal/geocode/provider/osm-nominatim"
	"github.com/douira/vodafone-api-crawl/internal/http"
	"github.com/douira/vodafone-api-crawl/internal/position"
)

// ParseExternalID converts an external id into the numeric map element id used as radius origin.
func ParseExternalID(id string) (int64, error) {
	originID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid external id %q: %w", id, err)
	}
	if originID <= 0 {
		return 0, fmt.Errorf("invalid external id %q: must be positive", id)
	}
	return originID, nil
}

// selectPositionSources returns the enabled sources ordered from most to least precise.
func (s *Service) selectPositionSources(client *http.Client) (*position.Chain, error) {
	var sources []position.Source

	if !s.config.GeoLocation.DisableGeolocationFile {
		sources = append(sources, position.NewFile(s.config.GeoLocation.File))
	}
	if !s.config.GeoLocation.DisableGPSD {
		sources = append(sources, position.NewGPSD(s.config.GeoLocation.GPSDAddr))
	}
	if !s.config.GeoLocation.DisableGeoClue {
		sources = append(sources, position.NewGeoClue())
	}
	if !s.config.GeoLocation.DisableGeoIP {
		sources = append(sources, position.NewGeoIP(client))
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("failed to select geolocation sources: %w", position.ErrNoSources)
	}

	return position.NewChain(s.logger, sources...), nil
}

func (s *Service) selectGeocoder(client *http.Client, lang language.Tag) (geocode.Geocoder, error) {
	switch strings.ToLower(s.config.Geocoder.Provider) {
	case config.GeocoderNominatim:
		return nominatim.New(client, lang), nil
	case config.GeocoderLocationIQ:
		if s.config.Geocoder.APIKey == "" {
			return nil, fmt.Errorf("locationiq geocoder requires an API key")
		}
		return nominatim.NewLocationIQ(client, lang, s.config.Geocoder.APIKey), nil
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", s.config.Geocoder.Provider)
	}
}

// selectCacheStore creates the configured cache backend and registers its cleanup with the
// service. The memory store is purged of expired entries by a background job.
func (s *Service) selectCacheStore(ctx context.Context) (cache.Store, error) {
	conf := s.config.Cache
	switch strings.ToLower(conf.Backend) {
	case config.CacheBackendMemory:
		store := cache.NewMemory(conf.MaxEntries, conf.TTL)
		if conf.TTL > 0 {
			janitor, err := cache.StartJanitor(ctx, store, conf.PurgeInterval, s.logger)
			if err != nil {
				return nil, err
			}
			s.closers = append(s.closers, janitor.Shutdown)
		}
		return store, nil
	case config.CacheBackendRedis:
		store, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
			Prefix:   conf.Redis.Prefix,
			TTL:      conf.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", conf.Backend)
	}
}
