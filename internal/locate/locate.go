// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package locate resolves the postal address of the device and attaches map element ids to
// known addresses. Results are cached under every key they can be looked up by.
package locate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/cache"
	"github.com/douira/vodafone-api-crawl/internal/geocode"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/position"
)

// DefaultCountryCode is the country addresses are resolved in unless configured otherwise.
const DefaultCountryCode = "de"

var houseNumberPattern = regexp.MustCompile(`\d+`)

// UnsupportedRegionError is returned when the device is located outside the supported country.
type UnsupportedRegionError struct {
	Country   string
	Supported string
}

func (e *UnsupportedRegionError) Error() string {
	return fmt.Sprintf("address must be in country %q, got %q", e.Supported, e.Country)
}

// Resolver turns device coordinates into addresses.
type Resolver struct {
	source   position.Source
	geocoder geocode.Geocoder
	cache    *cache.Adapter
	country  string
	logger   *logger.Logger
}

// New returns a Resolver restricted to addresses in country, an ISO 3166-1 alpha-2 code. An
// empty country falls back to DefaultCountryCode.
func New(source position.Source, geocoder geocode.Geocoder, adapter *cache.Adapter, country string,
	log *logger.Logger,
) *Resolver {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		country = DefaultCountryCode
	}
	return &Resolver{source: source, geocoder: geocoder, cache: adapter, country: country, logger: log}
}

// CoordinateKey returns the cache key of a coordinate, latitude and longitude rounded to
// position.KeyPrecision decimals and joined by an underscore.
func CoordinateKey(coord position.Coordinate) string {
	rounded := coord.Rounded(position.KeyPrecision)
	return strconv.FormatFloat(rounded.Lat, 'f', position.KeyPrecision, 64) + address.DefaultKeySeparator +
		strconv.FormatFloat(rounded.Lon, 'f', position.KeyPrecision, 64)
}

// ResolveCurrentAddress returns the address at the current device position. Errors of the
// position source are returned unchanged. A cached address for the rounded position is returned
// without any geocoding request.
func (r *Resolver) ResolveCurrentAddress(ctx context.Context) (address.Address, error) {
	coord, err := r.source.Locate(ctx)
	if err != nil {
		return address.Address{}, err
	}

	key := CoordinateKey(coord)
	var cached address.Address
	if r.cache.Get(ctx, key, &cached) {
		r.logger.Debug("address cache hit", slog.String("key", key))
		return cached, nil
	}

	result, err := r.geocoder.Reverse(ctx, coord, r.country)
	if err != nil {
		return address.Address{}, fmt.Errorf("failed to reverse geocode current position: %w", err)
	}
	if !strings.EqualFold(result.CountryCode, r.country) {
		return address.Address{}, &UnsupportedRegionError{Country: strings.ToLower(result.CountryCode), Supported: r.country}
	}

	addr := address.Address{
		Postcode:    result.Postcode,
		Street:      result.Street,
		HouseNumber: houseNumberPattern.FindString(result.HouseNumber),
		ExternalID:  result.ExternalID,
	}
	r.logger.Debug("resolved current address", slog.String("geocoder", r.geocoder.Name()),
		slog.String("address", addr.Key()), slog.String("external_id", addr.ExternalID))

	r.cache.Set(ctx, key, addr)
	r.cache.Set(ctx, addr.Key(), addr)
	if addr.ExternalID != "" {
		r.cache.Set(ctx, addr.ExternalID, addr)
	}
	return addr, nil
}

// ResolveExternalID returns addr with the map element id of its first forward geocoding match
// attached. Addresses already cached under their address key are returned from the cache.
func (r *Resolver) ResolveExternalID(ctx context.Context, addr address.Address) (address.Address, error) {
	key := addr.Key()
	var cached address.Address
	if r.cache.Get(ctx, key, &cached) && cached.ExternalID != "" {
		r.logger.Debug("address cache hit", slog.String("key", key))
		return cached, nil
	}

	query := strings.Join([]string{addr.Postcode, addr.Street, addr.HouseNumber}, ", ")
	places, err := r.geocoder.Search(ctx, query)
	if err != nil {
		return address.Address{}, fmt.Errorf("failed to geocode address: %w", err)
	}
	if len(places) == 0 || places[0].ExternalID == "" {
		return address.Address{}, fmt.Errorf("%w: %q", geocode.ErrLookupFailure, query)
	}

	addr.ExternalID = places[0].ExternalID
	r.cache.Set(ctx, key, addr)
	r.cache.Set(ctx, addr.ExternalID, addr)
	return addr, nil
}
