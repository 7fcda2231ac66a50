// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/douira/vodafone-api-crawl/internal/http"
)

const (
	GeoIPEndpoint      = "https://reallyfreegeoip.org/json/"
	GeoIPLookupTimeout = time.Second * 5
)

// Accuracy radii in meters assumed for GeoIP results depending on the most specific field the
// lookup service returned.
const (
	AccuracyCountry = 500000
	AccuracyRegion  = 100000
	AccuracyCity    = 15000
	AccuracyZip     = 5000
)

var ErrGeoIPNoLocation = errors.New("geoip lookup returned no location")

// GeoIP estimates the device position from the public IP address. The result is far too coarse
// to resolve a building, so it is meant as the last entry of a Chain.
type GeoIP struct {
	http *http.Client
}

type geoIPResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func NewGeoIP(client *http.Client) *GeoIP {
	return &GeoIP{http: client}
}

func (g *GeoIP) Name() string {
	return "geoip"
}

func (g *GeoIP) Locate(ctx context.Context) (Coordinate, error) {
	result := new(geoIPResult)
	if _, err := g.http.GetWithTimeout(ctx, GeoIPEndpoint, result, nil, nil, GeoIPLookupTimeout); err != nil {
		return Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if result.CountryCode == "" {
		return Coordinate{}, ErrGeoIPNoLocation
	}

	coord := Coordinate{Lat: result.Latitude, Lon: result.Longitude, Acc: AccuracyCountry}
	switch {
	case result.ZipCode != "":
		coord.Acc = AccuracyZip
	case result.City != "":
		coord.Acc = AccuracyCity
	case result.RegionCode != "":
		coord.Acc = AccuracyRegion
	}
	return coord, nil
}
