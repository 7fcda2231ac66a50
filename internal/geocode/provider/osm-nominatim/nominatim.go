// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package nominatim implements geocode.Geocoder for the OpenStreetMap Nominatim API and the
// Nominatim compatible LocationIQ API.
package nominatim

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/douira/vodafone-api-crawl/internal/geocode"
	"github.com/douira/vodafone-api-crawl/internal/http"
	"github.com/douira/vodafone-api-crawl/internal/position"
)

const (
	APISearchEndpoint  = "https://nominatim.openstreetmap.org/search"
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	APITimeout         = time.Second * 10
	name               = "osm-nominatim"

	LocationIQSearchEndpoint  = "https://eu1.locationiq.com/v1/search.php"
	LocationIQReverseEndpoint = "https://eu1.locationiq.com/v1/reverse.php"
	locationIQName            = "locationiq"
)

type Nominatim struct {
	http            *http.Client
	lang            language.Tag
	name            string
	reverseEndpoint string
	searchEndpoint  string
	params          url.Values
}

type ReverseResult struct {
	APILat      string     `json:"lat"`
	APILon      string     `json:"lon"`
	OSMID       geocode.ID `json:"osm_id"`
	OSMType     string     `json:"osm_type"`
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Address     Address    `json:"address"`
	Error       string     `json:"error"`
}

type SearchResult struct {
	APILat      string     `json:"lat"`
	APILon      string     `json:"lon"`
	OSMID       geocode.ID `json:"osm_id"`
	DisplayName string     `json:"display_name"`
}

type Address struct {
	HouseNumber  string `json:"house_number"`
	Road         string `json:"road"`
	Suburb       string `json:"suburb"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	State        string `json:"state"`
	ISO31662Lvl4 string `json:"ISO3166-2-lvl4"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

// New returns a geocoder for the public Nominatim instance.
func New(client *http.Client, lang language.Tag) *Nominatim {
	return &Nominatim{
		http:            client,
		lang:            lang,
		name:            name,
		reverseEndpoint: APIReverseEndpoint,
		searchEndpoint:  APISearchEndpoint,
	}
}

// NewLocationIQ returns a geocoder for the LocationIQ API authenticated with apiKey.
func NewLocationIQ(client *http.Client, lang language.Tag, apiKey string) *Nominatim {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("format", "json")
	return &Nominatim{
		http:            client,
		lang:            lang,
		name:            locationIQName,
		reverseEndpoint: LocationIQReverseEndpoint,
		searchEndpoint:  LocationIQSearchEndpoint,
		params:          params,
	}
}

func (n *Nominatim) Name() string {
	return n.name
}

func (n *Nominatim) Reverse(ctx context.Context, coords position.Coordinate, countryFilter string) (geocode.Address, error) {
	var result ReverseResult
	var err error

	query := n.query()
	query.Set("lat", fmt.Sprintf("%f", coords.Lat))
	query.Set("lon", fmt.Sprintf("%f", coords.Lon))
	query.Set("addressdetails", "1")
	if countryFilter != "" {
		query.Set("countrycodes", strings.ToLower(countryFilter))
	}

	code, err := n.http.GetWithTimeout(ctx, n.reverseEndpoint, &result, query, nil, APITimeout)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to fetch reverse address details from %s API: %w", n.name, err)
	}
	if result.Error != "" {
		return geocode.Address{}, fmt.Errorf("%w: %s", geocode.ErrLookupFailure, result.Error)
	}
	if code != stdhttp.StatusOK {
		return geocode.Address{}, fmt.Errorf("%s API returned unexpected status code %d", n.name, code)
	}

	// Fill the geocode.Address struct
	address := geocode.Address{
		DisplayName: result.DisplayName,
		Country:     result.Address.Country,
		CountryCode: strings.ToLower(result.Address.CountryCode),
		State:       result.Address.State,
		City:        result.Address.City,
		Postcode:    result.Address.Postcode,
		Street:      result.Address.Road,
		HouseNumber: result.Address.HouseNumber,
		ExternalID:  result.OSMID.String(),
	}
	if result.Address.City == "" && result.Address.Town != "" {
		address.City = result.Address.Town
	}
	if result.Address.City == "" && result.Address.Town == "" && result.Address.Village != "" {
		address.City = result.Address.Village
	}
	address.Latitude, err = strconv.ParseFloat(result.APILat, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse latitude from %s API response: %w", n.name, err)
	}
	address.Longitude, err = strconv.ParseFloat(result.APILon, 64)
	if err != nil {
		return geocode.Address{}, fmt.Errorf("failed to parse longitude from %s API response: %w", n.name, err)
	}

	return address, nil
}

func (n *Nominatim) Search(ctx context.Context, address string) ([]geocode.Place, error) {
	var result []SearchResult

	query := n.query()
	query.Set("q", address)

	code, err := n.http.GetWithTimeout(ctx, n.searchEndpoint, &result, query, nil, APITimeout)
	// LocationIQ answers unmatched queries with 404 and an error object instead of a list
	if code == stdhttp.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", geocode.ErrLookupFailure, address)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch address details from %s API: %w", n.name, err)
	}
	if code != stdhttp.StatusOK {
		return nil, fmt.Errorf("%s API returned unexpected status code %d", n.name, code)
	}

	places := make([]geocode.Place, 0, len(result))
	for _, entry := range result {
		place := geocode.Place{ExternalID: entry.OSMID.String(), DisplayName: entry.DisplayName}
		place.Latitude, err = strconv.ParseFloat(entry.APILat, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse latitude from %s API response: %w", n.name, err)
		}
		place.Longitude, err = strconv.ParseFloat(entry.APILon, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse longitude from %s API response: %w", n.name, err)
		}
		places = append(places, place)
	}
	return places, nil
}

func (n *Nominatim) query() url.Values {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("accept-language", n.lang.String())
	for key, vals := range n.params {
		query[key] = append([]string(nil), vals...)
	}
	return query
}
