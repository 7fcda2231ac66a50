// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the geocoding collaborator used to turn coordinates into postal
// addresses and addresses into map element ids.
package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/douira/vodafone-api-crawl/internal/position"
)

// ErrLookupFailure is returned when a geocoding provider has no result for a query.
var ErrLookupFailure = errors.New("geocoding lookup returned no result")

// Address is the reverse geocoding result for a coordinate. ExternalID is the OpenStreetMap id
// of the element the provider matched.
type Address struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	Country     string
	CountryCode string
	State       string
	City        string
	Postcode    string
	Street      string
	HouseNumber string
	ExternalID  string
}

// Place is a single forward geocoding match.
type Place struct {
	ExternalID  string
	Latitude    float64
	Longitude   float64
	DisplayName string
}

type Geocoder interface {
	Name() string
	// Reverse resolves coords into an address. A non-empty countryFilter restricts matches to
	// the given ISO 3166-1 alpha-2 country code.
	Reverse(ctx context.Context, coords position.Coordinate, countryFilter string) (Address, error)
	// Search resolves a free-form query. An empty slice means nothing matched.
	Search(ctx context.Context, query string) ([]Place, error)
}

// ID is an element id as reported by geocoding APIs, which send it either as JSON number or
// as JSON string depending on the provider.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var val string
		if err := json.Unmarshal(data, &val); err != nil {
			return fmt.Errorf("failed to unmarshal id string: %w", err)
		}
		*id = ID(val)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("failed to unmarshal id number: %w", err)
	}
	if _, err := strconv.ParseInt(num.String(), 10, 64); err != nil {
		return fmt.Errorf("id %s is not an integer: %w", num, err)
	}
	*id = ID(num.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}
