// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package osm models the raw OpenStreetMap elements returned by map data queries and turns
// their address tags into address records.
package osm

import (
	"fmt"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/vartype"
)

const (
	TagPostcode      = "addr:postcode"
	TagStreet        = "addr:street"
	TagHouseNumber   = "addr:housenumber"
	TagInterpolation = "addr:interpolation"
)

// ElementType is the OSM primitive type of an element.
type ElementType string

const (
	TypeNode     ElementType = "node"
	TypeWay      ElementType = "way"
	TypeRelation ElementType = "relation"
)

// Element is a raw map element as returned by the Overpass API. Nodes is only filled for ways.
type Element struct {
	ID    int64             `json:"id"`
	Type  ElementType       `json:"type"`
	Tags  map[string]string `json:"tags,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
}

// AddressTags holds the address tags of an element with explicit presence information.
type AddressTags struct {
	Postcode      vartype.VarString
	Street        vartype.VarString
	HouseNumber   vartype.VarString
	Interpolation vartype.VarString
}

// ElementParseError reports that a single map element could not be turned into addresses.
type ElementParseError struct {
	ElementID int64
	Type      ElementType
	Err       error
}

func (e *ElementParseError) Error() string {
	return fmt.Sprintf("failed to parse %s %d: %s", e.Type, e.ElementID, e.Err)
}

func (e *ElementParseError) Unwrap() error {
	return e.Err
}

// Tag returns the value of the tag with the given name and whether it is present.
func (e Element) Tag(name string) (string, bool) {
	val, ok := e.Tags[name]
	return val, ok
}

// AddressTags extracts the addr:* tags the crawler consumes.
func (e Element) AddressTags() AddressTags {
	return AddressTags{
		Postcode:      vartype.Lookup(e.Tags, TagPostcode),
		Street:        vartype.Lookup(e.Tags, TagStreet),
		HouseNumber:   vartype.Lookup(e.Tags, TagHouseNumber),
		Interpolation: vartype.Lookup(e.Tags, TagInterpolation),
	}
}

// HasAddress reports whether any of postcode, street or house number is tagged.
func (t AddressTags) HasAddress() bool {
	return t.Postcode.IsSet() || t.Street.IsSet() || t.HouseNumber.IsSet()
}

// ParseError wraps err into an ElementParseError for e.
func (e Element) ParseError(err error) *ElementParseError {
	return &ElementParseError{ElementID: e.ID, Type: e.Type, Err: err}
}

// ParseAddress reads the address tags of e into an address record. It returns nil if the element
// carries no address tags at all. Ranged or listed house numbers are returned verbatim.
func ParseAddress(e Element) *address.Address {
	tags := e.AddressTags()
	if !tags.HasAddress() {
		return nil
	}
	return &address.Address{
		Postcode:    tags.Postcode.Value(),
		Street:      tags.Street.Value(),
		HouseNumber: tags.HouseNumber.Value(),
	}
}
