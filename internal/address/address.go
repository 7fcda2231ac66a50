// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package address holds the postal address record used throughout the crawler, the identity
// key derived from it and the expansion of interpolated house number ranges.
package address

import (
	"sort"
	"strings"
)

// DefaultKeySeparator joins the identity fields of an address into a key.
const DefaultKeySeparator = "_"

// RangeKind selects the stepping rule of an interpolated address range. Besides the named kinds,
// any positive integer in string form is a valid kind and denotes the step width.
type RangeKind string

const (
	RangeAll        RangeKind = "all"
	RangeOdd        RangeKind = "odd"
	RangeEven       RangeKind = "even"
	RangeAlphabetic RangeKind = "alphabetic"
)

// Address is a single postal address. HouseNumber is always a string so that suffixes like
// "12a" survive.
type Address struct {
	Postcode      string    `json:"postcode"`
	Street        string    `json:"street"`
	HouseNumber   string    `json:"housenumber"`
	ExternalID    string    `json:"externalId,omitempty"`
	Interpolated  RangeKind `json:"interpolated,omitempty"`
	SeparatedList bool      `json:"separatedList,omitempty"`
}

// BuildKey joins postcode, street and house number of addr with sep. Metadata such as the
// external id or the interpolation flags never influence the key.
func BuildKey(addr Address, sep string) string {
	return strings.Join([]string{addr.Postcode, addr.Street, addr.HouseNumber}, sep)
}

// Key returns the identity key of the address using the DefaultKeySeparator.
func (a Address) Key() string {
	return BuildKey(a, DefaultKeySeparator)
}

// Index deduplicates addresses by their identity key. The last inserted address for a key wins.
type Index map[string]Address

// NewIndex returns an empty Index.
func NewIndex() Index {
	return make(Index)
}

// Insert stores addr under its identity key, replacing any previous entry.
func (i Index) Insert(addr Address) {
	i[addr.Key()] = addr
}

// InsertAll inserts every address of addrs in order.
func (i Index) InsertAll(addrs []Address) {
	for _, addr := range addrs {
		i.Insert(addr)
	}
}

// Addresses returns all addresses of the index sorted by their identity key.
func (i Index) Addresses() []Address {
	keys := make([]string, 0, len(i))
	for key := range i {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	list := make([]Address, 0, len(keys))
	for _, key := range keys {
		list = append(list, i[key])
	}
	return list
}
