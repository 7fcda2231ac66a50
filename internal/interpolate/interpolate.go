// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package interpolate turns raw map elements into address records. It handles directly tagged
// addresses, ranged and listed house numbers on single elements, and address interpolation ways
// whose end nodes carry the bounds of the range.
package interpolate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/osm"
)

const (
	rangeSeparator = "-"
	listSeparators = ";,"
)

var (
	ErrMalformedRange   = errors.New("house number range must have exactly two components")
	ErrNoNodes          = errors.New("interpolation way has no nodes")
	ErrEndpointMissing  = errors.New("interpolation way endpoint has no address")
	ErrNoAddressTags    = errors.New("element carries no address tags")
	ErrEmptyHouseNumber = errors.New("house number list has no entries")
)

// Stats counts what a resolver run contributed to an index.
type Stats struct {
	Direct     int
	Listed     int
	Expanded   int
	Standalone int
	Skipped    int
}

// Resolver classifies map elements and writes the resulting addresses into an address.Index.
type Resolver struct {
	logger *logger.Logger
}

// New returns a Resolver that logs skipped elements to log.
func New(log *logger.Logger) *Resolver {
	return &Resolver{logger: log}
}

// Resolve runs direct element processing first and way based interpolation second on a fresh
// index. The order matters: addresses derived from interpolation ways overwrite identical direct
// entries.
func (r *Resolver) Resolve(direct, interpolation []osm.Element) (address.Index, Stats) {
	index := address.NewIndex()
	stats := r.ProcessDirectElements(index, direct)
	wayStats := r.ProcessInterpolationElements(index, interpolation)

	stats.Expanded += wayStats.Expanded
	stats.Standalone += wayStats.Standalone
	stats.Skipped += wayStats.Skipped
	return index, stats
}

// ProcessDirectElements inserts the addresses of elements carrying house numbers into index.
// Ranges like "4-10" on elements tagged with addr:interpolation are expanded, lists like "3;5;7"
// are split. A failing element is logged and skipped.
func (r *Resolver) ProcessDirectElements(index address.Index, elements []osm.Element) Stats {
	var stats Stats
	for _, elem := range elements {
		if err := r.processDirectElement(index, elem, &stats); err != nil {
			stats.Skipped++
			r.logger.Warn("skipping map element", logger.Err(err))
		}
	}
	return stats
}

func (r *Resolver) processDirectElement(index address.Index, elem osm.Element, stats *Stats) error {
	addr := osm.ParseAddress(elem)
	if addr == nil {
		return elem.ParseError(ErrNoAddressTags)
	}

	interpolation, hasInterpolation := elem.Tag(osm.TagInterpolation)
	switch {
	case strings.Contains(addr.HouseNumber, rangeSeparator) && hasInterpolation:
		bounds := strings.Split(addr.HouseNumber, rangeSeparator)
		if len(bounds) != 2 {
			return elem.ParseError(fmt.Errorf("%w: %q", ErrMalformedRange, addr.HouseNumber))
		}
		kind := address.RangeKind(interpolation)
		if kind == "" {
			kind = address.RangeAll
		}
		addrs, err := address.Expand(*addr, bounds[0], bounds[1], kind)
		if err != nil {
			return elem.ParseError(err)
		}
		index.InsertAll(addrs)
		stats.Expanded += len(addrs)
	case strings.ContainsAny(addr.HouseNumber, listSeparators):
		var listed int
		for _, part := range strings.FieldsFunc(addr.HouseNumber, isListSeparator) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			entry := *addr
			entry.HouseNumber = part
			entry.SeparatedList = true
			index.Insert(entry)
			listed++
		}
		if listed == 0 {
			return elem.ParseError(fmt.Errorf("%w: %q", ErrEmptyHouseNumber, addr.HouseNumber))
		}
		stats.Listed += listed
	default:
		index.Insert(*addr)
		stats.Direct++
	}
	return nil
}

// ProcessInterpolationElements expands every interpolation way between the addresses of its first
// and last node and inserts the results into index. Nodes that are not referenced by any way are
// inserted as standalone addresses. A way whose range cannot be resolved is logged and skipped,
// its nodes still count as consumed.
func (r *Resolver) ProcessInterpolationElements(index address.Index, elements []osm.Element) Stats {
	var stats Stats
	var ways []osm.Element
	var nodeOrder []int64
	nodes := make(map[int64]*address.Address)

	for _, elem := range elements {
		switch elem.Type {
		case osm.TypeWay:
			if _, ok := elem.Tag(osm.TagInterpolation); ok {
				ways = append(ways, elem)
			}
		case osm.TypeNode:
			if _, seen := nodes[elem.ID]; !seen {
				nodeOrder = append(nodeOrder, elem.ID)
			}
			nodes[elem.ID] = osm.ParseAddress(elem)
		}
	}

	consumed := make(map[int64]struct{})
	for _, way := range ways {
		for _, id := range way.Nodes {
			if _, ok := nodes[id]; ok {
				consumed[id] = struct{}{}
			}
		}

		addrs, err := r.expandWay(way, nodes)
		if err != nil {
			stats.Skipped++
			r.logger.Warn("skipping interpolation way", logger.Err(err))
			continue
		}
		index.InsertAll(addrs)
		stats.Expanded += len(addrs)
		r.logger.Debug("expanded interpolation way", slog.Int64("way", way.ID),
			slog.Int("addresses", len(addrs)))
	}

	for _, id := range nodeOrder {
		if _, ok := consumed[id]; ok {
			continue
		}
		if addr := nodes[id]; addr != nil {
			index.Insert(*addr)
			stats.Standalone++
		}
	}
	return stats
}

func (r *Resolver) expandWay(way osm.Element, nodes map[int64]*address.Address) ([]address.Address, error) {
	if len(way.Nodes) == 0 {
		return nil, way.ParseError(ErrNoNodes)
	}
	firstID, lastID := way.Nodes[0], way.Nodes[len(way.Nodes)-1]
	first, last := nodes[firstID], nodes[lastID]
	if first == nil {
		return nil, way.ParseError(fmt.Errorf("%w: node %d", ErrEndpointMissing, firstID))
	}
	if last == nil {
		return nil, way.ParseError(fmt.Errorf("%w: node %d", ErrEndpointMissing, lastID))
	}

	interpolation, _ := way.Tag(osm.TagInterpolation)
	kind := address.RangeKind(interpolation)
	if kind == "" {
		kind = address.RangeAll
	}
	base := address.Address{Postcode: first.Postcode, Street: first.Street}
	addrs, err := address.Expand(base, first.HouseNumber, last.HouseNumber, kind)
	if err != nil {
		return nil, way.ParseError(err)
	}
	return addrs, nil
}

func isListSeparator(r rune) bool {
	return strings.ContainsRune(listSeparators, r)
}
