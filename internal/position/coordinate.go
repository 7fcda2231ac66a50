// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"math"
)

const (
	// KeyPrecision is the number of decimals coordinates are rounded to before they are used as
	// lookup keys. Four decimals are roughly eleven meters.
	KeyPrecision = 4
)

// Coordinate represents a geographic coordinate. Acc is the accuracy radius in meters, zero if
// the source does not report one.
type Coordinate struct {
	Lat float64
	Lon float64
	Acc float64
}

// Valid checks if the coordinate is valid according to the EPSG logic
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lon)
}

// Rounded returns a copy of the coordinate with latitude and longitude rounded to the given
// number of decimals.
func (c Coordinate) Rounded(decimals int) Coordinate {
	return Coordinate{Lat: Round(c.Lat, decimals), Lon: Round(c.Lon, decimals), Acc: c.Acc}
}

// Round rounds val half away from zero to the given number of decimals. Values that round to
// zero are returned as positive zero.
func Round(val float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	rounded := math.Round(val*factor) / factor
	if rounded == 0 {
		return 0
	}
	return rounded
}
