// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stratoberry/go-gpsd"
)

const (
	DefaultGPSDAddr    = "localhost:2947"
	DefaultGPSDTimeout = time.Second * 15

	fallbackAccuracy3DFix = 10 // meters, consumer GPS in open sky
	fallbackAccuracy2DFix = 25
)

var ErrGPSDConnectionLost = errors.New("gpsd connection ended before a fix was received")

// GPSD waits for the first 2D or 3D fix reported by a gpsd daemon.
type GPSD struct {
	addr    string
	timeout time.Duration
	fixFn   func(ctx context.Context) (Coordinate, error)
}

func NewGPSD(addr string) *GPSD {
	if addr == "" {
		addr = DefaultGPSDAddr
	}
	source := &GPSD{addr: addr, timeout: DefaultGPSDTimeout}
	source.fixFn = source.waitForFix
	return source
}

func (g *GPSD) Name() string {
	return "gpsd"
}

func (g *GPSD) Locate(ctx context.Context) (Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.fixFn(ctx)
}

func (g *GPSD) waitForFix(ctx context.Context) (Coordinate, error) {
	session, err := gpsd.Dial(g.addr)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to connect to gpsd at %q: %w", g.addr, err)
	}

	fixes := make(chan Coordinate, 1)
	session.AddFilter("TPV", func(r interface{}) {
		tpv, ok := r.(*gpsd.TPVReport)
		if !ok {
			return
		}
		coord, ok := coordinateFromTPV(tpv)
		if !ok {
			return
		}
		select {
		case fixes <- coord:
		default:
		}
	})

	// go-gpsd offers no way to end a watch, the session is torn down when the process exits
	done := session.Watch()
	select {
	case coord := <-fixes:
		return coord, nil
	case <-done:
		return Coordinate{}, ErrGPSDConnectionLost
	case <-ctx.Done():
		return Coordinate{}, fmt.Errorf("failed to receive gpsd fix: %w", ctx.Err())
	}
}

// coordinateFromTPV converts a TPV report into a coordinate. Reports without at least a 2D fix
// are rejected. Receivers that report no error estimate get a typical accuracy for their fix mode.
func coordinateFromTPV(tpv *gpsd.TPVReport) (Coordinate, bool) {
	if tpv == nil || tpv.Mode < gpsd.Mode2D {
		return Coordinate{}, false
	}
	acc := math.Max(tpv.Epx, tpv.Epy)
	if acc <= 0 {
		acc = fallbackAccuracy2DFix
		if tpv.Mode == gpsd.Mode3D {
			acc = fallbackAccuracy3DFix
		}
	}
	coord := Coordinate{Lat: tpv.Lat, Lon: tpv.Lon, Acc: acc}
	return coord, coord.Valid()
}
