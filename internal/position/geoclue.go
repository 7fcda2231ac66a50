// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	GeoClueDesktopID = "addrcrawl"

	geoClueDest          = "org.freedesktop.GeoClue2"
	geoClueManagerPath   = "/org/freedesktop/GeoClue2/Manager"
	geoClueGetClient     = "org.freedesktop.GeoClue2.Manager.GetClient"
	geoClueClientIface   = "org.freedesktop.GeoClue2.Client"
	geoClueLocationIface = "org.freedesktop.GeoClue2.Location"

	// geoClueAccuracyExact is GCLUE_ACCURACY_LEVEL_EXACT
	geoClueAccuracyExact uint32 = 8

	dbusAccessDenied = "org.freedesktop.DBus.Error.AccessDenied"

	DefaultGeoClueTimeout = time.Second * 20
	geoCluePollInterval   = time.Millisecond * 250
)

// GeoClue asks the GeoClue2 service on the system bus for the device position.
type GeoClue struct {
	timeout time.Duration
	connect func(ctx context.Context) (*dbus.Conn, error)
}

func NewGeoClue() *GeoClue {
	return &GeoClue{
		timeout: DefaultGeoClueTimeout,
		connect: func(ctx context.Context) (*dbus.Conn, error) {
			return dbus.ConnectSystemBus(dbus.WithContext(ctx))
		},
	}
}

func (g *GeoClue) Name() string {
	return "geoclue"
}

// Locate starts a GeoClue client, waits for its first location and stops the client again. An
// AccessDenied reply from the service is reported as ErrPermissionDenied.
func (g *GeoClue) Locate(ctx context.Context) (coord Coordinate, err error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	conn, err := g.connect(ctx)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close system bus: %w", closeErr))
		}
	}()

	var clientPath dbus.ObjectPath
	manager := conn.Object(geoClueDest, geoClueManagerPath)
	if err = manager.CallWithContext(ctx, geoClueGetClient, 0).Store(&clientPath); err != nil {
		return Coordinate{}, geoClueError("failed to get geoclue client", err)
	}

	client := conn.Object(geoClueDest, clientPath)
	if err = client.SetProperty(geoClueClientIface+".DesktopId", dbus.MakeVariant(GeoClueDesktopID)); err != nil {
		return Coordinate{}, geoClueError("failed to set desktop id", err)
	}
	if err = client.SetProperty(geoClueClientIface+".RequestedAccuracyLevel",
		dbus.MakeVariant(geoClueAccuracyExact)); err != nil {
		return Coordinate{}, geoClueError("failed to set requested accuracy level", err)
	}
	if err = client.CallWithContext(ctx, geoClueClientIface+".Start", 0).Err; err != nil {
		return Coordinate{}, geoClueError("failed to start geoclue client", err)
	}
	defer func() {
		if stopErr := client.Call(geoClueClientIface+".Stop", 0).Err; stopErr != nil {
			err = errors.Join(err, geoClueError("failed to stop geoclue client", stopErr))
		}
	}()

	locationPath, err := g.awaitLocation(ctx, client)
	if err != nil {
		return Coordinate{}, err
	}
	return readGeoClueLocation(conn.Object(geoClueDest, locationPath))
}

func (g *GeoClue) awaitLocation(ctx context.Context, client dbus.BusObject) (dbus.ObjectPath, error) {
	ticker := time.NewTicker(geoCluePollInterval)
	defer ticker.Stop()
	for {
		variant, err := client.GetProperty(geoClueClientIface + ".Location")
		if err != nil {
			return "", geoClueError("failed to read geoclue location path", err)
		}
		if path, ok := variant.Value().(dbus.ObjectPath); ok && path != "/" && path.IsValid() {
			return path, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("failed to receive geoclue location: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func readGeoClueLocation(location dbus.BusObject) (Coordinate, error) {
	var coord Coordinate
	fields := []struct {
		name   string
		target *float64
	}{
		{"Latitude", &coord.Lat},
		{"Longitude", &coord.Lon},
		{"Accuracy", &coord.Acc},
	}
	for _, field := range fields {
		variant, err := location.GetProperty(geoClueLocationIface + "." + field.name)
		if err != nil {
			return Coordinate{}, geoClueError("failed to read geoclue "+field.name, err)
		}
		val, ok := variant.Value().(float64)
		if !ok {
			return Coordinate{}, fmt.Errorf("geoclue %s has unexpected type %s", field.name, variant.Signature())
		}
		*field.target = val
	}
	return coord, nil
}

// geoClueError wraps err with msg and marks AccessDenied replies as ErrPermissionDenied.
func geoClueError(msg string, err error) error {
	if isAccessDenied(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isAccessDenied(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == dbusAccessDenied
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) && dbusErrPtr != nil {
		return dbusErrPtr.Name == dbusAccessDenied
	}
	return false
}
