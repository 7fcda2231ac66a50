// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FileAccuracy is the accuracy assumed for positions read from a geolocation file. A manually
// maintained file is considered the most accurate source available.
const FileAccuracy = 5

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// File reads the position from a text file holding "lat,lon" lines. Empty lines and lines
// starting with "#" are ignored, the first valid line wins.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string {
	return "geolocation_file"
}

func (f *File) Locate(context.Context) (Coordinate, error) {
	lat, lon, err := f.readFile()
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: lat, Lon: lon, Acc: FileAccuracy}, nil
}

func (f *File) readFile() (lat, lon float64, err error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read geolocation file %q: %w", f.path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coords := strings.Split(line, ",")
		if len(coords) != 2 {
			continue
		}
		lat, err = strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			continue
		}
		lon, err = strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			continue
		}
		return lat, lon, nil
	}
	return 0, 0, ErrNoCoordinates
}
