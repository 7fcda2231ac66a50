// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package position

import (
	"errors"
	"testing"
)

const (
	testFile = "../../testdata/geolocation"
	testLat  = 50.7323
	testLon  = 7.0967
)

func TestFile_Locate(t *testing.T) {
	t.Run("reading the geolocation file succeeds", func(t *testing.T) {
		source := NewFile(testFile)
		coord, err := source.Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to read file: %s", err)
		}
		if coord.Lat != testLat {
			t.Errorf("expected latitude to be %f, got %f", testLat, coord.Lat)
		}
		if coord.Lon != testLon {
			t.Errorf("expected longitude to be %f, got %f", testLon, coord.Lon)
		}
		if coord.Acc != FileAccuracy {
			t.Errorf("expected accuracy to be %d, got %f", FileAccuracy, coord.Acc)
		}
	})
	t.Run("reading a non-existent file fails", func(t *testing.T) {
		if _, err := NewFile("non-existent.txt").Locate(t.Context()); err == nil {
			t.Error("expected error, but didn't get one")
		}
	})
	t.Run("files without valid coordinates fail", func(t *testing.T) {
		for _, file := range []string{"_nocoord", "_brokenlat", "_brokenlon"} {
			t.Run(file, func(t *testing.T) {
				_, err := NewFile(testFile + file).Locate(t.Context())
				if !errors.Is(err, ErrNoCoordinates) {
					t.Errorf("expected error to be %s, got %v", ErrNoCoordinates, err)
				}
			})
		}
	})
	t.Run("source name is correct", func(t *testing.T) {
		if name := NewFile(testFile).Name(); name != "geolocation_file" {
			t.Errorf("expected source name to be geolocation_file, got %s", name)
		}
	})
}
