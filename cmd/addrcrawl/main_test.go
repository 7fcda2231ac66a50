// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/douira/vodafone-api-crawl/internal/config"
)

func TestLoadConfig(t *testing.T) {
	t.Run("config file in the home directory is found", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		dir := filepath.Join(home, ".config", "addrcrawl")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create config dir: %s", err)
		}
		data := []byte("[region]\ncountry_code = \"at\"\n")
		if err := os.WriteFile(filepath.Join(dir, "config.toml"), data, 0o600); err != nil {
			t.Fatalf("failed to write config file: %s", err)
		}

		conf, err := loadConfig("")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Region.CountryCode != "at" {
			t.Errorf("expected country code at, got %s", conf.Region.CountryCode)
		}
	})
	t.Run("explicit config path is preferred", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		conf, err := loadConfig("../../etc/config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Server.Listen != "127.0.0.1:8080" {
			t.Errorf("expected listen address from sample config, got %s", conf.Server.Listen)
		}
	})
	t.Run("environment only config without file", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		dir, file := findConfigFile()
		if dir != "" || file != "" {
			t.Errorf("expected no config file, got %s/%s", dir, file)
		}
		if _, err := loadConfig(""); err != nil {
			t.Errorf("failed to load config: %s", err)
		}
	})
}

func TestCli_run(t *testing.T) {
	conf, err := config.New()
	if err != nil {
		t.Fatalf("failed to load config: %s", err)
	}
	app := &cli{conf: conf, out: bytes.NewBuffer(nil)}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"geocode"}},
		{"extid without address", []string{"extid", "-postcode", "53113"}},
		{"extid with unknown flag", []string{"extid", "-city", "Bonn"}},
		{"radius with invalid origin", []string{"radius", "-origin", "way/1"}},
		{"radius with invalid radius", []string{"radius", "-radius", "wide"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := app.run(t.Context(), tc.args); !errors.Is(err, errUsage) {
				t.Errorf("expected usage error, got %v", err)
			}
		})
	}
}
