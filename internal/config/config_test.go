// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	const (
		expectLogLevel      = slog.LevelInfo
		expectCountryCode   = "de"
		expectGeocoder      = GeocoderNominatim
		expectCacheBackend  = CacheBackendMemory
		expectCacheTTL      = time.Hour * 24
		expectOverpassLimit = time.Second * 35
		expectRadius        = 100
	)
	t.Run("new config with all defaults set", func(t *testing.T) {
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != expectLogLevel {
			t.Errorf("expected log level to be: %s, got %s", expectLogLevel, conf.LogLevel)
		}
		if conf.Region.CountryCode != expectCountryCode {
			t.Errorf("expected country code to be: %s, got %s", expectCountryCode, conf.Region.CountryCode)
		}
		if conf.Geocoder.Provider != expectGeocoder {
			t.Errorf("expected geocoder to be: %s, got %s", expectGeocoder, conf.Geocoder.Provider)
		}
		if conf.Cache.Backend != expectCacheBackend {
			t.Errorf("expected cache backend to be: %s, got %s", expectCacheBackend, conf.Cache.Backend)
		}
		if conf.Cache.TTL != expectCacheTTL {
			t.Errorf("expected cache ttl to be: %s, got %s", expectCacheTTL, conf.Cache.TTL)
		}
		if conf.Cache.MaxKeySize != 500 || conf.Cache.MaxValueSize != 20000 {
			t.Errorf("unexpected cache size limits: %d, %d", conf.Cache.MaxKeySize, conf.Cache.MaxValueSize)
		}
		if conf.Overpass.Timeout != expectOverpassLimit {
			t.Errorf("expected overpass timeout to be: %s, got %s", expectOverpassLimit, conf.Overpass.Timeout)
		}
		if conf.Radius.Default != expectRadius {
			t.Errorf("expected default radius to be: %d, got %f", expectRadius, conf.Radius.Default)
		}
		if !strings.HasSuffix(conf.GeoLocation.File, "/.config/addrcrawl/geolocation") {
			t.Errorf("expected default geolocation file, got %s", conf.GeoLocation.File)
		}
		if len(conf.Server.AllowedOrigins) != 1 || conf.Server.AllowedOrigins[0] != "http://localhost:3000" {
			t.Errorf("unexpected allowed origins: %v", conf.Server.AllowedOrigins)
		}
	})
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("ADDRCRAWL_REGION_COUNTRY_CODE", " AT ")
		t.Setenv("ADDRCRAWL_CACHE_BACKEND", "Redis")
		t.Setenv("ADDRCRAWL_CACHE_REDIS_ADDR", "redis:6379")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Region.CountryCode != "at" {
			t.Errorf("expected normalized country code at, got %q", conf.Region.CountryCode)
		}
		if conf.Cache.Backend != CacheBackendRedis {
			t.Errorf("expected cache backend redis, got %s", conf.Cache.Backend)
		}
		if conf.Cache.Redis.Addr != "redis:6379" {
			t.Errorf("expected redis address redis:6379, got %s", conf.Cache.Redis.Addr)
		}
	})
	t.Run("new config with invalid values from env", func(t *testing.T) {
		t.Setenv("ADDRCRAWL_LOGLEVEL", "invalid")
		_, err := New()
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("config validation fails on invalid values", func(t *testing.T) {
		tests := []struct {
			name  string
			env   string
			value string
		}{
			{"country code", "ADDRCRAWL_REGION_COUNTRY_CODE", "deu"},
			{"geocoder provider", "ADDRCRAWL_GEOCODER_PROVIDER", "invalid"},
			{"overpass endpoint", "ADDRCRAWL_OVERPASS_ENDPOINT", "not a url"},
			{"overpass timeout", "ADDRCRAWL_OVERPASS_TIMEOUT", "-1s"},
			{"default radius", "ADDRCRAWL_RADIUS_DEFAULT", "0"},
			{"default radius not a number", "ADDRCRAWL_RADIUS_DEFAULT", "NaN"},
			{"default radius infinite", "ADDRCRAWL_RADIUS_DEFAULT", "+Inf"},
			{"cache backend", "ADDRCRAWL_CACHE_BACKEND", "memcached"},
			{"cache max entries", "ADDRCRAWL_CACHE_MAX_ENTRIES", "0"},
			{"cache purge interval", "ADDRCRAWL_CACHE_PURGE_INTERVAL", "0s"},
			{"cache key size", "ADDRCRAWL_CACHE_MAX_KEY_SIZE", "-5"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Setenv(tc.env, tc.value)
				if _, err := New(); err == nil {
					t.Error("expected config to fail, but didn't")
				}
			})
		}
	})
	t.Run("locationiq requires an api key", func(t *testing.T) {
		t.Setenv("ADDRCRAWL_GEOCODER_PROVIDER", GeocoderLocationIQ)
		if _, err := New(); err == nil {
			t.Error("expected config to fail, but didn't")
		}
		t.Setenv("ADDRCRAWL_GEOCODER_APIKEY", "secret")
		if _, err := New(); err != nil {
			t.Errorf("failed to load config: %s", err)
		}
	})
	t.Run("locale is taken from the environment", func(t *testing.T) {
		t.Setenv("LC_MESSAGES", "de_DE.UTF-8")
		conf, err := New()
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.Locale != "de-DE" {
			t.Errorf("expected locale de-DE, got %s", conf.Locale)
		}
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("reading config from valid file succeeds", func(t *testing.T) {
		conf, err := NewFromFile("../../etc", "config.toml")
		if err != nil {
			t.Fatalf("failed to load config: %s", err)
		}
		if conf.LogLevel != slog.LevelInfo {
			t.Errorf("expected log level to be: %s, got %s", slog.LevelInfo, conf.LogLevel)
		}
		if conf.Cache.PurgeInterval != time.Minute*10 {
			t.Errorf("expected purge interval to be: %s, got %s", time.Minute*10, conf.Cache.PurgeInterval)
		}
		if conf.Cache.Redis.Prefix != "addrcrawl:" {
			t.Errorf("expected redis prefix addrcrawl:, got %s", conf.Cache.Redis.Prefix)
		}
		if conf.Server.Listen != "127.0.0.1:8080" {
			t.Errorf("expected listen address 127.0.0.1:8080, got %s", conf.Server.Listen)
		}
	})
	t.Run("reading config from non-existent file fails", func(t *testing.T) {
		_, err := NewFromFile("../../etc", "non-existent.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
	t.Run("reading invalid config file fails", func(t *testing.T) {
		_, err := NewFromFile("../../testdata", "invalid.toml")
		if err == nil {
			t.Error("expected config to fail, but didn't")
		}
	})
}
