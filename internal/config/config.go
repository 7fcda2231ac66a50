// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "ADDRCRAWL"

	GeocoderNominatim  = "osm-nominatim"
	GeocoderLocationIQ = "locationiq"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Region struct {
		// ISO 3166-1 alpha-2 code of the only country addresses are resolved in
		CountryCode string `fig:"country_code" default:"de"`
	} `fig:"region"`

	Geocoder struct {
		// Allowed values: osm-nominatim, locationiq
		Provider string `fig:"provider" default:"osm-nominatim"`
		APIKey   string `fig:"apikey"`
	} `fig:"geocoder"`

	Overpass struct {
		Endpoint string        `fig:"endpoint" default:"https://overpass-api.de/api/interpreter"`
		Timeout  time.Duration `fig:"timeout" default:"35s"`
	} `fig:"overpass"`

	Radius struct {
		// Search radius in meters used when none is given
		Default float64 `fig:"default" default:"100"`
	} `fig:"radius"`

	Cache struct {
		// Allowed values: memory, redis
		Backend       string        `fig:"backend" default:"memory"`
		TTL           time.Duration `fig:"ttl" default:"24h"`
		MaxEntries    int           `fig:"max_entries" default:"100"`
		PurgeInterval time.Duration `fig:"purge_interval" default:"10m"`
		MaxKeySize    int           `fig:"max_key_size" default:"500"`
		MaxValueSize  int           `fig:"max_value_size" default:"20000"`

		Redis struct {
			Addr     string `fig:"addr" default:"localhost:6379"`
			Password string `fig:"password"`
			DB       int    `fig:"db" default:"0"`
			Prefix   string `fig:"prefix" default:"addrcrawl:"`
		} `fig:"redis"`
	} `fig:"cache"`

	GeoLocation struct {
		File                   string `fig:"file"`
		GPSDAddr               string `fig:"gpsd_addr" default:"localhost:2947"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableGeoClue         bool   `fig:"disable_geoclue"`
		DisableGeoIP           bool   `fig:"disable_geoip"`
	} `fig:"geolocation"`

	Server struct {
		Listen         string   `fig:"listen" default:"127.0.0.1:8080"`
		AllowedOrigins []string `fig:"allowed_origins" default:"[http://localhost:3000]"`
	} `fig:"server"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}

	c.Region.CountryCode = strings.ToLower(strings.TrimSpace(c.Region.CountryCode))
	if len(c.Region.CountryCode) != 2 {
		return fmt.Errorf("invalid country code: %q", c.Region.CountryCode)
	}

	c.Geocoder.Provider = strings.ToLower(c.Geocoder.Provider)
	switch c.Geocoder.Provider {
	case GeocoderNominatim:
	case GeocoderLocationIQ:
		if c.Geocoder.APIKey == "" {
			return fmt.Errorf("geocoder %s requires an API key", c.Geocoder.Provider)
		}
	default:
		return fmt.Errorf("invalid geocoder provider: %s", c.Geocoder.Provider)
	}

	if _, err := url.ParseRequestURI(c.Overpass.Endpoint); err != nil {
		return fmt.Errorf("invalid overpass endpoint: %w", err)
	}
	if c.Overpass.Timeout <= 0 {
		return fmt.Errorf("invalid overpass timeout: %s", c.Overpass.Timeout)
	}
	if c.Radius.Default <= 0 || math.IsNaN(c.Radius.Default) || math.IsInf(c.Radius.Default, 0) {
		return fmt.Errorf("invalid default radius: %g", c.Radius.Default)
	}

	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	if c.Cache.Backend != CacheBackendMemory && c.Cache.Backend != CacheBackendRedis {
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("invalid cache max entries: %d", c.Cache.MaxEntries)
	}
	if c.Cache.PurgeInterval <= 0 {
		return fmt.Errorf("invalid cache purge interval: %s", c.Cache.PurgeInterval)
	}
	if c.Cache.MaxKeySize < 1 || c.Cache.MaxValueSize < 1 {
		return fmt.Errorf("invalid cache size limits: key %d, value %d", c.Cache.MaxKeySize, c.Cache.MaxValueSize)
	}

	if c.GeoLocation.File == "" {
		home, _ := os.UserHomeDir()
		c.GeoLocation.File = filepath.Join(home, ".config", "addrcrawl", "geolocation")
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
