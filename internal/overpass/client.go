// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package overpass queries raw map elements from an Overpass API interpreter.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"time"

	"github.com/douira/vodafone-api-crawl/internal/http"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/osm"
)

const (
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"
	// DefaultTimeout leaves the interpreter its full server side timeout plus transfer time.
	DefaultTimeout = time.Second * (QueryTimeout + 10)
)

var (
	ErrUnexpectedStatus = errors.New("overpass API returned unexpected status code")
	ErrLookupFailure    = errors.New("overpass API response contains no elements")
)

// Client sends Overpass QL queries to an interpreter endpoint.
type Client struct {
	http     *http.Client
	endpoint string
	timeout  time.Duration
	logger   *logger.Logger
}

// Response is the JSON document returned by the interpreter. Elements is nil if the document
// has no elements field at all.
type Response struct {
	Version   float64       `json:"version"`
	Generator string        `json:"generator"`
	Remark    string        `json:"remark,omitempty"`
	Elements  []osm.Element `json:"elements"`
}

// New returns a Client for endpoint. An empty endpoint or non-positive timeout fall back to
// the defaults.
func New(client *http.Client, log *logger.Logger, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{http: client, endpoint: endpoint, timeout: timeout, logger: log}
}

// Query runs query and returns the elements of the response.
func (c *Client) Query(ctx context.Context, query string) ([]osm.Element, error) {
	var response Response
	form := url.Values{}
	form.Set("data", query)

	start := time.Now()
	code, err := c.http.PostFormWithTimeout(ctx, c.endpoint, &response, form, c.timeout)
	if code != 0 && code != stdhttp.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query overpass API: %w", err)
	}
	if response.Elements == nil {
		if response.Remark != "" {
			return nil, fmt.Errorf("%w: %s", ErrLookupFailure, response.Remark)
		}
		return nil, ErrLookupFailure
	}
	if response.Remark != "" {
		c.logger.Warn("overpass API returned a remark", slog.String("remark", response.Remark))
	}

	c.logger.Debug("overpass query finished", slog.Int("elements", len(response.Elements)),
		slog.Duration("duration", time.Since(start)))
	return response.Elements, nil
}
