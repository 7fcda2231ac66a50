// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package server exposes the address operations as a JSON API for browser based clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/douira/vodafone-api-crawl/internal/address"
	"github.com/douira/vodafone-api-crawl/internal/geocode"
	"github.com/douira/vodafone-api-crawl/internal/locate"
	"github.com/douira/vodafone-api-crawl/internal/logger"
	"github.com/douira/vodafone-api-crawl/internal/overpass"
	"github.com/douira/vodafone-api-crawl/internal/position"
	"github.com/douira/vodafone-api-crawl/internal/radius"
	"github.com/douira/vodafone-api-crawl/internal/service"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	maxBodySize       = 1 << 16
)

var ErrBadRequest = errors.New("bad request")

// AddressService is the set of address operations served by the API.
type AddressService interface {
	CurrentAddress(ctx context.Context) (address.Address, error)
	ExternalID(ctx context.Context, addr address.Address) (address.Address, error)
	AddressesInRadius(ctx context.Context, originID int64, radius float64) ([]address.Address, error)
	AddressesAroundCurrent(ctx context.Context, radius float64) ([]address.Address, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type addressesResponse struct {
	Count     int               `json:"count"`
	Addresses []address.Address `json:"addresses"`
}

// Server routes API requests to an AddressService.
type Server struct {
	service AddressService
	logger  *logger.Logger
	router  chi.Router
}

// New returns a Server for serv. Cross origin requests are accepted from allowedOrigins.
func New(serv AddressService, log *logger.Logger, allowedOrigins []string) *Server {
	s := &Server{service: serv, logger: log}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", s.health)
	router.Route("/v1", func(r chi.Router) {
		r.Get("/address/current", s.currentAddress)
		r.Post("/address/external-id", s.externalID)
		r.Get("/addresses", s.addresses)
	})
	s.router = router
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves the API on addr until ctx is canceled and shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", slog.String("addr", addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to serve API: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve API: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) currentAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := s.service.CurrentAddress(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, addr)
}

func (s *Server) externalID(w http.ResponseWriter, r *http.Request) {
	var addr address.Address
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := decoder.Decode(&addr); err != nil {
		s.writeError(w, fmt.Errorf("%w: failed to decode address: %w", ErrBadRequest, err))
		return
	}
	if addr.Postcode == "" || addr.Street == "" || addr.HouseNumber == "" {
		s.writeError(w, fmt.Errorf("%w: postcode, street and housenumber are required", ErrBadRequest))
		return
	}

	result, err := s.service.ExternalID(r.Context(), addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) addresses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var meters float64
	if val := query.Get("radius"); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil || parsed <= 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			s.writeError(w, fmt.Errorf("%w: invalid radius %q", ErrBadRequest, val))
			return
		}
		meters = parsed
	}

	var addrs []address.Address
	var err error
	if origin := query.Get("origin"); origin != "" {
		originID, parseErr := service.ParseExternalID(origin)
		if parseErr != nil {
			s.writeError(w, fmt.Errorf("%w: %w", ErrBadRequest, parseErr))
			return
		}
		addrs, err = s.service.AddressesInRadius(r.Context(), originID, meters)
	} else {
		addrs, err = s.service.AddressesAroundCurrent(r.Context(), meters)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if addrs == nil {
		addrs = []address.Address{}
	}
	s.writeJSON(w, http.StatusOK, addressesResponse{Count: len(addrs), Addresses: addrs})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", logger.Err(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", logger.Err(err))
	}
}

func statusFromError(err error) int {
	var regionErr *locate.UnsupportedRegionError
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, radius.ErrInvalidRadius):
		return http.StatusBadRequest
	case errors.Is(err, position.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.As(err, &regionErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, geocode.ErrLookupFailure), errors.Is(err, overpass.ErrLookupFailure),
		errors.Is(err, service.ErrNoOrigin):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("handled request", slog.String("method", r.Method), slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()), slog.Duration("duration", time.Since(start)))
	})
}
