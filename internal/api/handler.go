package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/user/atmos-energy/internal/adapter/atmos"
	"github.com/user/atmos-energy/internal/usage"
	"go.uber.org/zap"
)

const maxMonths = 36

type usageResponse struct {
	Months    int             `json:"months"`
	Readings  []usage.Reading `json:"readings"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) usageHandler(w http.ResponseWriter, r *http.Request) {
	months, err := s.parseMonths(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if readings, fetchedAt, ok := s.cache.Get(months); ok {
		s.metrics.observeUsage(cacheHit, resultSuccess)
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, usageResponse{Months: months, Readings: readings, FetchedAt: fetchedAt})
		return
	}

	s.portal.Lock()
	defer s.portal.Unlock()

	// Another request may have filled the cache while we waited.
	if readings, fetchedAt, ok := s.cache.Get(months); ok {
		s.metrics.observeUsage(cacheHit, resultSuccess)
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, usageResponse{Months: months, Readings: readings, FetchedAt: fetchedAt})
		return
	}

	readings, err := s.retrieve(r.Context(), months)
	if err != nil {
		s.metrics.observeUsage(cacheMiss, resultError)
		s.logger.Error("usage retrieval failed", zap.Int("months", months), zap.Error(err))
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	fetchedAt := s.cache.Set(months, readings)
	s.metrics.observeUsage(cacheMiss, resultSuccess)
	s.metrics.setReadings(len(readings))

	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, usageResponse{Months: months, Readings: readings, FetchedAt: fetchedAt})
}

func (s *Server) retrieve(ctx context.Context, months int) ([]usage.Reading, error) {
	// Login, logout and one download per month, each bounded by the client
	// timeout.
	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout()*time.Duration(months+3))
	defer cancel()

	var readings []usage.Reading
	err := s.client.WithSession(ctx, s.config.Credentials(), func(session *atmos.Session) error {
		var err error
		readings, err = s.client.History(ctx, session, months)
		return err
	})
	return readings, err
}

func (s *Server) parseMonths(r *http.Request) (int, error) {
	months := s.config.Months
	if q := r.URL.Query().Get("months"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return 0, fmt.Errorf("months must be an integer, got %q", q)
		}
		months = n
	}
	if months < 0 || months > maxMonths {
		return 0, fmt.Errorf("months must be between 0 and %d", maxMonths)
	}
	return months, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, usage.ErrInvalidPeriodCount):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/health", s.healthHandler)
	mux.HandleFunc("/api/v1/usage", s.usageHandler)
	mux.Handle("/metrics", s.metrics.Handler())
}
