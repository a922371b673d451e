// Package router configures the planner's HTTP API.
//
// Routes:
//   - GET  /healthz                          health check
//   - GET  /metrics                          Prometheus metrics
//   - GET  /report/latest?scenario=<name>    latest stored report
//   - POST /simulate                         run a scenario given as JSON
//   - GET  /scenario/default                 the built-in scenario
//
// Reports older than the stale threshold carry an X-Retrofit-Stale header.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HatiCode/retrofit/pkg/city"
	"github.com/HatiCode/retrofit/pkg/httpx"
	"github.com/HatiCode/retrofit/pkg/optimizer"
	"github.com/HatiCode/retrofit/pkg/scenario"
	"github.com/HatiCode/retrofit/pkg/simulation"
	"github.com/HatiCode/retrofit/pkg/storage"
)

// StaleHeader marks reports older than Options.StaleAfter.
const StaleHeader = "X-Retrofit-Stale"

// Simulator runs a scenario and stores the resulting report.
type Simulator interface {
	Simulate(ctx context.Context, s city.Scenario) (simulation.Report, error)
}

// Options tunes the report and simulate handlers.
type Options struct {
	StaleAfter      time.Duration
	SimulateTimeout time.Duration
	MaxBodyBytes    int64
}

func (o Options) withDefaults() Options {
	if o.StaleAfter <= 0 {
		o.StaleAfter = time.Hour
	}
	if o.SimulateTimeout <= 0 {
		o.SimulateTimeout = 2 * time.Minute
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	return o
}

// SetupRoutes configures HTTP endpoints for the planner.
func SetupRoutes(store storage.Store, sim Simulator, opts Options, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()

	mux := http.NewServeMux()

	mux.Handle("/healthz", httpx.HealthHandler())
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /report/latest", handleGetReport(store, opts.StaleAfter, logger))
	mux.HandleFunc("POST /simulate", handleSimulate(sim, opts, logger))
	mux.HandleFunc("GET /scenario/default", handleDefaultScenario(logger))

	return mux
}

// handleGetReport returns a handler for GET /report/latest?scenario=<name>.
func handleGetReport(store storage.Store, staleAfter time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("scenario")
		if name == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "scenario parameter required")
			return
		}

		if !city.NameRegex.MatchString(name) {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "invalid scenario name format")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		report, found, err := store.GetLatest(ctx, name)
		if err != nil {
			logger.Error("failed to get report", "scenario", name, "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("report not found for scenario %q", name))
			return
		}

		if time.Since(report.GeneratedAt) > staleAfter {
			w.Header().Set(StaleHeader, "true")
		}

		if err := httpx.WriteJSON(w, http.StatusOK, report); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

// handleSimulate returns a handler for POST /simulate. An empty body runs the
// default scenario; fields missing from a JSON body take default values.
func handleSimulate(sim Simulator, opts Options, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpx.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		s := city.DefaultScenario()
		if len(strings.TrimSpace(string(body))) > 0 {
			s, err = scenario.ParseJSON(body)
			if err != nil {
				httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), opts.SimulateTimeout)
		defer cancel()

		report, err := sim.Simulate(ctx, s)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusInternalServerError {
				logger.Error("simulation failed", "scenario", s.Name, "error", err)
				httpx.WriteErrorMessage(w, status, "internal server error")
				return
			}
			httpx.WriteErrorMessage(w, status, err.Error())
			return
		}

		if err := httpx.WriteJSON(w, http.StatusOK, report); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, city.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, optimizer.ErrSearchBudgetOverflow), errors.Is(err, city.ErrBudgetOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func handleDefaultScenario(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := httpx.WriteJSON(w, http.StatusOK, city.DefaultScenario()); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}
