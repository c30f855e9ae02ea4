// Package api exposes the runner over HTTP: scenario catalog, run control,
// stored results, and the live event relay.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mpdee/fleetprobe/internal/executor"
	"github.com/mpdee/fleetprobe/internal/relay"
	"github.com/mpdee/fleetprobe/internal/report"
	"github.com/mpdee/fleetprobe/internal/scenario"
)

// Service is the surface the HTTP layer needs from the runner.
type Service interface {
	ListScenarios() []scenario.Scenario
	GetScenario(id string) (scenario.Scenario, error)
	StartRun(ctx context.Context, ids []string) (report.RunSummary, error)
	ListRuns() ([]report.RunSummary, error)
	GetRun(id string) (report.RunSummary, error)
	DeleteRun(id string) error
	ActiveRun() (string, bool)
}

// NewServer builds the controller HTTP handler. The broker may be nil when no
// relay endpoints are wanted.
func NewServer(svc Service, broker *relay.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("FleetProbe Controller API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	if broker != nil {
		router.Get("/api/v1/events", relay.SSEHandler(broker))
		router.Get("/api/v1/events/ws", relay.WSHandler(broker))
	}

	registerHealthHandlers(api, svc)
	registerScenarioHandlers(api, svc)
	registerRunHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *executor.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case executor.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case executor.CodeScenarioNotFound, executor.CodeRunNotFound:
			return huma.Error404NotFound(coded.Message)
		case executor.CodeRunActive:
			return huma.Error409Conflict(coded.Message)
		case executor.CodeSessionUnavailable:
			return huma.Error502BadGateway(coded.Message)
		case executor.CodeNavigationTimeout, executor.CodeLoadWaitTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
