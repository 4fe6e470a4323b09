package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/contribute_smoke/internal/controller"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/relay"
	"github.com/dgnsrekt/contribute_smoke/internal/scenario"
	"github.com/dgnsrekt/contribute_smoke/internal/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	ListScenarios(ctx context.Context) []scenario.Scenario
	Registry(ctx context.Context) *registry.Registry
	StartRun(ctx context.Context, f scenario.Filter) (controller.RunState, error)
	LatestRun(ctx context.Context) (controller.RunState, error)
	ListSnapshots(ctx context.Context, scenarioName string) ([]snapshot.ScreenshotMeta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.ScreenshotMeta, error)
	ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// NewServer builds the controller router. Event stream routes are mounted
// only when broker is non-nil.
func NewServer(svc Service, broker *relay.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Contribute Smoke Controller API", "1.0.0")
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
		router.Get("/api/v1/events/ws", relay.WebSocketHandler(broker))
	}

	registerRunHandlers(api, svc)
	registerSnapshotHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *page.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case page.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case page.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case page.CodeBusy:
			return huma.Error409Conflict(coded.Message)
		case page.CodeNavigationTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case page.CodeSessionUnavailable, page.CodeNetwork:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
