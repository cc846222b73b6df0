// internal/wire/wire.go
package wire

import (
	"fmt"
	"net/http"

	"events-platform/internal/adaptor"
	"events-platform/internal/usecase"
	"events-platform/pkg/apperror"
	"events-platform/pkg/middleware"
	"events-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the router and the services the background jobs run on.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and routes.
func Wiring(deps usecase.Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, deps, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	deps usecase.Deps,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Unmatched requests still answer with the error envelope
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, apperror.CodeNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseMethodNotAllowed(w, fmt.Sprintf("Method %q not allowed.", r.Method))
	})

	// Authenticated and verified callers
	authed := []func(http.Handler) http.Handler{
		middleware.Auth(deps.JWT, deps.Repo.User, logger),
		middleware.RequireVerified(),
	}

	// Apply routes
	wireAuth(r, handler.Auth)
	wireUser(r, handler.User, authed)
	wireEvent(r, handler.Event, authed, logger)
	wireEnrollment(r, handler.Enrollment, authed, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	return r
}
