package wire

import (
	"net/http"

	"events-platform/internal/adaptor"
	"events-platform/internal/usecase"
	"events-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEvent(
	r chi.Router,
	eventHandler *adaptor.EventHandler,
	authed []func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(authed...)

		// ==================== BROWSE (any role) ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(usecase.ActionViewEvents, log))

			// GET /api/events - seekers browse and filter, facilitators see their own
			r.Get("/api/events", eventHandler.GetEvents)
			r.Get("/api/events/{id}", eventHandler.GetEvent)
		})

		// ==================== MANAGE (facilitator, owner checked in service) ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(usecase.ActionManageEvents, log))

			r.Post("/api/events", eventHandler.CreateEvent)
			r.Put("/api/events/{id}", eventHandler.UpdateEvent)
			r.Patch("/api/events/{id}", eventHandler.UpdateEvent)
			r.Delete("/api/events/{id}", eventHandler.DeleteEvent)
		})
	})
}
