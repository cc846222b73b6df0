package wire

import (
	"net/http"

	"events-platform/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	authed []func(http.Handler) http.Handler,
) {
	// ==================== PROTECTED ROUTES ====================
	r.With(authed...).Get("/api/auth/profile", userHandler.GetProfile)
}
