package wire

import (
	"net/http"

	"events-platform/internal/adaptor"
	"events-platform/internal/usecase"
	"events-platform/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEnrollment(
	r chi.Router,
	enrollmentHandler *adaptor.EnrollmentHandler,
	authed []func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(authed...)

		// ==================== SEEKER ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(usecase.ActionEnroll, log))

			r.Get("/api/enrollments", enrollmentHandler.GetEnrollments)
			r.Post("/api/enrollments", enrollmentHandler.CreateEnrollment)
			r.Get("/api/enrollments/past", enrollmentHandler.GetPastEnrollments)
			r.Get("/api/enrollments/upcoming", enrollmentHandler.GetUpcomingEnrollments)
			r.Get("/api/enrollments/{id}", enrollmentHandler.GetEnrollment)
			r.Patch("/api/enrollments/{id}", enrollmentHandler.UpdateEnrollment)

			// DELETE cancels; the row is kept for re-enrollment
			r.Delete("/api/enrollments/{id}", enrollmentHandler.CancelEnrollment)
		})

		// ==================== FACILITATOR ROUTES ====================
		r.With(middleware.RequireCapability(usecase.ActionManageEvents, log)).
			Get("/api/events/{id}/enrollments", enrollmentHandler.GetEventRoster)
	})
}
