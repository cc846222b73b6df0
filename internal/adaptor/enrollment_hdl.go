package adaptor

import (
	"context"
	"net/http"

	"events-platform/internal/dto/request"
	"events-platform/internal/dto/response"
	"events-platform/internal/usecase"
	"events-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EnrollmentHandler struct {
	service usecase.EnrollmentService
	log     *zap.Logger
}

func NewEnrollmentHandler(service usecase.EnrollmentService, log *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		log:     log.With(zap.String("handler", "enrollment")),
	}
}

// CreateEnrollment handles POST /api/enrollments
// 201 for a new enrollment, 200 when a canceled one is re-activated.
func (h *EnrollmentHandler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.CreateEnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	enrollment, created, err := h.service.Enroll(r.Context(), actor, &req)
	if err != nil {
		writeError(w, h.log, err, "enroll")
		return
	}

	if created {
		utils.ResponseCreated(w, enrollment)
		return
	}
	utils.ResponseSuccess(w, enrollment)
}

// GetEnrollments handles GET /api/enrollments
func (h *EnrollmentHandler) GetEnrollments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.List, "list enrollments")
}

// GetPastEnrollments handles GET /api/enrollments/past
func (h *EnrollmentHandler) GetPastEnrollments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListPast, "list past enrollments")
}

// GetUpcomingEnrollments handles GET /api/enrollments/upcoming
func (h *EnrollmentHandler) GetUpcomingEnrollments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListUpcoming, "list upcoming enrollments")
}

type enrollmentLister func(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error)

func (h *EnrollmentHandler) list(w http.ResponseWriter, r *http.Request, fetch enrollmentLister, operation string) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	enrollments, err := fetch(r.Context(), actor)
	if err != nil {
		writeError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, enrollments)
}

// GetEnrollment handles GET /api/enrollments/{id}
func (h *EnrollmentHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	enrollment, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "get enrollment")
		return
	}

	utils.ResponseSuccess(w, enrollment)
}

// UpdateEnrollment handles PATCH /api/enrollments/{id}
func (h *EnrollmentHandler) UpdateEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.UpdateEnrollmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	enrollment, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.log, err, "update enrollment")
		return
	}

	utils.ResponseSuccess(w, enrollment)
}

// CancelEnrollment handles DELETE /api/enrollments/{id}
// The row stays; only its status changes.
func (h *EnrollmentHandler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	enrollment, err := h.service.Cancel(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "cancel enrollment")
		return
	}

	utils.ResponseSuccess(w, enrollment)
}

// GetEventRoster handles GET /api/events/{id}/enrollments (owner)
func (h *EnrollmentHandler) GetEventRoster(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	roster, err := h.service.Roster(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "get event roster")
		return
	}

	utils.ResponseSuccess(w, roster)
}
