package adaptor

import (
	"net/http"

	"events-platform/internal/dto/request"
	"events-platform/internal/usecase"
	"events-platform/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

// GetEvents handles GET /api/events
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.EventListRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), request.DefaultPerPage),
		},
		Location:     query.Get("location"),
		Language:     query.Get("language"),
		Query:        query.Get("q"),
		StartsAfter:  utils.ParseTimeParam(query.Get("starts_after")),
		StartsBefore: utils.ParseTimeParam(query.Get("starts_before")),
	}

	events, err := h.service.List(r.Context(), actor, req)
	if err != nil {
		writeError(w, h.log, err, "list events")
		return
	}

	utils.ResponseSuccess(w, events)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err, "get event")
		return
	}

	utils.ResponseSuccess(w, event)
}

// CreateEvent handles POST /api/events (facilitator)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		writeError(w, h.log, err, "create event")
		return
	}

	utils.ResponseCreated(w, event)
}

// UpdateEvent handles PUT and PATCH /api/events/{id} (owner)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	var req request.UpdateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, h.log, err, "update event")
		return
	}

	utils.ResponseSuccess(w, event)
}

// DeleteEvent handles DELETE /api/events/{id} (owner)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err, "delete event")
		return
	}

	utils.ResponseNoContent(w)
}
