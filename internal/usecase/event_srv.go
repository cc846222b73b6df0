package usecase

import (
	"context"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/internal/data/repository"
	"events-platform/internal/dto/request"
	"events-platform/internal/dto/response"
	"events-platform/pkg/apperror"
	"events-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	Create(ctx context.Context, actor utils.Principal, req *request.CreateEventRequest) (*response.EventResponse, error)
	List(ctx context.Context, actor utils.Principal, req *request.EventListRequest) (*response.PaginatedResponse[response.EventResponse], error)
	Get(ctx context.Context, eventID string) (*response.EventResponse, error)
	Update(ctx context.Context, actor utils.Principal, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error)
	Delete(ctx context.Context, actor utils.Principal, eventID string) error
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
		now:  time.Now,
	}
}

func errEventNotFound() *apperror.AppError {
	return apperror.NotFound(apperror.CodeEventNotFound, "Event not found.")
}

func (s *eventService) Create(ctx context.Context, actor utils.Principal, req *request.CreateEventRequest) (*response.EventResponse, error) {
	// 1. Only facilitators create events
	if !Can(actor.Role, ActionManageEvents) {
		return nil, apperror.PermissionDenied("Only facilitators can create events.")
	}

	// 2. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation(errs)
	}

	now := s.now()
	if req.StartsAt.Before(now) {
		return nil, apperror.Validation(map[string]string{"starts_at": "Start time cannot be in the past"})
	}

	// 3. Save
	event := &entity.Event{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		CreatedBy:   actor.UserID,
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("created_by", actor.UserID.String()),
	)

	return s.load(ctx, event.ID)
}

// List shows facilitators their own events only; seekers browse everything
// with the optional filters.
func (s *eventService) List(ctx context.Context, actor utils.Principal, req *request.EventListRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	var filter repository.EventFilter
	if actor.Role == entity.RoleFacilitator {
		filter.CreatedBy = &actor.UserID
	} else {
		filter = repository.EventFilter{
			Location:     req.Location,
			Language:     req.Language,
			Query:        req.Query,
			StartsAfter:  req.StartsAfter,
			StartsBefore: req.StartsBefore,
		}
	}

	events, err := s.repo.Event.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Event.CountAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]response.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, response.EventToResponse(&events[i], now))
	}

	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), int64(total)), nil
}

func (s *eventService) Get(ctx context.Context, eventID string) (*response.EventResponse, error) {
	id, err := utils.ParseUUID(eventID)
	if err != nil {
		return nil, errEventNotFound()
	}
	return s.load(ctx, id)
}

func (s *eventService) Update(ctx context.Context, actor utils.Principal, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	event, err := s.owned(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	// merge onto the stored values
	updated := event.Event
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Language != nil {
		updated.Language = *req.Language
	}
	if req.Location != nil {
		updated.Location = *req.Location
	}
	if req.StartsAt != nil {
		updated.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		updated.EndsAt = *req.EndsAt
	}
	if req.Capacity.Set {
		if v := req.Capacity.Value; v != nil && *v < 1 {
			return nil, apperror.Validation(map[string]string{"capacity": "Must be at least 1"})
		}
		updated.Capacity = req.Capacity.Value
	}

	now := s.now()
	if !updated.EndsAt.After(updated.StartsAt) {
		return nil, apperror.Validation(map[string]string{"ends_at": "End time must be after start time"})
	}
	if !updated.StartsAt.Equal(event.StartsAt) && updated.StartsAt.Before(now) {
		return nil, apperror.Validation(map[string]string{"starts_at": "Start time cannot be in the past"})
	}

	updated.UpdatedAt = now
	if err := s.repo.Event.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.log.Info("Event updated", zap.String("event_id", updated.ID.String()))
	return s.load(ctx, updated.ID)
}

// Delete removes the event together with its enrollments.
func (s *eventService) Delete(ctx context.Context, actor utils.Principal, eventID string) error {
	event, err := s.owned(ctx, actor, eventID)
	if err != nil {
		return err
	}

	if err := s.repo.Event.Delete(ctx, event.ID); err != nil {
		return err
	}

	s.log.Info("Event deleted",
		zap.String("event_id", event.ID.String()),
		zap.Int("enrollments", event.EnrolledCount),
	)
	return nil
}

// owned loads an event the actor created; anyone else is denied.
func (s *eventService) owned(ctx context.Context, actor utils.Principal, eventID string) (*entity.EventSummary, error) {
	id, err := utils.ParseUUID(eventID)
	if err != nil {
		return nil, errEventNotFound()
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errEventNotFound()
	}

	if !Can(actor.Role, ActionManageEvents) || event.CreatedBy != actor.UserID {
		return nil, apperror.PermissionDenied("You do not have permission to modify this event.")
	}

	return event, nil
}

func (s *eventService) load(ctx context.Context, id uuid.UUID) (*response.EventResponse, error) {
	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errEventNotFound()
	}

	resp := response.EventToResponse(event, s.now())
	return &resp, nil
}
