package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/internal/data/repository"
	"events-platform/internal/dto/request"
	"events-platform/internal/dto/response"
	"events-platform/pkg/apperror"
	"events-platform/pkg/metrics"
	"events-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EnrollmentService interface {
	// Enroll reports created=true when a new row was inserted and false when a
	// canceled row was re-activated.
	Enroll(ctx context.Context, actor utils.Principal, req *request.CreateEnrollmentRequest) (resp *response.EnrollmentResponse, created bool, err error)
	Get(ctx context.Context, actor utils.Principal, enrollmentID string) (*response.EnrollmentResponse, error)
	Update(ctx context.Context, actor utils.Principal, enrollmentID string, req *request.UpdateEnrollmentRequest) (*response.EnrollmentResponse, error)
	Cancel(ctx context.Context, actor utils.Principal, enrollmentID string) (*response.EnrollmentResponse, error)
	List(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error)
	ListPast(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error)
	ListUpcoming(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error)
	Roster(ctx context.Context, actor utils.Principal, eventID string) ([]response.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo     *repository.Repository
	notifier NotificationService
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewEnrollmentService(
	repo *repository.Repository,
	notifier NotificationService,
	metrics *metrics.Metrics,
	log *zap.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		log:      log.With(zap.String("service", "enrollment")),
		now:      time.Now,
	}
}

func errEnrollmentNotFound() *apperror.AppError {
	return apperror.NotFound(apperror.CodeNotFound, "Not found.")
}

func (s *enrollmentService) Enroll(ctx context.Context, actor utils.Principal, req *request.CreateEnrollmentRequest) (*response.EnrollmentResponse, bool, error) {
	if !Can(actor.Role, ActionEnroll) {
		return nil, false, apperror.PermissionDenied("Only seekers can enroll in events.")
	}

	raw := strings.TrimSpace(req.Event)
	if raw == "" {
		return nil, false, apperror.BadRequest(apperror.CodeMissingEvent, "Event ID is required.")
	}
	eventID, err := utils.ParseUUID(raw)
	if err != nil {
		return nil, false, errEventNotFound()
	}

	return s.enroll(ctx, actor, eventID)
}

// enroll runs the state machine for (event, seeker) while holding the event
// row lock, so the capacity check and the write see the same count.
func (s *enrollmentService) enroll(ctx context.Context, actor utils.Principal, eventID uuid.UUID) (*response.EnrollmentResponse, bool, error) {
	var (
		enrollmentID uuid.UUID
		created      bool
	)

	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		// 1. Event exists
		event, err := tx.Event.FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return errEventNotFound()
		}

		// 2. Not already enrolled
		existing, err := tx.Enrollment.FindByEventAndSeeker(ctx, eventID, actor.UserID)
		if err != nil {
			return err
		}
		if existing != nil && existing.IsEnrolled() {
			return apperror.BadRequest(apperror.CodeAlreadyEnrolled, "You are already enrolled in this event.")
		}

		// 3. Seats left
		if event.Capacity != nil {
			enrolled, err := tx.Event.CountEnrolled(ctx, eventID)
			if err != nil {
				return err
			}
			if enrolled >= *event.Capacity {
				return apperror.BadRequest(apperror.CodeCapacityFull, "This event is full.")
			}
		}

		// 4. Not over; a canceled row may be re-activated after the event ends
		now := s.now()
		if existing == nil && event.IsPast(now) {
			return apperror.BadRequest(apperror.CodePastEvent, "Cannot enroll in a past event.")
		}

		// 5. Re-activate or insert
		if existing != nil {
			enrollmentID = existing.ID
			return tx.Enrollment.UpdateStatus(ctx, existing.ID, entity.EnrollmentStatusEnrolled, now)
		}

		enrollment := &entity.Enrollment{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        utils.GenerateUUID(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			EventID:  eventID,
			SeekerID: actor.UserID,
			Status:   entity.EnrollmentStatusEnrolled,
		}
		if err := tx.Enrollment.Create(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.BadRequest(apperror.CodeAlreadyEnrolled, "You are already enrolled in this event.")
			}
			return err
		}
		enrollmentID = enrollment.ID
		created = true
		return nil
	})
	if err != nil {
		s.countAttempt(err)
		return nil, false, err
	}

	if created {
		s.metrics.Enrollments.WithLabelValues("created").Inc()
	} else {
		s.metrics.Enrollments.WithLabelValues("reenrolled").Inc()
	}

	s.log.Info("Seeker enrolled",
		zap.String("enrollment_id", enrollmentID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("seeker_id", actor.UserID.String()),
		zap.Bool("created", created),
	)

	// 6. Follow-up email, fire and forget
	if err := s.notifier.ScheduleFollowup(ctx, enrollmentID); err != nil {
		s.log.Error("Failed to schedule follow-up", zap.Error(err),
			zap.String("enrollment_id", enrollmentID.String()))
	}

	resp, err := s.load(ctx, enrollmentID)
	if err != nil {
		return nil, false, err
	}
	return resp, created, nil
}

func (s *enrollmentService) countAttempt(err error) {
	result := apperror.CodeServerError
	if appErr, ok := apperror.As(err); ok {
		result = appErr.Code
	}
	s.metrics.Enrollments.WithLabelValues(result).Inc()
}

func (s *enrollmentService) Get(ctx context.Context, actor utils.Principal, enrollmentID string) (*response.EnrollmentResponse, error) {
	detail, err := s.owned(ctx, actor, enrollmentID)
	if err != nil {
		return nil, err
	}

	resp := response.EnrollmentToResponse(detail)
	return &resp, nil
}

// Update toggles the status. Re-enrolling goes through the same
// duplicate and capacity checks as a new enrollment.
func (s *enrollmentService) Update(ctx context.Context, actor utils.Principal, enrollmentID string, req *request.UpdateEnrollmentRequest) (*response.EnrollmentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	if entity.EnrollmentStatus(req.Status) == entity.EnrollmentStatusCanceled {
		return s.Cancel(ctx, actor, enrollmentID)
	}

	detail, err := s.owned(ctx, actor, enrollmentID)
	if err != nil {
		return nil, err
	}

	resp, _, err := s.enroll(ctx, actor, detail.EventID)
	return resp, err
}

// Cancel is idempotent; the row is kept so the seeker can enroll again.
func (s *enrollmentService) Cancel(ctx context.Context, actor utils.Principal, enrollmentID string) (*response.EnrollmentResponse, error) {
	detail, err := s.owned(ctx, actor, enrollmentID)
	if err != nil {
		return nil, err
	}

	if detail.IsEnrolled() {
		if err := s.repo.Enrollment.UpdateStatus(ctx, detail.ID, entity.EnrollmentStatusCanceled, s.now()); err != nil {
			return nil, err
		}
		s.metrics.Enrollments.WithLabelValues("canceled").Inc()
		s.log.Info("Enrollment canceled",
			zap.String("enrollment_id", detail.ID.String()),
			zap.String("event_id", detail.EventID.String()),
		)
	}

	return s.load(ctx, detail.ID)
}

func (s *enrollmentService) List(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error) {
	return s.list(ctx, actor, repository.ScopeAll)
}

func (s *enrollmentService) ListPast(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error) {
	return s.list(ctx, actor, repository.ScopePast)
}

func (s *enrollmentService) ListUpcoming(ctx context.Context, actor utils.Principal) ([]response.EnrollmentResponse, error) {
	return s.list(ctx, actor, repository.ScopeUpcoming)
}

func (s *enrollmentService) list(ctx context.Context, actor utils.Principal, scope repository.EnrollmentScope) ([]response.EnrollmentResponse, error) {
	if !Can(actor.Role, ActionViewEnrollments) {
		return nil, apperror.PermissionDenied("Only seekers have enrollments.")
	}

	details, err := s.repo.Enrollment.ListBySeeker(ctx, actor.UserID, scope, s.now())
	if err != nil {
		return nil, err
	}
	return response.EnrollmentsToResponse(details), nil
}

// Roster lists the active enrollments of an event to its owner.
func (s *enrollmentService) Roster(ctx context.Context, actor utils.Principal, eventID string) ([]response.EnrollmentResponse, error) {
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
	if event.CreatedBy != actor.UserID {
		return nil, apperror.PermissionDenied("Only the event owner can view its enrollments.")
	}

	details, err := s.repo.Enrollment.ListByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return response.EnrollmentsToResponse(details), nil
}

// owned loads an enrollment of the actor. Other seekers' rows look absent.
func (s *enrollmentService) owned(ctx context.Context, actor utils.Principal, enrollmentID string) (*entity.EnrollmentDetail, error) {
	id, err := utils.ParseUUID(enrollmentID)
	if err != nil {
		return nil, errEnrollmentNotFound()
	}

	detail, err := s.repo.Enrollment.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil || detail.SeekerID != actor.UserID {
		return nil, errEnrollmentNotFound()
	}
	return detail, nil
}

func (s *enrollmentService) load(ctx context.Context, id uuid.UUID) (*response.EnrollmentResponse, error) {
	detail, err := s.repo.Enrollment.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, errEnrollmentNotFound()
	}

	resp := response.EnrollmentToResponse(detail)
	return &resp, nil
}
