package usecase

import (
	"context"
	"fmt"
	"time"

	"events-platform/internal/data/repository"
	"events-platform/pkg/mailer"
	"events-platform/pkg/metrics"
	"events-platform/pkg/queue"
	"events-platform/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskSendFollowup is the queue task name of the delayed enrollment email.
const TaskSendFollowup = "send_followup_email"

type FollowupPayload struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
}

type NotificationService interface {
	SendOTP(ctx context.Context, email, code string, expiry time.Duration) error
	ScheduleFollowup(ctx context.Context, enrollmentID uuid.UUID) error
	SendFollowup(ctx context.Context, enrollmentID uuid.UUID) error
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

type notificationService struct {
	repo      *repository.Repository
	mailer    mailer.Mailer
	scheduler queue.Scheduler
	config    utils.NotificationConfig
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewNotificationService(
	repo *repository.Repository,
	mailer mailer.Mailer,
	scheduler queue.Scheduler,
	config utils.NotificationConfig,
	metrics *metrics.Metrics,
	log *zap.Logger,
) NotificationService {
	return &notificationService{
		repo:      repo,
		mailer:    mailer,
		scheduler: scheduler,
		config:    config,
		metrics:   metrics,
		log:       log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) SendOTP(ctx context.Context, email, code string, expiry time.Duration) error {
	subject := "Verify your email"
	body := fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires in %d minutes. If you did not sign up, ignore this email.",
		code, int(expiry.Minutes()),
	)
	return s.send(ctx, "otp", email, subject, body)
}

func (s *notificationService) ScheduleFollowup(ctx context.Context, enrollmentID uuid.UUID) error {
	task, err := s.scheduler.ScheduleAfter(ctx, s.config.FollowupDelay, TaskSendFollowup,
		FollowupPayload{EnrollmentID: enrollmentID})
	if err != nil {
		s.metrics.QueuedTasks.WithLabelValues(TaskSendFollowup, "schedule_failed").Inc()
		return fmt.Errorf("schedule follow-up for enrollment %s: %w", enrollmentID.String(), err)
	}

	s.metrics.QueuedTasks.WithLabelValues(TaskSendFollowup, "scheduled").Inc()
	s.log.Debug("Follow-up scheduled",
		zap.String("enrollment_id", enrollmentID.String()),
		zap.String("task_id", task.ID),
		zap.Time("due_at", task.DueAt),
	)
	return nil
}

// SendFollowup confirms an enrollment. Rows canceled in the meantime are skipped.
func (s *notificationService) SendFollowup(ctx context.Context, enrollmentID uuid.UUID) error {
	detail, err := s.repo.Enrollment.FindByID(ctx, enrollmentID)
	if err != nil {
		return fmt.Errorf("load enrollment %s: %w", enrollmentID.String(), err)
	}
	if detail == nil || !detail.IsEnrolled() {
		s.log.Info("Follow-up skipped",
			zap.String("enrollment_id", enrollmentID.String()),
		)
		s.metrics.Notifications.WithLabelValues("followup", "skipped").Inc()
		return nil
	}

	subject := fmt.Sprintf("You're enrolled: %s", detail.EventTitle)
	body := fmt.Sprintf(
		"Hi,\n\nThis confirms your enrollment in %q.\n\nStarts: %s\nEnds: %s\nLocation: %s\nLanguage: %s\n",
		detail.EventTitle,
		detail.EventStartsAt.Format(time.RFC1123),
		detail.EventEndsAt.Format(time.RFC1123),
		detail.EventLocation,
		detail.EventLanguage,
	)
	return s.send(ctx, "followup", detail.SeekerEmail, subject, body)
}

// SendReminders emails every enrolled seeker whose event starts within
// [now+lead, now+lead+interval). Individual send failures do not stop the run.
func (s *notificationService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	from := now.Add(s.config.ReminderLead)
	to := from.Add(s.config.ReminderInterval)

	details, err := s.repo.Enrollment.FindStartingBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("find enrollments starting soon: %w", err)
	}

	sent := 0
	for i := range details {
		d := &details[i]
		subject := fmt.Sprintf("Reminder: %s starts soon", d.EventTitle)
		body := fmt.Sprintf(
			"Hi,\n\n%q starts at %s.\nLocation: %s\n\nSee you there.",
			d.EventTitle,
			d.EventStartsAt.Format(time.RFC1123),
			d.EventLocation,
		)
		if err := s.send(ctx, "reminder", d.SeekerEmail, subject, body); err != nil {
			continue
		}
		sent++
	}

	if len(details) > 0 {
		s.log.Info("Reminders sent",
			zap.Int("sent", sent),
			zap.Int("due", len(details)),
			zap.Time("window_start", from),
			zap.Time("window_end", to),
		)
	}

	return sent, nil
}

func (s *notificationService) send(ctx context.Context, kind, to, subject, body string) error {
	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		s.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("kind", kind),
			zap.String("to", to),
		)
		s.metrics.Notifications.WithLabelValues(kind, "failed").Inc()
		return err
	}

	s.metrics.Notifications.WithLabelValues(kind, "sent").Inc()
	return nil
}
