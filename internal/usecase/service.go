package usecase

import (
	"events-platform/internal/data/repository"
	"events-platform/pkg/jwt"
	"events-platform/pkg/mailer"
	"events-platform/pkg/metrics"
	"events-platform/pkg/queue"
	"events-platform/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	OTP          OTPService
	Event        EventService
	Enrollment   EnrollmentService
	Notification NotificationService
}

// Deps are the infrastructure clients the services are built on.
type Deps struct {
	Repo      *repository.Repository
	JWT       *jwt.JWTService
	Mailer    mailer.Mailer
	Scheduler queue.Scheduler
	Metrics   *metrics.Metrics
}

func NewService(deps Deps, config *utils.Config, log *zap.Logger) *Service {
	notification := NewNotificationService(deps.Repo, deps.Mailer, deps.Scheduler, config.Notification, deps.Metrics, log)
	otp := NewOTPService(deps.Repo, notification, config.OTP, deps.Metrics, log)

	return &Service{
		Auth:         NewAuthService(deps.Repo, otp, deps.JWT, log),
		User:         NewUserService(deps.Repo.User, log),
		OTP:          otp,
		Event:        NewEventService(deps.Repo, log),
		Enrollment:   NewEnrollmentService(deps.Repo, notification, deps.Metrics, log),
		Notification: notification,
	}
}
