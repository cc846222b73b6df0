package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/internal/data/repository"
	"events-platform/pkg/apperror"
	"events-platform/pkg/metrics"
	"events-platform/pkg/utils"

	"go.uber.org/zap"
)

type OTPService interface {
	Issue(ctx context.Context, email string) (*entity.EmailOTP, error)
	Verify(ctx context.Context, email, code string) error
}

type otpService struct {
	repo     *repository.Repository
	notifier NotificationService
	config   utils.OTPConfig
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewOTPService(
	repo *repository.Repository,
	notifier NotificationService,
	config utils.OTPConfig,
	metrics *metrics.Metrics,
	log *zap.Logger,
) OTPService {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 3
	}
	if config.Expiry <= 0 {
		config.Expiry = 5 * time.Minute
	}

	return &otpService{
		repo:     repo,
		notifier: notifier,
		config:   config,
		metrics:  metrics,
		log:      log.With(zap.String("service", "otp")),
		now:      time.Now,
	}
}

// Issue stores a fresh code for email and mails it. A mail failure is logged
// only; the code stays valid and can be re-sent.
func (s *otpService) Issue(ctx context.Context, email string) (*entity.EmailOTP, error) {
	code, err := utils.GenerateOTP(s.config.Length)
	if err != nil {
		return nil, fmt.Errorf("generate OTP: %w", err)
	}

	otp := &entity.EmailOTP{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: s.now(),
		},
		Email:    email,
		Code:     code,
		Attempts: 0,
		IsUsed:   false,
	}

	if err := s.repo.OTP.Create(ctx, otp); err != nil {
		return nil, err
	}

	if err := s.notifier.SendOTP(ctx, email, code, s.config.Expiry); err != nil {
		s.log.Warn("OTP stored but not delivered", zap.Error(err), zap.String("email", email))
	}

	s.log.Info("OTP issued", zap.String("email", email))
	return otp, nil
}

// Verify checks code against the most recent unused OTP of email. Every
// mismatch is counted; a match consumes the code and verifies the account.
func (s *otpService) Verify(ctx context.Context, email, code string) error {
	result, err := s.verify(ctx, email, code)
	if err != nil {
		if appErr, ok := apperror.As(err); ok {
			result = appErr.Code
		} else {
			result = apperror.CodeServerError
		}
	}
	s.metrics.OTPVerifications.WithLabelValues(result).Inc()
	return err
}

func (s *otpService) verify(ctx context.Context, email, code string) (string, error) {
	// 1. Account must exist
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperror.BadRequest(apperror.CodeUserNotFound, "User with this email does not exist.")
	}

	// 2. Most recent unused code
	otp, err := s.repo.OTP.FindLatestUnused(ctx, email)
	if err != nil {
		return "", err
	}
	if otp == nil {
		latest, err := s.repo.OTP.FindLatest(ctx, email)
		if err != nil {
			return "", err
		}
		if latest != nil && latest.IsUsed {
			return "", apperror.BadRequest(apperror.CodeOTPExceeded, "OTP has already been used.")
		}
		return "", apperror.BadRequest(apperror.CodeOTPNotFound, "No OTP found for this email. Please request a new one.")
	}

	now := s.now()

	// 3. Expiry
	if otp.IsExpired(now, s.config.Expiry) {
		return "", apperror.BadRequest(apperror.CodeOTPExpired, "OTP has expired. Please request a new one.")
	}

	// 4. Attempts left
	if !otp.CanAttempt(now, s.config.Expiry, s.config.MaxAttempts) {
		return "", apperror.BadRequest(apperror.CodeOTPExceeded, "Maximum OTP attempts exceeded. Please request a new one.")
	}

	// 5. Mismatch
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		attempts, err := s.repo.OTP.IncrementAttempts(ctx, otp.ID)
		if err != nil {
			return "", err
		}

		remaining := s.config.MaxAttempts - attempts
		s.log.Info("OTP mismatch",
			zap.String("email", email),
			zap.Int("attempts", attempts),
		)
		if remaining > 0 {
			return "", apperror.BadRequest(apperror.CodeInvalidOTP,
				fmt.Sprintf("Invalid OTP. %d attempts remaining.", remaining))
		}
		return "", apperror.BadRequest(apperror.CodeOTPExceeded, "Maximum OTP attempts exceeded. Please request a new one.")
	}

	// 6. Match: consume the code and verify the account together
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		used, err := tx.OTP.MarkAsUsed(ctx, otp.ID)
		if err != nil {
			return err
		}
		if !used {
			return apperror.BadRequest(apperror.CodeOTPExceeded, "OTP has already been used.")
		}

		flipped, err := tx.User.MarkEmailVerified(ctx, user.ID, now)
		if err != nil {
			return err
		}
		if flipped {
			s.log.Info("Email verified",
				zap.String("user_id", user.ID.String()),
				zap.String("email", email),
			)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return "verified", nil
}
