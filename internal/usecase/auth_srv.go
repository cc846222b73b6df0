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
	"events-platform/pkg/jwt"
	"events-platform/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) error
	VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error
	ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error
	Login(ctx context.Context, req *request.LoginRequest) (*jwt.TokenPair, error)
	Refresh(ctx context.Context, req *request.RefreshRequest) (*response.AccessResponse, error)
}

type authService struct {
	repo *repository.Repository
	otp  OTPService
	jwt  *jwt.JWTService
	log  *zap.Logger
	now  func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	otp OTPService,
	jwtService *jwt.JWTService,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo: repo,
		otp:  otp,
		jwt:  jwtService,
		log:  log.With(zap.String("service", "auth")),
		now:  time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) error {
	// 1. Validate input
	req.Email = normalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return apperror.Validation(errs)
	}

	// 2. Email must be free
	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperror.BadRequest(apperror.CodeEmailExists, "A user with this email already exists.")
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return err
	}

	// 4. Create the unverified account
	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:         req.Email,
		PasswordHash:  hashed,
		Role:          entity.UserRole(req.Role),
		EmailVerified: false,
		IsActive:      true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.BadRequest(apperror.CodeEmailExists, "A user with this email already exists.")
		}
		return err
	}

	// 5. Send the verification code
	if _, err := s.otp.Issue(ctx, user.Email); err != nil {
		return err
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
	)
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *request.VerifyEmailRequest) error {
	req.Email = normalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	return s.otp.Verify(ctx, req.Email, strings.TrimSpace(req.OTP))
}

func (s *authService) ResendOTP(ctx context.Context, req *request.ResendOTPRequest) error {
	req.Email = normalizeEmail(req.Email)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return apperror.Validation(errs)
	}

	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound(apperror.CodeUserNotFound, "User with this email does not exist.")
	}
	if user.EmailVerified {
		return apperror.BadRequest(apperror.CodeAlreadyVerified, "Email is already verified.")
	}

	_, err = s.otp.Issue(ctx, user.Email)
	return err
}

// Login refuses unverified accounts before the password is checked.
func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*jwt.TokenPair, error) {
	// 1. Both fields present
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperror.BadRequest(apperror.CodeMissingCredentials, "Email and password are required.")
	}

	// 2. Known account
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		s.log.Warn("Invalid login attempt", zap.String("email", email))
		return nil, apperror.Unauthorized(apperror.CodeInvalidCredentials, "Invalid email or password.")
	}

	// 3. Verified accounts only
	if !user.EmailVerified {
		return nil, apperror.Forbidden(apperror.CodeEmailNotVerified, "Email is not verified. Please verify your email first.")
	}

	// 4. Password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", email))
		return nil, apperror.Unauthorized(apperror.CodeInvalidCredentials, "Invalid email or password.")
	}

	// 5. Issue tokens
	pair, err := s.jwt.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		s.log.Error("Failed to issue tokens", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, req *request.RefreshRequest) (*response.AccessResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation(errs)
	}

	access, claims, err := s.jwt.Refresh(req.Refresh)
	if err != nil {
		return nil, apperror.Unauthorized(apperror.CodeTokenNotValid, "Token is invalid or expired.")
	}

	user, err := s.repo.User.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperror.Unauthorized(apperror.CodeTokenNotValid, "Token is invalid or expired.")
	}

	return &response.AccessResponse{Access: access}, nil
}
