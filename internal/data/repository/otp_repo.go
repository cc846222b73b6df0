package repository

import (
	"context"
	"errors"
	"fmt"

	"events-platform/internal/data/entity"
	"events-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.EmailOTP) error
	FindLatestUnused(ctx context.Context, email string) (*entity.EmailOTP, error)
	FindLatest(ctx context.Context, email string) (*entity.EmailOTP, error)
	IncrementAttempts(ctx context.Context, otpID uuid.UUID) (int, error)
	MarkAsUsed(ctx context.Context, otpID uuid.UUID) (bool, error)
}

type otpRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewOTPRepository(db database.Querier, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.EmailOTP) error {
	query := `
		INSERT INTO email_otps (id, email, code, attempts, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		otp.ID,
		otp.Email,
		otp.Code,
		otp.Attempts,
		otp.IsUsed,
		otp.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create OTP",
			zap.Error(err),
			zap.String("email", otp.Email),
		)
		return fmt.Errorf("create OTP for %s: %w", otp.Email, err)
	}

	return nil
}

func (r *otpRepository) FindLatestUnused(ctx context.Context, email string) (*entity.EmailOTP, error) {
	return r.findLatest(ctx, email, true)
}

func (r *otpRepository) FindLatest(ctx context.Context, email string) (*entity.EmailOTP, error) {
	return r.findLatest(ctx, email, false)
}

func (r *otpRepository) findLatest(ctx context.Context, email string, unusedOnly bool) (*entity.EmailOTP, error) {
	query := `
		SELECT id, email, code, attempts, is_used, created_at
		FROM email_otps
		WHERE lower(email) = lower($1)
		  AND ($2 = false OR is_used = false)
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp entity.EmailOTP
	err := r.db.QueryRow(ctx, query, email, unusedOnly).Scan(
		&otp.ID,
		&otp.Email,
		&otp.Code,
		&otp.Attempts,
		&otp.IsUsed,
		&otp.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest OTP",
			zap.Error(err),
			zap.String("email", email),
			zap.Bool("unused_only", unusedOnly),
		)
		return nil, fmt.Errorf("find latest OTP for %s: %w", email, err)
	}

	return &otp, nil
}

// IncrementAttempts bumps the counter in place and returns the new value.
func (r *otpRepository) IncrementAttempts(ctx context.Context, otpID uuid.UUID) (int, error) {
	query := `
		UPDATE email_otps
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int
	err := r.db.QueryRow(ctx, query, otpID).Scan(&attempts)
	if err != nil {
		r.log.Error("Failed to increment OTP attempts",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return 0, fmt.Errorf("increment attempts of OTP %s: %w", otpID.String(), err)
	}

	return attempts, nil
}

// MarkAsUsed consumes the code; it reports false when another request got there first.
func (r *otpRepository) MarkAsUsed(ctx context.Context, otpID uuid.UUID) (bool, error) {
	query := `
		UPDATE email_otps
		SET is_used = true
		WHERE id = $1 AND is_used = false
	`

	result, err := r.db.Exec(ctx, query, otpID)
	if err != nil {
		r.log.Error("Failed to mark OTP as used",
			zap.Error(err),
			zap.String("otp_id", otpID.String()),
		)
		return false, fmt.Errorf("mark OTP %s as used: %w", otpID.String(), err)
	}

	return result.RowsAffected() == 1, nil
}
