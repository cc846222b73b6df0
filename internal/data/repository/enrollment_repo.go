package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EnrollmentScope selects which of a seeker's enrollments to list.
type EnrollmentScope string

const (
	ScopeAll      EnrollmentScope = "all"
	ScopePast     EnrollmentScope = "past"
	ScopeUpcoming EnrollmentScope = "upcoming"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.EnrollmentDetail, error)
	FindByEventAndSeeker(ctx context.Context, eventID, seekerID uuid.UUID) (*entity.Enrollment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.EnrollmentStatus, at time.Time) error
	ListBySeeker(ctx context.Context, seekerID uuid.UUID, scope EnrollmentScope, now time.Time) ([]entity.EnrollmentDetail, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.EnrollmentDetail, error)
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]entity.EnrollmentDetail, error)
}

type enrollmentRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEnrollmentRepository(db database.Querier, log *zap.Logger) EnrollmentRepository {
	return &enrollmentRepository{
		db:  db,
		log: log.With(zap.String("repository", "enrollment")),
	}
}

const enrollmentDetailSelect = `
	SELECT en.id, en.event_id, en.seeker_id, en.status, en.created_at, en.updated_at,
	       e.title, e.starts_at, e.ends_at, e.location, e.language,
	       u.email
	FROM enrollments en
	JOIN events e ON e.id = en.event_id
	JOIN users u ON u.id = en.seeker_id
`

func scanEnrollmentDetail(row pgx.Row) (*entity.EnrollmentDetail, error) {
	var d entity.EnrollmentDetail
	err := row.Scan(
		&d.ID,
		&d.EventID,
		&d.SeekerID,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.EventTitle,
		&d.EventStartsAt,
		&d.EventEndsAt,
		&d.EventLocation,
		&d.EventLanguage,
		&d.SeekerEmail,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new enrollment. A second row for the same (event, seeker)
// pair is rejected by the unique constraint and reported as ErrDuplicate.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, event_id, seeker_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		enrollment.ID,
		enrollment.EventID,
		enrollment.SeekerID,
		enrollment.Status,
		enrollment.CreatedAt,
		enrollment.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create enrollment: %w", ErrDuplicate)
		}
		r.log.Error("Failed to create enrollment",
			zap.Error(err),
			zap.String("event_id", enrollment.EventID.String()),
			zap.String("seeker_id", enrollment.SeekerID.String()),
		)
		return fmt.Errorf("create enrollment: %w", err)
	}

	return nil
}

func (r *enrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE en.id = $1`

	detail, err := scanEnrollmentDetail(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find enrollment by ID",
			zap.Error(err),
			zap.String("enrollment_id", id.String()),
		)
		return nil, fmt.Errorf("find enrollment by ID %s: %w", id.String(), err)
	}

	return detail, nil
}

func (r *enrollmentRepository) FindByEventAndSeeker(ctx context.Context, eventID, seekerID uuid.UUID) (*entity.Enrollment, error) {
	query := `
		SELECT id, event_id, seeker_id, status, created_at, updated_at
		FROM enrollments
		WHERE event_id = $1 AND seeker_id = $2
	`

	var enrollment entity.Enrollment
	err := r.db.QueryRow(ctx, query, eventID, seekerID).Scan(
		&enrollment.ID,
		&enrollment.EventID,
		&enrollment.SeekerID,
		&enrollment.Status,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find enrollment",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.String("seeker_id", seekerID.String()),
		)
		return nil, fmt.Errorf("find enrollment of seeker %s: %w", seekerID.String(), err)
	}

	return &enrollment, nil
}

func (r *enrollmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.EnrollmentStatus, at time.Time) error {
	query := `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status, at)
	if err != nil {
		r.log.Error("Failed to update enrollment status",
			zap.Error(err),
			zap.String("enrollment_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update enrollment %s status: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("enrollment %s not found", id.String())
	}

	return nil
}

// ListBySeeker returns the seeker's enrollments. Past and upcoming scopes only
// include active enrollments; upcoming is ordered by start time.
func (r *enrollmentRepository) ListBySeeker(ctx context.Context, seekerID uuid.UUID, scope EnrollmentScope, now time.Time) ([]entity.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + ` WHERE en.seeker_id = $1`
	args := []any{seekerID}

	switch scope {
	case ScopePast:
		query += ` AND en.status = 'enrolled' AND e.ends_at < $2 ORDER BY e.starts_at DESC`
		args = append(args, now)
	case ScopeUpcoming:
		query += ` AND en.status = 'enrolled' AND e.ends_at >= $2 ORDER BY e.starts_at ASC`
		args = append(args, now)
	default:
		query += ` ORDER BY en.created_at DESC`
	}

	return r.list(ctx, query, args...)
}

// ListByEvent is the roster of active enrollments for one event.
func (r *enrollmentRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]entity.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + `
		WHERE en.event_id = $1 AND en.status = 'enrolled'
		ORDER BY en.created_at ASC
	`
	return r.list(ctx, query, eventID)
}

// FindStartingBetween returns active enrollments whose event starts in [from, to).
func (r *enrollmentRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]entity.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + `
		WHERE en.status = 'enrolled' AND e.starts_at >= $1 AND e.starts_at < $2
		ORDER BY e.starts_at ASC
	`
	return r.list(ctx, query, from, to)
}

func (r *enrollmentRepository) list(ctx context.Context, query string, args ...any) ([]entity.EnrollmentDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list enrollments", zap.Error(err))
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var details []entity.EnrollmentDetail
	for rows.Next() {
		detail, err := scanEnrollmentDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan enrollment row", zap.Error(err))
			return nil, fmt.Errorf("scan enrollment row: %w", err)
		}
		details = append(details, *detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}

	return details, nil
}
