package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"events-platform/internal/data/entity"
	"events-platform/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EventFilter narrows event listings. Zero values are ignored.
type EventFilter struct {
	CreatedBy    *uuid.UUID
	Location     string
	Language     string
	Query        string
	StartsAfter  *time.Time
	StartsBefore *time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.EventSummary, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindAll(ctx context.Context, filter EventFilter, limit, offset int) ([]entity.EventSummary, error)
	CountAll(ctx context.Context, filter EventFilter) (int, error)
	CountEnrolled(ctx context.Context, id uuid.UUID) (int, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEventRepository(db database.Querier, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

const eventSummarySelect = `
	SELECT e.id, e.title, e.description, e.language, e.location,
	       e.starts_at, e.ends_at, e.capacity, e.created_by,
	       e.created_at, e.updated_at,
	       u.email AS creator_email,
	       (SELECT COUNT(*) FROM enrollments en
	         WHERE en.event_id = e.id AND en.status = 'enrolled') AS enrolled_count
	FROM events e
	JOIN users u ON u.id = e.created_by
`

func scanEventSummary(row pgx.Row) (*entity.EventSummary, error) {
	var e entity.EventSummary
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Language,
		&e.Location,
		&e.StartsAt,
		&e.EndsAt,
		&e.Capacity,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.CreatorEmail,
		&e.EnrolledCount,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches value as a literal substring under ILIKE.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// buildWhere renders the filter as a WHERE clause with positional args.
func (f EventFilter) buildWhere() (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CreatedBy != nil {
		add("e.created_by = $%d", *f.CreatedBy)
	}
	if f.Location != "" {
		add("e.location ILIKE $%d", containsPattern(f.Location))
	}
	if f.Language != "" {
		add("e.language ILIKE $%d", containsPattern(f.Language))
	}
	if f.Query != "" {
		args = append(args, containsPattern(f.Query))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d)", n, n))
	}
	if f.StartsAfter != nil {
		add("e.starts_at >= $%d", *f.StartsAfter)
	}
	if f.StartsBefore != nil {
		add("e.starts_at <= $%d", *f.StartsBefore)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, title, description, language, location, starts_at, ends_at,
		                    capacity, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Language,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("title", event.Title),
			zap.String("created_by", event.CreatedBy.String()),
		)
		return fmt.Errorf("create event %s: %w", event.Title, err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.EventSummary, error) {
	query := eventSummarySelect + ` WHERE e.id = $1`

	event, err := scanEventSummary(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return event, nil
}

// FindByIDForUpdate locks the event row until the surrounding transaction ends.
// Enrollment writes for one event are serialized on this lock.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.language, e.location,
		       e.starts_at, e.ends_at, e.capacity, e.created_by,
		       e.created_at, e.updated_at
		FROM events e
		WHERE e.id = $1
		FOR UPDATE OF e
	`

	var event entity.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Language,
		&event.Location,
		&event.StartsAt,
		&event.EndsAt,
		&event.Capacity,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to lock event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("lock event %s: %w", id.String(), err)
	}

	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context, filter EventFilter, limit, offset int) ([]entity.EventSummary, error) {
	where, args := filter.buildWhere()
	args = append(args, limit, offset)
	query := eventSummarySelect + where +
		fmt.Sprintf(" ORDER BY e.starts_at ASC, e.id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []entity.EventSummary
	for rows.Next() {
		event, err := scanEventSummary(rows)
		if err != nil {
			r.log.Error("Failed to scan event row", zap.Error(err))
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

func (r *eventRepository) CountAll(ctx context.Context, filter EventFilter) (int, error) {
	where, args := filter.buildWhere()
	query := `SELECT COUNT(*) FROM events e` + where

	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count events", zap.Error(err))
		return 0, fmt.Errorf("count events: %w", err)
	}

	return total, nil
}

// CountEnrolled counts only active enrollments.
func (r *eventRepository) CountEnrolled(ctx context.Context, id uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE event_id = $1 AND status = 'enrolled'`

	var total int
	if err := r.db.QueryRow(ctx, query, id).Scan(&total); err != nil {
		r.log.Error("Failed to count enrollments",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return 0, fmt.Errorf("count enrollments of event %s: %w", id.String(), err)
	}

	return total, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, language = $4, location = $5,
		    starts_at = $6, ends_at = $7, capacity = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Language,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Capacity,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("update event %s: %w", event.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", event.ID.String())
	}

	return nil
}

// Delete removes the event; its enrollments go with it through ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("delete event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", id.String())
	}

	return nil
}
