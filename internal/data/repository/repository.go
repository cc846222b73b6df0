package repository

import (
	"context"
	"errors"
	"fmt"

	"events-platform/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

type Repository struct {
	User       UserRepository
	OTP        OTPRepository
	Event      EventRepository
	Enrollment EnrollmentRepository

	// Tx runs a function against repositories bound to one transaction.
	// It is nil on repositories that are already inside a transaction.
	Tx Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	repo := newRepository(db, log)
	repo.Tx = NewTransactor(db, log)
	return repo
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewUserRepository(q, log),
		OTP:        NewOTPRepository(q, log),
		Event:      NewEventRepository(q, log),
		Enrollment: NewEnrollmentRepository(q, log),
	}
}

// Transactor scopes a unit of work to a single database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

type pgTransactor struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactor(db database.PgxIface, log *zap.Logger) Transactor {
	return &pgTransactor{db: db, log: log}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (t *pgTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				t.log.Warn("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(newRepository(tx, t.log)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
