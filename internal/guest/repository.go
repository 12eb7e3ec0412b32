// AngelaMos | 2026
// repository.go

package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Touch(ctx context.Context, token string, at time.Time) error
	Increment(ctx context.Context, token string, at time.Time) error
	Consume(ctx context.Context, token string, at time.Time) (int, error)
	PurgeInactive(ctx context.Context, before time.Time) (int64, error)
	Counts(ctx context.Context) (Counts, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository accepts a pool or a transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Session) error {
	query := r.db.Rebind(`
		INSERT INTO guest_sessions (id, token, roll_count, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Token,
		s.RollCount,
		s.CreatedAt,
		s.LastActivity,
	)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create guest session: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create guest session: %w", err)
	}

	return nil
}

func (r *repository) GetByToken(
	ctx context.Context,
	token string,
) (*Session, error) {
	query := r.db.Rebind(`
		SELECT id, token, roll_count, created_at, last_activity
		FROM guest_sessions
		WHERE token = ?`)

	var s Session
	err := r.db.GetContext(ctx, &s, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get guest session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get guest session: %w", err)
	}

	return &s, nil
}

func (r *repository) Touch(
	ctx context.Context,
	token string,
	at time.Time,
) error {
	query := r.db.Rebind(`UPDATE guest_sessions SET last_activity = ? WHERE token = ?`)

	result, err := r.db.ExecContext(ctx, query, at, token)
	if err != nil {
		return fmt.Errorf("touch guest session: %w", err)
	}

	return expectOneRow(result, "touch guest session")
}

func (r *repository) Increment(
	ctx context.Context,
	token string,
	at time.Time,
) error {
	query := r.db.Rebind(`
		UPDATE guest_sessions
		SET roll_count = roll_count + 1, last_activity = ?
		WHERE token = ?`)

	result, err := r.db.ExecContext(ctx, query, at, token)
	if err != nil {
		return fmt.Errorf("increment guest rolls: %w", err)
	}

	return expectOneRow(result, "increment guest rolls")
}

// Consume takes one roll from the guest's allowance in a single conditional
// update and returns the new roll count. It fails with ErrQuotaExceeded,
// leaving the row untouched, once the limit is reached.
func (r *repository) Consume(
	ctx context.Context,
	token string,
	at time.Time,
) (int, error) {
	query := r.db.Rebind(`
		UPDATE guest_sessions
		SET roll_count = roll_count + 1, last_activity = ?
		WHERE token = ? AND roll_count < ?`)

	result, err := r.db.ExecContext(ctx, query, at, token, GuestRollLimit)
	if err != nil {
		return 0, fmt.Errorf("consume guest roll: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("consume guest roll: %w", err)
	}

	s, err := r.GetByToken(ctx, token)
	if err != nil {
		return 0, err
	}

	if rows == 0 {
		return s.RollCount, fmt.Errorf("consume guest roll: %w", core.ErrQuotaExceeded)
	}

	return s.RollCount, nil
}

func (r *repository) PurgeInactive(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	query := r.db.Rebind(`DELETE FROM guest_sessions WHERE last_activity < ?`)

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("purge guest sessions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge guest sessions: %w", err)
	}

	return removed, nil
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	query := r.db.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN roll_count >= ? THEN 1 ELSE 0 END), 0) AS exhausted
		FROM guest_sessions`)

	var c Counts
	if err := r.db.GetContext(ctx, &c, query, GuestRollLimit); err != nil {
		return Counts{}, fmt.Errorf("count guest sessions: %w", err)
	}

	return c, nil
}

func expectOneRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
