// AngelaMos | 2026
// repository.go

package roll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

type Repository interface {
	Create(ctx context.Context, r *DiceRoll) error
	GetByID(ctx context.Context, id string) (*DiceRoll, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]DiceRoll, error)
	ListByGuest(ctx context.Context, token string, limit int) ([]DiceRoll, error)
	ListAllByUser(ctx context.Context, userID string) ([]DiceRoll, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository accepts a pool or a transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const rollColumns = `id, user_id, guest_token, dice_sides, dice_count,
	results, total, created_at`

func (r *repository) Create(ctx context.Context, roll *DiceRoll) error {
	query := r.db.Rebind(`
		INSERT INTO dice_rolls (
			id, user_id, guest_token, dice_sides, dice_count,
			results, total, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		roll.ID,
		roll.UserID,
		roll.GuestToken,
		roll.DiceSides,
		roll.DiceCount,
		roll.Results,
		roll.Total,
		roll.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create roll: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*DiceRoll, error) {
	query := r.db.Rebind(`SELECT ` + rollColumns + ` FROM dice_rolls WHERE id = ?`)

	var roll DiceRoll
	err := r.db.GetContext(ctx, &roll, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get roll: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get roll: %w", err)
	}

	return &roll, nil
}

// ListByUser returns the most recent rolls first.
func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]DiceRoll, error) {
	query := r.db.Rebind(`
		SELECT ` + rollColumns + `
		FROM dice_rolls
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	rolls := []DiceRoll{}
	if err := r.db.SelectContext(ctx, &rolls, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list user rolls: %w", err)
	}

	return rolls, nil
}

func (r *repository) ListByGuest(
	ctx context.Context,
	token string,
	limit int,
) ([]DiceRoll, error) {
	query := r.db.Rebind(`
		SELECT ` + rollColumns + `
		FROM dice_rolls
		WHERE guest_token = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	rolls := []DiceRoll{}
	if err := r.db.SelectContext(ctx, &rolls, query, token, limit); err != nil {
		return nil, fmt.Errorf("list guest rolls: %w", err)
	}

	return rolls, nil
}

// ListAllByUser returns the whole history in the order it was rolled.
func (r *repository) ListAllByUser(
	ctx context.Context,
	userID string,
) ([]DiceRoll, error) {
	query := r.db.Rebind(`
		SELECT ` + rollColumns + `
		FROM dice_rolls
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC`)

	rolls := []DiceRoll{}
	if err := r.db.SelectContext(ctx, &rolls, query, userID); err != nil {
		return nil, fmt.Errorf("list all user rolls: %w", err)
	}

	return rolls, nil
}
