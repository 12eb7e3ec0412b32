// AngelaMos | 2026
// service.go

package roll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
	"github.com/carterperez-dev/templates/dice-roller/internal/stats"
	"github.com/carterperez-dev/templates/dice-roller/internal/user"
)

const (
	UserHistoryLimit  = 50
	GuestHistoryLimit = 20
)

type Outcome struct {
	Roll  *DiceRoll
	Quota *guest.Quota
}

type Service struct {
	db     *sqlx.DB
	repo   Repository
	engine *Engine
	now    func() time.Time
}

func NewService(db *sqlx.DB, engine *Engine) *Service {
	return &Service{
		db:     db,
		repo:   NewRepository(db),
		engine: engine,
		now:    time.Now,
	}
}

// Roll throws the dice for actor and records the result. For a guest the
// quota check, the counter update and the insert share one transaction, so
// an exhausted guest leaves no trace. A user id that no longer exists is
// reported as ErrUnauthorized.
func (s *Service) Roll(
	ctx context.Context,
	actor core.Actor,
	sides, count int,
) (*Outcome, error) {
	ctx, span := core.StartSpan(ctx, "roll.Roll",
		attribute.Int("dice.sides", sides),
		attribute.Int("dice.count", count),
		attribute.String("actor.kind", actor.Kind()),
	)
	defer span.End()

	if actor.IsGuest() && actor.GuestToken == "" {
		return nil, fmt.Errorf("roll: no guest session: %w", core.ErrUnauthorized)
	}

	faces, total, err := s.engine.Roll(sides, count)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := &Outcome{
		Roll: &DiceRoll{
			ID:        uuid.New().String(),
			DiceSides: sides,
			DiceCount: count,
			Results:   faces,
			Total:     total,
			CreatedAt: now,
		},
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if actor.IsGuest() {
			used, consumeErr := guest.NewRepository(tx).Consume(ctx, actor.GuestToken, now)
			if consumeErr != nil {
				return consumeErr
			}
			quota := guest.QuotaFor(used)
			out.Quota = &quota
			out.Roll.GuestToken = &actor.GuestToken
		} else {
			incErr := user.NewRepository(tx).IncrementTotalRolls(ctx, actor.UserID)
			if errors.Is(incErr, core.ErrNotFound) {
				return fmt.Errorf("roll: account %s is gone: %w", actor.UserID, core.ErrUnauthorized)
			}
			if incErr != nil {
				return incErr
			}
			out.Roll.UserID = &actor.UserID
		}

		return NewRepository(tx).Create(ctx, out.Roll)
	})
	if err != nil {
		core.FailSpan(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("dice.total", total))
	return out, nil
}

// History returns the most recent rolls for actor. A guest without a token
// has no history.
func (s *Service) History(ctx context.Context, actor core.Actor) ([]DiceRoll, error) {
	switch {
	case actor.IsAuthenticated():
		return s.repo.ListByUser(ctx, actor.UserID, UserHistoryLimit)
	case actor.GuestToken != "":
		return s.repo.ListByGuest(ctx, actor.GuestToken, GuestHistoryLimit)
	default:
		return []DiceRoll{}, nil
	}
}

func (s *Service) Get(ctx context.Context, id string) (*DiceRoll, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Stats(ctx context.Context, actor core.Actor) (stats.Stats, error) {
	if !actor.IsAuthenticated() {
		return stats.Stats{}, fmt.Errorf("stats: %w", core.ErrUnauthorized)
	}

	rolls, err := s.repo.ListAllByUser(ctx, actor.UserID)
	if err != nil {
		return stats.Stats{}, err
	}

	history := make([]stats.Roll, 0, len(rolls))
	for _, r := range rolls {
		history = append(history, stats.Roll{Sides: r.DiceSides, Results: r.Results})
	}

	return stats.Compute(history), nil
}
