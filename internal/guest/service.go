// AngelaMos | 2026
// service.go

package guest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

const tokenBytes = 16

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// GetOrCreate returns token when it names a known guest session, refreshing
// its activity time. An empty or unknown token gets a brand new session.
func (s *Service) GetOrCreate(ctx context.Context, token string) (string, error) {
	return s.resolve(ctx, token, true)
}

// Resolve is GetOrCreate without the activity refresh. The roll path uses
// it so a rejected roll leaves the session untouched; Consume refreshes
// last_activity when the roll is accepted.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	return s.resolve(ctx, token, false)
}

func (s *Service) resolve(ctx context.Context, token string, touch bool) (string, error) {
	now := s.now().UTC()

	if token != "" {
		var err error
		if touch {
			err = s.repo.Touch(ctx, token, now)
		} else {
			_, err = s.repo.GetByToken(ctx, token)
		}
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return "", err
		}
	}

	fresh, err := core.GenerateSecureToken(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate guest token: %w", err)
	}

	err = s.repo.Create(ctx, &Session{
		ID:           uuid.New().String(),
		Token:        fresh,
		CreatedAt:    now,
		LastActivity: now,
	})
	if err != nil {
		return "", err
	}

	return fresh, nil
}

func (s *Service) CheckLimit(ctx context.Context, token string) (Quota, error) {
	sess, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return Quota{}, err
	}

	return QuotaFor(sess.RollCount), nil
}

// Increment counts a roll made outside the roll endpoint. It does not
// enforce the limit.
func (s *Service) Increment(ctx context.Context, token string) error {
	return s.repo.Increment(ctx, token, s.now().UTC())
}

func (s *Service) PurgeInactive(
	ctx context.Context,
	olderThan time.Duration,
) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("purge guest sessions: %w", core.ErrInvalidInput)
	}

	return s.repo.PurgeInactive(ctx, s.now().UTC().Add(-olderThan))
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}
