// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/dice-roller/internal/auth"
	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByIdentifier(
	ctx context.Context,
	identifier string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	hash := nu.PasswordHash
	image := DefaultProfileImage

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(nu.Email),
		Username:     nu.Username,
		PasswordHash: &hash,
		ProfileImage: &image,
		CreatedAt:    time.Now().UTC(),
	}

	if nu.Phone != "" {
		phone := nu.Phone
		user.Phone = &phone
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *Service) UsernameExists(
	ctx context.Context,
	username string,
) (bool, error) {
	return s.repo.ExistsByUsername(ctx, username)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetMe(ctx context.Context, actor core.Actor) (*User, error) {
	if !actor.IsAuthenticated() {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, actor.UserID)
}

func (s *Service) DeleteMe(ctx context.Context, actor core.Actor) error {
	if !actor.IsAuthenticated() {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.Delete(ctx, actor.UserID)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Premium:      u.IsPremium,
	}
}

var _ auth.UserProvider = (*Service)(nil)
