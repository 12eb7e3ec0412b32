// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	msgEmailTaken    = "email address is already registered"
	msgUsernameTaken = "username is already taken"
)

var registerMessages = map[string]string{
	"email":        "a valid email address is required",
	"email.max":    "email must be at most 255 characters",
	"username":     "username must be at least 3 characters",
	"username.max": "username must be at most 80 characters",
	"password":     "password must be at least 6 characters",
	"password.max": "password must be at most 128 characters",
	"phone":        "invalid phone number",
}

type UserInfo struct {
	ID           string
	Email        string
	Username     string
	PasswordHash *string
	Premium      bool
}

type NewUser struct {
	Email        string
	Phone        string
	Username     string
	PasswordHash string
}

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByIdentifier(ctx context.Context, identifier string) (*UserInfo, error)
	Create(ctx context.Context, nu NewUser) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Service struct {
	users     UserProvider
	jwt       *JWTManager
	validator *validator.Validate
}

// NewService builds the auth service. jwt may be nil, in which case bearer
// tokens are not issued.
func NewService(users UserProvider, jwt *JWTManager) *Service {
	return &Service{
		users:     users,
		jwt:       jwt,
		validator: core.NewValidator(),
	}
}

// Register reports every violated rule at once. Duplicate identities are a
// conflict unless other rules failed too, in which case they are folded into
// the same validation error.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserInfo, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Username = strings.TrimSpace(req.Username)

	var invalid []string
	if err := s.validator.Struct(req); err != nil {
		invalid = core.ValidationMessages(err, registerMessages)
	}

	var conflicts []string
	if req.Email != "" {
		exists, err := s.users.EmailExists(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if exists {
			conflicts = append(conflicts, msgEmailTaken)
		}
	}
	if req.Username != "" {
		exists, err := s.users.UsernameExists(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if exists {
			conflicts = append(conflicts, msgUsernameTaken)
		}
	}

	if len(invalid) > 0 {
		return nil, core.NewValidationError(append(invalid, conflicts...)...)
	}
	if len(conflicts) > 0 {
		return nil, core.NewConflictError(conflicts...)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        req.Email,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.NewConflictError(msgEmailTaken + " or " + msgUsernameTaken)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login resolves identifier as an email or a username. Unknown users still
// pay for one password hash so response timing does not reveal them.
func (s *Service) Login(
	ctx context.Context,
	identifier, password string,
) (*UserInfo, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, core.NewAppError(
			core.ErrInvalidInput,
			"email/username and password are required",
			http.StatusBadRequest,
			"BAD_REQUEST",
		)
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	return user, nil
}

// IssueToken checks credentials like Login and returns a bearer token.
func (s *Service) IssueToken(
	ctx context.Context,
	identifier, password string,
) (*TokenResponse, error) {
	if s.jwt == nil {
		return nil, core.NewAppError(
			core.ErrNotFound,
			"token issuance is disabled",
			http.StatusNotFound,
			"NOT_FOUND",
		)
	}

	user, err := s.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:  user.ID,
		Premium: user.Premium,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwt.TTL().Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}
