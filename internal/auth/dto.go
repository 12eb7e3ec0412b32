// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,emailshape,max=255"`
	Phone    string `json:"phone"    validate:"omitempty,phone,max=20"`
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
	Remember        bool   `json:"remember"`
}

type AuthResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}
