// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Phone        *string   `json:"phone,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	IsPremium    bool      `json:"is_premium"`
	TotalRolls   int       `json:"total_rolls"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		IsPremium:    u.IsPremium,
		TotalRolls:   u.TotalRolls,
		CreatedAt:    u.CreatedAt,
	}
}
