// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Username     string    `db:"username"`
	Phone        *string   `db:"phone"`
	PasswordHash *string   `db:"password_hash"`
	OAuthID      *string   `db:"oauth_id"`
	ProfileImage *string   `db:"profile_image"`
	IsPremium    bool      `db:"is_premium"`
	TotalRolls   int       `db:"total_rolls"`
	CreatedAt    time.Time `db:"created_at"`
}

const DefaultProfileImage = "/static/img/default-avatar.png"
