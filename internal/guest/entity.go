// AngelaMos | 2026
// entity.go

package guest

import (
	"time"
)

// GuestRollLimit is the number of rolls an anonymous visitor gets before
// they have to register.
const GuestRollLimit = 10

type Session struct {
	ID           string    `db:"id"`
	Token        string    `db:"token"`
	RollCount    int       `db:"roll_count"`
	CreatedAt    time.Time `db:"created_at"`
	LastActivity time.Time `db:"last_activity"`
}

type Quota struct {
	RollsLeft    int
	LimitReached bool
}

func QuotaFor(rollCount int) Quota {
	left := max(0, GuestRollLimit-rollCount)
	return Quota{
		RollsLeft:    left,
		LimitReached: left <= 0,
	}
}

type Counts struct {
	Total     int64 `db:"total"`
	Exhausted int64 `db:"exhausted"`
}
