// AngelaMos | 2026
// dto.go

package roll

import (
	"time"

	"github.com/carterperez-dev/templates/dice-roller/internal/guest"
)

type RollRequest struct {
	Sides int `json:"sides"`
	Count int `json:"count"`
}

type RollResponse struct {
	Results   []int       `json:"results"`
	Total     int         `json:"total"`
	DiceSides int         `json:"dice_sides"`
	DiceCount int         `json:"dice_count"`
	Timestamp time.Time   `json:"timestamp"`
	GuestInfo *guest.Info `json:"guest_info,omitempty"`
}

type RollItem struct {
	ID        string    `json:"id"`
	DiceSides int       `json:"dice_sides"`
	DiceCount int       `json:"dice_count"`
	Results   []int     `json:"results"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

func ToRollItem(r *DiceRoll) RollItem {
	return RollItem{
		ID:        r.ID,
		DiceSides: r.DiceSides,
		DiceCount: r.DiceCount,
		Results:   r.Results,
		Total:     r.Total,
		Timestamp: r.CreatedAt,
	}
}

type ShareRequest struct {
	Results   []int `json:"results"    validate:"required,min=1,max=10,dive,min=1,max=20"`
	Total     int   `json:"total"      validate:"min=0"`
	DiceSides int   `json:"dice_sides" validate:"required,oneof=4 6 8 10 12 20"`
	DiceCount int   `json:"dice_count" validate:"required,min=1,max=10"`
}

type ShareResponse struct {
	Success  bool         `json:"success"`
	ShareID  string       `json:"share_id"`
	ShareURL string       `json:"share_url"`
	RollData ShareRequest `json:"roll_data"`
}

type QuotaExceededResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	LimitReached bool   `json:"limit_reached"`
	Message      string `json:"message"`
}
