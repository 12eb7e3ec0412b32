// AngelaMos | 2026
// entity.go

package roll

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Faces is the ordered list of values rolled, stored as a JSON array.
type Faces []int

func (f Faces) Value() (driver.Value, error) {
	if f == nil {
		f = Faces{}
	}
	b, err := json.Marshal([]int(f))
	if err != nil {
		return nil, fmt.Errorf("encode faces: %w", err)
	}
	return string(b), nil
}

func (f *Faces) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*f = Faces{}
		return nil
	default:
		return fmt.Errorf("scan faces: unsupported type %T", src)
	}

	var out []int
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("decode faces: %w", err)
	}
	*f = out
	return nil
}

type DiceRoll struct {
	ID         string    `db:"id"`
	UserID     *string   `db:"user_id"`
	GuestToken *string   `db:"guest_token"`
	DiceSides  int       `db:"dice_sides"`
	DiceCount  int       `db:"dice_count"`
	Results    Faces     `db:"results"`
	Total      int       `db:"total"`
	CreatedAt  time.Time `db:"created_at"`
}
