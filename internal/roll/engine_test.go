// AngelaMos | 2026
// engine_test.go

package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
	"github.com/carterperez-dev/templates/dice-roller/internal/roll"
)

// seqSource replays fixed values, cycling when exhausted.
type seqSource struct {
	values []int
	next   int
}

func (s *seqSource) IntN(n int) int {
	v := s.values[s.next%len(s.values)] % n
	s.next++
	return v
}

func TestRollUsesSource(t *testing.T) {
	e := roll.NewEngine(&seqSource{values: []int{0, 5, 2}})

	faces, total, err := e.Roll(6, 3)
	require.NoError(t, err)
	assert.Equal(t, roll.Faces{1, 6, 3}, faces)
	assert.Equal(t, 10, total)
}

func TestRollBounds(t *testing.T) {
	e := roll.NewEngine(nil)

	for _, sides := range roll.AllowedSides {
		for count := roll.MinDice; count <= roll.MaxDice; count++ {
			faces, total, err := e.Roll(sides, count)
			require.NoError(t, err)
			require.Len(t, faces, count)

			sum := 0
			for _, f := range faces {
				assert.GreaterOrEqual(t, f, 1)
				assert.LessOrEqual(t, f, sides)
				sum += f
			}
			assert.Equal(t, sum, total)
		}
	}
}

func TestRollRejectsInvalidParameters(t *testing.T) {
	e := roll.NewEngine(nil)

	tests := []struct {
		name  string
		sides int
		count int
	}{
		{"unsupported sides", 7, 1},
		{"zero sides", 0, 1},
		{"zero count", 6, 0},
		{"too many dice", 6, 11},
		{"negative count", 20, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, total, err := e.Roll(tt.sides, tt.count)
			require.ErrorIs(t, err, core.ErrInvalidInput)
			assert.Nil(t, faces)
			assert.Zero(t, total)

			var appErr *core.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.StatusCode)
		})
	}
}

func TestFacesColumnCodec(t *testing.T) {
	v, err := roll.Faces{3, 1, 4}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[3,1,4]", v)

	var f roll.Faces
	require.NoError(t, f.Scan([]byte("[2,7]")))
	assert.Equal(t, roll.Faces{2, 7}, f)

	require.NoError(t, f.Scan(nil))
	assert.Empty(t, f)

	assert.Error(t, f.Scan(42))
}
