// AngelaMos | 2026
// engine.go

package roll

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/carterperez-dev/templates/dice-roller/internal/core"
)

const (
	MinDice = 1
	MaxDice = 10
)

var AllowedSides = []int{4, 6, 8, 10, 12, 20}

// Source yields a uniform integer in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

//nolint:gosec // G404: dice outcomes are not security sensitive
func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

type Engine struct {
	src Source
}

// NewEngine uses src for randomness, or math/rand/v2 when src is nil.
func NewEngine(src Source) *Engine {
	if src == nil {
		src = globalSource{}
	}
	return &Engine{src: src}
}

func Validate(sides, count int) error {
	if !slices.Contains(AllowedSides, sides) {
		return core.InvalidParameterError(
			fmt.Sprintf("dice sides must be one of %v", AllowedSides),
		)
	}
	if count < MinDice || count > MaxDice {
		return core.InvalidParameterError(
			fmt.Sprintf("dice count must be between %d and %d", MinDice, MaxDice),
		)
	}
	return nil
}

// Roll returns count independent faces in [1, sides] and their sum.
func (e *Engine) Roll(sides, count int) (Faces, int, error) {
	if err := Validate(sides, count); err != nil {
		return nil, 0, err
	}

	faces := make(Faces, count)
	total := 0
	for i := range faces {
		faces[i] = e.src.IntN(sides) + 1
		total += faces[i]
	}

	return faces, total, nil
}
