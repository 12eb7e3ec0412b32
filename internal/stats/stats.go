// AngelaMos | 2026
// stats.go

// Package stats derives per-user figures from a full roll history. Ties are
// broken in favour of whichever value appears first in the history.
package stats

import (
	"math"
	"strconv"
)

const (
	DefaultFavoriteDie = "D6"
	DefaultLuckyNumber = 6
)

type Roll struct {
	Sides   int
	Results []int
}

type Stats struct {
	TotalRolls  int     `json:"total_rolls"`
	FavoriteDie string  `json:"favorite_dice"`
	LuckyNumber int     `json:"lucky_number"`
	AverageRoll float64 `json:"avg_roll"`
}

func Compute(rolls []Roll) Stats {
	return Stats{
		TotalRolls:  len(rolls),
		FavoriteDie: FavoriteDie(rolls),
		LuckyNumber: LuckyNumber(rolls),
		AverageRoll: AverageRoll(rolls),
	}
}

func FavoriteDie(rolls []Roll) string {
	sides := make([]int, 0, len(rolls))
	for _, r := range rolls {
		sides = append(sides, r.Sides)
	}

	top, ok := mode(sides)
	if !ok {
		return DefaultFavoriteDie
	}
	return "D" + strconv.Itoa(top)
}

func LuckyNumber(rolls []Roll) int {
	var faces []int
	for _, r := range rolls {
		faces = append(faces, r.Results...)
	}

	top, ok := mode(faces)
	if !ok {
		return DefaultLuckyNumber
	}
	return top
}

// AverageRoll is the mean face value over every die rolled, to 2 decimals.
func AverageRoll(rolls []Roll) float64 {
	var sum, n int
	for _, r := range rolls {
		for _, f := range r.Results {
			sum += f
			n++
		}
	}

	if n == 0 {
		return 0
	}

	return math.Round(float64(sum)/float64(n)*100) / 100
}

func mode(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}

	counts := make(map[int]int, len(values))
	var order []int
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}

	return best, true
}
