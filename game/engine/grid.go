package engine

import (
	"math/rand/v2"
)

// NewGrid draws a fresh height x width grid where every cell is uniform in
// [config.MinValue, config.MaxValue]. It never produces empty cells.
func NewGrid(config *GameConfig, rng *rand.Rand) Grid {
	span := config.MaxValue - config.MinValue + 1

	grid := make(Grid, config.Height)
	for y := range grid {
		row := make([]int, config.Width)
		for x := range row {
			row[x] = config.MinValue + rng.IntN(span)
		}
		grid[y] = row
	}
	return grid
}

// Width returns the number of columns
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height returns the number of rows
func (g Grid) Height() int {
	return len(g)
}

// InBounds reports whether (x, y) addresses a cell of the grid
func (g Grid) InBounds(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < len(g[y])
}

// Value returns the value at (x, y), or EmptyValue when out of bounds
func (g Grid) Value(x, y int) int {
	if !g.InBounds(x, y) {
		return EmptyValue
	}
	return g[y][x]
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for y, row := range g {
		out[y] = append([]int(nil), row...)
	}
	return out
}

// Equal reports whether two grids hold the same values
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for y := range g {
		if len(g[y]) != len(other[y]) {
			return false
		}
		for x := range g[y] {
			if g[y][x] != other[y][x] {
				return false
			}
		}
	}
	return true
}

// RemainingApples counts the non-empty cells of the grid
func RemainingApples(grid Grid) int {
	count := 0
	for _, row := range grid {
		for _, v := range row {
			if v != EmptyValue {
				count++
			}
		}
	}
	return count
}
