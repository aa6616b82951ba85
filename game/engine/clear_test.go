package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSelection_PairSummingToTen(t *testing.T) {
	grid := Grid{
		{4, 6, 9},
		{9, 9, 9},
	}

	res := ResolveSelection(grid, Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 0}, 10)

	require.True(t, res.Cleared)
	assert.Equal(t, 10, res.Sum)
	assert.Equal(t, 2, res.ApplesCleared)
	assert.Equal(t, []Position{{X: 0, Y: 0}, {X: 1, Y: 0}}, res.CellsToClear)
	assert.Equal(t, Grid{{0, 0, 9}, {9, 9, 9}}, res.Grid)
	assert.Equal(t, Grid{{4, 6, 9}, {9, 9, 9}}, grid, "input grid must not be modified")
}

func TestResolveSelection_SumBelowTarget(t *testing.T) {
	grid := Grid{
		{3, 3, 3},
		{9, 9, 9},
	}

	res := ResolveSelection(grid, Rect{MinCol: 0, MaxCol: 2, MinRow: 0, MaxRow: 0}, 10)

	assert.False(t, res.Cleared)
	assert.Equal(t, 9, res.Sum)
	assert.Equal(t, 0, res.ApplesCleared)
	assert.NotNil(t, res.CellsToClear)
	assert.Empty(t, res.CellsToClear)
	assert.Equal(t, Grid{{3, 3, 3}, {9, 9, 9}}, res.Grid)
}

func TestResolveSelection_SkipsEmptyCells(t *testing.T) {
	grid := Grid{
		{0, 7, 0},
		{0, 3, 5},
	}

	res := ResolveSelection(grid, Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 1}, 10)

	require.True(t, res.Cleared)
	assert.Equal(t, 4, res.Cells)
	assert.Equal(t, 2, res.ApplesCleared, "already empty cells are not counted")
	assert.Equal(t, []Position{{X: 1, Y: 0}, {X: 1, Y: 1}}, res.CellsToClear)
	assert.Equal(t, Grid{{0, 0, 0}, {0, 0, 5}}, res.Grid)
}

func TestResolveSelection_OverTarget(t *testing.T) {
	grid := Grid{{5, 6}}
	res := ResolveSelection(grid, Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 0}, 10)
	assert.False(t, res.Cleared)
	assert.Equal(t, 11, res.Sum)
}

func TestResolveSelection_EmptyRect(t *testing.T) {
	grid := Grid{{5, 5}}
	res := ResolveSelection(grid, EmptyRect, 10)
	assert.False(t, res.Cleared)
	assert.Equal(t, 0, res.Sum)
	assert.Equal(t, 0, res.Cells)
}

func TestResolveSelection_AllEmptyNeverClears(t *testing.T) {
	grid := Grid{{0, 0}, {0, 0}}
	res := ResolveSelection(grid, Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 1}, 0)
	assert.False(t, res.Cleared)
}

func TestResolveSelection_Idempotent(t *testing.T) {
	grid := Grid{{4, 6, 1}}
	rect := Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 0}

	first := ResolveSelection(grid, rect, 10)
	require.True(t, first.Cleared)

	second := ResolveSelection(first.Grid, rect, 10)
	assert.False(t, second.Cleared)
	assert.Equal(t, 0, second.Sum)
	assert.Equal(t, first.Grid, second.Grid)
}

func TestSumRect(t *testing.T) {
	grid := Grid{
		{1, 2, 3},
		{4, 0, 6},
	}
	assert.Equal(t, 16, SumRect(grid, Rect{MinCol: 0, MaxCol: 2, MinRow: 0, MaxRow: 1}))
	assert.Equal(t, 2, SumRect(grid, Rect{MinCol: 1, MaxCol: 1, MinRow: 0, MaxRow: 1}))
	assert.Equal(t, 0, SumRect(grid, EmptyRect))
}
