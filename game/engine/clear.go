package engine

// ResolveSelection evaluates rect against grid. When the visible sum equals
// target, the returned result carries a new grid with every non-empty cell
// of the rectangle zeroed; otherwise the input grid is returned as is and
// nothing is cleared. The input grid is never modified.
func ResolveSelection(grid Grid, rect Rect, target int) SelectionResult {
	result := SelectionResult{
		Rect: rect,
		Grid: grid,
	}

	var visible []Position
	for _, pos := range rect.Cells() {
		if !grid.InBounds(pos.X, pos.Y) {
			continue
		}
		result.Cells++
		v := grid[pos.Y][pos.X]
		if v == EmptyValue {
			continue
		}
		result.Sum += v
		visible = append(visible, pos)
	}

	result.CellsToClear = []Position{}
	if result.Sum != target || len(visible) == 0 {
		return result
	}

	next := grid.Clone()
	for _, pos := range visible {
		next[pos.Y][pos.X] = EmptyValue
	}

	result.CellsToClear = visible
	result.ApplesCleared = len(visible)
	result.Cleared = true
	result.Grid = next
	return result
}

// SumRect returns the visible sum of the rectangle without clearing anything
func SumRect(grid Grid, rect Rect) int {
	sum := 0
	for _, pos := range rect.Cells() {
		sum += grid.Value(pos.X, pos.Y)
	}
	return sum
}
