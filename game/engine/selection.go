package engine

import "math"

// CellAt converts a screen point to a raw (unclamped) cell coordinate
func CellAt(p Point, layout Layout) (col, row int) {
	col = int(math.Floor((p.X - layout.Origin.X) / layout.CellSize))
	row = int(math.Floor((p.Y - layout.Origin.Y) / layout.CellSize))
	return col, row
}

// MapToRectangle derives the selection rectangle spanned by a drag from
// origin to current. The low bounds are clamped to 0 and the high bounds to
// the last column/row, so a drag lying entirely outside the grid on one side
// yields an empty rectangle. It is a pure function of its inputs.
func MapToRectangle(origin, current Point, layout Layout, width, height int) Rect {
	if !layout.Valid() || width <= 0 || height <= 0 {
		return EmptyRect
	}

	startCol, startRow := CellAt(origin, layout)
	endCol, endRow := CellAt(current, layout)

	return Rect{
		MinCol: max(0, min(startCol, endCol)),
		MaxCol: min(width-1, max(startCol, endCol)),
		MinRow: max(0, min(startRow, endRow)),
		MaxRow: min(height-1, max(startRow, endRow)),
	}
}

// RectFromCells builds a rectangle from two cell corners, clamped the same
// way MapToRectangle clamps screen drags
func RectFromCells(a, b Position, width, height int) Rect {
	if width <= 0 || height <= 0 {
		return EmptyRect
	}
	return Rect{
		MinCol: max(0, min(a.X, b.X)),
		MaxCol: min(width-1, max(a.X, b.X)),
		MinRow: max(0, min(a.Y, b.Y)),
		MaxRow: min(height-1, max(a.Y, b.Y)),
	}
}

// Empty reports whether the rectangle covers no cells
func (r Rect) Empty() bool {
	return r.MaxCol < r.MinCol || r.MaxRow < r.MinRow
}

// Size returns the number of cells covered by the rectangle
func (r Rect) Size() int {
	if r.Empty() {
		return 0
	}
	return (r.MaxCol - r.MinCol + 1) * (r.MaxRow - r.MinRow + 1)
}

// Contains reports whether the cell (x, y) lies inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return !r.Empty() && x >= r.MinCol && x <= r.MaxCol && y >= r.MinRow && y <= r.MaxRow
}

// Cells enumerates the covered cells in row-major order
func (r Rect) Cells() []Position {
	if r.Empty() {
		return nil
	}
	cells := make([]Position, 0, r.Size())
	for y := r.MinRow; y <= r.MaxRow; y++ {
		for x := r.MinCol; x <= r.MaxCol; x++ {
			cells = append(cells, Position{X: x, Y: y})
		}
	}
	return cells
}
