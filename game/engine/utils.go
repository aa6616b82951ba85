package engine

// prefixTable holds 2D prefix sums of values and of non-empty cell counts
type prefixTable struct {
	sum   [][]int
	count [][]int
}

func buildPrefix(grid Grid) prefixTable {
	h, w := grid.Height(), grid.Width()
	p := prefixTable{
		sum:   make([][]int, h+1),
		count: make([][]int, h+1),
	}
	for y := 0; y <= h; y++ {
		p.sum[y] = make([]int, w+1)
		p.count[y] = make([]int, w+1)
	}
	for y := 1; y <= h; y++ {
		for x := 1; x <= w; x++ {
			v := grid[y-1][x-1]
			nonEmpty := 0
			if v != EmptyValue {
				nonEmpty = 1
			}
			p.sum[y][x] = v + p.sum[y-1][x] + p.sum[y][x-1] - p.sum[y-1][x-1]
			p.count[y][x] = nonEmpty + p.count[y-1][x] + p.count[y][x-1] - p.count[y-1][x-1]
		}
	}
	return p
}

func (p prefixTable) query(table [][]int, r Rect) int {
	return table[r.MaxRow+1][r.MaxCol+1] - table[r.MinRow][r.MaxCol+1] -
		table[r.MaxRow+1][r.MinCol] + table[r.MinRow][r.MinCol]
}

// tight reports whether every edge of r touches at least one non-empty cell,
// i.e. the rectangle cannot shrink without dropping an apple
func (p prefixTable) tight(r Rect) bool {
	edges := []Rect{
		{MinCol: r.MinCol, MaxCol: r.MaxCol, MinRow: r.MinRow, MaxRow: r.MinRow},
		{MinCol: r.MinCol, MaxCol: r.MaxCol, MinRow: r.MaxRow, MaxRow: r.MaxRow},
		{MinCol: r.MinCol, MaxCol: r.MinCol, MinRow: r.MinRow, MaxRow: r.MaxRow},
		{MinCol: r.MaxCol, MaxCol: r.MaxCol, MinRow: r.MinRow, MaxRow: r.MaxRow},
	}
	for _, e := range edges {
		if p.query(p.count, e) == 0 {
			return false
		}
	}
	return true
}

// FindClearableRects lists every tight rectangle whose visible sum equals
// target, in row-major order of their top-left corner
func FindClearableRects(grid Grid, target int) []Rect {
	h, w := grid.Height(), grid.Width()
	if h == 0 || w == 0 {
		return nil
	}
	p := buildPrefix(grid)

	var found []Rect
	for top := 0; top < h; top++ {
		for left := 0; left < w; left++ {
			for bottom := top; bottom < h; bottom++ {
				for right := left; right < w; right++ {
					r := Rect{MinCol: left, MaxCol: right, MinRow: top, MaxRow: bottom}
					s := p.query(p.sum, r)
					if s > target {
						// Values are non-negative, widening only grows the sum
						break
					}
					if s == target && p.tight(r) {
						found = append(found, r)
					}
				}
			}
		}
	}
	return found
}

// HasClearableRect reports whether at least one clear is still possible
func HasClearableRect(grid Grid, target int) bool {
	return len(FindClearableRects(grid, target)) > 0
}
