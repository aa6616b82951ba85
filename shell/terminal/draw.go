package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/apple-game/game/engine"
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleApple   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkRed)
	styleEmpty   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSelect  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleMatch   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkBlue)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePanel   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
)

var rules = []string{
	"HOW TO PLAY",
	"",
	"Drag with the mouse over a rectangle of apples.",
	"If the numbers inside add up to exactly 10,",
	"the apples are cleared and each one scores a point.",
	"Cleared cells count as 0, so rectangles may span holes.",
	"You have two minutes. Clear as many apples as you can!",
	"",
	"Keys: r restart, h hint, b back to title, q quit",
	"",
	"Press any key to go back",
}

func (s *Shell) draw() {
	s.screen.Clear()
	switch s.mode {
	case ModeTitle:
		s.drawTitle()
	case ModeRules:
		s.drawTitle()
		s.drawPanel(rules)
	case ModeGame:
		s.drawGame()
		if s.state != nil && s.state.GameOver {
			s.drawPanel([]string{
				"TIME'S UP",
				"",
				fmt.Sprintf("Final score: %d", s.state.Score),
				"",
				"[r] play again   [b] title",
			})
		}
	}
	s.screen.Show()
}

func (s *Shell) drawText(x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (s *Shell) drawCentered(y int, style tcell.Style, text string) {
	w, _ := s.screen.Size()
	s.drawText(max(0, (w-len([]rune(text)))/2), y, style, text)
}

func (s *Shell) drawTitle() {
	_, h := s.screen.Size()
	top := max(1, h/2-4)
	s.drawCentered(top, styleTitle, "A P P L E   G A M E")
	if s.config != nil {
		s.drawCentered(top+2, styleDim, s.config.Description)
	}
	s.drawCentered(top+4, styleDefault, "[s] start    [i] rules    [q] exit")
}

// drawPanel renders lines in a box over the center of the screen
func (s *Shell) drawPanel(lines []string) {
	w, h := s.screen.Size()
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l)))
	}
	width += 4
	height := len(lines) + 2
	left := max(0, (w-width)/2)
	top := max(0, (h-height)/2)

	for y := top; y < top+height; y++ {
		for x := left; x < left+width; x++ {
			s.screen.SetContent(x, y, ' ', nil, stylePanel)
		}
	}
	for i, l := range lines {
		s.drawText(left+2, top+1+i, stylePanel, l)
	}
}

func (s *Shell) drawGame() {
	st := s.state
	if st == nil {
		return
	}

	s.drawText(gridLeft, 0, styleTitle, "APPLE GAME")
	s.drawText(gridLeft, 1, styleDefault, fmt.Sprintf("Score: %-4d  Time: %s", st.Score, engine.FormatTime(st.TimeRemaining)))

	target := engine.DefaultTargetSum
	if s.config != nil {
		target = s.config.TargetSum
	}
	sum := engine.SumRect(st.Grid, s.preview)
	selStyle := styleSelect
	if sum == target {
		selStyle = styleMatch
	}

	for row, values := range st.Grid {
		for col, v := range values {
			style := styleApple
			text := fmt.Sprintf(" %d ", v)
			if v == engine.EmptyValue {
				style = styleEmpty
				text = " . "
			}
			switch {
			case s.dragging && s.preview.Contains(col, row):
				style = selStyle
			case s.hint != nil && s.hint.Contains(col, row):
				style = styleHint
			}
			s.drawText(gridLeft+col*cellWidth, gridTop+row, style, text)
		}
	}

	below := gridTop + st.Grid.Height() + 1
	if s.dragging && !s.preview.Empty() {
		s.drawText(gridLeft, below, selStyle, fmt.Sprintf("Selection: %d / %d", sum, target))
	} else if s.status != "" {
		s.drawText(gridLeft, below, styleDefault, s.status)
	}
	s.drawText(gridLeft, below+1, styleDim, "[b] back  [r] restart  [h] hint  [q] quit")
}
