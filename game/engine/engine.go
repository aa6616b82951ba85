package engine

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	GetGrid() Grid
	GetScore() int
	GetTimeRemaining() int
	IsGameOver() bool
	Restart() RestartResult

	// Gesture handling
	SetLayout(layout Layout)
	GetLayout() (Layout, bool)
	DragStart(anchor Point)
	DragMove(current Point) Rect
	DragEnd(current Point) DragResult
	GetPreview() Rect
	GetPhase() GesturePhase

	// One-shot selections
	Select(origin, end Point) DragResult
	SelectCells(rect Rect) DragResult

	// Clock
	Tick() TickResult

	// Configuration
	GetConfig() *GameConfig

	// History
	GetClearHistory() []ClearHistoryEntry
	GetLastClear() *ClearHistoryEntry

	// Hints
	GetHints() []Rect
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize events the way a UI event loop would.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	timer  *Timer
	rng    *rand.Rand

	layout    Layout
	hasLayout bool
	phase     GesturePhase
	anchor    Point
	preview   Rect
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	seed := uint64(time.Now().UnixNano())
	return NewEngineWithRand(config, rand.New(rand.NewPCG(seed, seed>>17|1)))
}

// NewEngineWithRand creates an engine that draws grids from rng
func NewEngineWithRand(config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	applyMessageDefaults(config)

	e := &GameEngine{
		config:  config,
		rng:     rng,
		phase:   PhaseIdle,
		preview: EmptyRect,
	}
	e.timer = NewTimer(config.Duration)
	e.state = e.initState()
	e.state.Message = formatMessage(config.Messages.Welcome, config.TargetSum)

	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the default configuration
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		// The default config is valid by construction
		panic(err)
	}
	return e
}

// initState builds a fresh session state from config
func (e *GameEngine) initState() *GameState {
	grid := NewGrid(e.config, e.rng)
	return &GameState{
		Grid:            grid,
		Width:           e.config.Width,
		Height:          e.config.Height,
		Score:           0,
		TimeRemaining:   e.timer.Remaining,
		Duration:        e.timer.Duration,
		Status:          e.timer.Status,
		GameOver:        !e.timer.Running(),
		ConfigName:      e.config.Name,
		RemainingApples: RemainingApples(grid),
		ClearHistory:    []ClearHistoryEntry{},
		CurrentClears:   []ClearHistoryEntry{},
		Clock:           FormatTime(e.timer.Remaining),
	}
}

// GetState returns a copy of the current game state. The grid inside is a
// snapshot shared with the engine and must be treated as read-only.
func (e *GameEngine) GetState() *GameState {
	st := *e.state
	st.ClearHistory = append([]ClearHistoryEntry{}, e.state.ClearHistory...)
	st.CurrentClears = append([]ClearHistoryEntry{}, e.state.CurrentClears...)
	return &st
}

// GetGrid returns the current grid snapshot
func (e *GameEngine) GetGrid() Grid {
	return e.state.Grid
}

// SetGrid replaces the board of the running session, e.g. to replay a known
// position. The grid is copied.
func (e *GameEngine) SetGrid(grid Grid) error {
	if grid.Height() != e.config.Height || grid.Width() != e.config.Width {
		return fmt.Errorf("grid must be %dx%d, got %dx%d", e.config.Width, e.config.Height, grid.Width(), grid.Height())
	}
	for y, row := range grid {
		if len(row) != e.config.Width {
			return fmt.Errorf("row %d must have %d cells, got %d", y, e.config.Width, len(row))
		}
		for x, v := range row {
			if v != EmptyValue && (v < e.config.MinValue || v > e.config.MaxValue) {
				return fmt.Errorf("cell (%d,%d) holds %d, outside %d..%d", x, y, v, e.config.MinValue, e.config.MaxValue)
			}
		}
	}
	e.state.Grid = grid.Clone()
	e.state.RemainingApples = RemainingApples(e.state.Grid)
	return nil
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// GetTimeRemaining returns the seconds left on the clock
func (e *GameEngine) GetTimeRemaining() int {
	return e.timer.Remaining
}

// IsGameOver returns whether the countdown has ended
func (e *GameEngine) IsGameOver() bool {
	return !e.timer.Running()
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetLayout records where the grid is drawn and how big a cell is
func (e *GameEngine) SetLayout(layout Layout) {
	e.layout = layout
	e.hasLayout = layout.Valid()
}

// GetLayout returns the layout and whether one is available
func (e *GameEngine) GetLayout() (Layout, bool) {
	return e.layout, e.hasLayout
}

// GetPreview returns the rectangle highlighted by the gesture in progress
func (e *GameEngine) GetPreview() Rect {
	return e.preview
}

// GetPhase returns the gesture phase
func (e *GameEngine) GetPhase() GesturePhase {
	return e.phase
}

// resetGesture drops any pending selection
func (e *GameEngine) resetGesture() {
	e.phase = PhaseIdle
	e.anchor = Point{}
	e.preview = EmptyRect
}

// DragStart begins a gesture anchored at the given point. Any preview left
// over from an abandoned gesture is discarded.
func (e *GameEngine) DragStart(anchor Point) {
	e.resetGesture()
	if e.IsGameOver() || !e.hasLayout {
		return
	}
	e.phase = PhaseDragging
	e.anchor = anchor
}

// DragMove updates the preview rectangle. It never changes the grid.
func (e *GameEngine) DragMove(current Point) Rect {
	if e.phase != PhaseDragging || e.IsGameOver() || !e.hasLayout {
		return EmptyRect
	}
	e.preview = MapToRectangle(e.anchor, current, e.layout, e.config.Width, e.config.Height)
	return e.preview
}

// DragEnd releases the gesture at current and runs the clear transaction
// on the rectangle spanned from the anchor
func (e *GameEngine) DragEnd(current Point) DragResult {
	dragging := e.phase == PhaseDragging
	anchor := e.anchor
	e.resetGesture()

	if !dragging || e.IsGameOver() || !e.hasLayout {
		return e.rejected(EmptyRect)
	}

	rect := MapToRectangle(anchor, current, e.layout, e.config.Width, e.config.Height)
	return e.commit(rect)
}

// Select runs a complete gesture from origin to end in one call
func (e *GameEngine) Select(origin, end Point) DragResult {
	e.resetGesture()
	if e.IsGameOver() || !e.hasLayout {
		return e.rejected(EmptyRect)
	}
	return e.commit(MapToRectangle(origin, end, e.layout, e.config.Width, e.config.Height))
}

// SelectCells runs the clear transaction on a cell rectangle, clamped to the grid
func (e *GameEngine) SelectCells(rect Rect) DragResult {
	e.resetGesture()
	rect = RectFromCells(
		Position{X: rect.MinCol, Y: rect.MinRow},
		Position{X: rect.MaxCol, Y: rect.MaxRow},
		e.config.Width, e.config.Height,
	)
	if e.IsGameOver() {
		return e.rejected(rect)
	}
	return e.commit(rect)
}

// rejected reports a selection that was not evaluated
func (e *GameEngine) rejected(rect Rect) DragResult {
	return DragResult{
		Accepted: false,
		Selection: SelectionResult{
			Rect:         rect,
			CellsToClear: []Position{},
			Grid:         e.state.Grid,
		},
		Score: e.state.Score,
		Grid:  e.state.Grid,
	}
}

// commit evaluates rect against the grid snapshot taken on entry and
// publishes the new snapshot and score together
func (e *GameEngine) commit(rect Rect) DragResult {
	snapshot := e.state.Grid
	sel := ResolveSelection(snapshot, rect, e.config.TargetSum)

	if !sel.Cleared {
		if !rect.Empty() {
			e.state.Message = formatMessage(e.config.Messages.NotTen, sel.Sum, e.config.TargetSum)
		}
		return DragResult{Accepted: true, Selection: sel, Score: e.state.Score, Grid: snapshot}
	}

	e.state.Grid = sel.Grid
	e.state.Score += sel.ApplesCleared
	e.state.RemainingApples -= sel.ApplesCleared
	e.state.Message = formatMessage(e.config.Messages.Cleared, sel.ApplesCleared, e.state.Score)
	e.addClearToHistory(sel)

	logrus.WithFields(logrus.Fields{
		"cleared": sel.ApplesCleared,
		"score":   e.state.Score,
		"rect":    fmt.Sprintf("(%d,%d)-(%d,%d)", rect.MinCol, rect.MinRow, rect.MaxCol, rect.MaxRow),
	}).Debug("apples cleared")

	return DragResult{Accepted: true, Selection: sel, Score: e.state.Score, Grid: sel.Grid}
}

// Tick advances the countdown by one second. When it reaches zero the game
// freezes immediately: a gesture in progress is abandoned.
func (e *GameEngine) Tick() TickResult {
	wasRunning := e.timer.Running()
	res := e.timer.Tick()

	e.state.TimeRemaining = res.TimeRemaining
	e.state.Status = e.timer.Status
	e.state.GameOver = res.Ended
	e.state.Clock = FormatTime(res.TimeRemaining)

	if wasRunning && res.Ended {
		e.resetGesture()
		e.state.Message = formatMessage(e.config.Messages.GameOver, e.state.Score)
	}
	return res
}

// Restart replaces the session with a fresh board, zero score and a full
// clock. Clear history stays cumulative; the current segment is emptied.
func (e *GameEngine) Restart() RestartResult {
	prevHistory := e.state.ClearHistory
	prevTotal := e.state.TotalClears

	e.timer.Reset()
	e.resetGesture()
	e.state = e.initState()

	e.state.ClearHistory = prevHistory
	e.state.TotalClears = prevTotal
	e.state.Message = e.config.Messages.Restart

	return RestartResult{
		Grid:          e.state.Grid,
		Score:         0,
		TimeRemaining: e.timer.Remaining,
	}
}

// GetClearHistory returns the complete clear history
func (e *GameEngine) GetClearHistory() []ClearHistoryEntry {
	return e.state.ClearHistory
}

// GetLastClear returns the last clear made, or nil if none
func (e *GameEngine) GetLastClear() *ClearHistoryEntry {
	if len(e.state.ClearHistory) == 0 {
		return nil
	}
	return &e.state.ClearHistory[len(e.state.ClearHistory)-1]
}

// GetHints lists the rectangles that can currently be cleared
func (e *GameEngine) GetHints() []Rect {
	if e.IsGameOver() {
		return nil
	}
	return FindClearableRects(e.state.Grid, e.config.TargetSum)
}

// addClearToHistory appends a committed clear to both history views
func (e *GameEngine) addClearToHistory(sel SelectionResult) {
	entry := ClearHistoryEntry{
		ID:            uuid.NewString(),
		Rect:          sel.Rect,
		Cells:         sel.CellsToClear,
		Sum:           sel.Sum,
		ApplesCleared: sel.ApplesCleared,
		ScoreAfter:    e.state.Score,
		TimeRemaining: e.timer.Remaining,
		Timestamp:     time.Now(),
		ClearNumber:   e.state.TotalClears + 1,
	}
	e.state.ClearHistory = append(e.state.ClearHistory, entry)
	e.state.TotalClears++

	e.state.CurrentClears = append(e.state.CurrentClears, entry)
	e.state.CurrentClearsCount++
}
