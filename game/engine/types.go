package engine

import "time"

const (
	// Shipping board and session parameters
	DefaultWidth     = 10
	DefaultHeight    = 17
	DefaultDuration  = 120
	DefaultTargetSum = 10

	// Cell values
	EmptyValue = 0
	MinValue   = 1
	MaxValue   = 9

	// Validation constants
	MinGridSize         = 2
	MaxGridSize         = 50
	MinDuration         = 1
	MaxDuration         = 3600
	MaxTargetSum        = 100
	WebSocketBufferSize = 256
)

// Status is the session timer state
type Status string

const (
	StatusRunning Status = "running"
	StatusEnded   Status = "ended"
)

// GesturePhase tracks the drag gesture state machine
type GesturePhase string

const (
	PhaseIdle     GesturePhase = "idle"
	PhaseDragging GesturePhase = "dragging"
)

// Grid holds cell values indexed as grid[row][col]. A Grid handed out by
// the engine is a snapshot and is never written to again.
type Grid [][]int

// Position represents a cell coordinate (X is the column, Y is the row)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a screen coordinate supplied by a presentation shell
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the on-screen geometry of the grid
type Layout struct {
	Origin   Point   `json:"origin"`
	CellSize float64 `json:"cell_size"`
}

// Valid reports whether the layout can be used to map points to cells
func (l Layout) Valid() bool {
	return l.CellSize > 0
}

// Rect is an inclusive cell rectangle. It is empty when either max bound is
// below its min bound.
type Rect struct {
	MinCol int `json:"min_col"`
	MaxCol int `json:"max_col"`
	MinRow int `json:"min_row"`
	MaxRow int `json:"max_row"`
}

// EmptyRect is the canonical selection that covers no cells
var EmptyRect = Rect{MinCol: 0, MaxCol: -1, MinRow: 0, MaxRow: -1}

// GameMessages are the player-facing texts of a configuration
type GameMessages struct {
	Welcome  string `json:"welcome"`
	Cleared  string `json:"cleared"`
	NotTen   string `json:"not_ten"`
	GameOver string `json:"game_over"`
	Restart  string `json:"restart"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Duration    int          `json:"duration_seconds"`
	TargetSum   int          `json:"target_sum"`
	MinValue    int          `json:"min_value"`
	MaxValue    int          `json:"max_value"`
	Messages    GameMessages `json:"messages"`
}

// SelectionResult is the outcome of evaluating a rectangle against a grid
type SelectionResult struct {
	Rect          Rect       `json:"rect"`
	Sum           int        `json:"sum"`
	Cells         int        `json:"cells"`
	CellsToClear  []Position `json:"cells_to_clear"`
	ApplesCleared int        `json:"apples_cleared"`
	Cleared       bool       `json:"cleared"`
	Grid          Grid       `json:"-"`
}

// DragResult is returned when a drag gesture is released
type DragResult struct {
	Accepted  bool            `json:"accepted"`
	Selection SelectionResult `json:"selection"`
	Score     int             `json:"score"`
	Grid      Grid            `json:"grid"`
}

// TickResult is returned by one timer tick
type TickResult struct {
	TimeRemaining int  `json:"time_remaining"`
	Ended         bool `json:"ended"`
}

// RestartResult is the state of a freshly started session
type RestartResult struct {
	Grid          Grid `json:"grid"`
	Score         int  `json:"score"`
	TimeRemaining int  `json:"time_remaining"`
}

// GameState represents the complete game state
type GameState struct {
	Grid            Grid                `json:"grid"`
	Width           int                 `json:"width"`
	Height          int                 `json:"height"`
	Score           int                 `json:"score"`
	TimeRemaining   int                 `json:"time_remaining"`
	Duration        int                 `json:"duration"`
	Status          Status              `json:"status"`
	GameOver        bool                `json:"game_over"`
	Message         string              `json:"message"`
	ConfigName      string              `json:"config_name"`
	RemainingApples int                 `json:"remaining_apples"`
	ClearHistory    []ClearHistoryEntry `json:"clear_history"`
	TotalClears     int                 `json:"total_clears"`

	// CurrentClears mirrors ClearHistory entries of the running session
	// only; it is emptied on restart while ClearHistory stays cumulative.
	CurrentClears      []ClearHistoryEntry `json:"current_clears"`
	CurrentClearsCount int                 `json:"current_clears_count"`

	// Computed helper views (not required for core game logic)
	Clock string `json:"clock,omitempty"`
}

// ClearHistoryEntry records one committed clear transaction
type ClearHistoryEntry struct {
	ID            string     `json:"id"`
	Rect          Rect       `json:"rect"`
	Cells         []Position `json:"cells"`
	Sum           int        `json:"sum"`
	ApplesCleared int        `json:"apples_cleared"`
	ScoreAfter    int        `json:"score_after"`
	TimeRemaining int        `json:"time_remaining"`
	Timestamp     time.Time  `json:"timestamp"`
	ClearNumber   int        `json:"clear_number"`
}
