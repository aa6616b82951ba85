package service

import (
	"time"

	"github.com/wricardo/apple-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// DragPreview is the highlighted rectangle of a gesture in progress
type DragPreview struct {
	Phase engine.GesturePhase `json:"phase"`
	Rect  engine.Rect         `json:"rect"`
	Empty bool                `json:"empty"`
	Sum   int                 `json:"sum"` // Visible sum under the highlight
	Cells int                 `json:"cells"`
}

// ClearResult contains the outcome of a released selection
type ClearResult struct {
	Accepted      bool                    `json:"accepted"` // false when the release was ignored (no gesture, game over, no layout)
	Cleared       bool                    `json:"cleared"`
	Selection     *engine.SelectionResult `json:"selection"`
	ApplesCleared int                     `json:"apples_cleared"`
	ScoreDelta    int                     `json:"score_delta"`
	GameState     *engine.GameState       `json:"game_state"`
	Message       string                  `json:"message"`
	Events        []GameEvent             `json:"events,omitempty"`
}

// TickInfo reports the clock of one session after a tick
type TickInfo struct {
	SessionID     string            `json:"session_id"`
	TimeRemaining int               `json:"time_remaining"`
	Clock         string            `json:"clock"`
	Ended         bool              `json:"ended"`
	JustEnded     bool              `json:"just_ended,omitempty"`
	GameState     *engine.GameState `json:"game_state,omitempty"`
	Events        []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string       `json:"type"` // "clear", "no_match", "ignored", "game_over", "restart"
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Rect      *engine.Rect `json:"rect,omitempty"`
}

// HistoryOptions configures clear history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated clear history
type HistoryResponse struct {
	Clears      []engine.ClearHistoryEntry `json:"clears"`
	TotalClears int                        `json:"total_clears"`
	Page        int                        `json:"page"`
	PageSize    int                        `json:"page_size"`
	TotalPages  int                        `json:"total_pages"`
	HasNext     bool                       `json:"has_next"`
	HasPrevious bool                       `json:"has_previous"`
}

// HintsResponse lists rectangles that would clear on the current board
type HintsResponse struct {
	Hints     []engine.Rect `json:"hints"`
	Total     int           `json:"total"`
	Truncated bool          `json:"truncated,omitempty"`
	GameOver  bool          `json:"game_over"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Duration    int    `json:"duration_seconds"`
	TargetSum   int    `json:"target_sum"`
}
