package service

import (
	"context"
	"time"

	"github.com/wricardo/apple-game/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Gestures
	SetLayout(ctx context.Context, sessionID string, layout engine.Layout) (*engine.GameState, error)
	DragStart(ctx context.Context, sessionID string, at engine.Point) (*DragPreview, error)
	DragMove(ctx context.Context, sessionID string, at engine.Point) (*DragPreview, error)
	DragEnd(ctx context.Context, sessionID string, at engine.Point) (*ClearResult, error)

	// One-shot selections
	Select(ctx context.Context, sessionID string, from, to engine.Point) (*ClearResult, error)
	SelectCells(ctx context.Context, sessionID string, rect engine.Rect) (*ClearResult, error)

	// Clock
	Tick(ctx context.Context, sessionID string) (*TickInfo, error)
	TickAll(ctx context.Context) ([]*TickInfo, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetClearHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	GetHints(ctx context.Context, sessionID string, limit int) (*HintsResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
