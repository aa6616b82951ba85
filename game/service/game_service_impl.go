package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/apple-game/game/engine"
)

var log = logrus.WithField("component", "service")

// ErrConfigNotFound is matched against config manager errors to build a
// helpful message listing the available configs
var ErrConfigNotFound = errors.New("configuration not found")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// session looks up a session and refreshes its access time. Callers hold s.mu.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the requested identifier, otherwise look up the config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.WithFields(logrus.Fields{"session": sess.ID, "config": configID}).Info("session created")

	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// SetLayout records the on-screen geometry of the session's grid
func (s *gameServiceImpl) SetLayout(ctx context.Context, sessionID string, layout engine.Layout) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !layout.Valid() {
		return nil, fmt.Errorf("invalid layout: cell_size must be positive, got %v", layout.CellSize)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.SetLayout(layout)
	return sess.Engine.GetState(), nil
}

// DragStart begins a gesture
func (s *gameServiceImpl) DragStart(ctx context.Context, sessionID string, at engine.Point) (*DragPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := sess.Engine.GetLayout(); !ok {
		return nil, fmt.Errorf("session %s has no layout; set one before dragging", sessionID)
	}

	sess.Engine.DragStart(at)
	return buildPreview(sess.Engine, sess.Engine.GetPreview()), nil
}

// DragMove updates the highlighted rectangle of the gesture in progress
func (s *gameServiceImpl) DragMove(ctx context.Context, sessionID string, at engine.Point) (*DragPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	rect := sess.Engine.DragMove(at)
	return buildPreview(sess.Engine, rect), nil
}

// DragEnd releases the gesture and runs the clear transaction
func (s *gameServiceImpl) DragEnd(ctx context.Context, sessionID string, at engine.Point) (*ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	prevScore := sess.Engine.GetScore()
	res := sess.Engine.DragEnd(at)
	return s.buildClearResult(sess, prevScore, res), nil
}

// Select runs a complete gesture between two screen points
func (s *gameServiceImpl) Select(ctx context.Context, sessionID string, from, to engine.Point) (*ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := sess.Engine.GetLayout(); !ok {
		return nil, fmt.Errorf("session %s has no layout; set one or select by cells", sessionID)
	}

	prevScore := sess.Engine.GetScore()
	res := sess.Engine.Select(from, to)
	return s.buildClearResult(sess, prevScore, res), nil
}

// SelectCells runs the clear transaction on a cell rectangle
func (s *gameServiceImpl) SelectCells(ctx context.Context, sessionID string, rect engine.Rect) (*ClearResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	prevScore := sess.Engine.GetScore()
	res := sess.Engine.SelectCells(rect)
	return s.buildClearResult(sess, prevScore, res), nil
}

// Tick advances the clock of one session by a second
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*TickInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return tickSession(sess), nil
}

// TickAll advances the clock of every running session. Sessions whose game
// already ended are skipped.
func (s *gameServiceImpl) TickAll(ctx context.Context) ([]*TickInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ticks []*TickInfo
	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			return ticks, err
		}
		if sess.Engine.IsGameOver() {
			continue
		}
		ticks = append(ticks, tickSession(sess))
	}
	return ticks, nil
}

func tickSession(sess *Session) *TickInfo {
	wasOver := sess.Engine.IsGameOver()
	res := sess.Engine.Tick()
	state := sess.Engine.GetState()

	info := &TickInfo{
		SessionID:     sess.ID,
		TimeRemaining: res.TimeRemaining,
		Clock:         engine.FormatTime(res.TimeRemaining),
		Ended:         res.Ended,
		JustEnded:     res.Ended && !wasOver,
		GameState:     state,
	}
	if info.JustEnded {
		info.Events = append(info.Events, GameEvent{
			Type:      "game_over",
			Message:   state.Message,
			Timestamp: time.Now(),
		})
		log.WithFields(logrus.Fields{"session": sess.ID, "score": state.Score}).Info("game over")
	}
	return info
}

// Restart replaces the session's board and resets score and clock
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.Restart()
	log.WithField("session", sess.ID).Debug("game restarted")
	return sess.Engine.GetState(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetClearHistory returns paginated clear history
func (s *gameServiceImpl) GetClearHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetClearHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	clears := []engine.ClearHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			clears = append(clears, history[i])
		}
	} else if start < total {
		clears = append(clears, history[start:end]...)
	}

	return &HistoryResponse{
		Clears:      clears,
		TotalClears: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// GetHints lists rectangles that would clear right now. A limit of zero or
// less returns all of them.
func (s *gameServiceImpl) GetHints(ctx context.Context, sessionID string, limit int) (*HintsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	hints := sess.Engine.GetHints()
	resp := &HintsResponse{
		Hints:    hints,
		Total:    len(hints),
		GameOver: sess.Engine.IsGameOver(),
	}
	if limit > 0 && len(hints) > limit {
		resp.Hints = hints[:limit]
		resp.Truncated = true
	}
	if resp.Hints == nil {
		resp.Hints = []engine.Rect{}
	}
	return resp, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func buildPreview(eng *engine.GameEngine, rect engine.Rect) *DragPreview {
	return &DragPreview{
		Phase: eng.GetPhase(),
		Rect:  rect,
		Empty: rect.Empty(),
		Sum:   engine.SumRect(eng.GetGrid(), rect),
		Cells: rect.Size(),
	}
}

// buildClearResult turns an engine outcome into a service result with events
func (s *gameServiceImpl) buildClearResult(sess *Session, prevScore int, res engine.DragResult) *ClearResult {
	state := sess.Engine.GetState()
	sel := res.Selection

	result := &ClearResult{
		Accepted:      res.Accepted,
		Cleared:       sel.Cleared,
		Selection:     &sel,
		ApplesCleared: sel.ApplesCleared,
		ScoreDelta:    res.Score - prevScore,
		GameState:     state,
		Message:       state.Message,
	}

	now := time.Now()
	rect := sel.Rect
	switch {
	case !res.Accepted:
		msg := "selection ignored"
		if state.GameOver {
			msg = "selection ignored: game over"
		}
		result.Events = append(result.Events, GameEvent{Type: "ignored", Message: msg, Timestamp: now})
	case sel.Cleared:
		result.Events = append(result.Events, GameEvent{Type: "clear", Message: state.Message, Timestamp: now, Rect: &rect})
	case !rect.Empty():
		result.Events = append(result.Events, GameEvent{Type: "no_match", Message: state.Message, Timestamp: now, Rect: &rect})
	}

	return result
}
