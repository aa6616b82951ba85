package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/apple-game/game/engine"
	"github.com/wricardo/apple-game/game/service"
	"github.com/wricardo/apple-game/transport/websocket"
)

var log = logrus.WithField("component", "api")

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. When hub is not nil, gestures sent by
// WebSocket clients are routed to the game service.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	if hub != nil {
		hub.SetHandler(s.handleInbound)
	}
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/layout", s.handleSetLayout).Methods("POST")
	api.HandleFunc("/sessions/{id}/drag/start", s.handleDragStart).Methods("POST")
	api.HandleFunc("/sessions/{id}/drag/move", s.handleDragMove).Methods("POST")
	api.HandleFunc("/sessions/{id}/drag/end", s.handleDragEnd).Methods("POST")
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/sessions/{id}/tick", s.handleTick).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/sessions/{id}/hints", s.handleGetHints).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps lookup failures to 404 and everything else to 400
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if strings.Contains(err.Error(), "not found") {
		status = http.StatusNotFound
	}
	respondError(w, status, err.Error())
}

// broadcastState pushes the session state to WebSocket clients
func (s *Server) broadcastState(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

func (s *Server) broadcastEvents(sessionID string, events []service.GameEvent) {
	if s.hub == nil {
		return
	}
	for _, ev := range events {
		s.hub.BroadcastEvent(sessionID, ev.Type, ev)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed", "score"
	order := query.Get("order")    // "asc", "desc"
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	total := len(sessions)
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if order == "asc" {
			a, b = b, a
		}
		switch sortBy {
		case "created":
			return a.CreatedAt.After(b.CreatedAt)
		case "score":
			return a.GameState.Score > b.GameState.Score
		default:
			return a.LastAccessedAt.After(b.LastAccessedAt)
		}
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var layout engine.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.SetLayout(r.Context(), sessionID, layout)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// decodePoint reads {"x":..,"y":..} from the request body
func decodePoint(r *http.Request) (engine.Point, error) {
	var p engine.Point
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return p, errors.New("Invalid request body")
	}
	return p, nil
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	p, err := decodePoint(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := s.service.DragStart(r.Context(), sessionID, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, preview)
}

func (s *Server) handleDragMove(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	p, err := decodePoint(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := s.service.DragMove(r.Context(), sessionID, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "preview", preview)
	}
	respondJSON(w, http.StatusOK, preview)
}

func (s *Server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	p, err := decodePoint(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.DragEnd(r.Context(), sessionID, p)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publishClear(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

// selectRequest carries either two screen points or a cell rectangle
type selectRequest struct {
	From  *engine.Point `json:"from,omitempty"`
	To    *engine.Point `json:"to,omitempty"`
	Cells *engine.Rect  `json:"cells,omitempty"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		result *service.ClearResult
		err    error
	)
	switch {
	case req.Cells != nil:
		result, err = s.service.SelectCells(r.Context(), sessionID, *req.Cells)
	case req.From != nil && req.To != nil:
		result, err = s.service.Select(r.Context(), sessionID, *req.From, *req.To)
	default:
		respondError(w, http.StatusBadRequest, "Provide either cells or both from and to")
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.publishClear(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

// publishClear broadcasts the outcome of a release and logs committed clears
func (s *Server) publishClear(sessionID string, result *service.ClearResult) {
	if result.Cleared {
		log.WithFields(logrus.Fields{
			"session": sessionID,
			"cleared": result.ApplesCleared,
			"score":   result.GameState.Score,
		}).Info("clear")
	}
	s.broadcastEvents(sessionID, result.Events)
	if result.Accepted {
		s.broadcastState(sessionID, result.GameState)
	}
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	tick, err := s.service.Tick(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.PublishTick(tick)
	respondJSON(w, http.StatusOK, tick)
}

// PublishTick broadcasts the clock of a ticked session
func (s *Server) PublishTick(tick *service.TickInfo) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(tick.SessionID, "tick", map[string]interface{}{
		"time_remaining": tick.TimeRemaining,
		"clock":          tick.Clock,
		"ended":          tick.Ended,
	})
	s.broadcastEvents(tick.SessionID, tick.Events)
	if tick.JustEnded {
		s.broadcastState(tick.SessionID, tick.GameState)
	}
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Restart(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.broadcastEvents(sessionID, []service.GameEvent{{Type: "restart", Message: state.Message, Timestamp: time.Now()}})
	s.broadcastState(sessionID, state)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game restarted successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetClearHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleGetHints(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	hints, err := s.service.GetHints(r.Context(), sessionID, limit)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, hints)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var gameConfig engine.GameConfig

	if err := json.NewDecoder(r.Body).Decode(&gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if gameConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), gameConfig.Name, &gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": gameConfig.Name,
	})
}

// WebSocket Handlers

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r, sessionID)
}

// handleInbound applies a gesture sent over a WebSocket connection
func (s *Server) handleInbound(sessionID string, msg websocket.InboundMessage) {
	ctx := context.Background()
	at := engine.Point{X: msg.X, Y: msg.Y}
	entry := log.WithFields(logrus.Fields{"session": sessionID, "type": msg.Type})

	switch msg.Type {
	case "layout":
		if msg.Layout == nil {
			entry.Debug("layout message without layout")
			return
		}
		state, err := s.service.SetLayout(ctx, sessionID, *msg.Layout)
		if err != nil {
			entry.WithError(err).Debug("layout rejected")
			return
		}
		s.broadcastState(sessionID, state)

	case "drag_start", "drag_move":
		var (
			preview *service.DragPreview
			err     error
		)
		if msg.Type == "drag_start" {
			preview, err = s.service.DragStart(ctx, sessionID, at)
		} else {
			preview, err = s.service.DragMove(ctx, sessionID, at)
		}
		if err != nil {
			entry.WithError(err).Debug("gesture rejected")
			return
		}
		s.hub.BroadcastEvent(sessionID, "preview", preview)

	case "drag_end":
		result, err := s.service.DragEnd(ctx, sessionID, at)
		if err != nil {
			entry.WithError(err).Debug("gesture rejected")
			return
		}
		s.publishClear(sessionID, result)

	case "restart":
		state, err := s.service.Restart(ctx, sessionID)
		if err != nil {
			entry.WithError(err).Debug("restart rejected")
			return
		}
		s.broadcastEvents(sessionID, []service.GameEvent{{Type: "restart", Message: state.Message, Timestamp: time.Now()}})
		s.broadcastState(sessionID, state)

	default:
		entry.Debug("unknown client message")
	}
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
