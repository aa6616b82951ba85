// Package websocket provides WebSocket transport for the Apple Game.
//
// The package uses a hub-and-spoke model where a central Hub owns the
// registry of connections per session. Each client connection is served by
// a read pump and a write pump goroutine.
//
// Message Protocol:
//
//   - Outgoing: {session_id, game_state, event, data} with event
//     "state_update" after every state change, plus "preview", "clear",
//     "tick" and "game_over" events
//   - Incoming: {type: "drag_start"|"drag_move"|"drag_end", x, y},
//     {type: "layout", layout: {origin, cell_size}} and {type: "restart"}
//
// Clients pick their session with the ?session= query parameter. Updates
// are delivered only to clients of the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetHandler(func(sessionID string, msg websocket.InboundMessage) { ... })
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID)
package websocket
