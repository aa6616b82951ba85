// Package api provides HTTP REST API handlers for the Apple Game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "blitz"})
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/layout - Set grid geometry ({"origin":{"x":0,"y":0},"cell_size":32})
//   - POST /api/sessions/{id}/drag/start - Begin a drag at {"x","y"}
//   - POST /api/sessions/{id}/drag/move - Update the highlighted rectangle
//   - POST /api/sessions/{id}/drag/end - Release and try to clear
//   - POST /api/sessions/{id}/select - One-shot selection, either
//     {"from":{..},"to":{..}} or {"cells":{"min_col","max_col","min_row","max_row"}}
//   - POST /api/sessions/{id}/tick - Advance the clock one second
//   - POST /api/sessions/{id}/restart - New board, zero score, full clock
//   - GET /api/sessions/{id}/history - Clear history (?page&limit&order)
//   - GET /api/sessions/{id}/hints - Rectangles that would clear (?limit)
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get one configuration
//
// Other:
//   - GET /api/health - Liveness
//   - GET /ws?session={id} - WebSocket upgrade
//
// Every state change is pushed to the session's WebSocket clients.
//
// Errors are returned as JSON, with 404 for unknown sessions and configs:
//
//	{"error": "error message"}
package api
