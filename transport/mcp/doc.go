// Package mcp provides a Model Context Protocol server for the Apple Game.
//
// The server is a thin client: every tool call is proxied to the REST API,
// so AI agents and browsers share the same sessions.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: board with row/column numbers, score and clock
//   - select_cells: select the rectangle between two corner cells
//   - restart_game: new board, zero score, full clock
//   - tick: advance the clock when the server clock is off
//   - hint: rectangles that would clear right now
//   - clear_history: paginated history of clears
//   - list_configs: available configurations
//   - game_instructions: rules and tips
//   - describe_cell: one cell and its neighbours
//
// Numeric arguments are accepted as JSON numbers or numeric strings.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
