package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/apple-game/game/engine"
	"github.com/wricardo/apple-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Apple Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Apple Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
The board is a grid of apples worth 1 to 9. Select a rectangle whose apples
add up to exactly 10 and they are cleared; each cleared apple is one point.
The clock runs for two minutes.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Show the board, score and clock
- select_cells: Select a rectangle by column/row bounds
- restart_game: New board, zero score, full clock
- tick: Advance the clock by one second (when the server clock is off)
- hint: List rectangles that would clear right now
- clear_history: View past clears
- list_configs: List available configurations
- game_instructions: Rules and tips
- describe_cell: Value of one cell

Columns (x) and rows (y) are zero-based. Empty cells are shown as '.' and
count as 0.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and remaining time",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_cells",
		Description: "Select the rectangle between two corner cells. It clears when the apples inside add up to the target (10)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x1":         intProperty("Column of the first corner"),
				"y1":         intProperty("Row of the first corner"),
				"x2":         intProperty("Column of the opposite corner"),
				"y2":         intProperty("Row of the opposite corner"),
			},
			Required: []string{"session_id", "x1", "y1", "x2", "y2"},
		},
	}, c.handleSelectCells)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Start over with a new board, zero score and a full clock",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the session clock by one or more seconds",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"seconds":    intProperty("Seconds to advance (default 1, max 60)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "List rectangles that would clear on the current board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"limit":      intProperty("Maximum hints to return (default 5)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_history",
		Description: "Get the history of clears with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page":       intProperty("Page number (default 1)"),
				"limit":      intProperty("Clears per page (default 20)"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleClearHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the Apple Game and tips for finding clears",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the value of one cell and of its neighbours",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x":          intProperty("Column (0-based)"),
				"y":          intProperty("Row (0-based)"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the MCP server for stdio or HTTP transport
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments as a map, tolerating a missing one
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// sessionPath builds /api/sessions/{id}{suffix}
func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// requireSession extracts session_id or produces the tool error to return
func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID := strings.TrimSpace(cast.ToString(args["session_id"]))
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// requireInt coerces a numeric argument; agents send numbers, numeric
// strings or floats
func requireInt(args map[string]interface{}, name string) (int, *mcp.CallToolResult) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s is required", name))
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, mcp.NewToolResultError(fmt.Sprintf("%s must be an integer, got %v", name, v))
	}
	return n, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID := cast.ToString(args["config_id"])
	if configID == "" {
		configID = cast.ToString(args["config_name"])
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, clock := 0, "--:--"
		if s.GameState != nil {
			score, clock = s.GameState.Score, engine.FormatTime(s.GameState.TimeRemaining)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Time: %s, Created: %s)\n",
			s.ID, s.ConfigName, score, clock, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSelectCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	var corners [4]int
	for i, name := range []string{"x1", "y1", "x2", "y2"} {
		n, errResult := requireInt(args, name)
		if errResult != nil {
			return errResult, nil
		}
		corners[i] = n
	}

	rect := engine.Rect{
		MinCol: min(corners[0], corners[2]),
		MaxCol: max(corners[0], corners[2]),
		MinRow: min(corners[1], corners[3]),
		MaxRow: max(corners[1], corners[3]),
	}

	var result service.ClearResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), map[string]interface{}{"cells": rect}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClearResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	seconds := 1
	if v, ok := args["seconds"]; ok {
		seconds = cast.ToInt(v)
	}
	seconds = max(1, min(seconds, 60))

	var tick service.TickInfo
	for i := 0; i < seconds; i++ {
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), nil, &tick); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if tick.Ended {
			break
		}
	}

	result := fmt.Sprintf("Time remaining: %s", tick.Clock)
	if tick.Ended {
		result += "\n⏰ TIME'S UP"
		if tick.GameState != nil {
			result += fmt.Sprintf(" - Final score: %d", tick.GameState.Score)
		}
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	limit := 5
	if v, ok := args["limit"]; ok {
		if n := cast.ToInt(v); n > 0 {
			limit = n
		}
	}

	var hints service.HintsResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, fmt.Sprintf("/hints?limit=%d", limit)), nil, &hints); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHints(&hints)), nil
}

func (c *Client) handleClearHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	params := url.Values{}
	if v, ok := args["page"]; ok {
		params.Set("page", cast.ToString(cast.ToInt(v)))
	}
	if v, ok := args["limit"]; ok {
		params.Set("limit", cast.ToString(cast.ToInt(v)))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Time: %s, Target: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Width, config.Height, engine.FormatTime(config.Duration), config.TargetSum)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🍎 Apple Game - Complete Instructions

GAME OBJECTIVE:
Clear as many apples as you can before the clock runs out.

GAME MECHANICS:
• The board is 17 rows by 10 columns of apples, each worth 1 to 9
• Select a rectangle (select_cells with two opposite corners)
• If the apples inside add up to exactly 10, they all disappear
• Each cleared apple scores one point, so bigger rectangles score more
• Empty cells ('.') count as 0, so a rectangle may span holes
• Selections that do not add up to 10 change nothing and cost nothing
• The clock starts at 02:00; at 00:00 the board freezes
• restart_game gives a new board, zero score and a full clock

GRID DISPLAY:
Columns are numbered across the top (x), rows down the side (y).
Both start at 0. Row y, column x is the apple at (x, y).

STRATEGY TIPS:
• Pairs that add to 10 (1+9, 2+8, 3+7, 4+6, 5+5) are the easy clears
• Clearing a pair can open longer lines: 1+2+3+4 across a hole still counts
• Prefer rectangles with many small apples, they score more points
• Use hint when stuck; it lists every rectangle that clears right now
• Use describe_cell to double-check a value before selecting

Good luck! 🍏`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	x, errResult := requireInt(args, "x")
	if errResult != nil {
		return errResult, nil
	}
	y, errResult := requireInt(args, "y")
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !state.Grid.InBounds(x, y) {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid is %d columns by %d rows (x 0-%d, y 0-%d)",
			x, y, state.Grid.Width(), state.Grid.Height(), state.Grid.Width()-1, state.Grid.Height()-1)), nil
	}

	value := state.Grid.Value(x, y)
	description := fmt.Sprintf("Apple worth %d", value)
	if value == engine.EmptyValue {
		description = "Empty (already cleared, counts as 0)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position (%d, %d):\n━━━━━━━━━━━━━━━━━━━━━━━━\nValue: %s\n%s\n\nNeighbours:\n",
		x, y, cellChar(value), description)
	for _, n := range []struct {
		name   string
		dx, dy int
	}{{"left", -1, 0}, {"right", 1, 0}, {"up", 0, -1}, {"down", 0, 1}} {
		nx, ny := x+n.dx, y+n.dy
		if !state.Grid.InBounds(nx, ny) {
			fmt.Fprintf(&b, "  %-5s edge\n", n.name)
			continue
		}
		fmt.Fprintf(&b, "  %-5s (%d, %d) = %s\n", n.name, nx, ny, cellChar(state.Grid.Value(nx, ny)))
	}

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func cellChar(v int) string {
	if v == engine.EmptyValue {
		return "."
	}
	return cast.ToString(v)
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatGrid renders the board with column numbers on top and row numbers
// down the left
func formatGrid(grid engine.Grid) string {
	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < grid.Width(); x++ {
		fmt.Fprintf(&b, "%3d", x)
	}
	b.WriteString("\n")
	for y, row := range grid {
		fmt.Fprintf(&b, "%3d ", y)
		for _, v := range row {
			fmt.Fprintf(&b, "%3s", cellChar(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d | Time: %s | Apples left: %d | Clears: %d\n\n",
		state.Score, engine.FormatTime(state.TimeRemaining), state.RemainingApples, state.CurrentClearsCount)

	b.WriteString(formatGrid(state.Grid))

	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}
	if state.GameOver {
		fmt.Fprintf(&b, "\n⏰ GAME OVER - Final score: %d\n", state.Score)
	}

	return b.String()
}

func formatClearResult(result *service.ClearResult) string {
	var b strings.Builder
	sel := result.Selection
	switch {
	case !result.Accepted:
		b.WriteString("✗ Selection ignored")
		if result.GameState != nil && result.GameState.GameOver {
			b.WriteString(" - the game is over, use restart_game")
		}
		b.WriteString("\n\n")
	case result.Cleared:
		fmt.Fprintf(&b, "✓ Cleared %d apples (+%d)\n\n", result.ApplesCleared, result.ScoreDelta)
	case sel != nil && sel.Rect.Empty():
		b.WriteString("✗ Empty selection\n\n")
	case sel != nil:
		fmt.Fprintf(&b, "✗ Sum is %d over %d cells, nothing cleared\n\n", sel.Sum, sel.Cells)
	}

	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHints(hints *service.HintsResponse) string {
	if hints.GameOver {
		return "The game is over, no hints available."
	}
	if hints.Total == 0 {
		return "No rectangle adds up to the target. Restart for a new board."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d clearable rectangles", hints.Total)
	if hints.Truncated {
		fmt.Fprintf(&b, " (showing %d)", len(hints.Hints))
	}
	b.WriteString(":\n\n")
	for i, r := range hints.Hints {
		fmt.Fprintf(&b, "%d. (%d,%d) to (%d,%d), %d cells\n", i+1, r.MinCol, r.MinRow, r.MaxCol, r.MaxRow, r.Size())
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Clear History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalClears)

	if len(history.Clears) == 0 {
		b.WriteString("(no clears yet)\n")
	}
	for _, entry := range history.Clears {
		r := entry.Rect
		fmt.Fprintf(&b, "#%d (%d,%d)-(%d,%d) cleared %d, score %d at %s\n",
			entry.ClearNumber, r.MinCol, r.MinRow, r.MaxCol, r.MaxRow,
			entry.ApplesCleared, entry.ScoreAfter, engine.FormatTime(entry.TimeRemaining))
	}

	return b.String()
}
