package engine

import (
	"math/rand/v2"
	"testing"
)

// testLayout maps cell (c, r) to the screen square [10c, 10c+10) x [10r, 10r+10)
var testLayout = Layout{Origin: Point{X: 0, Y: 0}, CellSize: 10}

func createTestConfig() *GameConfig {
	return &GameConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine integration tests",
		Width:       4,
		Height:      3,
		Duration:    5,
		TargetSum:   10,
		MinValue:    1,
		MaxValue:    9,
		Messages: GameMessages{
			Welcome:  "Welcome to engine test!",
			Cleared:  "Cleared %d! Score: %d",
			NotTen:   "Sum %d != %d",
			GameOver: "Over! Score: %d",
			Restart:  "Restarted",
		},
	}
}

// center returns the screen point at the middle of cell (c, r)
func center(c, r int) Point {
	return Point{X: float64(c)*10 + 5, Y: float64(r)*10 + 5}
}

// newTestEngine builds an engine over a known board laid out by testLayout
func newTestEngine(t *testing.T, grid Grid) *GameEngine {
	t.Helper()
	config := createTestConfig()
	config.Height = grid.Height()
	config.Width = grid.Width()

	engine, err := NewEngineWithRand(config, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := engine.SetGrid(grid); err != nil {
		t.Fatalf("Failed to set grid: %v", err)
	}
	engine.SetLayout(testLayout)
	return engine
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	// Test initial state
	if engine.GetTimeRemaining() != config.Duration {
		t.Errorf("Expected time remaining %d, got %d", config.Duration, engine.GetTimeRemaining())
	}
	if engine.GetScore() != 0 {
		t.Errorf("Expected initial score 0, got %d", engine.GetScore())
	}
	if engine.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if engine.GetPhase() != PhaseIdle {
		t.Errorf("Expected idle gesture phase, got %s", engine.GetPhase())
	}
	state := engine.GetState()
	if state.Status != StatusRunning {
		t.Errorf("Expected status running, got %s", state.Status)
	}
	if state.Message != "Welcome to engine test!" {
		t.Errorf("Unexpected welcome message %q", state.Message)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = "" // Make config invalid

	_, err := NewEngine(config)
	if err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	grid := engine.GetGrid()
	if grid.Height() != DefaultHeight || grid.Width() != DefaultWidth {
		t.Errorf("Expected %dx%d grid, got %dx%d", DefaultWidth, DefaultHeight, grid.Width(), grid.Height())
	}
	if engine.GetTimeRemaining() != DefaultDuration {
		t.Errorf("Expected %d seconds, got %d", DefaultDuration, engine.GetTimeRemaining())
	}
	if got := engine.GetState().Clock; got != "02:00" {
		t.Errorf("Expected clock 02:00, got %s", got)
	}
}

func TestEngine_DragClearsMatchingRectangle(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	engine.DragStart(center(0, 0))
	if engine.GetPhase() != PhaseDragging {
		t.Fatalf("Expected dragging phase, got %s", engine.GetPhase())
	}

	preview := engine.DragMove(center(1, 0))
	if preview != (Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 0}) {
		t.Errorf("Unexpected preview %+v", preview)
	}
	if engine.GetGrid()[0][0] != 4 {
		t.Error("Preview must not change the grid")
	}

	result := engine.DragEnd(center(1, 0))
	if !result.Accepted || !result.Selection.Cleared {
		t.Fatalf("Expected clear, got %+v", result.Selection)
	}
	if result.Selection.ApplesCleared != 2 {
		t.Errorf("Expected 2 apples cleared, got %d", result.Selection.ApplesCleared)
	}
	if result.Score != 2 || engine.GetScore() != 2 {
		t.Errorf("Expected score 2, got result %d engine %d", result.Score, engine.GetScore())
	}
	if result.Grid[0][0] != 0 || result.Grid[0][1] != 0 {
		t.Errorf("Expected cleared cells, got %v", result.Grid[0])
	}
	if engine.GetPhase() != PhaseIdle || !engine.GetPreview().Empty() {
		t.Error("Expected gesture to be reset after release")
	}
	if engine.GetState().Message != "Cleared 2! Score: 2" {
		t.Errorf("Unexpected message %q", engine.GetState().Message)
	}
	if engine.GetState().RemainingApples != 10 {
		t.Errorf("Expected 10 apples left, got %d", engine.GetState().RemainingApples)
	}
}

func TestEngine_DragStartResetsAbandonedGesture(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	engine.DragStart(center(3, 2))
	engine.DragMove(center(2, 1))

	// Gesture interrupted; a new one starts elsewhere
	engine.DragStart(center(0, 0))
	if !engine.GetPreview().Empty() {
		t.Errorf("Expected preview to be cleared, got %+v", engine.GetPreview())
	}

	result := engine.DragEnd(center(1, 0))
	if !result.Selection.Cleared {
		t.Errorf("Expected the new gesture to clear (0,0)-(1,0), got %+v", result.Selection)
	}
}

func TestEngine_DragWithoutLayoutIsIgnored(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})
	engine.SetLayout(Layout{})

	engine.DragStart(center(0, 0))
	if engine.GetPhase() != PhaseIdle {
		t.Error("Expected gesture to be ignored without layout")
	}
	if !engine.DragMove(center(1, 0)).Empty() {
		t.Error("Expected empty preview without layout")
	}
	result := engine.DragEnd(center(1, 0))
	if result.Accepted {
		t.Error("Expected release to be ignored without layout")
	}
	if engine.GetScore() != 0 {
		t.Errorf("Expected score 0, got %d", engine.GetScore())
	}
}

func TestEngine_DragEndWithoutStart(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	result := engine.DragEnd(center(1, 0))
	if result.Accepted {
		t.Error("Expected release without a gesture to be ignored")
	}
}

func TestEngine_Select(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{3, 3, 3, 9},
		{9, 9, 9, 9},
	})

	// Sum 9, nothing happens
	result := engine.Select(center(0, 1), center(2, 1))
	if result.Selection.Cleared || result.Selection.Sum != 9 {
		t.Errorf("Expected sum 9 without clear, got %+v", result.Selection)
	}
	if engine.GetState().Message != "Sum 9 != 10" {
		t.Errorf("Unexpected message %q", engine.GetState().Message)
	}

	// Drawn right to left
	result = engine.Select(center(1, 0), center(0, 0))
	if !result.Selection.Cleared {
		t.Errorf("Expected clear, got %+v", result.Selection)
	}
}

func TestEngine_SelectCellsClampsToGrid(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{9, 9, 9, 4},
		{9, 9, 9, 6},
		{9, 9, 9, 9},
	})

	result := engine.SelectCells(Rect{MinCol: 3, MaxCol: 12, MinRow: -4, MaxRow: 1})
	want := Rect{MinCol: 3, MaxCol: 3, MinRow: 0, MaxRow: 1}
	if result.Selection.Rect != want {
		t.Errorf("Expected rect %+v, got %+v", want, result.Selection.Rect)
	}
	if !result.Selection.Cleared {
		t.Errorf("Expected clear, got %+v", result.Selection)
	}
}

func TestEngine_TickEndsGame(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	for i := 0; i < 4; i++ {
		res := engine.Tick()
		if res.Ended {
			t.Fatalf("Game ended early at tick %d", i+1)
		}
	}
	if engine.GetTimeRemaining() != 1 {
		t.Fatalf("Expected 1 second left, got %d", engine.GetTimeRemaining())
	}

	res := engine.Tick()
	if !res.Ended || res.TimeRemaining != 0 {
		t.Errorf("Expected game to end at 0, got %+v", res)
	}
	state := engine.GetState()
	if state.Status != StatusEnded || !state.GameOver {
		t.Errorf("Expected ended state, got status %s game_over %v", state.Status, state.GameOver)
	}
	if state.Message != "Over! Score: 0" {
		t.Errorf("Unexpected message %q", state.Message)
	}

	// Further ticks are no-ops
	res = engine.Tick()
	if res.TimeRemaining != 0 || !res.Ended {
		t.Errorf("Expected terminal state, got %+v", res)
	}
}

func TestEngine_Restart(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	engine.Select(center(0, 0), center(1, 0))
	engine.Tick()
	if engine.GetScore() == 0 {
		t.Fatal("Expected score to have changed before restart")
	}

	res := engine.Restart()
	if res.Score != 0 || engine.GetScore() != 0 {
		t.Errorf("Expected score reset to 0, got %d", engine.GetScore())
	}
	if res.TimeRemaining != 5 {
		t.Errorf("Expected time reset to 5, got %d", res.TimeRemaining)
	}
	for y, row := range res.Grid {
		for x, v := range row {
			if v < 1 || v > 9 {
				t.Errorf("Cell (%d,%d) = %d, expected 1..9", x, y, v)
			}
		}
	}

	// Clear history is cumulative across restarts, the current segment is cleared
	state := engine.GetState()
	if state.TotalClears != 1 || len(state.ClearHistory) != 1 {
		t.Errorf("Expected cumulative history of 1, got %d", state.TotalClears)
	}
	if len(state.CurrentClears) != 0 || state.CurrentClearsCount != 0 {
		t.Errorf("Expected current clears to be empty, got %d", state.CurrentClearsCount)
	}
}

func TestEngine_ClearHistory(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{2, 8, 9, 9},
		{9, 9, 9, 9},
	})

	if engine.GetLastClear() != nil {
		t.Error("Expected no last clear on a fresh engine")
	}

	engine.Select(center(0, 0), center(1, 0))
	engine.Tick()
	engine.Select(center(0, 1), center(1, 1))

	history := engine.GetClearHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	last := engine.GetLastClear()
	if last.ClearNumber != 2 || last.ScoreAfter != 4 || last.TimeRemaining != 4 {
		t.Errorf("Unexpected last clear %+v", last)
	}
	if last.ID == "" || last.ID == history[0].ID {
		t.Error("Expected unique clear IDs")
	}
}

func TestEngine_GetStateIsACopy(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	before := engine.GetState()
	engine.Select(center(0, 0), center(1, 0))

	if before.Score != 0 {
		t.Errorf("Expected earlier state copy to keep score 0, got %d", before.Score)
	}
	if before.Grid[0][0] != 4 {
		t.Error("Expected earlier grid snapshot to stay intact")
	}
}

func TestEngine_SetGridRejectsBadBoards(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{1, 1, 1, 1},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	})

	if err := engine.SetGrid(Grid{{1, 2}}); err == nil {
		t.Error("Expected error for wrong dimensions")
	}
	if err := engine.SetGrid(Grid{{1, 1, 1, 1}, {1, 12, 1, 1}, {1, 1, 1, 1}}); err == nil {
		t.Error("Expected error for out of range value")
	}
}

func TestEngine_Hints(t *testing.T) {
	engine := newTestEngine(t, Grid{
		{4, 6, 9, 9},
		{9, 9, 9, 9},
		{9, 9, 9, 9},
	})

	hints := engine.GetHints()
	if len(hints) != 1 || hints[0] != (Rect{MinCol: 0, MaxCol: 1, MinRow: 0, MaxRow: 0}) {
		t.Errorf("Expected a single hint over (0,0)-(1,0), got %+v", hints)
	}

	for !engine.IsGameOver() {
		engine.Tick()
	}
	if hints := engine.GetHints(); hints != nil {
		t.Errorf("Expected no hints after game over, got %+v", hints)
	}
}
