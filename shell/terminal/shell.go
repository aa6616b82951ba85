package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/apple-game/game/engine"
	"github.com/wricardo/apple-game/game/service"
)

var log = logrus.WithField("component", "terminal")

const (
	// A grid cell is drawn three columns wide and one row high
	cellWidth = 3
	rowScale  = cellWidth

	gridLeft = 2
	gridTop  = 3
)

// Mode is the screen being shown
type Mode int

const (
	ModeTitle Mode = iota
	ModeRules
	ModeGame
)

// Shell is the terminal front end of one game session. All of its methods
// run on the event loop goroutine.
type Shell struct {
	screen    tcell.Screen
	svc       service.GameService
	sound     Sound
	sessionID string

	mode     Mode
	config   *engine.GameConfig
	state    *engine.GameState
	preview  engine.Rect
	dragging bool
	hint     *engine.Rect
	status   string
}

// New creates a shell for an existing session. screen must be initialized.
func New(screen tcell.Screen, svc service.GameService, sessionID string, sound Sound) (*Shell, error) {
	if sound == nil {
		sound = Silent{}
	}
	s := &Shell{
		screen:    screen,
		svc:       svc,
		sound:     sound,
		sessionID: sessionID,
		mode:      ModeTitle,
		preview:   engine.EmptyRect,
	}

	ctx := context.Background()
	info, err := svc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.config = info.GameConfig
	s.state = info.GameState

	layout := engine.Layout{
		Origin:   engine.Point{X: gridLeft, Y: gridTop * rowScale},
		CellSize: cellWidth,
	}
	if _, err := svc.SetLayout(ctx, sessionID, layout); err != nil {
		return nil, fmt.Errorf("set layout: %w", err)
	}

	screen.EnableMouse()
	return s, nil
}

// Mode returns the screen being shown
func (s *Shell) Mode() Mode {
	return s.mode
}

// State returns the last game state the shell rendered
func (s *Shell) State() *engine.GameState {
	return s.state
}

// toPoint maps the center of a terminal cell into layout coordinates
func toPoint(x, y int) engine.Point {
	return engine.Point{X: float64(x) + 0.5, Y: (float64(y) + 0.5) * rowScale}
}

// Run draws and processes events until the player quits or ctx is done
func (s *Shell) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !s.HandleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			s.Tick()
		}
		s.draw()
	}
}

// HandleEvent applies one terminal event and reports whether to keep running
func (s *Shell) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0) {
			return false
		}
		return s.handleKey(ev)

	case *tcell.EventMouse:
		if s.mode == ModeGame {
			s.handleMouse(ev)
		}

	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *Shell) handleKey(ev *tcell.EventKey) bool {
	r := ev.Rune()
	if ev.Key() != tcell.KeyRune {
		r = 0
	}

	switch s.mode {
	case ModeTitle:
		switch {
		case ev.Key() == tcell.KeyEnter || r == 's':
			s.startGame()
		case r == 'i' || r == '?':
			s.mode = ModeRules
		case ev.Key() == tcell.KeyEscape || r == 'q':
			return false
		}

	case ModeRules:
		// Any key closes the rules
		s.mode = ModeTitle

	case ModeGame:
		switch {
		case r == 'b' || ev.Key() == tcell.KeyEscape:
			s.cancelDrag()
			s.mode = ModeTitle
		case r == 'r':
			s.restart()
		case r == 'h':
			s.showHint()
		case r == 'q':
			return false
		}
	}
	return true
}

// handleMouse turns button-1 press, motion and release into a gesture
func (s *Shell) handleMouse(ev *tcell.EventMouse) {
	ctx := context.Background()
	x, y := ev.Position()
	at := toPoint(x, y)
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && !s.dragging:
		if s.state != nil && s.state.GameOver {
			return
		}
		if _, err := s.svc.DragStart(ctx, s.sessionID, at); err != nil {
			s.status = err.Error()
			return
		}
		s.dragging = true
		s.hint = nil
		s.updatePreview(ctx, at)

	case pressed && s.dragging:
		s.updatePreview(ctx, at)

	case !pressed && s.dragging:
		s.dragging = false
		s.preview = engine.EmptyRect
		result, err := s.svc.DragEnd(ctx, s.sessionID, at)
		if err != nil {
			s.status = err.Error()
			return
		}
		s.applyClear(result)
	}
}

func (s *Shell) updatePreview(ctx context.Context, at engine.Point) {
	preview, err := s.svc.DragMove(ctx, s.sessionID, at)
	if err != nil {
		s.status = err.Error()
		return
	}
	s.preview = preview.Rect
}

func (s *Shell) applyClear(result *service.ClearResult) {
	s.state = result.GameState
	if !result.Accepted {
		return
	}
	if result.Cleared {
		s.sound.PlayClear(result.ApplesCleared)
		log.WithFields(logrus.Fields{"cleared": result.ApplesCleared, "score": s.state.Score}).Debug("clear")
	}
	s.status = s.state.Message
}

func (s *Shell) cancelDrag() {
	s.dragging = false
	s.preview = engine.EmptyRect
	s.hint = nil
}

// Tick advances the session clock while a game is on screen
func (s *Shell) Tick() {
	if s.mode != ModeGame || s.state == nil || s.state.GameOver {
		return
	}
	tick, err := s.svc.Tick(context.Background(), s.sessionID)
	if err != nil {
		s.status = err.Error()
		return
	}
	s.state = tick.GameState
	if tick.JustEnded {
		s.cancelDrag()
		s.status = s.state.Message
	}
}

func (s *Shell) startGame() {
	s.restart()
	s.mode = ModeGame
}

func (s *Shell) restart() {
	s.cancelDrag()
	state, err := s.svc.Restart(context.Background(), s.sessionID)
	if err != nil {
		s.status = err.Error()
		return
	}
	s.state = state
	s.status = state.Message
}

func (s *Shell) showHint() {
	hints, err := s.svc.GetHints(context.Background(), s.sessionID, 1)
	if err != nil {
		s.status = err.Error()
		return
	}
	if len(hints.Hints) == 0 {
		s.hint = nil
		s.status = "No clear left on this board. Press r for a new one."
		return
	}
	h := hints.Hints[0]
	s.hint = &h
	s.status = fmt.Sprintf("%d possible clears", hints.Total)
}
