// Package engine provides the core game logic for the Apple Game.
//
// The engine package implements the game mechanics including:
//   - Grid generation with values drawn uniformly from 1..9
//   - Mapping a screen-space drag to a clamped cell rectangle
//   - The all-or-nothing clear transaction on a sum of ten
//   - The session countdown and restart
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current session,
// while GameConfig defines board size, duration and target sum loaded from
// JSON files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.SetLayout(engine.Layout{CellSize: 32})
//	gameEngine.DragStart(engine.Point{X: 5, Y: 5})
//	gameEngine.DragMove(engine.Point{X: 40, Y: 5})
//	result := gameEngine.DragEnd(engine.Point{X: 40, Y: 5})
//
// Game Rules:
//
// The player drags a rectangle over the board. When the non-empty cells
// inside it add up to exactly ten they are all cleared and the score grows
// by the number of cells removed. Otherwise nothing changes. The session
// ends when the two minute countdown reaches zero; cleared cells are never
// refilled until restart.
package engine
