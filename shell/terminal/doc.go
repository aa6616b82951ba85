// Package terminal is a mouse-driven terminal front end for the Apple Game,
// built on tcell.
//
// The shell shows a title screen with a rules panel, then the board with
// score and countdown. Dragging with the left button highlights a rectangle
// (green when it adds up to the target) and releasing it asks the game
// service to clear it. A short tone plays on every clear when audio is
// available.
//
// Each grid cell is three terminal columns wide and one row high. The shell
// scales rows by three before handing points to the engine so that a square
// layout maps terminal cells to grid cells.
package terminal
