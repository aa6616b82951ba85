// Package service provides the business logic layer for the Apple Game.
//
// The service package implements:
//   - Multi-session game management
//   - Gesture and selection processing
//   - The per-session countdown and restart
//   - Clear history pagination and hints
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every call is serialized under one lock, so each engine
// sees its events one at a time exactly as a UI event loop would deliver them.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.SetLayout(ctx, info.ID, engine.Layout{CellSize: 32})
//	result, err := gameService.Select(ctx, info.ID, from, to)
package service
