// Package config provides configuration management for the Apple Game.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation
//   - The default "classic" configuration
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines the board width and height, the countdown in
// seconds, the target sum, the value range of fresh cells and the messages
// shown to the player.
//
// The classic setup (10x17, 120 seconds, sum of 10) is built in. A
// classic.json in the configs directory overrides it.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("blitz")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
package config
