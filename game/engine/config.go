package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfig returns the shipping 10x17, 120 second, sum-to-ten setup
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "10x17 apples, clear rectangles that add up to 10 within two minutes",
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Duration:    DefaultDuration,
		TargetSum:   DefaultTargetSum,
		MinValue:    MinValue,
		MaxValue:    MaxValue,
		Messages: GameMessages{
			Welcome:  "Drag a rectangle over apples that add up to %d!",
			Cleared:  "Cleared %d apples! Score: %d",
			NotTen:   "Sum is %d, not %d",
			GameOver: "Time's up! Final score: %d",
			Restart:  "New board, good luck!",
		},
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid dimensions
	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}

	// Validate timer
	if config.Duration < MinDuration || config.Duration > MaxDuration {
		return fmt.Errorf("config validation: duration_seconds must be between %d and %d, got %d", MinDuration, MaxDuration, config.Duration)
	}

	// Validate value range
	if config.MinValue < MinValue || config.MaxValue > MaxValue {
		return fmt.Errorf("config validation: values must stay within %d..%d, got %d..%d", MinValue, MaxValue, config.MinValue, config.MaxValue)
	}
	if config.MinValue > config.MaxValue {
		return fmt.Errorf("config validation: min_value (%d) must not exceed max_value (%d)", config.MinValue, config.MaxValue)
	}

	// A target a single apple can reach would allow one-cell clears
	if config.TargetSum <= config.MaxValue || config.TargetSum > MaxTargetSum {
		return fmt.Errorf("config validation: target_sum must be between %d and %d, got %d", config.MaxValue+1, MaxTargetSum, config.TargetSum)
	}

	// Validate format strings
	if config.Messages.Cleared != "" && strings.Count(config.Messages.Cleared, "%d") != 2 {
		return fmt.Errorf("config validation: messages.cleared must contain %%d twice for apples and score")
	}
	if config.Messages.GameOver != "" && !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for score")
	}

	return nil
}

// applyMessageDefaults fills empty messages from the default config
func applyMessageDefaults(config *GameConfig) {
	defaults := DefaultConfig().Messages
	if config.Messages.Welcome == "" {
		config.Messages.Welcome = defaults.Welcome
	}
	if config.Messages.Cleared == "" {
		config.Messages.Cleared = defaults.Cleared
	}
	if config.Messages.NotTen == "" {
		config.Messages.NotTen = defaults.NotTen
	}
	if config.Messages.GameOver == "" {
		config.Messages.GameOver = defaults.GameOver
	}
	if config.Messages.Restart == "" {
		config.Messages.Restart = defaults.Restart
	}
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a JSON configuration
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	applyMessageDefaults(&config)

	return &config, nil
}

// formatMessage fills the %d verbs of msg with as many args as it has verbs
func formatMessage(msg string, args ...int) string {
	n := min(strings.Count(msg, "%d"), len(args))
	if n == 0 {
		return msg
	}
	vals := make([]any, n)
	for i := range vals {
		vals[i] = args[i]
	}
	return fmt.Sprintf(msg, vals...)
}

// LoadConfigByName loads configs/<name>.json, or <CONFIG_DIR>/<name>.json
// when CONFIG_DIR is set
func LoadConfigByName(configName string) (*GameConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		configPath = filepath.Join(configDir, configName)
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configName, err)
	}

	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configName, err)
	}
	return config, nil
}
