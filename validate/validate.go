// Command validate provides a small CLI that validates game configuration JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Board dimensions, clock, and value range bounds
//   - That the target sum cannot be reached by a single apple
//   - Message format verbs
//   - Playability: sampled boards open with at least one clearable rectangle
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/apple-game/game/engine"
)

// playabilitySamples is the number of boards drawn per config
const playabilitySamples = 20

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file.
// Unlike the engine it reports every problem found, not only the first.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("Missing required field: name")
	}
	if config.Description == "" {
		result.fail("Missing required field: description")
	}

	// Board
	if config.Width < engine.MinGridSize || config.Width > engine.MaxGridSize {
		result.fail("width must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, config.Width)
	}
	if config.Height < engine.MinGridSize || config.Height > engine.MaxGridSize {
		result.fail("height must be between %d and %d, got %d", engine.MinGridSize, engine.MaxGridSize, config.Height)
	}
	if config.Duration < engine.MinDuration || config.Duration > engine.MaxDuration {
		result.fail("duration_seconds must be between %d and %d, got %d", engine.MinDuration, engine.MaxDuration, config.Duration)
	}

	// Values
	if config.MinValue < engine.MinValue || config.MaxValue > engine.MaxValue {
		result.fail("values must stay within %d..%d, got %d..%d", engine.MinValue, engine.MaxValue, config.MinValue, config.MaxValue)
	}
	if config.MinValue > config.MaxValue {
		result.fail("min_value (%d) must not exceed max_value (%d)", config.MinValue, config.MaxValue)
	}
	if config.TargetSum <= config.MaxValue {
		result.fail("target_sum %d can be reached by a single apple (max_value %d)", config.TargetSum, config.MaxValue)
	}
	if config.TargetSum > engine.MaxTargetSum {
		result.fail("target_sum must be at most %d, got %d", engine.MaxTargetSum, config.TargetSum)
	}

	// Messages
	if msg := config.Messages.Cleared; msg != "" && strings.Count(msg, "%d") != 2 {
		result.fail("messages.cleared must contain %%d twice for apples and score")
	}
	if msg := config.Messages.GameOver; msg != "" && !strings.Contains(msg, "%d") {
		result.fail("messages.game_over must contain %%d for score")
	}
	if msg := config.Messages.NotTen; msg != "" && strings.Count(msg, "%d") > 2 {
		result.fail("messages.not_ten has more than two %%d verbs")
	}

	if !result.Valid {
		return result
	}

	// Anything the checks above missed is still caught by the engine
	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("Board: %dx%d, values %d..%d, target %d", config.Width, config.Height, config.MinValue, config.MaxValue, config.TargetSum)

	playable := playableBoards(&config, playabilitySamples)
	if playable == 0 {
		result.fail("Playability failure: none of %d sampled boards has a clearable rectangle", playabilitySamples)
	} else {
		result.info("Playability: %d/%d sampled boards open with a clear", playable, playabilitySamples)
	}

	return result
}

// playableBoards draws n seeded boards and counts those with a clearable rectangle
func playableBoards(config *engine.GameConfig, n int) int {
	rng := rand.New(rand.NewPCG(1, 2))
	playable := 0
	for i := 0; i < n; i++ {
		if engine.HasClearableRect(engine.NewGrid(config, rng), config.TargetSum) {
			playable++
		}
	}
	return playable
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
