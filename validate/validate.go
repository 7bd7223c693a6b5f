// Command validate checks the rules JSON files in ../configs (or the
// directory given as the first argument). It checks:
//   - JSON syntax and unknown keys (usually typos)
//   - The rule constraints enforced when a game is created
//   - That enough bot names exist for the bots a table may seat
//   - That starting cash can buy at least the cheapest tile on the board
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/landlord/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateRules loads and validates a single rules file
func validateRules(filePath string) ValidationResult {
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

	// Unknown keys are silently ignored by the server, so flag them here
	strict := json.NewDecoder(bytes.NewReader(data))
	strict.DisallowUnknownFields()
	var probe engine.Rules
	if err := strict.Decode(&probe); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	rules, err := engine.ParseRules(data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	if len(rules.BotNames) > 0 && len(rules.BotNames) < rules.MaxBots {
		result.fail("bot_names has %d names but max_bots is %d", len(rules.BotNames), rules.MaxBots)
	}

	cheapest := cheapestTile()
	if rules.StartingCash < cheapest {
		result.fail("starting_cash (%d) cannot buy the cheapest tile (%d)", rules.StartingCash, cheapest)
	}

	if result.Valid {
		result.info("Name: %s", rules.Name)
		result.info("Players: %d-%d (up to %d bots)", rules.MinPlayers, rules.MaxPlayers, rules.MaxBots)
		result.info("Cash: %d, start bonus %d", rules.StartingCash, rules.PassStartBonus)
		result.info("Bots: buy %.0f%%, accept trades %.0f%%",
			rules.BotBuyProbability*100, rules.BotTradeAcceptProbability*100)
		result.info("Unmortgage interest: %d%%", rules.UnmortgageInterestPercent)
	}

	return result
}

func cheapestTile() int {
	cheapest := 0
	for _, t := range engine.NewBoard() {
		if t.Price > 0 && (cheapest == 0 || t.Price < cheapest) {
			cheapest = t.Price
		}
	}
	return cheapest
}

// main scans the rules directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding rules files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No rules files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateRules(file)

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
		fmt.Println("✅ All rules files are valid!")
	} else {
		fmt.Println("❌ Some rules files have errors")
		os.Exit(1)
	}
}
