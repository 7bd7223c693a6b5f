package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Rules holds the tunable parameters of a game. Board layout, rent tables
// and card decks are fixed; everything else is loaded from JSON.
type Rules struct {
	Name                      string   `json:"name"`
	Description               string   `json:"description"`
	StartingCash              int      `json:"starting_cash"`
	PassStartBonus            int      `json:"pass_start_bonus"`
	MinPlayers                int      `json:"min_players"`
	MaxPlayers                int      `json:"max_players"`
	MaxBots                   int      `json:"max_bots"`
	BotBuyProbability         float64  `json:"bot_buy_probability"`
	BotTradeAcceptProbability float64  `json:"bot_trade_accept_probability"`
	UnmortgageInterestPercent int      `json:"unmortgage_interest_percent"`
	MaxChainedBotTurns        int      `json:"max_chained_bot_turns"`
	BotNames                  []string `json:"bot_names,omitempty"`
}

// DefaultRules returns the classic rule set
func DefaultRules() *Rules {
	return &Rules{
		Name:                      "classic",
		Description:               "Standard rules: 1500 starting cash, 200 for passing Start",
		StartingCash:              1500,
		PassStartBonus:            200,
		MinPlayers:                2,
		MaxPlayers:                MaxPlayersCap,
		MaxBots:                   MaxPlayersCap - 1,
		BotBuyProbability:         0.7,
		BotTradeAcceptProbability: 0.7,
		UnmortgageInterestPercent: 10,
		MaxChainedBotTurns:        200,
		BotNames:                  []string{"Ada", "Babbage", "Curie", "Dijkstra", "Euler"},
	}
}

// ValidateRules checks a rule set for consistency
func ValidateRules(r *Rules) error {
	if r == nil {
		return fmt.Errorf("rules validation: rules are required")
	}
	if r.Name == "" {
		return fmt.Errorf("rules validation: name is required")
	}
	if r.StartingCash <= 0 {
		return fmt.Errorf("rules validation: starting_cash must be positive, got %d", r.StartingCash)
	}
	if r.PassStartBonus < 0 {
		return fmt.Errorf("rules validation: pass_start_bonus cannot be negative, got %d", r.PassStartBonus)
	}
	if r.MinPlayers < 2 {
		return fmt.Errorf("rules validation: min_players must be at least 2, got %d", r.MinPlayers)
	}
	if r.MaxPlayers < r.MinPlayers || r.MaxPlayers > MaxPlayersCap {
		return fmt.Errorf("rules validation: max_players must be between min_players (%d) and %d, got %d",
			r.MinPlayers, MaxPlayersCap, r.MaxPlayers)
	}
	if r.MaxBots < 0 || r.MaxBots >= r.MaxPlayers {
		return fmt.Errorf("rules validation: max_bots must be between 0 and %d, got %d", r.MaxPlayers-1, r.MaxBots)
	}
	if r.BotBuyProbability < 0 || r.BotBuyProbability > 1 {
		return fmt.Errorf("rules validation: bot_buy_probability must be within [0,1], got %v", r.BotBuyProbability)
	}
	if r.BotTradeAcceptProbability < 0 || r.BotTradeAcceptProbability > 1 {
		return fmt.Errorf("rules validation: bot_trade_accept_probability must be within [0,1], got %v", r.BotTradeAcceptProbability)
	}
	if r.UnmortgageInterestPercent < 0 || r.UnmortgageInterestPercent > 100 {
		return fmt.Errorf("rules validation: unmortgage_interest_percent must be within [0,100], got %d", r.UnmortgageInterestPercent)
	}
	if r.MaxChainedBotTurns <= 0 {
		return fmt.Errorf("rules validation: max_chained_bot_turns must be positive, got %d", r.MaxChainedBotTurns)
	}
	return nil
}

// ParseRules decodes a JSON rule set on top of the classic rules, so a file
// only needs the fields it changes, and validates the result
func ParseRules(data []byte) (*Rules, error) {
	rules := DefaultRules()
	if err := json.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// LoadRulesFile reads and validates a rule set from a JSON file
func LoadRulesFile(filename string) (*Rules, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

func (r *Rules) botName(i int) string {
	if len(r.BotNames) == 0 {
		return fmt.Sprintf("Bot %d", i+1)
	}
	name := r.BotNames[i%len(r.BotNames)]
	if i >= len(r.BotNames) {
		name = fmt.Sprintf("%s %d", name, i/len(r.BotNames)+1)
	}
	return name
}
