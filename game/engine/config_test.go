package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	if err := ValidateRules(r); err != nil {
		t.Fatalf("Default rules invalid: %v", err)
	}
	if r.StartingCash != 1500 || r.PassStartBonus != 200 {
		t.Errorf("Unexpected economy: cash %d bonus %d", r.StartingCash, r.PassStartBonus)
	}
	if r.BotBuyProbability != 0.7 || r.BotTradeAcceptProbability != 0.7 {
		t.Errorf("Unexpected bot probabilities: %v %v", r.BotBuyProbability, r.BotTradeAcceptProbability)
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Rules)
		wantErr string
	}{
		{"valid", func(r *Rules) {}, ""},
		{"missing name", func(r *Rules) { r.Name = "" }, "name is required"},
		{"no starting cash", func(r *Rules) { r.StartingCash = 0 }, "starting_cash"},
		{"negative bonus", func(r *Rules) { r.PassStartBonus = -1 }, "pass_start_bonus"},
		{"min players too low", func(r *Rules) { r.MinPlayers = 1 }, "min_players"},
		{"max players too high", func(r *Rules) { r.MaxPlayers = MaxPlayersCap + 1 }, "max_players"},
		{"max below min", func(r *Rules) { r.MinPlayers = 4; r.MaxPlayers = 3; r.MaxBots = 2 }, "max_players"},
		{"too many bots", func(r *Rules) { r.MaxBots = r.MaxPlayers }, "max_bots"},
		{"buy probability", func(r *Rules) { r.BotBuyProbability = 1.5 }, "bot_buy_probability"},
		{"trade probability", func(r *Rules) { r.BotTradeAcceptProbability = -0.1 }, "bot_trade_accept_probability"},
		{"interest", func(r *Rules) { r.UnmortgageInterestPercent = 101 }, "unmortgage_interest_percent"},
		{"chain limit", func(r *Rules) { r.MaxChainedBotTurns = 0 }, "max_chained_bot_turns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.mutate(r)
			err := ValidateRules(r)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateRules(nil); err == nil {
		t.Error("Expected nil rules to be rejected")
	}
}

func TestLoadRulesFile(t *testing.T) {
	dir := t.TempDir()

	quick := DefaultRules()
	quick.Name = "quick"
	quick.StartingCash = 800
	data, _ := json.Marshal(quick)
	good := filepath.Join(dir, "quick.json")
	if err := os.WriteFile(good, data, 0644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRulesFile(good)
	if err != nil {
		t.Fatalf("LoadRulesFile failed: %v", err)
	}
	if r.Name != "quick" || r.StartingCash != 800 {
		t.Errorf("Unexpected rules %+v", r)
	}

	broken := filepath.Join(dir, "broken.json")
	os.WriteFile(broken, []byte("{not json"), 0644)
	if _, err := LoadRulesFile(broken); err == nil {
		t.Error("Expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.json")
	os.WriteFile(invalid, []byte(`{"name":"x","starting_cash":0}`), 0644)
	if _, err := LoadRulesFile(invalid); err == nil {
		t.Error("Expected validation error")
	}

	partial := filepath.Join(dir, "partial.json")
	os.WriteFile(partial, []byte(`{"name":"partial","pass_start_bonus":50}`), 0644)
	r, err = LoadRulesFile(partial)
	if err != nil {
		t.Fatalf("LoadRulesFile failed: %v", err)
	}
	if r.PassStartBonus != 50 || r.StartingCash != 1500 || len(r.BotNames) == 0 {
		t.Errorf("Expected unset fields to keep classic values, got %+v", r)
	}

	if _, err := LoadRulesFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBotNames(t *testing.T) {
	r := DefaultRules()
	r.BotNames = []string{"Ada", "Bob"}

	want := []string{"Ada", "Bob", "Ada 2", "Bob 2", "Ada 3"}
	for i, w := range want {
		if got := r.botName(i); got != w {
			t.Errorf("botName(%d) = %q, want %q", i, got, w)
		}
	}

	r.BotNames = nil
	if got := r.botName(0); got != "Bot 1" {
		t.Errorf("Expected fallback name, got %q", got)
	}
}
