package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/landlord/game/engine"
)

func createTestRulesDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "rules-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func writeRulesFile(t *testing.T, dir, name string, rules *engine.Rules) {
	t.Helper()
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal rules: %v", err)
	}
	writeRaw(t, dir, name, string(data))
}

func writeRaw(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, rulesFilename(name)), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}
}

func quickRules() *engine.Rules {
	r := engine.DefaultRules()
	r.Name = "Quick"
	r.Description = "Short games"
	r.StartingCash = 800
	r.PassStartBonus = 100
	return r
}

func TestNewManager(t *testing.T) {
	t.Run("classic is the default", func(t *testing.T) {
		dir := createTestRulesDir(t)
		writeRulesFile(t, dir, "quick", quickRules())
		classic := engine.DefaultRules()
		classic.StartingCash = 2000
		writeRulesFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultName() != "classic" || manager.GetDefault().StartingCash != 2000 {
			t.Errorf("Expected classic.json as default, got %s", manager.DefaultName())
		}
	})

	t.Run("invalid classic falls back to built-in rules", func(t *testing.T) {
		dir := createTestRulesDir(t)
		writeRaw(t, dir, "classic", "{not json")
		writeRulesFile(t, dir, "quick", quickRules())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.DefaultName() != "classic" || manager.GetDefault().StartingCash != 1500 {
			t.Errorf("Expected built-in classic, got %s", manager.DefaultName())
		}
	})

	t.Run("empty directory falls back to built-in rules", func(t *testing.T) {
		dir := createTestRulesDir(t)
		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed without rules files, got %v", err)
		}
		if manager.GetDefault() == nil || manager.GetDefault().StartingCash != 1500 {
			t.Error("Expected built-in classic rules")
		}
		if rules, err := manager.LoadRules("classic"); err != nil || rules.Name != "classic" {
			t.Errorf("Expected classic to load without a file, got %v", err)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})
}

func TestManager_LoadRules(t *testing.T) {
	dir := createTestRulesDir(t)
	writeRulesFile(t, dir, "quick", quickRules())
	writeRaw(t, dir, "partial", `{"name": "Partial", "starting_cash": 900}`)
	writeRaw(t, dir, "broken", `{"name": "Broken", "bot_buy_probability": 2}`)
	writeRaw(t, dir, "malformed", `{"name": `)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing rules", func(t *testing.T) {
		rules, err := manager.LoadRules("quick")
		if err != nil {
			t.Fatalf("Failed to load rules: %v", err)
		}
		if rules.Name != "Quick" || rules.StartingCash != 800 {
			t.Errorf("Unexpected rules %+v", rules)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		if _, err := manager.LoadRules("quick.json"); err != nil {
			t.Errorf("Failed to load rules: %v", err)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		first, _ := manager.LoadRules("quick")
		second, _ := manager.LoadRules("quick")
		if first != second {
			t.Error("Expected the cached instance")
		}
	})

	t.Run("missing fields keep classic values", func(t *testing.T) {
		rules, err := manager.LoadRules("partial")
		if err != nil {
			t.Fatalf("Failed to load rules: %v", err)
		}
		if rules.StartingCash != 900 || rules.PassStartBonus != 200 || rules.BotBuyProbability != 0.7 {
			t.Errorf("Unexpected rules %+v", rules)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			want error
		}{
			{"nope", ErrRulesNotFound},
			{"../quick", ErrRulesNotFound},
			{"broken", ErrInvalidRules},
			{"malformed", ErrInvalidRules},
		}
		for _, tt := range tests {
			if _, err := manager.LoadRules(tt.name); !errors.Is(err, tt.want) {
				t.Errorf("LoadRules(%q): expected %v, got %v", tt.name, tt.want, err)
			}
		}
	})
}

func TestManager_ListRules(t *testing.T) {
	dir := createTestRulesDir(t)
	writeRulesFile(t, dir, "quick", quickRules())
	writeRulesFile(t, dir, "classic", engine.DefaultRules())
	writeRaw(t, dir, "broken", `{"starting_cash": -1}`)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	infos, err := manager.ListRules()
	if err != nil {
		t.Fatalf("ListRules failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 rule sets, got %d", len(infos))
	}
	if infos[0].RulesID != "classic" || infos[1].RulesID != "quick" {
		t.Errorf("Expected sorted ids, got %s %s", infos[0].RulesID, infos[1].RulesID)
	}
	if infos[1].Filename != "quick.json" || infos[1].StartingCash != 800 || infos[1].Description != "Short games" {
		t.Errorf("Unexpected info %+v", infos[1])
	}
}

func TestManager_SetDefault(t *testing.T) {
	dir := createTestRulesDir(t)
	writeRulesFile(t, dir, "quick", quickRules())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("quick"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.DefaultName() != "quick" || manager.GetDefault().StartingCash != 800 {
		t.Error("Default was not switched")
	}
	if err := manager.SetDefault("nope"); !errors.Is(err, ErrRulesNotFound) {
		t.Errorf("Expected ErrRulesNotFound, got %v", err)
	}
}

func TestManager_SaveAndRefresh(t *testing.T) {
	dir := createTestRulesDir(t)
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	custom := quickRules()
	if err := manager.SaveRules("custom", custom); err != nil {
		t.Fatalf("SaveRules failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.json")); err != nil {
		t.Errorf("Expected rules file on disk: %v", err)
	}
	if got, _ := manager.LoadRules("custom"); got != custom {
		t.Error("Expected saved rules to be cached")
	}

	bad := engine.DefaultRules()
	bad.MinPlayers = 9
	if err := manager.SaveRules("bad", bad); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("Expected ErrInvalidRules, got %v", err)
	}
	if err := manager.SaveRules("../escape", custom); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("Expected ErrInvalidRules for a path, got %v", err)
	}

	// edit on disk, then refresh
	edited := quickRules()
	edited.StartingCash = 1234
	writeRulesFile(t, dir, "custom", edited)
	if got, _ := manager.LoadRules("custom"); got.StartingCash != 800 {
		t.Error("Expected cached value before refresh")
	}
	manager.RefreshCache()
	if got, _ := manager.LoadRules("custom"); got.StartingCash != 1234 {
		t.Errorf("Expected reloaded value, got %d", got.StartingCash)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestRulesDir(t)
	writeRulesFile(t, dir, "classic", engine.DefaultRules())
	writeRulesFile(t, dir, "quick", quickRules())
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				manager.LoadRules("quick")
			case 1:
				manager.ListRules()
			case 2:
				manager.GetDefault()
			case 3:
				manager.RefreshCache()
			}
		}(i)
	}
	wg.Wait()

	if manager.GetDefault() == nil {
		t.Error("Default rules lost under concurrent access")
	}
}
