package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
)

var (
	ErrRulesNotFound = errors.New("rules not found")
	ErrInvalidRules  = errors.New("invalid rules")
)

const defaultRulesName = "classic"

// Manager handles rule set loading and caching
type Manager struct {
	rulesDir     string
	defaultName  string
	defaultRules *engine.Rules
	rules        map[string]*engine.Rules
	mu           sync.RWMutex
}

// NewManager creates a new rules manager
func NewManager(rulesDir string) (*Manager, error) {
	// Ensure rules directory exists
	if _, err := os.Stat(rulesDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("rules directory does not exist: %s", rulesDir)
	}

	m := &Manager{
		rulesDir: rulesDir,
		rules:    make(map[string]*engine.Rules),
	}

	name, rules := m.findDefault()
	m.defaultName, m.defaultRules = name, rules
	return m, nil
}

func rulesFilename(name string) string {
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + ".json"
}

// LoadRules loads a rule set by name
func (m *Manager) LoadRules(name string) (*engine.Rules, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrRulesNotFound, name)
	}

	m.mu.RLock()
	// Check cache first
	if rules, exists := m.rules[name]; exists {
		m.mu.RUnlock()
		return rules, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if rules, exists := m.rules[name]; exists {
		return rules, nil
	}

	rulesPath := filepath.Join(m.rulesDir, rulesFilename(name))
	data, err := os.ReadFile(rulesPath)
	if err != nil {
		if os.IsNotExist(err) {
			// the classic rules are built in
			if name == defaultRulesName {
				rules := engine.DefaultRules()
				m.rules[name] = rules
				return rules, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrRulesNotFound, name)
		}
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules, err := engine.ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRules, name, err)
	}

	m.rules[name] = rules
	return rules, nil
}

// ListRules returns information about all available rule sets
func (m *Manager) ListRules() ([]*service.RulesInfo, error) {
	entries, err := os.ReadDir(m.rulesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory: %w", err)
	}

	var infos []*service.RulesInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		rules, err := m.LoadRules(name)
		if err != nil {
			// Skip invalid rule sets
			continue
		}

		infos = append(infos, &service.RulesInfo{
			Filename:       entry.Name(),
			RulesID:        name,
			Name:           rules.Name,
			Description:    rules.Description,
			StartingCash:   rules.StartingCash,
			PassStartBonus: rules.PassStartBonus,
			MaxPlayers:     rules.MaxPlayers,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].RulesID < infos[j].RulesID })
	return infos, nil
}

// GetDefault returns the default rule set
func (m *Manager) GetDefault() *engine.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRules
}

// DefaultName returns the identifier of the default rule set
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// SetDefault sets the default rule set by name
func (m *Manager) SetDefault(name string) error {
	rules, err := m.LoadRules(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = strings.TrimSuffix(name, ".json")
	m.defaultRules = rules
	return nil
}

// RefreshCache drops cached rule sets so the next load reads from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.rules = make(map[string]*engine.Rules)
	m.mu.Unlock()

	name, rules := m.findDefault()

	m.mu.Lock()
	m.defaultName, m.defaultRules = name, rules
	m.mu.Unlock()
}

// findDefault returns classic.json, or the built-in classic rules when
// that file is missing or invalid
func (m *Manager) findDefault() (string, *engine.Rules) {
	if rules, err := m.LoadRules(defaultRulesName); err == nil {
		return defaultRulesName, rules
	}
	return defaultRulesName, engine.DefaultRules()
}

// SaveRules saves a rule set to disk
func (m *Manager) SaveRules(name string, rules *engine.Rules) error {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidRules, name)
	}
	if err := engine.ValidateRules(rules); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	rulesPath := filepath.Join(m.rulesDir, rulesFilename(name))
	if err := os.WriteFile(rulesPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	m.mu.Lock()
	m.rules[name] = rules
	if name == m.defaultName {
		m.defaultRules = rules
	}
	m.mu.Unlock()

	return nil
}
