package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends for game sessions
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// Settings holds process configuration read from the environment
type Settings struct {
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         int           `env:"PORT" envDefault:"8080"`
	ConfigDir    string        `env:"CONFIG_DIR" envDefault:"configs"`
	Storage      string        `env:"STORAGE" envDefault:"file"`
	SessionsDir  string        `env:"SESSIONS_DIR" envDefault:"sessions"`
	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	BotWorkers   int           `env:"BOT_WORKERS" envDefault:"4"`
	BotTurnDelay time.Duration `env:"BOT_TURN_DELAY" envDefault:"0s"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Identity the MCP tools act as when the caller does not send one
	MCPUserID   string `env:"MCP_USER_ID" envDefault:"mcp-agent"`
	MCPUserName string `env:"MCP_USER_NAME" envDefault:"Agent"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	s, err := env.ParseAs[Settings]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks values the environment parser cannot
func (s *Settings) Validate() error {
	switch s.Storage {
	case StorageMemory, StorageFile, StorageRedis:
	default:
		return fmt.Errorf("settings: STORAGE must be %s, %s or %s, got %q", StorageMemory, StorageFile, StorageRedis, s.Storage)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("settings: PORT out of range: %d", s.Port)
	}
	if s.BotWorkers < 1 {
		return fmt.Errorf("settings: BOT_WORKERS must be at least 1")
	}
	if s.MCPUserID == "" {
		return fmt.Errorf("settings: MCP_USER_ID must not be empty")
	}
	if s.BotTurnDelay < 0 || s.SessionTTL < 0 {
		return fmt.Errorf("settings: durations must not be negative")
	}
	return nil
}

// Addr returns the listen address
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
