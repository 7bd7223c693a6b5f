package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wricardo/landlord/game/engine"
	"github.com/wricardo/landlord/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string       `json:"id"`
	RulesName      string       `json:"rules_name"`
	CreatedAt      time.Time    `json:"created_at"`
	LastAccessedAt time.Time    `json:"last_accessed_at"`
	Game           *engine.Game `json:"game"`
}

func encodeSession(session *service.Session, indent bool) ([]byte, error) {
	if session == nil || session.Game == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		RulesName:      session.Game.RulesName,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Game:           session.Game,
	}

	var (
		out []byte
		err error
	)
	if indent {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return out, nil
}

// decodeSession restores a session and refuses games that are not
// internally consistent
func decodeSession(raw []byte) (*service.Session, error) {
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Game == nil {
		return nil, fmt.Errorf("session %s has no game", data.ID)
	}
	if data.Game.ID != data.ID {
		return nil, fmt.Errorf("session %s holds game %s", data.ID, data.Game.ID)
	}
	if err := engine.CheckInvariants(data.Game); err != nil {
		return nil, fmt.Errorf("session %s is corrupt: %w", data.ID, err)
	}

	return &service.Session{
		ID:             data.ID,
		Game:           data.Game,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}
