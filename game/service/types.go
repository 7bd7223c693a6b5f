package service

import (
	"time"

	"github.com/wricardo/landlord/game/engine"
)

// CreateGameRequest describes a new game
type CreateGameRequest struct {
	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	Name        string `json:"name"`
	MaxPlayers  int    `json:"max_players"`
	WithBots    bool   `json:"with_bots"`
	BotCount    int    `json:"bot_count"`
	Rules       string `json:"rules,omitempty"`
}

// GameInfo is a lightweight summary used for listings
type GameInfo struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Status         engine.GameStatus `json:"status"`
	RulesName      string            `json:"rules_name"`
	Players        int               `json:"players"`
	MaxPlayers     int               `json:"max_players"`
	Turn           int               `json:"turn"`
	CurrentPlayer  string            `json:"current_player,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
}

// RollResult contains the game after a roll and the raw dice
type RollResult struct {
	Game *engine.Game `json:"game"`
	Dice [2]int       `json:"dice"`
}

// TradeResult contains the game after a proposal and the recorded trade
type TradeResult struct {
	Game  *engine.Game  `json:"game"`
	Trade *engine.Trade `json:"trade"`
}

// LogOptions configures log retrieval
type LogOptions struct {
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Order string         `json:"order"` // "asc" or "desc"
	Type  engine.LogType `json:"type,omitempty"`
}

// LogResponse contains a page of the game log
type LogResponse struct {
	Entries     []engine.LogEntry `json:"entries"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// RulesInfo provides information about a rule set
type RulesInfo struct {
	Filename       string `json:"filename"`
	RulesID        string `json:"rules_id"` // identifier to pass when creating a game
	Name           string `json:"name"`
	Description    string `json:"description"`
	StartingCash   int    `json:"starting_cash"`
	PassStartBonus int    `json:"pass_start_bonus"`
	MaxPlayers     int    `json:"max_players"`
}

func summarize(sess *Session) *GameInfo {
	g := sess.Game
	info := &GameInfo{
		ID:             g.ID,
		Name:           g.Name,
		Status:         g.Status,
		RulesName:      g.RulesName,
		Players:        len(g.Players),
		MaxPlayers:     g.MaxPlayers,
		Turn:           g.Turn,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
	}
	if g.Status == engine.StatusActive {
		if p := g.CurrentPlayer(); p != nil {
			info.CurrentPlayer = p.Name
		}
	}
	return info
}
