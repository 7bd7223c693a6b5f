package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/landlord/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Game lifecycle
	CreateGame(ctx context.Context, req CreateGameRequest) (*engine.Game, error)
	GetGame(ctx context.Context, gameID string) (*engine.Game, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
	DeleteGame(ctx context.Context, gameID string) error

	// Roster
	JoinGame(ctx context.Context, gameID, userID, name string) (*engine.Game, error)
	LeaveGame(ctx context.Context, gameID, userID string) (*engine.Game, error)
	StartGame(ctx context.Context, gameID, userID string) (*engine.Game, error)

	// Turn actions
	RollDice(ctx context.Context, gameID, userID string) (*RollResult, error)
	BuyCurrentTile(ctx context.Context, gameID, userID string) (*engine.Game, error)
	EndTurn(ctx context.Context, gameID, userID string) (*engine.Game, error)
	PayPendingRent(ctx context.Context, gameID, userID string) (*engine.Game, error)

	// Property management
	Mortgage(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error)
	Unmortgage(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error)
	BuildHouse(ctx context.Context, gameID, userID string, tileID int) (*engine.Game, error)

	// Trades
	ProposeTrade(ctx context.Context, gameID, userID string, proposal engine.TradeProposal) (*TradeResult, error)
	AcceptTrade(ctx context.Context, gameID, userID, tradeID string) (*engine.Game, error)
	RejectTrade(ctx context.Context, gameID, userID, tradeID string) (*engine.Game, error)

	// Log
	AppendChatMessage(ctx context.Context, gameID, userID, text string) (*engine.Game, error)
	GetLog(ctx context.Context, gameID string, opts LogOptions) (*LogResponse, error)

	// Rules
	ListRules(ctx context.Context) ([]*RulesInfo, error)
	LoadRules(ctx context.Context, name string) (*engine.Rules, error)
	SaveRules(ctx context.Context, name string, rules *engine.Rules) error

	// Board returns the static tile catalog
	Board(ctx context.Context) []engine.Tile

	// WaitForBots blocks until every scheduled bot chain has finished
	WaitForBots()
	// Close stops the bot workers
	Close(ctx context.Context) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(game *engine.Game) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// RulesManager handles rule set loading
type RulesManager interface {
	LoadRules(name string) (*engine.Rules, error)
	ListRules() ([]*RulesInfo, error)
	GetDefault() *engine.Rules
	DefaultName() string
	SaveRules(name string, rules *engine.Rules) error
}

// Notifier is told about every committed game state
type Notifier interface {
	GameUpdated(game *engine.Game)
}

// Session is one game held in memory. The embedded mutex serializes every
// mutation of the game; Game is replaced, never modified in place, so a
// pointer read under the lock may be shared freely afterwards.
type Session struct {
	sync.Mutex
	ID             string
	Game           *engine.Game
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
