package engine

import (
	"fmt"
	"sort"
	"time"
)

// Engine applies game rules to a Game. It holds no game state of its own:
// every operation mutates the Game it is handed, and callers own
// serialization and persistence. On error the Game may be partially
// modified, so callers should operate on a Clone and discard it on failure.
type Engine struct {
	rules  *Rules
	random Random
	clock  Clock
}

// Option configures an Engine
type Option func(*Engine)

// WithRandom replaces the random source
func WithRandom(r Random) Option {
	return func(e *Engine) {
		if r != nil {
			e.random = r
		}
	}
}

// WithClock replaces the time source used for log and trade timestamps
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine creates an engine for the given rules
func NewEngine(rules *Rules, opts ...Option) (*Engine, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}

	e := &Engine{
		rules:  rules,
		random: DefaultRandom(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Rules returns the rule set the engine was built with
func (e *Engine) Rules() *Rules {
	return e.rules
}

func (e *Engine) logf(g *Game, format string, args ...any) {
	now := e.clock()
	g.Log = append(g.Log, LogEntry{
		Time:    now,
		Type:    LogEvent,
		Message: fmt.Sprintf(format, args...),
	})
	g.UpdatedAt = now
}

// requireActive checks the game status and resolves the acting human seat
func requireActive(g *Game, userID string) (*Player, error) {
	if g.Status != StatusActive {
		return nil, fmt.Errorf("%w: game is %s", ErrInvalidState, g.Status)
	}
	return requirePlayer(g, userID)
}

func requirePlayer(g *Game, userID string) (*Player, error) {
	p := g.PlayerByUser(userID)
	if p == nil || p.Left {
		return nil, fmt.Errorf("%w: user %s is not seated in game %s", ErrNotParticipant, userID, g.ID)
	}
	return p, nil
}

func requireTurn(g *Game, userID string) (*Player, error) {
	p, err := requireActive(g, userID)
	if err != nil {
		return nil, err
	}
	if cur := g.CurrentPlayer(); cur == nil || cur.ID != p.ID {
		return nil, fmt.Errorf("%w: it is not %s's turn", ErrNotYourTurn, p.Name)
	}
	return p, nil
}

func requireOwnedTile(g *Game, p *Player, tileID int) (*Tile, error) {
	t := g.Tile(tileID)
	if t == nil {
		return nil, fmt.Errorf("%w: tile %d", ErrNotFound, tileID)
	}
	if t.Owner != p.ID {
		return nil, fmt.Errorf("%w: %s does not own %s", ErrOwnershipViolation, p.Name, t.Name)
	}
	return t, nil
}

// advanceTurn clears the per-turn state and moves to the next seat in play
func (e *Engine) advanceTurn(g *Game) {
	g.LastDiceRoll = nil
	g.PendingPayment = nil

	n := len(g.Players)
	if n == 0 {
		return
	}
	next := g.CurrentPlayerIndex
	for i := 0; i < n; i++ {
		next = (next + 1) % n
		if g.Players[next].InPlay() {
			break
		}
	}
	g.CurrentPlayerIndex = next
	g.Turn++
	e.logf(g, "It is now %s's turn", g.Players[next].Name)
}

func addOwned(p *Player, tileID int) {
	p.OwnedTileIDs = append(p.OwnedTileIDs, tileID)
	sort.Ints(p.OwnedTileIDs)
}

func removeOwned(p *Player, tileID int) {
	for i, id := range p.OwnedTileIDs {
		if id == tileID {
			p.OwnedTileIDs = append(p.OwnedTileIDs[:i], p.OwnedTileIDs[i+1:]...)
			return
		}
	}
}

// transferTile moves ownership of a tile between seats, keeping both sides in sync
func transferTile(g *Game, tileID int, from, to *Player) {
	if from != nil {
		removeOwned(from, tileID)
	}
	t := &g.Properties[tileID]
	if to == nil {
		t.Owner = ""
		t.Houses = 0
		t.Mortgaged = false
		return
	}
	t.Owner = to.ID
	addOwned(to, tileID)
}
