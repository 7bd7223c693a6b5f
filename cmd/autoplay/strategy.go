package main

import (
	"fmt"
	"sort"

	"github.com/wricardo/landlord/game/engine"
)

// ActionKind is one REST call the player can make
type ActionKind string

const (
	ActionWait        ActionKind = "wait" // someone else's turn
	ActionDone        ActionKind = "done" // game over or seat lost
	ActionStart       ActionKind = "start"
	ActionRoll        ActionKind = "roll"
	ActionBuy         ActionKind = "buy"
	ActionPayRent     ActionKind = "pay-rent"
	ActionMortgage    ActionKind = "mortgage"
	ActionBuild       ActionKind = "build"
	ActionAcceptTrade ActionKind = "accept"
	ActionRejectTrade ActionKind = "reject"
	ActionEndTurn     ActionKind = "end-turn"
	ActionLeave       ActionKind = "leave"
)

// Action is the next step chosen by Strategy
type Action struct {
	Kind    ActionKind
	TileID  int
	TradeID string
}

func (a Action) key() string {
	return fmt.Sprintf("%s/%d/%s", a.Kind, a.TileID, a.TradeID)
}

// Strategy picks moves for one seat. It keeps cash above Reserve before
// buying or building, and remembers actions the server refused this turn
// so it does not retry them.
type Strategy struct {
	UserID  string
	Reserve int

	turn    int
	refused map[string]bool
}

// NewStrategy creates a strategy for the seat held by userID
func NewStrategy(userID string, reserve int) *Strategy {
	return &Strategy{UserID: userID, Reserve: reserve, refused: map[string]bool{}}
}

// Refused records that the server rejected a, so Next skips it until the
// turn changes
func (s *Strategy) Refused(a Action) {
	s.refused[a.key()] = true
}

func (s *Strategy) allowed(a Action) bool {
	return !s.refused[a.key()]
}

// Next chooses the action to take on g
func (s *Strategy) Next(g *engine.Game) Action {
	if g.Turn != s.turn {
		s.turn = g.Turn
		s.refused = map[string]bool{}
	}

	me := g.PlayerByUser(s.UserID)
	if me == nil || !me.InPlay() || g.Status == engine.StatusCompleted {
		return Action{Kind: ActionDone}
	}

	if g.Status == engine.StatusWaiting {
		if g.CreatorID == s.UserID && s.allowed(Action{Kind: ActionStart}) {
			return Action{Kind: ActionStart}
		}
		return Action{Kind: ActionWait}
	}

	// Trades addressed to us can be answered at any time
	for _, t := range g.Trades {
		if t.Status != engine.TradePending || t.ToPlayer != me.ID {
			continue
		}
		a := Action{Kind: ActionRejectTrade, TradeID: t.ID}
		if s.worthAccepting(g, me, &t) {
			a.Kind = ActionAcceptTrade
		}
		if s.allowed(a) {
			return a
		}
	}

	current := g.CurrentPlayer()
	if current == nil || current.ID != me.ID {
		return Action{Kind: ActionWait}
	}

	if pp := g.PendingPayment; pp != nil && pp.FromPlayer == me.ID {
		if me.Cash >= pp.Amount {
			return Action{Kind: ActionPayRent}
		}
		if a, ok := s.raiseCash(g, me); ok {
			return a
		}
		// Nothing left to mortgage: resign
		return Action{Kind: ActionLeave}
	}

	if g.LastDiceRoll == nil && s.allowed(Action{Kind: ActionRoll}) {
		return Action{Kind: ActionRoll}
	}

	if t := &g.Properties[me.Position]; t.Purchasable() && t.Owner == "" && me.Cash-t.Price >= s.Reserve {
		if a := (Action{Kind: ActionBuy}); s.allowed(a) {
			return a
		}
	}

	if a, ok := s.develop(g, me); ok {
		return a
	}

	return Action{Kind: ActionEndTurn}
}

// raiseCash mortgages the cheapest undeveloped tile
func (s *Strategy) raiseCash(g *engine.Game, me *engine.Player) (Action, bool) {
	ids := append([]int(nil), me.OwnedTileIDs...)
	sort.Slice(ids, func(i, j int) bool {
		return g.Properties[ids[i]].Price < g.Properties[ids[j]].Price
	})
	for _, id := range ids {
		t := &g.Properties[id]
		if t.Mortgaged || t.Houses > 0 {
			continue
		}
		a := Action{Kind: ActionMortgage, TileID: id}
		if s.allowed(a) {
			return a, true
		}
	}
	return Action{}, false
}

// develop builds evenly on the first complete colour group it can afford
func (s *Strategy) develop(g *engine.Game, me *engine.Player) (Action, bool) {
	for _, group := range engine.Groups() {
		if !engine.OwnsGroup(g, me.ID, group) {
			continue
		}
		cost := engine.HouseCost(group)
		if me.Cash-cost < s.Reserve {
			continue
		}

		best := -1
		for _, id := range engine.GroupTileIDs(group) {
			t := &g.Properties[id]
			if t.Mortgaged {
				best = -1
				break
			}
			if t.Houses < engine.MaxHouses && (best == -1 || t.Houses < g.Properties[best].Houses) {
				best = id
			}
		}
		if best == -1 {
			continue
		}
		a := Action{Kind: ActionBuild, TileID: best}
		if s.allowed(a) {
			return a, true
		}
	}
	return Action{}, false
}

// worthAccepting values tiles at their price and accepts when we gain more
// than we give and can still afford the requested cash
func (s *Strategy) worthAccepting(g *engine.Game, me *engine.Player, t *engine.Trade) bool {
	if me.Cash-t.RequestedCash < s.Reserve {
		return false
	}
	value := func(ids []int) int {
		sum := 0
		for _, id := range ids {
			if id >= 0 && id < len(g.Properties) {
				sum += g.Properties[id].Price
			}
		}
		return sum
	}
	gain := value(t.OfferedTiles) + t.OfferedCash
	give := value(t.RequestedTiles) + t.RequestedCash
	return gain > give
}
