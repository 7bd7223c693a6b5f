package engine

import (
	"fmt"
	"sort"
)

// PlayBotTurn plays one complete turn for the bot whose turn it is: roll,
// move, resolve the landing, maybe buy, then pass the turn on.
//
// A failure inside the turn never leaves the game stuck. The economic
// effects of the failed turn are discarded, the turn still advances, and the
// failure is returned wrapped in ErrInternal after being noted in the log.
// Errors that are not ErrInternal mean nothing was played.
func (e *Engine) PlayBotTurn(g *Game) (err error) {
	if g.Status != StatusActive {
		return fmt.Errorf("%w: game is %s", ErrInvalidState, g.Status)
	}
	p := g.CurrentPlayer()
	if p == nil || !p.IsBot {
		return fmt.Errorf("%w: current player is not a bot", ErrInvalidState)
	}

	snapshot := g.Clone()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: bot turn panicked: %v", ErrInternal, r)
		}
		if err == nil {
			return
		}
		*g = *snapshot
		name := g.Players[g.CurrentPlayerIndex].Name
		e.logf(g, "%s's turn could not be completed and was skipped", name)
		e.advanceTurn(g)
	}()

	return e.botTurn(g, g.CurrentPlayerIndex)
}

func (e *Engine) botTurn(g *Game, idx int) error {
	p := &g.Players[idx]
	if g.LastDiceRoll == nil {
		e.roll(g, p)
	}

	if pp := g.PendingPayment; pp != nil && pp.FromPlayer == p.ID {
		e.botSettleDebt(g, p)
	}

	t := &g.Properties[p.Position]
	if g.PendingPayment == nil && t.Purchasable() && t.Owner == "" && p.Cash >= t.Price {
		if e.random.Float64() < e.rules.BotBuyProbability {
			if err := e.buy(g, p); err != nil {
				return fmt.Errorf("%w: %v", ErrInternal, err)
			}
		} else {
			e.logf(g, "%s decided not to buy %s", p.Name, t.Name)
		}
	}

	e.advanceTurn(g)
	return nil
}

// botSettleDebt mortgages undeveloped tiles, cheapest first, until the bot
// can pay its pending rent. A debt that still cannot be paid is dropped
// and logged so the turn can advance.
func (e *Engine) botSettleDebt(g *Game, p *Player) {
	pp := g.PendingPayment

	candidates := make([]int, 0, len(p.OwnedTileIDs))
	for _, id := range p.OwnedTileIDs {
		t := &g.Properties[id]
		if !t.Mortgaged && t.Houses == 0 && !groupDeveloped(g, t.Group) {
			candidates = append(candidates, id)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return g.Properties[candidates[i]].Price < g.Properties[candidates[j]].Price
	})

	for _, id := range candidates {
		if p.Cash >= pp.Amount {
			break
		}
		if err := e.mortgage(g, p, id); err != nil {
			continue
		}
	}

	if p.Cash >= pp.Amount {
		e.settlePending(g, p)
		return
	}

	owner := "the bank"
	if o := g.PlayerByID(pp.ToPlayer); o != nil {
		owner = o.Name
	}
	g.PendingPayment = nil
	e.logf(g, "%s could not pay %d rent to %s; the debt is unresolved", p.Name, pp.Amount, owner)
}

// botAnswerTrade decides a trade addressed to a bot. The decision is a
// fixed-probability draw and does not weigh the trade's value.
func (e *Engine) botAnswerTrade(g *Game, t *Trade, from, bot *Player) {
	now := e.clock()
	t.CompletedAt = &now

	if bot.Cash < t.RequestedCash {
		t.Status = TradeRejected
		t.Reason = fmt.Sprintf("%s cannot afford the requested %d", bot.Name, t.RequestedCash)
		e.logf(g, "%s rejected the trade from %s", bot.Name, from.Name)
		return
	}

	if e.random.Float64() < e.rules.BotTradeAcceptProbability {
		e.executeSwap(g, t, from, bot)
		t.Status = TradeAccepted
		e.logf(g, "%s accepted the trade from %s", bot.Name, from.Name)
		return
	}

	t.Status = TradeRejected
	t.Reason = "declined by " + bot.Name
	e.logf(g, "%s rejected the trade from %s", bot.Name, from.Name)
}

func groupDeveloped(g *Game, group ColorGroup) bool {
	for _, id := range GroupTileIDs(group) {
		if g.Properties[id].Houses > 0 {
			return true
		}
	}
	return false
}
