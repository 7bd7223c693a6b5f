package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// ProposeTrade records a trade from the acting player. A bot counterparty
// answers immediately, so the returned trade is terminal in that case.
func (e *Engine) ProposeTrade(g *Game, userID string, proposal TradeProposal) (*Trade, error) {
	from, err := requireActive(g, userID)
	if err != nil {
		return nil, err
	}
	to := resolveCounterparty(g, proposal.ToPlayer)
	if to == nil {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, proposal.ToPlayer)
	}
	if to.ID == from.ID {
		return nil, fmt.Errorf("%w: cannot trade with yourself", ErrRuleViolation)
	}
	if proposal.OfferedCash < 0 || proposal.RequestedCash < 0 {
		return nil, fmt.Errorf("%w: cash amounts cannot be negative", ErrRuleViolation)
	}
	if len(proposal.OfferedTiles) == 0 && len(proposal.RequestedTiles) == 0 &&
		proposal.OfferedCash == 0 && proposal.RequestedCash == 0 {
		return nil, fmt.Errorf("%w: trade is empty", ErrRuleViolation)
	}
	if err := checkDistinctTiles(proposal.OfferedTiles, proposal.RequestedTiles); err != nil {
		return nil, err
	}

	now := e.clock()
	trade := Trade{
		ID:             uuid.NewString(),
		FromPlayer:     from.ID,
		ToPlayer:       to.ID,
		OfferedTiles:   append([]int{}, proposal.OfferedTiles...),
		RequestedTiles: append([]int{}, proposal.RequestedTiles...),
		OfferedCash:    proposal.OfferedCash,
		RequestedCash:  proposal.RequestedCash,
		Status:         TradePending,
		CreatedAt:      now,
	}

	if err := validateSwap(g, &trade, from, to, false); err != nil {
		return nil, err
	}

	e.logf(g, "%s proposed a trade to %s", from.Name, to.Name)
	if to.IsBot {
		e.botAnswerTrade(g, &trade, from, to)
	}

	g.Trades = append(g.Trades, trade)
	return &g.Trades[len(g.Trades)-1], nil
}

// AcceptTrade executes a pending trade on behalf of its recipient. Every
// precondition is checked again, and on failure the trade stays pending.
func (e *Engine) AcceptTrade(g *Game, userID, tradeID string) error {
	p, err := requireActive(g, userID)
	if err != nil {
		return err
	}
	t := g.TradeByID(tradeID)
	if t == nil {
		return fmt.Errorf("%w: trade %s", ErrNotFound, tradeID)
	}
	if t.ToPlayer != p.ID {
		return fmt.Errorf("%w: only the recipient can accept a trade", ErrRuleViolation)
	}
	if t.Status != TradePending {
		return fmt.Errorf("%w: trade is already %s", ErrInvalidState, t.Status)
	}

	from := g.PlayerByID(t.FromPlayer)
	if from == nil || !from.InPlay() {
		return fmt.Errorf("%w: proposer is no longer in the game", ErrInvalidState)
	}
	if err := validateSwap(g, t, from, p, true); err != nil {
		return err
	}

	e.executeSwap(g, t, from, p)
	now := e.clock()
	t.Status = TradeAccepted
	t.CompletedAt = &now
	e.logf(g, "%s accepted the trade from %s", p.Name, from.Name)
	return nil
}

// RejectTrade closes a pending trade. The recipient rejects it; the
// proposer withdraws it.
func (e *Engine) RejectTrade(g *Game, userID, tradeID string) error {
	p, err := requireActive(g, userID)
	if err != nil {
		return err
	}
	t := g.TradeByID(tradeID)
	if t == nil {
		return fmt.Errorf("%w: trade %s", ErrNotFound, tradeID)
	}
	if t.FromPlayer != p.ID && t.ToPlayer != p.ID {
		return fmt.Errorf("%w: %s is not a party to this trade", ErrRuleViolation, p.Name)
	}
	if t.Status != TradePending {
		return fmt.Errorf("%w: trade is already %s", ErrInvalidState, t.Status)
	}

	now := e.clock()
	t.Status = TradeRejected
	t.CompletedAt = &now
	if t.FromPlayer == p.ID {
		t.Reason = "withdrawn by " + p.Name
		e.logf(g, "%s withdrew their trade", p.Name)
	} else {
		t.Reason = "rejected by " + p.Name
		e.logf(g, "%s rejected the trade", p.Name)
	}
	return nil
}

// resolveCounterparty matches a seat id first, then a human account id.
// Bots can only be addressed by seat id since they share an account.
func resolveCounterparty(g *Game, ref string) *Player {
	if p := g.PlayerByID(ref); p != nil && p.InPlay() {
		return p
	}
	if p := g.PlayerByUser(ref); p != nil && p.InPlay() {
		return p
	}
	return nil
}

func checkDistinctTiles(offered, requested []int) error {
	seen := make(map[int]bool, len(offered)+len(requested))
	for _, list := range [][]int{offered, requested} {
		for _, id := range list {
			if id < 0 || id >= BoardSize {
				return fmt.Errorf("%w: tile %d", ErrNotFound, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: tile %d is listed more than once", ErrRuleViolation, id)
			}
			seen[id] = true
		}
	}
	return nil
}

// validateSwap checks every precondition of a trade before anything moves.
// accepting selects which side's cash shortfall is reported first.
func validateSwap(g *Game, t *Trade, from, to *Player, accepting bool) error {
	for _, id := range t.OfferedTiles {
		tile := g.Tile(id)
		if tile == nil {
			return fmt.Errorf("%w: tile %d", ErrNotFound, id)
		}
		if tile.Owner != from.ID {
			return fmt.Errorf("%w: %s does not own %s", ErrOwnershipViolation, from.Name, tile.Name)
		}
		if tile.Houses > 0 {
			return fmt.Errorf("%w: %s has buildings and cannot be traded", ErrRuleViolation, tile.Name)
		}
	}
	for _, id := range t.RequestedTiles {
		tile := g.Tile(id)
		if tile == nil {
			return fmt.Errorf("%w: tile %d", ErrNotFound, id)
		}
		if tile.Owner != to.ID {
			return fmt.Errorf("%w: %s does not own %s", ErrOwnershipViolation, to.Name, tile.Name)
		}
		if tile.Houses > 0 {
			return fmt.Errorf("%w: %s has buildings and cannot be traded", ErrRuleViolation, tile.Name)
		}
	}

	toShort := to.Cash < t.RequestedCash
	fromShort := from.Cash < t.OfferedCash
	if accepting && toShort {
		return fmt.Errorf("%w: %s cannot pay the requested %d", ErrInsufficientFunds, to.Name, t.RequestedCash)
	}
	if fromShort {
		return fmt.Errorf("%w: %s cannot pay the offered %d", ErrInsufficientFunds, from.Name, t.OfferedCash)
	}
	return nil
}

// executeSwap moves cash and tiles both ways. validateSwap must pass first.
func (e *Engine) executeSwap(g *Game, t *Trade, from, to *Player) {
	from.Cash += t.RequestedCash - t.OfferedCash
	to.Cash += t.OfferedCash - t.RequestedCash
	for _, id := range t.OfferedTiles {
		transferTile(g, id, from, to)
	}
	for _, id := range t.RequestedTiles {
		transferTile(g, id, to, from)
	}
}
