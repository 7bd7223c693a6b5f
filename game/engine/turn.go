package engine

import (
	"fmt"
	"strings"
)

// RollDice rolls two dice for the current player, moves the token and
// resolves the landing tile. It may be called once per turn.
func (e *Engine) RollDice(g *Game, userID string) ([2]int, error) {
	p, err := requireTurn(g, userID)
	if err != nil {
		return [2]int{}, err
	}
	if g.LastDiceRoll != nil {
		return [2]int{}, fmt.Errorf("%w: %s already rolled this turn", ErrAlreadyActed, p.Name)
	}
	return e.roll(g, p), nil
}

func (e *Engine) roll(g *Game, p *Player) [2]int {
	d1, d2 := rollDie(e.random), rollDie(e.random)
	g.LastDiceRoll = &DiceRoll{
		Die1:     d1,
		Die2:     d2,
		Sum:      d1 + d2,
		IsDouble: d1 == d2,
	}
	e.logf(g, "%s rolled %d and %d", p.Name, d1, d2)

	e.moveForward(g, p, d1+d2)
	e.resolveLanding(g, p)
	return [2]int{d1, d2}
}

// BuyCurrentTile buys the unowned tile under the current player's token
func (e *Engine) BuyCurrentTile(g *Game, userID string) error {
	p, err := requireTurn(g, userID)
	if err != nil {
		return err
	}
	if g.LastDiceRoll == nil {
		return fmt.Errorf("%w: roll the dice before buying", ErrInvalidState)
	}
	if pp := g.PendingPayment; pp != nil && pp.FromPlayer == p.ID {
		return fmt.Errorf("%w: %s must settle %d rent first", ErrPaymentRequired, p.Name, pp.Amount)
	}
	return e.buy(g, p)
}

func (e *Engine) buy(g *Game, p *Player) error {
	t := &g.Properties[p.Position]
	if !t.Purchasable() {
		return fmt.Errorf("%w: %s cannot be bought", ErrRuleViolation, t.Name)
	}
	if t.Owner != "" {
		return fmt.Errorf("%w: %s is already owned", ErrOwnershipViolation, t.Name)
	}
	if p.Cash < t.Price {
		return fmt.Errorf("%w: %s costs %d, %s has %d", ErrInsufficientFunds, t.Name, t.Price, p.Name, p.Cash)
	}

	p.Cash -= t.Price
	transferTile(g, t.ID, nil, p)
	e.logf(g, "%s bought %s for %d", p.Name, t.Name, t.Price)
	return nil
}

// EndTurn passes the turn to the next seat in play. The caller is
// responsible for starting bot play when Game.BotTurnDue reports true.
func (e *Engine) EndTurn(g *Game, userID string) error {
	p, err := requireTurn(g, userID)
	if err != nil {
		return err
	}
	if pp := g.PendingPayment; pp != nil && pp.FromPlayer == p.ID {
		return fmt.Errorf("%w: %s owes %d rent", ErrPaymentRequired, p.Name, pp.Amount)
	}
	e.logf(g, "%s ended their turn", p.Name)
	e.advanceTurn(g)
	return nil
}

// AppendChat adds a player message to the game log
func (e *Engine) AppendChat(g *Game, userID, text string) error {
	p, err := requirePlayer(g, userID)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: message is empty", ErrRuleViolation)
	}
	if len(text) > MaxChatLength {
		return fmt.Errorf("%w: message exceeds %d characters", ErrRuleViolation, MaxChatLength)
	}

	now := e.clock()
	g.Log = append(g.Log, LogEntry{
		Time:     now,
		Type:     LogChat,
		PlayerID: p.ID,
		Message:  fmt.Sprintf("%s: %s", p.Name, text),
	})
	g.UpdatedAt = now
	return nil
}
