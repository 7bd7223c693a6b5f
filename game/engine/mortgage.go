package engine

import "fmt"

// MortgageValue is the cash a tile raises when mortgaged
func MortgageValue(t *Tile) int {
	return t.Price / 2
}

// UnmortgageCost is the mortgage value plus interest, rounded down
func UnmortgageCost(t *Tile, interestPercent int) int {
	return t.Price * (100 + interestPercent) / 200
}

// Mortgage raises cash against an undeveloped tile
func (e *Engine) Mortgage(g *Game, userID string, tileID int) error {
	p, err := requireActive(g, userID)
	if err != nil {
		return err
	}
	return e.mortgage(g, p, tileID)
}

func (e *Engine) mortgage(g *Game, p *Player, tileID int) error {
	t, err := requireOwnedTile(g, p, tileID)
	if err != nil {
		return err
	}
	if t.Mortgaged {
		return fmt.Errorf("%w: %s is already mortgaged", ErrRuleViolation, t.Name)
	}
	if t.Houses > 0 {
		return fmt.Errorf("%w: sell the buildings on %s before mortgaging", ErrRuleViolation, t.Name)
	}

	value := MortgageValue(t)
	t.Mortgaged = true
	p.Cash += value
	e.logf(g, "%s mortgaged %s for %d", p.Name, t.Name, value)
	return nil
}

// Unmortgage lifts a mortgage, charging the mortgage value plus interest
func (e *Engine) Unmortgage(g *Game, userID string, tileID int) error {
	p, err := requireActive(g, userID)
	if err != nil {
		return err
	}
	t, err := requireOwnedTile(g, p, tileID)
	if err != nil {
		return err
	}
	if !t.Mortgaged {
		return fmt.Errorf("%w: %s is not mortgaged", ErrRuleViolation, t.Name)
	}

	cost := UnmortgageCost(t, e.rules.UnmortgageInterestPercent)
	if p.Cash < cost {
		return fmt.Errorf("%w: lifting the mortgage on %s costs %d, %s has %d", ErrInsufficientFunds, t.Name, cost, p.Name, p.Cash)
	}

	t.Mortgaged = false
	p.Cash -= cost
	e.logf(g, "%s lifted the mortgage on %s for %d", p.Name, t.Name, cost)
	return nil
}
