package engine

import "fmt"

// BuildHouse adds one house to a tile owned by the acting player. The
// fifth house is a hotel.
func (e *Engine) BuildHouse(g *Game, userID string, tileID int) error {
	p, err := requireActive(g, userID)
	if err != nil {
		return err
	}
	t, err := requireOwnedTile(g, p, tileID)
	if err != nil {
		return err
	}
	if t.Kind != KindProperty || t.Group == GroupNone {
		return fmt.Errorf("%w: %s cannot be developed", ErrRuleViolation, t.Name)
	}
	if t.Mortgaged {
		return fmt.Errorf("%w: %s is mortgaged", ErrRuleViolation, t.Name)
	}
	if t.Houses >= MaxHouses {
		return fmt.Errorf("%w: %s already has a hotel", ErrRuleViolation, t.Name)
	}
	if !OwnsGroup(g, p.ID, t.Group) {
		return fmt.Errorf("%w: %s must own every %s property before building", ErrRuleViolation, p.Name, t.Group)
	}

	cost := HouseCost(t.Group)
	if p.Cash < cost {
		return fmt.Errorf("%w: building on %s costs %d, %s has %d", ErrInsufficientFunds, t.Name, cost, p.Name, p.Cash)
	}

	if t.Houses > minGroupHouses(g, t.Group) {
		return fmt.Errorf("%w: build evenly across the %s group first", ErrRuleViolation, t.Group)
	}

	t.Houses++
	p.Cash -= cost
	if t.Houses == MaxHouses {
		e.logf(g, "%s built a hotel on %s for %d", p.Name, t.Name, cost)
	} else {
		e.logf(g, "%s built a house on %s for %d (%d houses)", p.Name, t.Name, cost, t.Houses)
	}
	return nil
}

func minGroupHouses(g *Game, group ColorGroup) int {
	lowest := MaxHouses
	for _, id := range GroupTileIDs(group) {
		if h := g.Properties[id].Houses; h < lowest {
			lowest = h
		}
	}
	return lowest
}
