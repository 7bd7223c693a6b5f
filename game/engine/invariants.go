package engine

import (
	"errors"
	"fmt"
)

// CheckInvariants verifies the structural consistency of a game: tile
// ownership matches the owners' holdings, building state is legal and
// closed trades carry a completion time.
func CheckInvariants(g *Game) error {
	var errs []error

	if len(g.Properties) != BoardSize {
		errs = append(errs, fmt.Errorf("board has %d tiles, want %d", len(g.Properties), BoardSize))
	}

	owners := make(map[int]string)
	for i := range g.Players {
		p := &g.Players[i]
		for _, id := range p.OwnedTileIDs {
			if prev, dup := owners[id]; dup {
				errs = append(errs, fmt.Errorf("tile %d held by both %s and %s", id, prev, p.ID))
			}
			owners[id] = p.ID
		}
		if p.Position < 0 || p.Position >= BoardSize {
			errs = append(errs, fmt.Errorf("player %s at position %d", p.ID, p.Position))
		}
	}

	for i := range g.Properties {
		t := &g.Properties[i]
		if t.ID != i {
			errs = append(errs, fmt.Errorf("tile at index %d has id %d", i, t.ID))
		}
		if owners[t.ID] != t.Owner {
			errs = append(errs, fmt.Errorf("tile %d owner %q but held by %q", t.ID, t.Owner, owners[t.ID]))
		}
		if t.Houses < 0 || t.Houses > MaxHouses {
			errs = append(errs, fmt.Errorf("tile %d has %d houses", t.ID, t.Houses))
		}
		if t.Houses > 0 && t.Mortgaged {
			errs = append(errs, fmt.Errorf("tile %d is mortgaged with houses", t.ID))
		}
		if t.Houses > 0 && t.Kind != KindProperty {
			errs = append(errs, fmt.Errorf("tile %d of kind %s has houses", t.ID, t.Kind))
		}
	}

	for i := range g.Trades {
		t := &g.Trades[i]
		if t.Status != TradePending && t.CompletedAt == nil {
			errs = append(errs, fmt.Errorf("trade %s is %s without completion time", t.ID, t.Status))
		}
	}

	if g.Status == StatusActive && g.CurrentPlayer() == nil {
		errs = append(errs, fmt.Errorf("current player index %d out of range", g.CurrentPlayerIndex))
	}

	return errors.Join(errs...)
}
