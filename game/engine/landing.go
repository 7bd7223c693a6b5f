package engine

import "fmt"

// resolveLanding applies the effect of the tile the player now occupies.
// A card that relocates the player triggers resolution of the new tile, up
// to maxLandingHops tiles per move.
func (e *Engine) resolveLanding(g *Game, p *Player) {
	for hop := 0; hop < maxLandingHops; hop++ {
		before := p.Position
		e.resolveTile(g, p)
		if p.Position == before || p.Position == JailTileID {
			return
		}
	}
	e.logf(g, "%s stopped on %s after %d card moves", p.Name, g.Properties[p.Position].Name, maxLandingHops)
}

func (e *Engine) resolveTile(g *Game, p *Player) {
	t := &g.Properties[p.Position]

	switch t.Kind {
	case KindProperty, KindRailroad, KindUtility:
		e.chargeRent(g, p, t)

	case KindTax:
		amount := TaxAmount(t.ID)
		p.Cash -= amount
		e.logf(g, "%s paid %d in %s", p.Name, amount, t.Name)

	case KindChance:
		e.drawCard(g, p, "Chance", chanceDeck)

	case KindCommunityChest:
		e.drawCard(g, p, "Community Chest", communityChestDeck)

	case KindGoToJail:
		e.sendToJail(g, p)

	case KindJail:
		e.logf(g, "%s is just visiting Jail", p.Name)

	default:
		e.logf(g, "%s landed on %s", p.Name, t.Name)
	}
}

func (e *Engine) chargeRent(g *Game, p *Player, t *Tile) {
	switch {
	case t.Owner == "":
		e.logf(g, "%s landed on %s, available for %d", p.Name, t.Name, t.Price)
		return
	case t.Owner == p.ID:
		e.logf(g, "%s landed on their own %s", p.Name, t.Name)
		return
	case t.Mortgaged:
		e.logf(g, "%s landed on %s, which is mortgaged", p.Name, t.Name)
		return
	}

	owner := g.PlayerByID(t.Owner)
	if owner == nil {
		return
	}
	rent := Rent(g, t)
	if rent <= 0 {
		return
	}

	if p.Cash >= rent {
		p.Cash -= rent
		owner.Cash += rent
		e.logf(g, "%s paid %d rent to %s for %s", p.Name, rent, owner.Name, t.Name)
		return
	}

	g.PendingPayment = &PendingPayment{
		FromPlayer: p.ID,
		ToPlayer:   owner.ID,
		Amount:     rent,
		TileID:     t.ID,
	}
	e.logf(g, "%s owes %d rent to %s for %s but only has %d", p.Name, rent, owner.Name, t.Name, p.Cash)
}

func (e *Engine) drawCard(g *Game, p *Player, deckName string, deck []Card) {
	card := deck[e.random.Intn(len(deck))]
	result := card.Effect(e, g, p)
	e.logf(g, "%s drew %s: %s. %s", p.Name, deckName, card.Text, result)
}

// PayPendingRent settles the acting player's outstanding rent
func (e *Engine) PayPendingRent(g *Game, userID string) error {
	p, err := requireActive(g, userID)
	if err != nil {
		return err
	}
	pp := g.PendingPayment
	if pp == nil || pp.FromPlayer != p.ID {
		return fmt.Errorf("%w: %s has no pending payment", ErrInvalidState, p.Name)
	}
	if p.Cash < pp.Amount {
		return fmt.Errorf("%w: %s owes %d but has %d; mortgage property to raise cash", ErrInsufficientFunds, p.Name, pp.Amount, p.Cash)
	}
	e.settlePending(g, p)
	return nil
}

func (e *Engine) settlePending(g *Game, p *Player) {
	pp := g.PendingPayment
	owner := g.PlayerByID(pp.ToPlayer)
	p.Cash -= pp.Amount
	name := "the bank"
	if owner != nil {
		owner.Cash += pp.Amount
		name = owner.Name
	}
	g.PendingPayment = nil
	e.logf(g, "%s paid the outstanding %d rent to %s", p.Name, pp.Amount, name)
}
