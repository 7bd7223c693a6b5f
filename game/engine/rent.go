package engine

// Rent returns the amount owed by a visitor landing on t. Unowned and
// mortgaged tiles charge nothing.
func Rent(g *Game, t *Tile) int {
	if t == nil || t.Owner == "" || t.Mortgaged {
		return 0
	}

	switch t.Kind {
	case KindRailroad:
		n := countOwnedOfKind(g, t.Owner, KindRailroad)
		if n < 1 {
			return 0
		}
		if n > len(railroadRents) {
			n = len(railroadRents)
		}
		return railroadRents[n-1]

	case KindUtility:
		sum := utilityFallbackRoll
		if g.LastDiceRoll != nil {
			sum = g.LastDiceRoll.Sum
		}
		if countOwnedOfKind(g, t.Owner, KindUtility) >= 2 {
			return sum * utilityPairMultiplier
		}
		return sum * utilitySingleMultiplier

	case KindProperty:
		houses := t.Houses
		if houses < 0 {
			houses = 0
		}
		if houses > MaxHouses {
			houses = MaxHouses
		}
		base := t.RentTable[houses]
		if houses == 0 && OwnsGroup(g, t.Owner, t.Group) {
			return base * 2
		}
		return base
	}

	return 0
}
