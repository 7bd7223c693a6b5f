package engine

import "testing"

func TestMortgage(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newTwoPlayerGame(t, eng)
	alice := &g.Players[0]
	give(g, alice, 1)

	if err := eng.Mortgage(g, "alice", 1); err != nil {
		t.Fatalf("Mortgage failed: %v", err)
	}
	if !g.Properties[1].Mortgaged || alice.Cash != 1530 {
		t.Errorf("Expected mortgaged tile and cash 1530, got %v %d", g.Properties[1].Mortgaged, alice.Cash)
	}

	assertKind(t, eng.Mortgage(g, "alice", 1), ErrRuleViolation)
	assertInvariants(t, g)
}

func TestMortgage_Errors(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newTwoPlayerGame(t, eng)
	give(g, &g.Players[0], 1, 2)
	give(g, &g.Players[1], 39)
	g.Properties[2].Houses = 1

	assertKind(t, eng.Mortgage(g, "alice", 2), ErrRuleViolation)
	assertKind(t, eng.Mortgage(g, "alice", 39), ErrOwnershipViolation)
	assertKind(t, eng.Mortgage(g, "alice", -1), ErrNotFound)
	assertKind(t, eng.Mortgage(g, "mallory", 1), ErrNotParticipant)
}

func TestUnmortgage(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newTwoPlayerGame(t, eng)
	alice := &g.Players[0]
	give(g, alice, 1)

	assertKind(t, eng.Unmortgage(g, "alice", 1), ErrRuleViolation)

	if err := eng.Mortgage(g, "alice", 1); err != nil {
		t.Fatalf("Mortgage failed: %v", err)
	}
	alice.Cash = 32
	assertKind(t, eng.Unmortgage(g, "alice", 1), ErrInsufficientFunds)
	if !g.Properties[1].Mortgaged {
		t.Error("Failed unmortgage changed the tile")
	}

	alice.Cash = 33
	if err := eng.Unmortgage(g, "alice", 1); err != nil {
		t.Fatalf("Unmortgage failed: %v", err)
	}
	if g.Properties[1].Mortgaged || alice.Cash != 0 {
		t.Errorf("Expected unmortgaged tile and cash 0, got %v %d", g.Properties[1].Mortgaged, alice.Cash)
	}
}

func TestMortgageRoundTripCost(t *testing.T) {
	tests := []struct {
		tileID  int
		price   int
		netCost int
	}{
		{1, 60, 3},
		{12, 150, 7},
		{5, 200, 10},
		{37, 350, 17},
		{39, 400, 20},
	}

	for _, tt := range tests {
		eng := newTestEngine(t, &scriptedRandom{})
		g := newTwoPlayerGame(t, eng)
		alice := &g.Players[0]
		give(g, alice, tt.tileID)

		if g.Properties[tt.tileID].Price != tt.price {
			t.Fatalf("Tile %d price %d, want %d", tt.tileID, g.Properties[tt.tileID].Price, tt.price)
		}
		if err := eng.Mortgage(g, "alice", tt.tileID); err != nil {
			t.Fatalf("Mortgage failed: %v", err)
		}
		if err := eng.Unmortgage(g, "alice", tt.tileID); err != nil {
			t.Fatalf("Unmortgage failed: %v", err)
		}
		if got := 1500 - alice.Cash; got != tt.netCost {
			t.Errorf("Tile %d: expected net cost %d, got %d", tt.tileID, tt.netCost, got)
		}
		if g.Properties[tt.tileID].Mortgaged {
			t.Errorf("Tile %d still mortgaged", tt.tileID)
		}
	}
}
