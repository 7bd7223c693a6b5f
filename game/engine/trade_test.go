package engine

import (
	"reflect"
	"testing"
)

func TestProposeTrade_HumanIsPending(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newTwoPlayerGame(t, eng)
	alice, bob := &g.Players[0], &g.Players[1]
	give(g, alice, 1)
	give(g, bob, 39)

	trade, err := eng.ProposeTrade(g, "alice", TradeProposal{
		ToPlayer:       "bob",
		OfferedTiles:   []int{1},
		RequestedTiles: []int{39},
		OfferedCash:    100,
	})
	if err != nil {
		t.Fatalf("ProposeTrade failed: %v", err)
	}
	if trade.Status != TradePending || trade.FromPlayer != alice.ID || trade.ToPlayer != bob.ID {
		t.Errorf("Unexpected trade %+v", trade)
	}
	if alice.Cash != 1500 || g.Properties[1].Owner != alice.ID {
		t.Error("Pending trade must not move anything")
	}
	if len(g.Trades) != 1 {
		t.Errorf("Expected 1 trade recorded, got %d", len(g.Trades))
	}
}

func TestAcceptTrade(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newTwoPlayerGame(t, eng)
	alice, bob := &g.Players[0], &g.Players[1]
	give(g, alice, 1, 5)
	give(g, bob, 39)
	g.Properties[5].Mortgaged = true

	trade, err := eng.ProposeTrade(g, "alice", TradeProposal{
		ToPlayer:       bob.ID,
		OfferedTiles:   []int{1, 5},
		RequestedTiles: []int{39},
		OfferedCash:    100,
		RequestedCash:  30,
	})
	if err != nil {
		t.Fatalf("ProposeTrade failed: %v", err)
	}

	assertKind(t, eng.AcceptTrade(g, "alice", trade.ID), ErrRuleViolation)

	if err := eng.AcceptTrade(g, "bob", trade.ID); err != nil {
		t.Fatalf("AcceptTrade failed: %v", err)
	}

	got := g.TradeByID(trade.ID)
	if got.Status != TradeAccepted || got.CompletedAt == nil {
		t.Errorf("Unexpected trade state %+v", got)
	}
	if alice.Cash != 1500-100+30 || bob.Cash != 1500+100-30 {
		t.Errorf("Unexpected cash alice=%d bob=%d", alice.Cash, bob.Cash)
	}
	if !reflect.DeepEqual(alice.OwnedTileIDs, []int{39}) || !reflect.DeepEqual(bob.OwnedTileIDs, []int{1, 5}) {
		t.Errorf("Unexpected holdings alice=%v bob=%v", alice.OwnedTileIDs, bob.OwnedTileIDs)
	}
	if !g.Properties[5].Mortgaged {
		t.Error("Mortgage should travel with the tile")
	}
	assertInvariants(t, g)

	assertKind(t, eng.AcceptTrade(g, "bob", trade.ID), ErrInvalidState)
	assertKind(t, eng.RejectTrade(g, "bob", trade.ID), ErrInvalidState)
	assertKind(t, eng.AcceptTrade(g, "bob", "nope"), ErrNotFound)
}

func TestAcceptTrade_RevalidatesAndStaysPending(t *testing.T) {
	t.Run("recipient lacks requested cash", func(t *testing.T) {
		eng := newTestEngine(t, &scriptedRandom{})
		g := newTwoPlayerGame(t, eng)
		give(g, &g.Players[0], 1)

		trade, err := eng.ProposeTrade(g, "alice", TradeProposal{ToPlayer: "bob", OfferedTiles: []int{1}, RequestedCash: 500})
		if err != nil {
			t.Fatalf("ProposeTrade failed: %v", err)
		}
		g.Players[1].Cash = 499

		assertKind(t, eng.AcceptTrade(g, "bob", trade.ID), ErrInsufficientFunds)
		if g.TradeByID(trade.ID).Status != TradePending {
			t.Error("Trade should remain pending")
		}
		if g.Properties[1].Owner != g.Players[0].ID {
			t.Error("Tile moved despite failed accept")
		}
	})

	t.Run("offered tile developed since proposal", func(t *testing.T) {
		eng := newTestEngine(t, &scriptedRandom{})
		g := newTwoPlayerGame(t, eng)
		give(g, &g.Players[0], 1, 2)

		trade, err := eng.ProposeTrade(g, "alice", TradeProposal{ToPlayer: "bob", OfferedTiles: []int{1}, RequestedCash: 10})
		if err != nil {
			t.Fatalf("ProposeTrade failed: %v", err)
		}
		if err := eng.BuildHouse(g, "alice", 1); err != nil {
			t.Fatalf("BuildHouse failed: %v", err)
		}

		assertKind(t, eng.AcceptTrade(g, "bob", trade.ID), ErrRuleViolation)
		if g.Players[1].Cash != 1500 {
			t.Error("Cash moved despite failed accept")
		}
	})
}

func TestRejectTrade(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newHumanGame(t, eng, "alice", "bob", "carol")

	propose := func() *Trade {
		t.Helper()
		trade, err := eng.ProposeTrade(g, "alice", TradeProposal{ToPlayer: "bob", OfferedCash: 10})
		if err != nil {
			t.Fatalf("ProposeTrade failed: %v", err)
		}
		return trade
	}

	first := propose()
	assertKind(t, eng.RejectTrade(g, "carol", first.ID), ErrRuleViolation)
	if err := eng.RejectTrade(g, "bob", first.ID); err != nil {
		t.Fatalf("RejectTrade by recipient failed: %v", err)
	}
	if got := g.TradeByID(first.ID); got.Status != TradeRejected || got.Reason != "rejected by bob" {
		t.Errorf("Unexpected trade %+v", got)
	}

	second := propose()
	if err := eng.RejectTrade(g, "alice", second.ID); err != nil {
		t.Fatalf("Withdraw by proposer failed: %v", err)
	}
	if got := g.TradeByID(second.ID); got.Status != TradeRejected || got.Reason != "withdrawn by alice" {
		t.Errorf("Unexpected trade %+v", got)
	}
	assertKind(t, eng.AcceptTrade(g, "bob", second.ID), ErrInvalidState)
	assertInvariants(t, g)
}

func TestProposeTrade_Validation(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(g *Game)
		proposal TradeProposal
		want     error
	}{
		{"unknown counterparty", nil, TradeProposal{ToPlayer: "zed", OfferedCash: 1}, ErrNotFound},
		{"self trade", nil, TradeProposal{ToPlayer: "alice", OfferedCash: 1}, ErrRuleViolation},
		{"negative cash", nil, TradeProposal{ToPlayer: "bob", OfferedCash: -5}, ErrRuleViolation},
		{"empty", nil, TradeProposal{ToPlayer: "bob"}, ErrRuleViolation},
		{"unknown tile", nil, TradeProposal{ToPlayer: "bob", OfferedTiles: []int{40}}, ErrNotFound},
		{
			"duplicate tile",
			func(g *Game) { give(g, &g.Players[0], 1) },
			TradeProposal{ToPlayer: "bob", OfferedTiles: []int{1, 1}},
			ErrRuleViolation,
		},
		{"offered tile not owned", nil, TradeProposal{ToPlayer: "bob", OfferedTiles: []int{1}}, ErrOwnershipViolation},
		{
			"requested tile not owned by counterparty",
			func(g *Game) { give(g, &g.Players[0], 39) },
			TradeProposal{ToPlayer: "bob", RequestedTiles: []int{39}},
			ErrOwnershipViolation,
		},
		{
			"offered tile developed",
			func(g *Game) {
				give(g, &g.Players[0], 1, 2)
				g.Properties[1].Houses = 1
			},
			TradeProposal{ToPlayer: "bob", OfferedTiles: []int{1}},
			ErrRuleViolation,
		},
		{
			"requested tile developed",
			func(g *Game) {
				give(g, &g.Players[1], 37, 39)
				g.Properties[39].Houses = 2
			},
			TradeProposal{ToPlayer: "bob", RequestedTiles: []int{39}},
			ErrRuleViolation,
		},
		{"offered cash not covered", nil, TradeProposal{ToPlayer: "bob", OfferedCash: 1501}, ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newTestEngine(t, &scriptedRandom{})
			g := newTwoPlayerGame(t, eng)
			if tt.setup != nil {
				tt.setup(g)
			}
			_, err := eng.ProposeTrade(g, "alice", tt.proposal)
			assertKind(t, err, tt.want)
			if len(g.Trades) != 0 {
				t.Error("Rejected proposal was recorded")
			}
		})
	}
}

func TestProposeTrade_BotAccepts(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{floats: []float64{0.69}})
	g := newBotGame(t, eng, 1)
	alice, bot := &g.Players[0], &g.Players[1]
	give(g, alice, 1)
	give(g, bot, 5)

	trade, err := eng.ProposeTrade(g, "alice", TradeProposal{
		ToPlayer:       bot.ID,
		OfferedTiles:   []int{1},
		RequestedTiles: []int{5},
		RequestedCash:  50,
	})
	if err != nil {
		t.Fatalf("ProposeTrade failed: %v", err)
	}
	if trade.Status != TradeAccepted || trade.CompletedAt == nil {
		t.Fatalf("Expected accepted trade, got %+v", trade)
	}
	if g.Properties[5].Owner != alice.ID || g.Properties[1].Owner != bot.ID {
		t.Error("Tiles were not swapped")
	}
	if alice.Cash != 1550 || bot.Cash != 1450 {
		t.Errorf("Unexpected cash alice=%d bot=%d", alice.Cash, bot.Cash)
	}
	assertInvariants(t, g)
}

func TestProposeTrade_BotNeverLeavesPending(t *testing.T) {
	for _, draw := range []float64{0, 0.3, 0.69, 0.7, 0.9, 0.999} {
		eng := newTestEngine(t, &scriptedRandom{floats: []float64{draw}})
		g := newBotGame(t, eng, 1)
		give(g, &g.Players[0], 1)

		trade, err := eng.ProposeTrade(g, "alice", TradeProposal{ToPlayer: g.Players[1].ID, OfferedTiles: []int{1}})
		if err != nil {
			t.Fatalf("ProposeTrade failed: %v", err)
		}
		want := TradeRejected
		if draw < 0.7 {
			want = TradeAccepted
		}
		if trade.Status != want {
			t.Errorf("Draw %v: expected %s, got %s", draw, want, trade.Status)
		}
		assertInvariants(t, g)
	}
}

func TestProposeTrade_BotCannotAfford(t *testing.T) {
	// No float is scripted: the bot must reject without drawing
	eng := newTestEngine(t, &scriptedRandom{})
	g := newBotGame(t, eng, 1)
	g.Players[1].Cash = 10

	trade, err := eng.ProposeTrade(g, "alice", TradeProposal{ToPlayer: g.Players[1].ID, RequestedCash: 100})
	if err != nil {
		t.Fatalf("ProposeTrade failed: %v", err)
	}
	if trade.Status != TradeRejected || trade.Reason == "" {
		t.Errorf("Expected rejection with reason, got %+v", trade)
	}
	if g.Players[1].Cash != 10 {
		t.Error("Cash moved on rejected trade")
	}
}

func TestProposeTrade_BotAddressedOnlyBySeat(t *testing.T) {
	eng := newTestEngine(t, &scriptedRandom{})
	g := newBotGame(t, eng, 1)

	_, err := eng.ProposeTrade(g, "alice", TradeProposal{ToPlayer: BotUserID, OfferedCash: 1})
	assertKind(t, err, ErrNotFound)
}
