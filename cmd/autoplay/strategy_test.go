package main

import (
	"testing"

	"github.com/wricardo/landlord/game/engine"
)

func activeGame(t *testing.T) *engine.Game {
	t.Helper()
	eng, err := engine.NewEngine(engine.DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	g, err := eng.NewGame(engine.NewGameParams{CreatorID: "u1", CreatorName: "Alice", MaxPlayers: 2, BotCount: 1})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if g.Status != engine.StatusActive || g.CurrentPlayer().UserID != "u1" {
		t.Fatalf("expected an active game on u1's turn, got %s", g.Status)
	}
	return g
}

func own(g *engine.Game, p *engine.Player, ids ...int) {
	for _, id := range ids {
		g.Properties[id].Owner = p.ID
		p.OwnedTileIDs = append(p.OwnedTileIDs, id)
	}
}

func TestStrategy_TurnFlow(t *testing.T) {
	g := activeGame(t)
	s := NewStrategy("u1", 100)
	me := g.PlayerByUser("u1")

	if a := s.Next(g); a.Kind != ActionRoll {
		t.Fatalf("Expected roll first, got %s", a.Kind)
	}

	g.LastDiceRoll = &engine.DiceRoll{Die1: 1, Die2: 2, Sum: 3}
	me.Position = 1 // unowned brown, price 60
	if a := s.Next(g); a.Kind != ActionBuy {
		t.Fatalf("Expected buy, got %s", a.Kind)
	}

	me.Cash = 150 // buying would leave less than the reserve
	if a := s.Next(g); a.Kind != ActionEndTurn {
		t.Fatalf("Expected end turn when short of reserve, got %s", a.Kind)
	}
}

func TestStrategy_Waiting(t *testing.T) {
	g := activeGame(t)
	s := NewStrategy("u1", 100)

	g.CurrentPlayerIndex = 1
	if a := s.Next(g); a.Kind != ActionWait {
		t.Errorf("Expected wait on the bot's turn, got %s", a.Kind)
	}

	g.Status = engine.StatusCompleted
	if a := s.Next(g); a.Kind != ActionDone {
		t.Errorf("Expected done, got %s", a.Kind)
	}

	if a := NewStrategy("stranger", 0).Next(activeGame(t)); a.Kind != ActionDone {
		t.Errorf("Expected done for a user without a seat, got %s", a.Kind)
	}

	lobby := activeGame(t)
	lobby.Status = engine.StatusWaiting
	if a := s.Next(lobby); a.Kind != ActionStart {
		t.Errorf("Expected creator to start the game, got %s", a.Kind)
	}
	if a := NewStrategy("u2", 0).Next(lobby); a.Kind != ActionDone {
		t.Errorf("Expected done for a non-seated user, got %s", a.Kind)
	}
}

func TestStrategy_Debt(t *testing.T) {
	g := activeGame(t)
	s := NewStrategy("u1", 0)
	me := g.PlayerByUser("u1")
	bot := &g.Players[1]

	g.LastDiceRoll = &engine.DiceRoll{Die1: 2, Die2: 3, Sum: 5}
	g.PendingPayment = &engine.PendingPayment{FromPlayer: me.ID, ToPlayer: bot.ID, Amount: 100, TileID: 5}

	if a := s.Next(g); a.Kind != ActionPayRent {
		t.Fatalf("Expected pay rent, got %s", a.Kind)
	}

	me.Cash = 10
	own(g, me, 39, 1)
	a := s.Next(g)
	if a.Kind != ActionMortgage || a.TileID != 1 {
		t.Fatalf("Expected mortgage of the cheapest tile, got %+v", a)
	}

	s.Refused(a)
	if a := s.Next(g); a.Kind != ActionMortgage || a.TileID != 39 {
		t.Fatalf("Expected the next tile after a refusal, got %+v", a)
	}

	g.Properties[1].Mortgaged = true
	g.Properties[39].Mortgaged = true
	if a := s.Next(g); a.Kind != ActionLeave {
		t.Fatalf("Expected resign with nothing left, got %s", a.Kind)
	}
}

func TestStrategy_Develop(t *testing.T) {
	g := activeGame(t)
	s := NewStrategy("u1", 0)
	me := g.PlayerByUser("u1")
	g.LastDiceRoll = &engine.DiceRoll{Die1: 1, Die2: 1, Sum: 2}
	me.Position = 0

	own(g, me, 1, 2)
	g.Properties[1].Houses = 1

	a := s.Next(g)
	if a.Kind != ActionBuild || a.TileID != 2 {
		t.Fatalf("Expected an even build on tile 2, got %+v", a)
	}

	g.Properties[2].Mortgaged = true
	if a := s.Next(g); a.Kind != ActionEndTurn {
		t.Fatalf("Expected no build with a mortgaged tile, got %+v", a)
	}
}

func TestStrategy_RefusalsResetEachTurn(t *testing.T) {
	g := activeGame(t)
	s := NewStrategy("u1", 0)

	s.Next(g)
	s.Refused(Action{Kind: ActionRoll})
	if a := s.Next(g); a.Kind == ActionRoll {
		t.Fatal("Refused action retried in the same turn")
	}

	g.Turn++
	if a := s.Next(g); a.Kind != ActionRoll {
		t.Fatalf("Expected roll on a new turn, got %s", a.Kind)
	}
}

func TestStrategy_Trades(t *testing.T) {
	g := activeGame(t)
	s := NewStrategy("u1", 100)
	me := g.PlayerByUser("u1")
	bot := &g.Players[1]
	own(g, bot, 39)
	own(g, me, 1)

	g.Trades = append(g.Trades,
		engine.Trade{ID: "good", FromPlayer: bot.ID, ToPlayer: me.ID, Status: engine.TradePending, OfferedTiles: []int{39}, RequestedTiles: []int{1}},
	)
	if a := s.Next(g); a.Kind != ActionAcceptTrade || a.TradeID != "good" {
		t.Fatalf("Expected to accept a favourable trade, got %+v", a)
	}

	g.Trades[0] = engine.Trade{ID: "bad", FromPlayer: bot.ID, ToPlayer: me.ID, Status: engine.TradePending, OfferedCash: 10, RequestedTiles: []int{1}}
	if a := s.Next(g); a.Kind != ActionRejectTrade || a.TradeID != "bad" {
		t.Fatalf("Expected to reject, got %+v", a)
	}

	g.Trades[0] = engine.Trade{ID: "broke", FromPlayer: bot.ID, ToPlayer: me.ID, Status: engine.TradePending, OfferedTiles: []int{39}, RequestedCash: me.Cash}
	if a := s.Next(g); a.Kind != ActionRejectTrade {
		t.Fatalf("Expected to reject a trade breaking the reserve, got %+v", a)
	}
}
