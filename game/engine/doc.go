// Package engine implements the rules of a multiplayer property-trading
// board game.
//
// The engine package covers:
//   - The fixed 40-tile board and the two card decks
//   - Rent, construction and mortgage rules
//   - Landing resolution, including card chains
//   - The turn state machine and automatic bot turns
//   - Trade proposals between players and bots
//
// Core Types:
//
// Game is the aggregate root holding players, tiles, trades and the log.
// Engine applies operations to a Game according to a Rules set. The engine
// performs no I/O and starts no goroutines; callers serialize access to a
// game and persist it.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g, err := eng.NewGame(engine.NewGameParams{CreatorID: "alice", BotCount: 1, MaxPlayers: 2})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dice, err := eng.RollDice(g, "alice")
//	if err == nil {
//		err = eng.EndTurn(g, "alice")
//	}
//	for g.BotTurnDue() {
//		eng.PlayBotTurn(g)
//	}
//
// Errors:
//
// Every failure wraps one of the Err* kinds (ErrNotYourTurn,
// ErrInsufficientFunds, ...). KindOf maps an error to a stable code.
// Operations may leave a Game partially modified when they fail, so run
// them against Game.Clone and keep the clone only on success.
package engine
