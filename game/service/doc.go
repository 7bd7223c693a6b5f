// Package service provides the business logic layer for the board game.
//
// The service package implements:
//   - Multi-game management on top of a SessionManager
//   - Rule set lookup through a RulesManager
//   - Per-game serialization of every action
//   - Change notification for push transports
//   - Background bot turns
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager stores games in memory and persists them.
// RulesManager loads and saves rule sets.
// Notifier receives every committed game state.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Every action locks the game's session, runs the engine
// against a deep copy of the stored game and swaps the copy in only when the
// engine accepts the action. A rejected action therefore leaves the stored
// game exactly as it was, and a game returned to a caller is never modified
// afterwards.
//
// Usage:
//
//	sessionMgr := session.NewManager(session.WithPersistence(persistence))
//	rulesMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, rulesMgr, service.WithLogger(logger))
//	defer gameService.Close(ctx)
//
//	game, err := gameService.CreateGame(ctx, service.CreateGameRequest{
//		CreatorID:  "alice",
//		MaxPlayers: 4,
//		WithBots:   true,
//		BotCount:   2,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, err := gameService.RollDice(ctx, game.ID, "alice")
//
// Bots:
//
// Whenever a committed state leaves a bot to move, the game is handed to the
// BotScheduler. Its workers play bot turns one at a time under the same
// session lock as human actions, until a human is up, the game ends or the
// rule set's chain limit is reached. A bot turn that fails is rolled back,
// logged and the turn still passes on.
package service
