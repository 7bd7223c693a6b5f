// Package mcp lets an AI agent take a seat at the table over the Model
// Context Protocol.
//
// Client is an MCP server that proxies every tool to the REST API as a fixed
// user (sent in X-User-ID / X-User-Name), so an agent plays by the same rules
// and sees the same errors as any other caller.
//
// Tools:
//   - create_game, list_games, game_state, join_game, start_game, leave_game
//   - roll_dice, buy_tile, pay_rent, end_turn
//   - mortgage, unmortgage, build_house (take tile_id)
//   - propose_trade, respond_trade
//   - chat, game_log
//   - list_rules, board, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", "agent-1", "Agent")
//	server.ServeStdio(client.GetMCPServer())
package mcp
