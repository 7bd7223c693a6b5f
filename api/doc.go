// Package api exposes the game service over HTTP.
//
// Callers identify themselves with the X-User-ID header (and optionally
// X-User-Name); authentication is expected to happen in front of this
// server. Every action returns the full updated game.
//
// Games:
//   - POST   /api/games                 create; body {name, max_players, with_bots, bot_count, rules}
//   - GET    /api/games                 list; ?sort=created|accessed&order=asc|desc&status=&limit=
//   - GET    /api/games/{id}            read
//   - DELETE /api/games/{id}            delete (creator only)
//   - GET    /api/games/{id}/log        narrative; ?page=&limit=&order=&type=event|chat
//
// Actions (POST, X-User-ID required):
//   - /api/games/{id}/join, /leave, /start
//   - /api/games/{id}/roll, /buy, /end-turn, /pay-rent
//   - /api/games/{id}/tiles/{tile}/mortgage, /unmortgage, /build
//   - /api/games/{id}/trades                      body engine.TradeProposal
//   - /api/games/{id}/trades/{trade}/accept, /reject
//   - /api/games/{id}/chat                        body {text}
//
// Rules and board:
//   - GET /api/rules, GET /api/rules/{name}, PUT /api/rules/{name}
//   - GET /api/board
//
// Push updates: GET /ws?game={id} upgrades to a WebSocket that receives a
// snapshot after every change.
//
// Errors:
//
// Failures carry the engine's reason code:
//
//	{"error": "not your turn: ...", "code": "not_your_turn"}
//
// not_found 404, not_participant and ownership_violation 403, not_your_turn,
// invalid_state and already_acted 409, payment_required and
// insufficient_funds 402, rule_violation 422, internal 500. Malformed bodies
// answer 400 bad_request and a missing user 401 unauthorized.
package api
