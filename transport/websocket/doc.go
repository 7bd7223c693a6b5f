// Package websocket pushes game snapshots to browsers.
//
// Hub keeps the connected clients grouped by game id and implements
// service.Notifier: after every committed change the service calls
// GameUpdated, and the hub sends the full game to each subscriber as
//
//	{"game_id": "...", "event": "game_update", "game": {...}}
//
// GameUpdated never blocks. Updates are queued on a buffered channel that
// Run drains; when the queue is full the update is dropped and logged, and
// clients catch up on the next one. Clients that cannot keep up are
// disconnected.
//
// Clients subscribe with GET /ws?game=<id>. Incoming frames are ignored:
// actions go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, rules, service.WithNotifier(hub))
package websocket
