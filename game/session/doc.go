// Package session stores live games for the game service.
//
// Manager keeps one service.Session per game id in memory and implements
// service.SessionManager. Ids are matched case-insensitively and must not
// contain path separators, since they double as file names and redis keys.
//
// Persistence is optional and pluggable through SessionPersistence:
//
//   - FilePersistence writes one indented JSON document per game, replacing
//     files atomically.
//   - RedisPersistence stores each game under game:<id> and indexes ids in
//     the "games" set, using a redigo pool.
//
// Loaded games are checked with engine.CheckInvariants before they are
// handed out. Sessions evicted by CleanupExpiredSessions stay persisted and
// are reloaded on the next Get.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManager(session.WithPersistence(persistence))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
package session
