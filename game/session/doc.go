// Package session provides in-memory session management for the warp game server.
//
// Manager stores service.Session values keyed by a case-insensitive ID. It
// creates each session's engine.Game against a shared ability registry, so
// abilities loaded from scripts after start-up are visible to running games.
//
// Session Identifiers:
//
// Sessions use random 4-character hex IDs for easy reference. Callers may
// also choose their own IDs; lookups ignore case.
//
// Concurrency:
//
// The manager's map is guarded by an RWMutex. Game state is not: each
// session carries its own lock, so play in one session never waits on
// another.
//
// Usage:
//
//	manager := session.NewManager(session.WithAbilities(registry))
//
//	sess, err := manager.Create("", "classic", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// drop sessions idle for more than a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
//
// Sessions live only as long as the process.
package session
