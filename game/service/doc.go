// Package service provides the business logic layer of the warp game server.
//
// The service package implements:
//   - Multi-session game management
//   - Unit moves, deploys and abilities on behalf of the active player
//   - Turn and phase control
//   - Per-session action history
//   - Ruleset listing, loading and saving
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages ruleset loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and the
// game engine. Each Session owns its own engine.Engine guarded by its own lock;
// all access to the game goes through Session.Act or Session.View. Successful
// actions are logged, appended to the session history and, when a publisher is
// configured, announced as events.StateEvent before the session lock is
// released, so one session's events arrive in version order.
//
// Illegal actions are not errors. Move, Deploy and UseAbility return an
// ActionResult with Success false; errors are reserved for missing sessions,
// unknown units, unknown abilities and bad arguments.
//
// Usage:
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager(afero.NewOsFs(), "configs")
//	svc := service.NewGameService(sessions, configs, service.WithPublisher(bus))
//
//	info, err := svc.CreateSession(ctx, "kings")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := svc.Deploy(ctx, info.ID, service.DeployRequest{Type: "knight", X: 3, Y: 0})
package service
