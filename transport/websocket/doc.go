// Package websocket pushes live game state to browsers and other watchers.
//
// A central Hub owns every connection. Its Run loop registers and
// unregisters clients and fans messages out to the clients watching a
// session; each connection has its own read and write goroutines.
//
// Message Protocol:
//
// Clients connect to /ws?session=<id> and only receive. Every frame is one
// JSON Message:
//
//	{"session_id": "ab12", "event": "snapshot", "game_state": {...}}
//	{"session_id": "ab12", "event": "state_update", "action": "move", "game_state": {...}}
//
// The first frame is a snapshot of the session; later frames follow every
// successful action. Updates come from the game event bus: wire
// Hub.HandleStateEvent with events.Bus.SubscribeState.
//
// Clients that fall behind by more than engine.WebSocketBufferSize messages
// are disconnected.
package websocket
