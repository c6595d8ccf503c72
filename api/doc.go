// Package api provides the HTTP REST API for warp game sessions.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions             - Create a session ({"config_id": "kings"}, empty body for the default)
//   - GET    /api/sessions             - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}        - Get a session
//   - DELETE /api/sessions/{id}        - Delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state                - Game state (?format=text renders the board)
//   - POST /api/sessions/{id}/move                 - {"unit_id": 3, "x": 4, "y": 2}
//   - POST /api/sessions/{id}/deploy               - {"type": "knight", "x": 2, "y": 0}, color defaults to the active player
//   - POST /api/sessions/{id}/ability              - {"unit_id": 1, "ability": "barrier", "args": {"x": 4, "y": 1}}
//   - POST /api/sessions/{id}/turn                 - End the turn
//   - POST /api/sessions/{id}/phase                - Advance the phase
//   - POST /api/sessions/{id}/finish               - End the game
//   - GET  /api/sessions/{id}/units/{unit}/moves   - Legal destinations of a unit
//   - GET  /api/sessions/{id}/history              - Action history (?page=1&limit=20&order=asc|desc)
//
// Configuration:
//   - GET  /api/configs          - List rulesets
//   - GET  /api/configs/{name}   - Get a ruleset
//   - POST /api/configs          - Save a ruleset (?id= overrides the file name)
//
// Other:
//   - GET /health
//   - GET /ws?session={id}  - Websocket feed of state updates
//
// Game actions answer 200 with an ActionResult. An illegal action is not an
// HTTP error; it reports "success": false and leaves the state untouched.
//
// Errors are returned as JSON with the matching status code:
//
//	{
//	  "error": "session ab12: session not found",
//	  "code": 404
//	}
//
// Missing sessions, rulesets, units and abilities are 404; malformed bodies,
// unknown unit types, bad ability arguments and invalid rulesets are 400.
package api
