// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request to the REST API,
// and the JSON answer is rendered as text an agent can read, including the
// board drawn by engine.RenderBoard.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, units with legal moves, warp and palettes
//   - move, deploy, use_ability
//   - legal_moves
//   - next_turn, next_phase, finish_game
//   - history: paginated action history
//   - list_configs, game_instructions
//
// Illegal game actions are ordinary tool results marked with ✗; transport and
// lookup failures (unknown session, unit or ability) are tool errors.
//
// Transport Modes:
//
//	// Stdio, for local MCP clients
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, one JSON-RPC message per POST
//	mux.Handle("/mcp", client.Handler())
package mcp
