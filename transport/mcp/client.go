package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/warpgame/game/engine"
	"github.com/wricardo/warpgame/game/service"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used by the /mcp handler.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the client used for REST calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Warp Tactics",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Warp Tactics - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players, white and black, take turns moving and deploying units on a
grid. Moving onto an enemy unit captures it.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage games
- game_state: board, units with their legal moves, players' warp and palette
- move: move one of your units - requires intent explanation
- deploy: place a unit from your palette in your start zone - requires intent explanation
- use_ability: trigger a unit ability such as barrier
- legal_moves: where a unit may move right now
- next_turn / next_phase / finish_game: advance the game
- history: actions taken so far
- list_configs: available rulesets
- game_instructions: full rules

NOTE: The 'intent' parameter on move/deploy serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionProp() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func intProp(description string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": description,
	}
}

func sessionOnly() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]any{"session_id": sessionProp()},
		Required:   []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional ruleset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Ruleset to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnly(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the rendered board",
		InputSchema: sessionOnly(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move one of the active player's units to (x, y)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"unit_id":    intProp("ID of the unit to move"),
				"x":          intProp("Destination column"),
				"y":          intProp("Destination row"),
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "unit_id", "x", "y"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "deploy",
		Description: "Deploy a unit from the palette onto an empty tile in the player's start zone",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"type": map[string]any{
					"type":        "string",
					"description": "Unit type, e.g. warpling, knight, rook",
				},
				"color": map[string]any{
					"type":        "string",
					"enum":        []string{"white", "black"},
					"description": "Deploying color (defaults to the active player)",
				},
				"x": intProp("Column"),
				"y": intProp("Row"),
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this deployment (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "type", "x", "y"},
		},
	}, c.handleDeploy)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "use_ability",
		Description: "Trigger an ability of one of the active player's units",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"unit_id":    intProp("ID of the unit using the ability"),
				"ability": map[string]any{
					"type":        "string",
					"description": "Ability name, listed on each unit in game_state",
				},
				"args": map[string]any{
					"type":        "object",
					"description": `Ability arguments, e.g. {"x": 4, "y": 1} for barrier`,
				},
			},
			Required: []string{"session_id", "unit_id", "ability"},
		},
	}, c.handleUseAbility)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the tiles a unit can move to right now",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"unit_id":    intProp("Unit ID"),
			},
			Required: []string{"session_id", "unit_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_turn",
		Description: "End the turn; the other player becomes active and receives warp",
		InputSchema: sessionOnly(),
	}, c.actionHandler("turn"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_phase",
		Description: "Advance to the next phase of the turn (move, deploy, clean_up)",
		InputSchema: sessionOnly(),
	}, c.actionHandler("phase"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "finish_game",
		Description: "End the game; no further actions are accepted",
		InputSchema: sessionOnly(),
	}, c.actionHandler("finish"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "history",
		Description: "Get the session's action history with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"page":       intProp("Page number (default 1)"),
				"limit":      intProp("Entries per page (default 20, max 100)"),
				"order": map[string]any{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc, newest first)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rulesets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the full rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Handler serves JSON-RPC messages over plain HTTP POST.
func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			c.logger.Error("marshal mcp response", "error", err)
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		turn := 0
		if s.GameState != nil {
			turn = s.GameState.Turn
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Turn: %d, Created: %s)\n",
			s.ID, s.ConfigName, turn, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.State
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unitID, err := request.RequireInt("unit_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"unit_id": unitID, "x": x, "y": y}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult("Move", &result)), nil
}

func (c *Client) handleDeploy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unitType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"type": unitType, "x": x, "y": y}
	if color := request.GetString("color", ""); color != "" {
		body["color"] = color
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/deploy"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult("Deploy", &result)), nil
}

func (c *Client) handleUseAbility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unitID, err := request.RequireInt("unit_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ability, err := request.RequireString("ability")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]any{"unit_id": unitID, "ability": ability}
	if args, ok := request.GetArguments()["args"].(map[string]any); ok {
		body["args"] = args
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/ability"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult("Ability", &result)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	unitID, err := request.RequireInt("unit_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.LegalMovesResult
	path := sessionPath(sessionID, fmt.Sprintf("/units/%d/moves", unitID))
	if err := c.apiCall(ctx, "GET", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(result.Moves) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Unit %d at (%d,%d) has no legal moves", unitID, result.From.X, result.From.Y)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Unit %d at (%d,%d) can move to: %s",
		unitID, result.From.X, result.From.Y, formatPositions(result.Moves))), nil
}

// actionHandler proxies the body-less POST actions.
func (c *Client) actionHandler(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result service.ActionResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+action), nil, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatActionResult(strings.ToUpper(action[:1])+action[1:], &result)), nil
	}
}

func (c *Client) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		query.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, Start zone: %d rows, Warp per turn: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.BoardLength, config.BoardHeight, config.StartZoneHeight, config.WarpPerTurn)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Warp Tactics - Complete Instructions

GAME OBJECTIVE:
Outmanoeuvre the other color. Moving a unit onto an enemy unit captures it.
The game ends when a player calls finish_game.

BOARD:
Coordinates are (x, y) with (0,0) at the bottom left. White's start zone is
the lowest rows, Black's the highest; the ruleset sets how many rows.
  . empty       # obstruction
  K/k king      W/w warpling   N/n knight   R/r rook   B/b bishop
  Q/q queen     G/g gold       S/s silver   L/l lance  P/p pawn
  D/d dragon (promoted rook)   H/h horse (promoted bishop)
Upper case is White, lower case is Black.

TURNS:
- White moves first. Only the active player may move, deploy or use abilities.
- next_turn hands the turn to the other player and credits them with warp.
- next_phase cycles move -> deploy -> clean_up. Phases are informational;
  actions are not restricted to a phase.

MOVEMENT:
- Every unit type has a fixed movement envelope (see game_state legal moves).
- Stepping units (king, generals, pawns, warplings) move one tile.
- Sliding units (rook, bishop, queen, lance, promoted pieces) stop at the
  first occupied tile on their ray.
- Knights leap; nothing in between can block them.
- A unit cannot end on its own tile, a friendly unit or an obstruction.
- Black's envelopes are mirrored so both sides advance toward each other.

DEPLOYING:
- deploy places a unit from your palette on an EMPTY tile inside your start
  zone. It costs warp and uses up one copy from the palette.
- game_state lists each player's warp and the remaining palette with costs.

ABILITIES:
- Units list their abilities in game_state. A king can raise a barrier:
  use_ability with {"x": X, "y": Y} next to the king on an empty tile.
- Rulesets may grant scripted abilities (for example wall or purge).

TIPS:
- Call legal_moves before moving; an illegal action changes nothing and
  reports success=false.
- Use history to review what happened.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.State) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ruleset: %s | Turn %d | %s to play | Phase: %s | Version %d\n",
		state.ConfigName, state.Turn, state.ActiveColor, state.Phase, state.Version)
	if state.Over {
		b.WriteString("🏁 GAME OVER\n")
	}

	b.WriteString("\nBoard:\n")
	b.WriteString(engine.RenderBoard(state))

	b.WriteString("\nUnits:\n")
	if len(state.Units) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, u := range state.Units {
		fmt.Fprintf(&b, "  #%d %s %s at (%d,%d)", u.ID, u.Color, u.Type, u.X, u.Y)
		if len(u.Abilities) > 0 {
			fmt.Fprintf(&b, " abilities: %s", strings.Join(u.Abilities, ", "))
		}
		if u.Color == state.ActiveColor {
			fmt.Fprintf(&b, " moves: %s", formatPositions(u.LegalMoves))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\nPlayers:\n")
	for _, p := range state.Players {
		fmt.Fprintf(&b, "  %s: warp %d\n", p.Color, p.Warp)
		for _, entry := range p.Palette {
			if entry.Remaining == 0 {
				continue
			}
			fmt.Fprintf(&b, "    %s x%d (cost %d)\n", entry.Name, entry.Remaining, entry.Cost)
		}
	}
	return b.String()
}

func formatPositions(ps []engine.Position) string {
	if len(ps) == 0 {
		return "none"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

func formatActionResult(action string, result *service.ActionResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s successful: %s\n\n", action, result.Message)
	} else {
		fmt.Fprintf(&b, "✗ %s failed: %s\n\n", action, result.Message)
	}
	b.WriteString(formatGameState(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History (page %d/%d, %d actions):\n\n", history.Page, history.TotalPages, history.TotalEntries)
	for _, e := range history.Entries {
		fmt.Fprintf(&b, "%3d. turn %d %s %s", e.Seq, e.Turn, e.Color, e.Action)
		if e.UnitType != "" {
			fmt.Fprintf(&b, " %s #%d", e.UnitType, e.UnitID)
		}
		if e.Ability != "" {
			fmt.Fprintf(&b, " [%s]", e.Ability)
		}
		if e.From != nil {
			fmt.Fprintf(&b, " from (%d,%d)", e.From.X, e.From.Y)
		}
		if e.To != nil {
			fmt.Fprintf(&b, " to (%d,%d)", e.To.X, e.To.Y)
		}
		b.WriteByte('\n')
	}
	if history.HasNext {
		fmt.Fprintf(&b, "\nMore entries on page %d\n", history.Page+1)
	}
	return b.String()
}
