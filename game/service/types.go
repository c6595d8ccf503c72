package service

import (
	"time"

	"github.com/wricardo/warpgame/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.State      `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult is returned by every state-changing operation. An illegal
// action is not an error: Success is false and State is unchanged.
type ActionResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	State   *engine.State `json:"game_state"`
	Entry   *HistoryEntry `json:"entry,omitempty"`
}

// DeployRequest asks for a unit from the color's palette to be placed.
type DeployRequest struct {
	Type  string       `json:"type" validate:"required"`
	Color engine.Color `json:"color"`
	X     int          `json:"x" validate:"gte=0"`
	Y     int          `json:"y" validate:"gte=0"`
}

// LegalMovesResult lists where a unit may move right now.
type LegalMovesResult struct {
	UnitID engine.UnitID     `json:"unit_id"`
	From   engine.Position   `json:"from"`
	Moves  []engine.Position `json:"moves"`
}

// HistoryEntry records one successful action in a session.
type HistoryEntry struct {
	ID        string           `json:"id"`
	Seq       int              `json:"seq"`
	Action    string           `json:"action"`
	Turn      int              `json:"turn"`
	Color     engine.Color     `json:"color"`
	UnitID    engine.UnitID    `json:"unit_id,omitempty"`
	UnitType  string           `json:"unit_type,omitempty"`
	Ability   string           `json:"ability,omitempty"`
	From      *engine.Position `json:"from,omitempty"`
	To        *engine.Position `json:"to,omitempty"`
	Version   int64            `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated history
type HistoryResponse struct {
	Entries      []HistoryEntry `json:"entries"`
	TotalEntries int            `json:"total_entries"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalPages   int            `json:"total_pages"`
	HasNext      bool           `json:"has_next"`
	HasPrevious  bool           `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"` // The identifier to use for session creation
	Name            string `json:"name"`
	Description     string `json:"description"`
	BoardLength     int    `json:"board_length"`
	BoardHeight     int    `json:"board_height"`
	StartZoneHeight int    `json:"start_zone_height"`
	WarpPerTurn     int    `json:"warp_per_turn"`
}
