package engine

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// UnitPlacement puts a unit on the board when a game starts.
type UnitPlacement struct {
	Type  string `json:"type"`
	Color Color  `json:"color"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// GameConfig is a ruleset: board geometry, economy, palette and setup.
type GameConfig struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	BoardLength     int    `json:"board_length"`
	BoardHeight     int    `json:"board_height"`
	StartZoneHeight int    `json:"start_zone_height"`
	StartingWarp    int    `json:"starting_warp"`
	WarpPerTurn     int    `json:"warp_per_turn"`
	// Palette maps a unit type name to the number of copies each player may deploy.
	Palette       map[string]int      `json:"palette"`
	Obstructions  []Position          `json:"obstructions,omitempty"`
	StartingUnits []UnitPlacement     `json:"starting_units,omitempty"`
	Abilities     map[string][]string `json:"abilities,omitempty"`
}

// DefaultGameConfig returns the built-in ruleset: an empty 10x10 board.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:            "classic",
		Description:     "Empty 10x10 board, three home rows per side",
		BoardLength:     DefaultBoardLength,
		BoardHeight:     DefaultBoardHeight,
		StartZoneHeight: DefaultStartZone,
		StartingWarp:    0,
		WarpPerTurn:     3,
		Palette: map[string]int{
			"warpling":        4,
			"pawn":            4,
			"knight":          2,
			"bishop":          2,
			"rook":            2,
			"queen":           1,
			"gold_general":    2,
			"silver_general":  2,
			"lance":           2,
			"promoted_rook":   1,
			"promoted_bishop": 1,
		},
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.BoardLength < MinBoardSize || config.BoardLength > MaxBoardSize {
		return fmt.Errorf("config validation: board_length must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.BoardLength)
	}
	if config.BoardHeight < MinBoardSize || config.BoardHeight > MaxBoardSize {
		return fmt.Errorf("config validation: board_height must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, config.BoardHeight)
	}
	// Zones may not overlap.
	if config.StartZoneHeight < 0 || config.StartZoneHeight > config.BoardHeight/2 {
		return fmt.Errorf("config validation: start_zone_height must be between 0 and %d, got %d",
			config.BoardHeight/2, config.StartZoneHeight)
	}
	if config.StartingWarp < 0 {
		return fmt.Errorf("config validation: starting_warp must not be negative, got %d", config.StartingWarp)
	}
	if config.WarpPerTurn < 0 {
		return fmt.Errorf("config validation: warp_per_turn must not be negative, got %d", config.WarpPerTurn)
	}

	for name, count := range config.Palette {
		t, err := ParseUnitType(name)
		if err != nil {
			return fmt.Errorf("config validation: palette: %w", err)
		}
		if t == Barrier {
			return fmt.Errorf("config validation: palette: barrier units cannot be deployed directly")
		}
		if count < 0 {
			return fmt.Errorf("config validation: palette[%s] must not be negative, got %d", name, count)
		}
	}

	inBounds := func(p Position) bool {
		return p.X >= 0 && p.X < config.BoardLength && p.Y >= 0 && p.Y < config.BoardHeight
	}
	occupied := make(map[Position]bool)
	for _, p := range config.Obstructions {
		if !inBounds(p) {
			return fmt.Errorf("config validation: obstruction at (%d, %d) is off the board", p.X, p.Y)
		}
		if occupied[p] {
			return fmt.Errorf("config validation: duplicate obstruction at (%d, %d)", p.X, p.Y)
		}
		occupied[p] = true
	}
	for i, u := range config.StartingUnits {
		if _, err := ParseUnitType(u.Type); err != nil {
			return fmt.Errorf("config validation: starting_units[%d]: %w", i, err)
		}
		if !u.Color.Valid() {
			return fmt.Errorf("config validation: starting_units[%d]: invalid color", i)
		}
		p := Position{X: u.X, Y: u.Y}
		if !inBounds(p) {
			return fmt.Errorf("config validation: starting_units[%d] at (%d, %d) is off the board", i, u.X, u.Y)
		}
		if occupied[p] {
			return fmt.Errorf("config validation: starting_units[%d] at (%d, %d) overlaps another piece", i, u.X, u.Y)
		}
		occupied[p] = true
	}

	for name, abilities := range config.Abilities {
		if _, err := ParseUnitType(name); err != nil {
			return fmt.Errorf("config validation: abilities: %w", err)
		}
		for _, a := range abilities {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("config validation: abilities[%s] contains an empty name", name)
			}
		}
	}

	return nil
}

// ParseGameConfig decodes and validates a JSON ruleset.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file on fsys.
func LoadGameConfig(fsys afero.Fs, filename string) (*GameConfig, error) {
	data, err := afero.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return nil, err
	}
	config, err := ParseGameConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return config, nil
}
