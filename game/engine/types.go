package engine

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color int

const (
	White Color = iota
	Black
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Tile returns the board marker for units of this color.
func (c Color) Tile() Tile {
	return Tile(c)
}

// Valid reports whether c is White or Black.
func (c Color) Valid() bool {
	return c == White || c == Black
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("color(%d)", int(c))
	}
}

// MarshalText encodes the color as "white" or "black".
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts "white"/"black" or "0"/"1".
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a color name.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "0":
		return White, nil
	case "black", "1":
		return Black, nil
	default:
		return 0, fmt.Errorf("unknown color %q", s)
	}
}

// Tile is the state of one board square.
type Tile int

const (
	TileEmpty       Tile = -1
	TileWhite       Tile = 0
	TileBlack       Tile = 1
	TileObstruction Tile = 2
)

// Phase is a step within a turn.
type Phase int

const (
	MovePhase Phase = iota
	DeployPhase
	CleanUpPhase

	phaseCount = 3
)

func (p Phase) String() string {
	switch p {
	case MovePhase:
		return "move"
	case DeployPhase:
		return "deploy"
	case CleanUpPhase:
		return "clean_up"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// UnitType enumerates the kinds of unit a roster can hold.
type UnitType int

const (
	Warpling UnitType = iota + 1
	King
	Knight
	Rook
	Bishop
	Queen
	GoldGeneral
	SilverGeneral
	Lance
	Pawn
	PromotedRook
	PromotedBishop
	Barrier
)

var unitTypeNames = map[UnitType]string{
	Warpling:       "warpling",
	King:           "king",
	Knight:         "knight",
	Rook:           "rook",
	Bishop:         "bishop",
	Queen:          "queen",
	GoldGeneral:    "gold_general",
	SilverGeneral:  "silver_general",
	Lance:          "lance",
	Pawn:           "pawn",
	PromotedRook:   "promoted_rook",
	PromotedBishop: "promoted_bishop",
	Barrier:        "barrier",
}

func (t UnitType) String() string {
	if name, ok := unitTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unit_type(%d)", int(t))
}

// ParseUnitType accepts a type name ("rook", "gold-general", "Gold General").
func ParseUnitType(s string) (UnitType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for t, name := range unitTypeNames {
		if name == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnitType, s)
}

// UnitID identifies a deployed unit. Zero is never a real unit.
type UnitID int

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Validation constants
const (
	MinBoardSize        = 4
	MaxBoardSize        = 26
	DefaultBoardLength  = 10
	DefaultBoardHeight  = 10
	DefaultStartZone    = 3
	WebSocketBufferSize = 256
)
