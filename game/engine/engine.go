package engine

import (
	"fmt"
	"maps"
	"slices"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	Turn() int
	ActiveColor() Color
	Phase() Phase
	Version() int64
	IsOver() bool
	Snapshot() *State

	// Units and board
	Unit(id UnitID) (*Unit, error)
	Units() []*Unit
	UnitAt(x, y int) (*Unit, bool)
	TileAt(x, y int) Tile
	Player(c Color) *Player

	// Actions
	MoveIsLegal(id UnitID, x, y int) (bool, error)
	Move(id UnitID, x, y int) (bool, error)
	DeployIsLegal(t UnitType, c Color, x, y int) (bool, error)
	Deploy(t UnitType, c Color, x, y int, enforceRules bool) (bool, error)
	ListLegalMoves(id UnitID) ([]Position, error)
	UseAbility(id UnitID, name string, args Args) (bool, error)

	// Turn structure
	NextTurn()
	NextPhase()
	Finish()

	// Configuration
	Config() *GameConfig
}

// Game is one match. It is not safe for concurrent use; callers serialise
// access per game.
type Game struct {
	config    *GameConfig
	board     *Board
	roster    Roster
	abilities *AbilityRegistry
	units     map[UnitID]*Unit
	players   [2]*Player

	turn          int
	active        Color
	phase         Phase
	deployedCount int
	version       int64
	over          bool
}

var _ Engine = (*Game)(nil)

// Option customises a new game.
type Option func(*Game)

// WithAbilities sets the registry abilities are resolved against.
func WithAbilities(r *AbilityRegistry) Option {
	return func(g *Game) {
		if r != nil {
			g.abilities = r
		}
	}
}

// NewGame creates a game from config. A nil config selects DefaultGameConfig.
func NewGame(config *GameConfig, opts ...Option) (*Game, error) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	g := &Game{
		config: config,
		board:  NewBoard(config.BoardLength, config.BoardHeight),
		roster: DefaultRoster(config.BoardLength, config.BoardHeight),
		units:  make(map[UnitID]*Unit),
		turn:   1,
		active: White,
		phase:  MovePhase,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.abilities == nil {
		g.abilities = DefaultAbilities()
	}

	for name, abilities := range config.Abilities {
		t, _ := ParseUnitType(name)
		tmpl := g.roster[t]
		for _, a := range abilities {
			if !tmpl.HasAbility(a) {
				tmpl.Abilities = append(tmpl.Abilities, a)
			}
		}
	}

	for _, c := range []Color{White, Black} {
		p := newPlayer(c, config.StartingWarp)
		for name, count := range config.Palette {
			t, _ := ParseUnitType(name)
			p.Palette[t] = &PaletteEntry{Cost: g.roster[t].Cost, Remaining: count, Starting: count}
		}
		g.players[c] = p
	}

	for _, pos := range config.Obstructions {
		g.board.Set(pos.X, pos.Y, TileObstruction)
	}
	for i, placement := range config.StartingUnits {
		t, _ := ParseUnitType(placement.Type)
		ok, err := g.Deploy(t, placement.Color, placement.X, placement.Y, false)
		if err != nil {
			return nil, fmt.Errorf("starting_units[%d]: %w", i, err)
		}
		if !ok {
			return nil, fmt.Errorf("starting_units[%d]: cannot place %s at (%d, %d)", i, placement.Type, placement.X, placement.Y)
		}
	}
	g.version = 0

	return g, nil
}

// Config returns the ruleset the game was created from.
func (g *Game) Config() *GameConfig {
	return g.config
}

// Roster returns the game's unit table.
func (g *Game) Roster() Roster {
	return g.roster
}

// Abilities returns the registry abilities are resolved against.
func (g *Game) Abilities() *AbilityRegistry {
	return g.abilities
}

// Board returns the game's board.
func (g *Game) Board() *Board {
	return g.board
}

func (g *Game) Turn() int          { return g.turn }
func (g *Game) ActiveColor() Color { return g.active }
func (g *Game) Phase() Phase       { return g.phase }
func (g *Game) Version() int64     { return g.version }
func (g *Game) IsOver() bool       { return g.over }
func (g *Game) DeployedCount() int { return g.deployedCount }

// TileAt returns the tile at (x, y).
func (g *Game) TileAt(x, y int) Tile {
	return g.board.At(x, y)
}

// Player returns the player of color c, or nil for an invalid color.
func (g *Game) Player(c Color) *Player {
	if !c.Valid() {
		return nil
	}
	return g.players[c]
}

// Unit returns the unit with the given ID.
func (g *Game) Unit(id UnitID) (*Unit, error) {
	u, ok := g.units[id]
	if !ok {
		return nil, fmt.Errorf("unit %d: %w", id, ErrUnitNotFound)
	}
	return u, nil
}

// Units returns every unit on the board ordered by ID.
func (g *Game) Units() []*Unit {
	ids := slices.Sorted(maps.Keys(g.units))
	out := make([]*Unit, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.units[id])
	}
	return out
}

// UnitAt returns the unit standing on (x, y).
func (g *Game) UnitAt(x, y int) (*Unit, bool) {
	for _, u := range g.units {
		if u.at(x, y) {
			return u, true
		}
	}
	return nil, false
}

// NextTurn hands the turn to the other color and credits its warp income.
func (g *Game) NextTurn() {
	g.turn++
	g.active = g.active.Opponent()
	g.players[g.active].Warp += g.config.WarpPerTurn
	g.version++
}

// NextPhase advances the phase cycle move, deploy, clean up.
func (g *Game) NextPhase() {
	g.phase = (g.phase + 1) % phaseCount
	g.version++
}

// Finish ends the game. Every later move or deploy is illegal.
func (g *Game) Finish() {
	if g.over {
		return
	}
	g.over = true
	g.version++
}
