package engine

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "engine_test"
	config.Description = "Configuration for engine tests"
	return config
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := NewGame(createTestConfig())
	require.NoError(t, err)
	return g
}

// deploy places a unit with rules off and returns its ID.
func deploy(t *testing.T, g *Game, ut UnitType, c Color, x, y int) UnitID {
	t.Helper()
	ok, err := g.Deploy(ut, c, x, y, false)
	require.NoError(t, err)
	require.True(t, ok, "deploy %s at (%d,%d)", ut, x, y)
	u, found := g.UnitAt(x, y)
	require.True(t, found)
	return u.ID
}

func TestNewGame(t *testing.T) {
	g := newTestGame(t)

	assert.Equal(t, 1, g.Turn())
	assert.Equal(t, White, g.ActiveColor())
	assert.Equal(t, MovePhase, g.Phase())
	assert.Equal(t, int64(0), g.Version())
	assert.False(t, g.IsOver())
	assert.Empty(t, g.Units())
	assert.Equal(t, 100, countTiles(g.Board(), TileEmpty))

	white, black := g.Player(White), g.Player(Black)
	require.NotNil(t, white)
	require.NotNil(t, black)
	assert.False(t, white.Flipped)
	assert.True(t, black.Flipped)
	assert.Equal(t, 0, white.Warp)
	assert.Equal(t, &PaletteEntry{Cost: 9, Remaining: 1, Starting: 1}, white.Palette[Queen])
	assert.Nil(t, g.Player(Color(7)))
}

func TestNewGame_NilConfigUsesDefault(t *testing.T) {
	g, err := NewGame(nil)
	require.NoError(t, err)
	assert.Equal(t, "classic", g.Config().Name)
	assert.Equal(t, DefaultBoardLength, g.Board().Length)
}

func TestNewGame_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.BoardLength = 1
	_, err := NewGame(config)
	assert.Error(t, err)
}

func TestNewGame_StartingSetup(t *testing.T) {
	config := createTestConfig()
	config.Obstructions = []Position{{X: 4, Y: 4}, {X: 5, Y: 5}}
	config.StartingUnits = []UnitPlacement{
		{Type: "king", Color: White, X: 4, Y: 0},
		{Type: "king", Color: Black, X: 5, Y: 9},
	}

	g, err := NewGame(config)
	require.NoError(t, err)

	assert.Equal(t, int64(0), g.Version())
	assert.Equal(t, 2, g.DeployedCount())
	assert.Equal(t, TileObstruction, g.TileAt(4, 4))
	assert.Equal(t, TileWhite, g.TileAt(4, 0))
	assert.Equal(t, TileBlack, g.TileAt(5, 9))

	units := g.Units()
	require.Len(t, units, 2)
	assert.Equal(t, UnitID(1), units[0].ID)
	assert.Equal(t, King, units[0].Type)
	assert.Equal(t, Black, units[1].Color)
}

func TestNewGame_ConfigAbilities(t *testing.T) {
	config := createTestConfig()
	config.Abilities = map[string][]string{"warpling": {"barrier", "wall"}}

	g, err := NewGame(config)
	require.NoError(t, err)

	tmpl, err := g.Roster().Template(Warpling)
	require.NoError(t, err)
	assert.Equal(t, []string{"barrier", "wall"}, tmpl.Abilities)

	// other games keep the default roster
	other := newTestGame(t)
	assert.Empty(t, other.Roster()[Warpling].Abilities)
}

// Two warplings meet in the middle of the board and Black captures.
func TestEngine_CaptureScenario(t *testing.T) {
	g := newTestGame(t)

	white := deploy(t, g, Warpling, White, 5, 5)
	black := deploy(t, g, Warpling, Black, 6, 6)
	assert.Equal(t, UnitID(1), white)
	assert.Equal(t, UnitID(2), black)
	assert.Equal(t, int64(2), g.Version())

	ok, err := g.Move(black, 6, 6)
	require.NoError(t, err)
	assert.False(t, ok, "black may not move on white's turn")

	ok, err = g.MoveIsLegal(white, 6, 6)
	require.NoError(t, err)
	assert.False(t, ok, "warplings do not move diagonally")

	ok, err = g.Move(white, 5, 6)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, TileEmpty, g.TileAt(5, 5))
	assert.Equal(t, TileWhite, g.TileAt(5, 6))

	g.NextTurn()
	assert.Equal(t, Black, g.ActiveColor())

	ok, err = g.Move(black, 5, 6)
	require.NoError(t, err)
	require.True(t, ok)

	units := g.Units()
	require.Len(t, units, 1)
	assert.Equal(t, black, units[0].ID)
	assert.Equal(t, Position{X: 5, Y: 6}, units[0].Position())
	assert.Equal(t, TileBlack, g.TileAt(5, 6))
	assert.Equal(t, TileEmpty, g.TileAt(6, 6))

	_, err = g.Unit(white)
	assert.ErrorIs(t, err, ErrUnitNotFound)
	// move, turn, take and place each bump the version
	assert.Equal(t, int64(6), g.Version())
}

func TestEngine_NextTurn(t *testing.T) {
	g := newTestGame(t)

	g.NextTurn()
	assert.Equal(t, 2, g.Turn())
	assert.Equal(t, Black, g.ActiveColor())
	assert.Equal(t, 3, g.Player(Black).Warp)
	assert.Equal(t, 0, g.Player(White).Warp)

	g.NextTurn()
	assert.Equal(t, 3, g.Turn())
	assert.Equal(t, White, g.ActiveColor())
	assert.Equal(t, 3, g.Player(White).Warp)
	assert.Equal(t, int64(2), g.Version())
}

func TestEngine_NextPhase(t *testing.T) {
	g := newTestGame(t)

	want := []Phase{DeployPhase, CleanUpPhase, MovePhase, DeployPhase}
	for _, p := range want {
		g.NextPhase()
		assert.Equal(t, p, g.Phase())
	}
	assert.Equal(t, 1, g.Turn(), "phases do not advance the turn")
}

func TestEngine_Finish(t *testing.T) {
	g := newTestGame(t)
	id := deploy(t, g, Warpling, White, 4, 1)

	g.Finish()
	g.Finish()
	assert.True(t, g.IsOver())
	assert.Equal(t, int64(2), g.Version())

	ok, err := g.Move(id, 4, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Deploy(Warpling, White, 4, 0, true)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Deploy(Warpling, White, 4, 0, false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(2), g.Version())
}

func TestEngine_UnknownReferences(t *testing.T) {
	g := newTestGame(t)

	_, err := g.Move(42, 0, 0)
	assert.ErrorIs(t, err, ErrUnitNotFound)

	_, err = g.MoveIsLegal(42, 0, 0)
	assert.ErrorIs(t, err, ErrUnitNotFound)

	_, err = g.ListLegalMoves(42)
	assert.ErrorIs(t, err, ErrUnitNotFound)

	_, err = g.Deploy(UnitType(99), White, 0, 0, true)
	assert.ErrorIs(t, err, ErrUnknownUnitType)

	_, err = g.DeployIsLegal(UnitType(0), White, 0, 0)
	assert.ErrorIs(t, err, ErrUnknownUnitType)

	assert.Equal(t, int64(0), g.Version())
}

func TestEngine_UnitIDsAreNeverReused(t *testing.T) {
	g := newTestGame(t)

	first := deploy(t, g, Warpling, White, 0, 0)
	deploy(t, g, Warpling, Black, 0, 0) // captures the first
	third := deploy(t, g, Warpling, White, 1, 0)

	_, err := g.Unit(first)
	assert.ErrorIs(t, err, ErrUnitNotFound)
	assert.Equal(t, UnitID(3), third)
	assert.Equal(t, 3, g.DeployedCount())
	assert.Len(t, g.Units(), 2)
}

func TestEngine_Snapshot(t *testing.T) {
	g := newTestGame(t)
	id := deploy(t, g, Warpling, White, 0, 0)
	deploy(t, g, Warpling, Black, 9, 9)

	s := g.Snapshot()
	assert.Equal(t, "engine_test", s.ConfigName)
	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, "move", s.Phase)
	assert.Equal(t, int64(2), s.Version)
	assert.Equal(t, 2, s.DeployedCount)
	require.Len(t, s.Players, 2)
	assert.True(t, s.Players[1].Flipped)
	assert.NotEmpty(t, s.Players[0].Palette)

	u, ok := s.UnitByID(id)
	require.True(t, ok)
	assert.ElementsMatch(t, []Position{{X: 1, Y: 0}, {X: 0, Y: 1}}, u.LegalMoves)

	// black is not active, so it has nowhere to go
	black, ok := s.UnitByID(2)
	require.True(t, ok)
	assert.Empty(t, black.LegalMoves)

	// the snapshot is detached from the game
	s.Board[0][0] = TileObstruction
	assert.Equal(t, TileWhite, g.TileAt(0, 0))

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"active_color":"white"`)
	assert.Contains(t, string(data), `"color":"black"`)
}

func TestRenderBoard(t *testing.T) {
	g := newTestGame(t)
	deploy(t, g, King, White, 0, 0)
	deploy(t, g, Rook, Black, 9, 9)
	deploy(t, g, Barrier, White, 5, 5)

	out := RenderBoard(g.Snapshot())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, " 9 .........r", lines[0])
	assert.Equal(t, " 4 ..........", lines[5])
	assert.Equal(t, " 0 K.........", lines[9])
	assert.Equal(t, "   0123456789", lines[10])
	assert.Contains(t, lines[4], "#")
}
