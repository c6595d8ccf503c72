package script

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/warpgame/game/engine"
)

func newGame(t *testing.T, reg *engine.AbilityRegistry, abilities map[string][]string) *engine.Game {
	t.Helper()
	config := engine.DefaultGameConfig()
	config.Abilities = abilities
	g, err := engine.NewGame(config, engine.WithAbilities(reg))
	require.NoError(t, err)
	return g
}

func place(t *testing.T, g *engine.Game, ut engine.UnitType, c engine.Color, x, y int) *engine.Unit {
	t.Helper()
	ok, err := g.Deploy(ut, c, x, y, false)
	require.NoError(t, err)
	require.True(t, ok)
	u, found := g.UnitAt(x, y)
	require.True(t, found)
	return u
}

func TestNewAbility_CompileError(t *testing.T) {
	_, err := NewAbility("broken", []byte(`actions := [`), DefaultLimits)
	assert.ErrorContains(t, err, "compile ability broken")

	_, err = NewAbility("typo", []byte(`actions := [unknown_var]`), DefaultLimits)
	assert.Error(t, err)
}

func TestAbility_Deploy(t *testing.T) {
	a, err := NewAbility("drop", []byte(`
actions := [{op: "deploy", type: "pawn", x: args.x, y: args.y}]
`), DefaultLimits)
	require.NoError(t, err)

	reg := engine.NewAbilityRegistry()
	reg.Replace("drop", a)
	g := newGame(t, reg, map[string][]string{"king": {"drop"}})
	king := place(t, g, engine.King, engine.White, 4, 4)

	ok, err := g.UseAbility(king.ID, "drop", engine.Args{"x": 7, "y": 8})
	require.NoError(t, err)
	require.True(t, ok)

	pawn, found := g.UnitAt(7, 8)
	require.True(t, found)
	assert.Equal(t, engine.Pawn, pawn.Type)
	assert.Equal(t, engine.White, pawn.Color)
	// scripted deploys are free
	assert.Equal(t, 4, g.Player(engine.White).Palette[engine.Pawn].Remaining)
}

func TestAbility_Inputs(t *testing.T) {
	a, err := NewAbility("echo", []byte(`
actions := []
if caster.type == "rook" && caster.color == "black" && active_color == "black" &&
	board_length == 10 && board_height == 10 && board[caster.y][caster.x] == 1 && args.n == 2 {
	actions = [{op: "take", x: caster.x, y: caster.y}]
}
`), DefaultLimits)
	require.NoError(t, err)

	reg := engine.NewAbilityRegistry()
	reg.Replace("echo", a)
	g := newGame(t, reg, map[string][]string{"rook": {"echo"}})
	rook := place(t, g, engine.Rook, engine.Black, 2, 8)
	g.NextTurn()

	actions, err := a.Run(t.Context(), g, rook, engine.Args{"n": 2})
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "take", actions[0].Op)
	assert.Equal(t, 2, *actions[0].X)
	assert.Equal(t, 8, *actions[0].Y)

	ok, err := g.UseAbility(rook.ID, "echo", engine.Args{"n": 2})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, g.Units())
}

func TestAbility_NoActions(t *testing.T) {
	a, err := NewAbility("idle", []byte(`x := 1`), DefaultLimits)
	require.NoError(t, err)

	g := newGame(t, engine.NewAbilityRegistry(), nil)
	u := place(t, g, engine.King, engine.White, 0, 0)

	ok, err := a.Apply(g, u, engine.Args{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAbility_InvalidActions(t *testing.T) {
	g := newGame(t, engine.NewAbilityRegistry(), nil)
	u := place(t, g, engine.King, engine.White, 0, 0)

	tests := []struct {
		name string
		src  string
	}{
		{"unknown op", `actions := [{op: "explode", x: 1, y: 1}]`},
		{"missing coordinate", `actions := [{op: "take", x: 1}]`},
		{"deploy without type", `actions := [{op: "deploy", x: 1, y: 1}]`},
		{"not an array", `actions := "take everything"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAbility(tt.name, []byte(tt.src), DefaultLimits)
			require.NoError(t, err)
			before := g.Version()
			_, err = a.Apply(g, u, engine.Args{})
			assert.ErrorIs(t, err, ErrInvalidAction)
			assert.Equal(t, before, g.Version())
		})
	}

	a, err := NewAbility("dragon", []byte(`actions := [{op: "deploy", type: "dragon", x: 1, y: 1}]`), DefaultLimits)
	require.NoError(t, err)
	_, err = a.Apply(g, u, engine.Args{})
	assert.ErrorIs(t, err, engine.ErrUnknownUnitType)
}

func TestAbility_RejectedScriptChangesNothing(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown unit type", `actions := [{op: "take", x: 5, y: 9}, {op: "deploy", type: "dragon", x: 0, y: 0}]`, engine.ErrUnknownUnitType},
		{"off the board", `actions := [{op: "take", x: 5, y: 9}, {op: "deploy", type: "pawn", x: 10, y: 0}]`, engine.ErrInvalidArguments},
		{"negative square", `actions := [{op: "take", x: 5, y: 9}, {op: "take", x: -1, y: 3}]`, engine.ErrInvalidArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAbility("halfbad", []byte(tt.src), DefaultLimits)
			require.NoError(t, err)
			reg := engine.NewAbilityRegistry()
			reg.Replace("halfbad", a)
			g := newGame(t, reg, map[string][]string{"king": {"halfbad"}})
			king := place(t, g, engine.King, engine.White, 4, 0)
			place(t, g, engine.King, engine.Black, 5, 9)
			before := g.Version()

			ok, err := g.UseAbility(king.ID, "halfbad", nil)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrInvalidAction)
			assert.ErrorIs(t, err, tt.want)

			assert.Equal(t, before, g.Version())
			assert.Len(t, g.Units(), 2)
			target, found := g.UnitAt(5, 9)
			require.True(t, found)
			assert.Equal(t, engine.Black, target.Color)
		})
	}
}

func TestAbility_UnsupportedArgs(t *testing.T) {
	a, err := NewAbility("noop", []byte(`actions := []`), DefaultLimits)
	require.NoError(t, err)
	g := newGame(t, engine.NewAbilityRegistry(), nil)
	u := place(t, g, engine.King, engine.White, 0, 0)

	_, err = a.Apply(g, u, engine.Args{"ch": make(chan int)})
	assert.ErrorIs(t, err, engine.ErrInvalidArguments)
}

func TestAbility_Timeout(t *testing.T) {
	a, err := NewAbility("spin", []byte(`for {}`), Limits{Timeout: 20 * time.Millisecond})
	require.NoError(t, err)
	g := newGame(t, engine.NewAbilityRegistry(), nil)
	u := place(t, g, engine.King, engine.White, 0, 0)

	start := time.Now()
	_, err = a.Apply(g, u, engine.Args{})
	assert.ErrorContains(t, err, "run ability spin")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAbility_AllocationLimit(t *testing.T) {
	a, err := NewAbility("hog", []byte(`
s := []
for i := 0; i < 100000; i++ { s = append(s, [i]) }
`), Limits{Timeout: time.Second, MaxAllocs: 100})
	require.NoError(t, err)
	g := newGame(t, engine.NewAbilityRegistry(), nil)
	u := place(t, g, engine.King, engine.White, 0, 0)

	_, err = a.Apply(g, u, engine.Args{})
	assert.Error(t, err)
}

func loadShipped(t *testing.T, name string) *Ability {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "..", "scripts", "abilities", name+Extension))
	require.NoError(t, err)
	a, err := NewAbility(name, src, DefaultLimits)
	require.NoError(t, err)
	return a
}

func TestWallScript(t *testing.T) {
	reg := engine.NewAbilityRegistry()
	reg.Replace("wall", loadShipped(t, "wall"))
	g := newGame(t, reg, map[string][]string{"king": {"wall"}})

	white := place(t, g, engine.King, engine.White, 0, 2)
	place(t, g, engine.Pawn, engine.White, 1, 3)

	ok, err := g.UseAbility(white.ID, "wall", nil)
	require.NoError(t, err)
	require.True(t, ok)

	// x=-1 is off the board and (1,3) holds a friendly pawn
	assert.Equal(t, engine.TileObstruction, g.TileAt(0, 3))
	assert.Equal(t, engine.TileWhite, g.TileAt(1, 3))

	g.NextTurn()
	black := place(t, g, engine.King, engine.Black, 5, 8)
	ok, err = g.UseAbility(black.ID, "wall", engine.Args{"distance": 2})
	require.NoError(t, err)
	require.True(t, ok)
	for x := 4; x <= 6; x++ {
		assert.Equal(t, engine.TileObstruction, g.TileAt(x, 6), "x=%d", x)
		u, found := g.UnitAt(x, 6)
		require.True(t, found)
		assert.Equal(t, engine.Black, u.Color)
	}
}

func TestPurgeScript(t *testing.T) {
	reg := engine.NewAbilityRegistry()
	reg.Replace("purge", loadShipped(t, "purge"))
	g := newGame(t, reg, map[string][]string{"queen": {"purge"}})

	queen := place(t, g, engine.Queen, engine.White, 4, 4)
	place(t, g, engine.Pawn, engine.White, 4, 5)
	place(t, g, engine.Pawn, engine.Black, 3, 4)
	place(t, g, engine.Pawn, engine.Black, 5, 5)

	ok, err := g.UseAbility(queen.ID, "purge", nil)
	require.NoError(t, err)
	require.True(t, ok)

	units := g.Units()
	require.Len(t, units, 2)
	assert.Equal(t, queen.ID, units[0].ID)
	assert.Equal(t, engine.Position{X: 5, Y: 5}, units[1].Position())
}
