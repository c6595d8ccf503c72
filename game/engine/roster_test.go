package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoster(t *testing.T) {
	r := DefaultRoster(10, 10)
	require.Len(t, r, 13)

	tests := []struct {
		unit    UnitType
		cost    int
		offsets int
	}{
		{Warpling, 0, 4},
		{King, 0, 8},
		{Knight, 3, 8},
		{Rook, 5, 40},
		{Bishop, 3, 40},
		{Queen, 9, 80},
		{GoldGeneral, 4, 6},
		{SilverGeneral, 2, 5},
		{Lance, 2, 10},
		{Pawn, 0, 1},
		{PromotedRook, 7, 44},
		{PromotedBishop, 6, 44},
		{Barrier, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			tmpl, err := r.Template(tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.unit, tmpl.Type)
			assert.Equal(t, tt.unit.String(), tmpl.Name)
			assert.Equal(t, tt.cost, tmpl.Cost)
			assert.Len(t, tmpl.Offsets(), tt.offsets)

			origin, ok := tmpl.Movement.Node(tmpl.Origin)
			require.True(t, ok)
			assert.Equal(t, 0, origin.X)
			assert.Equal(t, 0, origin.Y)
		})
	}

	assert.True(t, r[King].HasAbility("barrier"))
	assert.False(t, r[Queen].HasAbility("barrier"))
	assert.True(t, r[Barrier].Obstruction)
	assert.False(t, r[Rook].Obstruction)

	_, err := r.Template(UnitType(14))
	assert.ErrorIs(t, err, ErrUnknownUnitType)
	assert.Equal(t, Warpling, r.Types()[0])
	assert.Equal(t, Barrier, r.Types()[12])
}

func TestDefaultRoster_ReachFollowsBoard(t *testing.T) {
	r := DefaultRoster(6, 12)
	assert.Len(t, r[Rook].Offsets(), 48)
	assert.Len(t, r[Lance].Offsets(), 12)
}

func TestDefaultRoster_QueenWiring(t *testing.T) {
	q := DefaultRoster(10, 10)[Queen]
	g := q.Movement

	step, ok := g.FindNodeByPosition(1, 0)
	require.True(t, ok)
	corner, ok := g.FindNodeByPosition(1, 1)
	require.True(t, ok)
	far, ok := g.FindNodeByPosition(2, 0)
	require.True(t, ok)

	// orthogonal squares never share a diagonal edge
	assert.True(t, g.AreNeighbours(step, corner))
	assert.False(t, g.AreNeighbours(corner, far))
}

func TestRenderEnvelope(t *testing.T) {
	r := DefaultRoster(10, 10)
	assert.Equal(t, "*.*\n.o.\n*.*\n", RenderEnvelope(r[Bishop], 1))
	assert.Equal(t, ".*.\n*o*\n.*.\n", RenderEnvelope(r[Warpling], 1))
	assert.Equal(t, "...\n.o.\n...\n", RenderEnvelope(r[Barrier], 1))
}

func TestTemplatesAreNotSharedBetweenUnits(t *testing.T) {
	g := newTestGame(t)
	a := deploy(t, g, Warpling, White, 1, 1)
	b := deploy(t, g, Warpling, Black, 8, 8)

	ua, _ := g.Unit(a)
	ub, _ := g.Unit(b)
	assert.NotSame(t, ua.Movement(), ub.Movement())
	assert.Same(t, ua.Template(), ub.Template())

	origin, ok := g.Roster()[Warpling].Movement.Node(g.Roster()[Warpling].Origin)
	require.True(t, ok)
	assert.Equal(t, 0, origin.X)

	n, ok := ub.Movement().Node(ub.Origin())
	require.True(t, ok)
	assert.Equal(t, 8, n.X)
	assert.Equal(t, 8, n.Y)
}
