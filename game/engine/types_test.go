package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileConstants(t *testing.T) {
	assert.Equal(t, Tile(-1), TileEmpty)
	assert.Equal(t, Tile(0), TileWhite)
	assert.Equal(t, Tile(1), TileBlack)
	assert.Equal(t, Tile(2), TileObstruction)
	assert.Equal(t, TileWhite, White.Tile())
	assert.Equal(t, TileBlack, Black.Tile())
}

func TestColor(t *testing.T) {
	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, White, Black.Opponent())
	assert.False(t, Color(2).Valid())

	for _, in := range []string{"white", "WHITE", " 0 "} {
		c, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, White, c)
	}
	_, err := ParseColor("red")
	assert.Error(t, err)
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(map[string]Color{"c": Black})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"black"}`, string(data))

	var decoded struct {
		C Color `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"c":"white"}`), &decoded))
	assert.Equal(t, White, decoded.C)

	assert.Error(t, json.Unmarshal([]byte(`{"c":"blue"}`), &decoded))

	_, err = json.Marshal(struct{ C Color }{Color(9)})
	assert.Error(t, err)
}

func TestParseUnitType(t *testing.T) {
	tests := []struct {
		in   string
		want UnitType
	}{
		{"warpling", Warpling},
		{"Gold General", GoldGeneral},
		{"silver-general", SilverGeneral},
		{"promoted_bishop", PromotedBishop},
		{" ROOK ", Rook},
		{"barrier", Barrier},
	}
	for _, tt := range tests {
		got, err := ParseUnitType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseUnitType("dragon")
	assert.ErrorIs(t, err, ErrUnknownUnitType)
}

func TestUnitTypeString(t *testing.T) {
	assert.Equal(t, "warpling", Warpling.String())
	assert.Equal(t, "promoted_rook", PromotedRook.String())
	assert.Equal(t, "unit_type(42)", UnitType(42).String())

	for t2, name := range unitTypeNames {
		parsed, err := ParseUnitType(name)
		require.NoError(t, err)
		assert.Equal(t, t2, parsed)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "move", MovePhase.String())
	assert.Equal(t, "deploy", DeployPhase.String())
	assert.Equal(t, "clean_up", CleanUpPhase.String())
	assert.Equal(t, "phase(7)", Phase(7).String())
}

func TestBoard(t *testing.T) {
	b := NewBoard(4, 3)
	assert.True(t, b.InBounds(3, 2))
	assert.False(t, b.InBounds(4, 0))
	assert.False(t, b.InBounds(0, -1))
	assert.Equal(t, TileObstruction, b.At(-1, 0))

	b.Set(1, 2, TileBlack)
	b.Set(9, 9, TileWhite)
	assert.Equal(t, TileBlack, b.At(1, 2))
	assert.Equal(t, 11, countTiles(b, TileEmpty))

	tiles := b.Tiles()
	require.Len(t, tiles, 3)
	assert.Len(t, tiles[0], 4)
	assert.Equal(t, TileBlack, tiles[2][1])
}

// countTiles returns how many of b's tiles hold t.
func countTiles(b *Board, t Tile) int {
	n := 0
	for _, row := range b.Tiles() {
		for _, tile := range row {
			if tile == t {
				n++
			}
		}
	}
	return n
}
