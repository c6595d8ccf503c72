package engine

// Board is a Length x Height grid of tiles indexed as tiles[y][x].
type Board struct {
	Length int
	Height int
	tiles  [][]Tile
}

// NewBoard returns a board with every tile empty.
func NewBoard(length, height int) *Board {
	tiles := make([][]Tile, height)
	for y := range tiles {
		row := make([]Tile, length)
		for x := range row {
			row[x] = TileEmpty
		}
		tiles[y] = row
	}
	return &Board{Length: length, Height: height, tiles: tiles}
}

// InBounds reports whether (x, y) is on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Length && y >= 0 && y < b.Height
}

// At returns the tile at (x, y). Off-board squares read as obstructions.
func (b *Board) At(x, y int) Tile {
	if !b.InBounds(x, y) {
		return TileObstruction
	}
	return b.tiles[y][x]
}

// Set overwrites the tile at (x, y). Off-board writes are ignored.
func (b *Board) Set(x, y int, t Tile) {
	if b.InBounds(x, y) {
		b.tiles[y][x] = t
	}
}

// Tiles returns a copy of the tile matrix.
func (b *Board) Tiles() [][]Tile {
	out := make([][]Tile, len(b.tiles))
	for y, row := range b.tiles {
		out[y] = append([]Tile(nil), row...)
	}
	return out
}
