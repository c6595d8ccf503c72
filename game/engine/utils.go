package engine

import (
	"fmt"
	"strings"
)

// RenderBoard draws the board as text. Rows run from the highest y down, so
// White's home rows sit at the bottom. Units are shown by the first letter of
// their type, upper case for White and lower case for Black; '#' marks an
// obstruction.
func RenderBoard(s *State) string {
	glyphs := make(map[Position]byte, len(s.Units))
	for _, u := range s.Units {
		glyph := unitGlyph(u.Type)
		if u.Color == Black {
			glyph = strings.ToLower(glyph)
		}
		glyphs[Position{X: u.X, Y: u.Y}] = glyph[0]
	}

	var b strings.Builder
	for y := s.BoardHeight - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%2d ", y)
		for x := 0; x < s.BoardLength; x++ {
			c := byte('.')
			if g, ok := glyphs[Position{X: x, Y: y}]; ok {
				c = g
			} else if s.Board[y][x] == TileObstruction {
				c = '#'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	b.WriteString("   ")
	for x := 0; x < s.BoardLength; x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteByte('\n')
	return b.String()
}

func unitGlyph(t UnitType) string {
	switch t {
	case Warpling:
		return "W"
	case King:
		return "K"
	case Knight:
		return "N"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Queen:
		return "Q"
	case GoldGeneral:
		return "G"
	case SilverGeneral:
		return "S"
	case Lance:
		return "L"
	case Pawn:
		return "P"
	case PromotedRook:
		return "D"
	case PromotedBishop:
		return "H"
	case Barrier:
		return "#"
	default:
		return "?"
	}
}

// RenderEnvelope draws a template's movement envelope around its origin 'o'.
func RenderEnvelope(tmpl *UnitTemplate, radius int) string {
	marks := make(map[Position]bool)
	for _, p := range tmpl.Offsets() {
		marks[p] = true
	}
	var b strings.Builder
	for y := radius; y >= -radius; y-- {
		for x := -radius; x <= radius; x++ {
			switch {
			case x == 0 && y == 0:
				b.WriteByte('o')
			case marks[Position{X: x, Y: y}]:
				b.WriteByte('*')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
