package engine

import (
	"fmt"
	"slices"

	"github.com/wricardo/warpgame/game/graph"
)

// Roster maps every unit type to its template.
type Roster map[UnitType]*UnitTemplate

// Template returns the template for t.
func (r Roster) Template(t UnitType) (*UnitTemplate, error) {
	tmpl, ok := r[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnitType, int(t))
	}
	return tmpl, nil
}

// Types returns the roster's unit types in ascending order.
func (r Roster) Types() []UnitType {
	types := make([]UnitType, 0, len(r))
	for t := range r {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

var (
	orthogonalDirs = []Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalDirs   = []Position{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightOffsets  = []Position{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// DefaultRoster builds the standard unit table for a board of the given size.
// Sliding pieces get rays long enough to cross the whole board.
func DefaultRoster(length, height int) Roster {
	reach := max(length, height)

	r := Roster{}
	add := func(t UnitType, cost int, build func(g *graph.Graph, origin graph.NodeID)) *UnitTemplate {
		g := graph.New()
		origin := g.AddNode(0, 0)
		build(g, origin)
		tmpl := &UnitTemplate{Type: t, Name: t.String(), Cost: cost, Movement: g, Origin: origin}
		r[t] = tmpl
		return tmpl
	}

	add(Warpling, 0, func(g *graph.Graph, _ graph.NodeID) {
		addOffsets(g, orthogonalDirs)
		g.ConnectAdjacentNodes()
	})
	king := add(King, 0, func(g *graph.Graph, _ graph.NodeID) {
		addOffsets(g, orthogonalDirs)
		addOffsets(g, diagonalDirs)
		g.ConnectAdjacentNodes()
		g.ConnectDiagonalNodes()
	})
	king.Abilities = []string{"barrier"}

	add(Knight, 3, func(g *graph.Graph, origin graph.NodeID) {
		addOffsets(g, knightOffsets)
		connectAll(g, origin)
	})
	add(Rook, 5, func(g *graph.Graph, _ graph.NodeID) {
		addRays(g, orthogonalDirs, reach)
		g.ConnectAdjacentNodes()
	})
	add(Bishop, 3, func(g *graph.Graph, _ graph.NodeID) {
		addRays(g, diagonalDirs, reach)
		g.ConnectDiagonalNodes()
	})
	// Diagonal edges are laid before the orthogonal rays exist so that no
	// diagonal edge ever joins two orthogonal squares.
	add(Queen, 9, func(g *graph.Graph, _ graph.NodeID) {
		addRays(g, diagonalDirs, reach)
		g.ConnectDiagonalNodes()
		addRays(g, orthogonalDirs, reach)
		g.ConnectAdjacentNodes()
	})
	add(GoldGeneral, 4, func(g *graph.Graph, _ graph.NodeID) {
		addOffsets(g, []Position{{-1, 1}, {0, 1}, {1, 1}, {-1, 0}, {1, 0}, {0, -1}})
		g.ConnectAdjacentNodes()
		g.ConnectDiagonalNodes()
	})
	add(SilverGeneral, 2, func(g *graph.Graph, origin graph.NodeID) {
		addOffsets(g, []Position{{-1, 1}, {0, 1}, {1, 1}, {-1, -1}, {1, -1}})
		connectAll(g, origin)
	})
	add(Lance, 2, func(g *graph.Graph, _ graph.NodeID) {
		addRays(g, []Position{{0, 1}}, height)
		g.ConnectAdjacentNodes()
	})
	add(Pawn, 0, func(g *graph.Graph, _ graph.NodeID) {
		addOffsets(g, []Position{{0, 1}})
		g.ConnectAdjacentNodes()
	})
	// Step moves hang off the origin directly; a grid wiring would join them
	// to the rays and open paths around blockers.
	add(PromotedRook, 7, func(g *graph.Graph, origin graph.NodeID) {
		addRays(g, orthogonalDirs, reach)
		g.ConnectAdjacentNodes()
		for _, id := range addOffsets(g, diagonalDirs) {
			mustConnect(g, origin, id)
		}
	})
	add(PromotedBishop, 6, func(g *graph.Graph, origin graph.NodeID) {
		addRays(g, diagonalDirs, reach)
		g.ConnectDiagonalNodes()
		for _, id := range addOffsets(g, orthogonalDirs) {
			mustConnect(g, origin, id)
		}
	})
	barrier := add(Barrier, 0, func(*graph.Graph, graph.NodeID) {})
	barrier.Obstruction = true

	return r
}

func addOffsets(g *graph.Graph, offsets []Position) []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(offsets))
	for _, p := range offsets {
		ids = append(ids, g.AddNode(p.X, p.Y))
	}
	return ids
}

func addRays(g *graph.Graph, dirs []Position, reach int) {
	for _, d := range dirs {
		for k := 1; k <= reach; k++ {
			g.AddNode(d.X*k, d.Y*k)
		}
	}
}

// connectAll and mustConnect only ever see IDs the builder just created.
func connectAll(g *graph.Graph, origin graph.NodeID) {
	if err := g.ConnectAllTo(origin); err != nil {
		panic(err)
	}
}

func mustConnect(g *graph.Graph, a, b graph.NodeID) {
	if err := g.Connect(a, b, graph.DefaultWeight, false); err != nil {
		panic(err)
	}
}
