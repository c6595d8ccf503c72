package engine

import "github.com/wricardo/warpgame/game/graph"

// MoveIsLegal reports whether unit id may move to (x, y).
func (g *Game) MoveIsLegal(id UnitID, x, y int) (bool, error) {
	u, err := g.Unit(id)
	if err != nil {
		return false, err
	}
	return g.moveIsLegal(u, x, y), nil
}

// moveIsLegal accepts a destination when it is on the board, not held by a
// friendly unit or an obstruction, part of the unit's envelope, and when some
// node of its neighbourhood can be reached from the unit's square. The
// destination itself is usually blocked when it holds an enemy, so reaching a
// neighbour is what makes a capture legal.
func (g *Game) moveIsLegal(u *Unit, x, y int) bool {
	if g.over || u.Color != g.active {
		return false
	}
	if !g.board.InBounds(x, y) || u.at(x, y) {
		return false
	}
	if tile := g.board.At(x, y); tile == u.Color.Tile() || tile == TileObstruction {
		return false
	}
	dest, ok := u.movement.FindNodeByPosition(x, y)
	if !ok {
		return false
	}

	costs := u.movement.Costs(u.origin)
	for _, id := range u.movement.Neighbourhood(dest) {
		if cost, ok := costs[id]; ok && cost < graph.Blocked {
			return true
		}
	}
	return false
}

// Move moves unit id to (x, y), capturing whatever stands there.
func (g *Game) Move(id UnitID, x, y int) (bool, error) {
	u, err := g.Unit(id)
	if err != nil {
		return false, err
	}
	if !g.moveIsLegal(u, x, y) {
		return false, nil
	}
	g.place(u, x, y, false)
	return true, nil
}

// ListLegalMoves returns every square unit id may move to, scanning the board
// row by row.
func (g *Game) ListLegalMoves(id UnitID) ([]Position, error) {
	u, err := g.Unit(id)
	if err != nil {
		return nil, err
	}
	return g.legalMoves(u), nil
}

func (g *Game) legalMoves(u *Unit) []Position {
	moves := []Position{}
	for y := 0; y < g.board.Height; y++ {
		for x := 0; x < g.board.Length; x++ {
			if g.moveIsLegal(u, x, y) {
				moves = append(moves, Position{X: x, Y: y})
			}
		}
	}
	return moves
}

// DeployIsLegal reports whether color c may deploy a unit of type t at (x, y)
// under the full rules.
func (g *Game) DeployIsLegal(t UnitType, c Color, x, y int) (bool, error) {
	if _, err := g.roster.Template(t); err != nil {
		return false, err
	}
	return g.deployIsLegal(t, c, x, y), nil
}

func (g *Game) deployIsLegal(t UnitType, c Color, x, y int) bool {
	if g.over || c != g.active {
		return false
	}
	if !g.board.InBounds(x, y) || g.board.At(x, y) != TileEmpty {
		return false
	}
	if !g.InStartZone(c, y) {
		return false
	}
	return g.players[c].CanAfford(t)
}

// InStartZone reports whether row y belongs to c's home rows. White's rows
// start at y=0, Black's end at the far edge. A zero zone height allows any row.
func (g *Game) InStartZone(c Color, y int) bool {
	zone := g.config.StartZoneHeight
	if zone == 0 {
		return true
	}
	if c == White {
		return y < zone
	}
	return y >= g.board.Height-zone
}

// Deploy puts a new unit of type t for color c on (x, y). With enforceRules
// the deploy must pass DeployIsLegal and is paid for from the palette and
// warp; without it only the bounds are checked and anything on the square is
// captured.
func (g *Game) Deploy(t UnitType, c Color, x, y int, enforceRules bool) (bool, error) {
	tmpl, err := g.roster.Template(t)
	if err != nil {
		return false, err
	}
	if enforceRules {
		if !g.deployIsLegal(t, c, x, y) {
			return false, nil
		}
		g.players[c].spend(t)
	} else if g.over || !c.Valid() || !g.board.InBounds(x, y) {
		return false, nil
	}

	g.deployedCount++
	u := newUnit(UnitID(g.deployedCount), tmpl, c, g.players[c].Flipped)
	g.units[u.ID] = u
	g.place(u, x, y, true)
	return true, nil
}

// place moves u onto (x, y), capturing any other unit there. A freshly
// deployed unit still has its envelope centred on (0, 0).
func (g *Game) place(u *Unit, x, y int, deploy bool) {
	g.take(x, y, u.ID)

	if deploy {
		u.movement.Translate(x, y)
	} else {
		g.board.Set(u.X, u.Y, TileEmpty)
		u.movement.Translate(x-u.X, y-u.Y)
	}

	tile := u.Color.Tile()
	if u.template.Obstruction {
		tile = TileObstruction
	}
	g.board.Set(x, y, tile)
	u.X, u.Y = x, y

	g.updateMovements()
	g.version++
}

// Take removes whatever unit stands on (x, y).
func (g *Game) Take(x, y int) bool {
	return g.take(x, y, 0)
}

func (g *Game) take(x, y int, except UnitID) bool {
	for id, u := range g.units {
		if id == except || !u.at(x, y) {
			continue
		}
		delete(g.units, id)
		g.board.Set(x, y, TileEmpty)
		g.updateMovements()
		g.version++
		return true
	}
	return false
}

// updateMovements re-derives every unit's blocked nodes from the board. All
// unblocking happens before any blocking because blocking a node also blocks
// the edges it shares with its neighbours.
func (g *Game) updateMovements() {
	for _, u := range g.units {
		nodes := u.movement.Nodes()
		for _, n := range nodes {
			if !g.board.InBounds(n.X, n.Y) {
				continue
			}
			if u.at(n.X, n.Y) || g.board.At(n.X, n.Y) == TileEmpty {
				u.movement.UnblockNode(n.ID)
			}
		}
		for _, n := range nodes {
			if !g.board.InBounds(n.X, n.Y) || (!u.at(n.X, n.Y) && g.board.At(n.X, n.Y) != TileEmpty) {
				u.movement.BlockNode(n.ID)
			}
		}
	}
}
