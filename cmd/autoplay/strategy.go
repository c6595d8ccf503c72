package main

import (
	"math/rand/v2"

	"github.com/wricardo/warpgame/game/engine"
)

// Greedy plays one ply at a time for whichever side is active: capture when
// it can, otherwise close the distance to the nearest enemy, then spend warp
// on the most expensive unit it can afford.
type Greedy struct {
	rng *rand.Rand
	// zone is the ruleset's start zone height; zero means the whole board.
	zone int
}

func NewGreedy(seed uint64, zone int) *Greedy {
	return &Greedy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), zone: zone}
}

type moveChoice struct {
	Unit    engine.UnitID
	To      engine.Position
	Capture bool
}

// ChooseMove picks a move for the active color. ok is false when none of its
// units can move.
func (g *Greedy) ChooseMove(s *engine.State) (moveChoice, bool) {
	var enemies []engine.UnitState
	for _, u := range s.Units {
		if u.Color != s.ActiveColor && u.Type != engine.Barrier {
			enemies = append(enemies, u)
		}
	}

	var best []moveChoice
	bestScore := 0
	for _, u := range s.Units {
		if u.Color != s.ActiveColor {
			continue
		}
		for _, p := range u.LegalMoves {
			score, capture := g.scoreMove(s, u, p, enemies)
			choice := moveChoice{Unit: u.ID, To: p, Capture: capture}
			switch {
			case len(best) == 0 || score > bestScore:
				best, bestScore = []moveChoice{choice}, score
			case score == bestScore:
				best = append(best, choice)
			}
		}
	}
	if len(best) == 0 {
		return moveChoice{}, false
	}
	return best[g.rng.IntN(len(best))], true
}

func (g *Greedy) scoreMove(s *engine.State, u engine.UnitState, p engine.Position, enemies []engine.UnitState) (int, bool) {
	if tile := s.Board[p.Y][p.X]; tile == s.ActiveColor.Opponent().Tile() {
		// kings first
		bonus := 0
		if target := unitAt(s, p); target != nil && target.Type == engine.King {
			bonus = 100
		}
		return 1000 + bonus, true
	}
	if len(enemies) == 0 {
		return forward(s.ActiveColor, p.Y) - forward(s.ActiveColor, u.Y), false
	}
	return nearest(u.X, u.Y, enemies) - nearest(p.X, p.Y, enemies), false
}

type deployChoice struct {
	Type string
	At   engine.Position
}

// ChooseDeploy picks the most expensive affordable palette entry and an empty
// square in the active color's start zone.
func (g *Greedy) ChooseDeploy(s *engine.State) (deployChoice, bool) {
	player := s.Players[s.ActiveColor]

	var names []string
	bestCost := -1
	for _, entry := range player.Palette {
		if entry.Remaining == 0 || entry.Cost > player.Warp {
			continue
		}
		switch {
		case entry.Cost > bestCost:
			names, bestCost = []string{entry.Name}, entry.Cost
		case entry.Cost == bestCost:
			names = append(names, entry.Name)
		}
	}
	if len(names) == 0 {
		return deployChoice{}, false
	}

	var squares []engine.Position
	for y := range s.BoardHeight {
		if !g.inZone(s, y) {
			continue
		}
		for x := range s.BoardLength {
			if s.Board[y][x] == engine.TileEmpty {
				squares = append(squares, engine.Position{X: x, Y: y})
			}
		}
	}
	if len(squares) == 0 {
		return deployChoice{}, false
	}

	return deployChoice{
		Type: names[g.rng.IntN(len(names))],
		At:   squares[g.rng.IntN(len(squares))],
	}, true
}

func (g *Greedy) inZone(s *engine.State, y int) bool {
	zone := g.zone
	if zone == 0 {
		zone = s.BoardHeight / 2
	}
	if s.ActiveColor == engine.White {
		return y < zone
	}
	return y >= s.BoardHeight-zone
}

// Eliminated returns the side that has no units left and nothing it could
// still deploy. ok is false while both sides are in the game.
func Eliminated(s *engine.State) (engine.Color, bool) {
	for _, c := range []engine.Color{engine.White, engine.Black} {
		alive := false
		for _, u := range s.Units {
			if u.Color == c && u.Type != engine.Barrier {
				alive = true
				break
			}
		}
		if alive {
			continue
		}
		reserve := 0
		for _, entry := range s.Players[c].Palette {
			reserve += entry.Remaining
		}
		if reserve == 0 {
			return c, true
		}
	}
	return 0, false
}

func unitAt(s *engine.State, p engine.Position) *engine.UnitState {
	for i := range s.Units {
		if s.Units[i].X == p.X && s.Units[i].Y == p.Y {
			return &s.Units[i]
		}
	}
	return nil
}

func nearest(x, y int, units []engine.UnitState) int {
	best := -1
	for _, u := range units {
		d := abs(u.X-x) + abs(u.Y-y)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func forward(c engine.Color, y int) int {
	if c == engine.White {
		return y
	}
	return -y
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
