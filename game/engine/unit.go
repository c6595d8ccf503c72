package engine

import (
	"slices"

	"github.com/wricardo/warpgame/game/graph"
)

// UnitTemplate is the static description of a unit type. Movement is the
// canonical envelope relative to an origin at (0, 0), oriented for White.
type UnitTemplate struct {
	Type        UnitType
	Name        string
	Cost        int
	Movement    *graph.Graph
	Origin      graph.NodeID
	Abilities   []string
	Obstruction bool
}

// HasAbility reports whether units of this template may use the named ability.
func (t *UnitTemplate) HasAbility(name string) bool {
	return slices.Contains(t.Abilities, name)
}

// Offsets returns the envelope's squares relative to the origin, origin excluded.
func (t *UnitTemplate) Offsets() []Position {
	var out []Position
	for _, n := range t.Movement.Nodes() {
		if n.ID == t.Origin {
			continue
		}
		out = append(out, Position{X: n.X, Y: n.Y})
	}
	return out
}

// Unit is a piece on the board. Its movement graph is owned by the unit and
// always positioned so that the origin node sits on the unit's square.
type Unit struct {
	ID    UnitID
	Name  string
	Type  UnitType
	Color Color
	X     int
	Y     int

	template *UnitTemplate
	movement *graph.Graph
	origin   graph.NodeID
}

func newUnit(id UnitID, tmpl *UnitTemplate, c Color, flipped bool) *Unit {
	movement := tmpl.Movement.Copy()
	if flipped {
		movement.ReflectY()
	}
	return &Unit{
		ID:       id,
		Name:     tmpl.Name,
		Type:     tmpl.Type,
		Color:    c,
		template: tmpl,
		movement: movement,
		origin:   tmpl.Origin,
	}
}

// Position returns the unit's square.
func (u *Unit) Position() Position {
	return Position{X: u.X, Y: u.Y}
}

// Template returns the template the unit was deployed from.
func (u *Unit) Template() *UnitTemplate {
	return u.template
}

// Movement returns the unit's positioned movement graph.
func (u *Unit) Movement() *graph.Graph {
	return u.movement
}

// Origin returns the node of the movement graph the unit stands on.
func (u *Unit) Origin() graph.NodeID {
	return u.origin
}

func (u *Unit) at(x, y int) bool {
	return u.X == x && u.Y == y
}
