package engine

// UnitState is the serialisable view of a unit.
type UnitState struct {
	ID         UnitID     `json:"id"`
	Name       string     `json:"name"`
	Type       UnitType   `json:"type"`
	Color      Color      `json:"color"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Abilities  []string   `json:"abilities,omitempty"`
	LegalMoves []Position `json:"legal_moves"`
}

// PaletteState is the serialisable view of one palette entry.
type PaletteState struct {
	Type      UnitType `json:"type"`
	Name      string   `json:"name"`
	Cost      int      `json:"cost"`
	Remaining int      `json:"remaining"`
	Starting  int      `json:"starting"`
}

// PlayerState is the serialisable view of a player.
type PlayerState struct {
	Color   Color          `json:"color"`
	Warp    int            `json:"warp"`
	Flipped bool           `json:"flipped"`
	Palette []PaletteState `json:"palette"`
}

// State is a point-in-time snapshot of a game, safe to hand to other goroutines.
type State struct {
	ConfigName    string        `json:"config_name"`
	Turn          int           `json:"turn"`
	ActiveColor   Color         `json:"active_color"`
	Phase         string        `json:"phase"`
	Units         []UnitState   `json:"units"`
	Players       []PlayerState `json:"players"`
	DeployedCount int           `json:"deployed_count"`
	Version       int64         `json:"version"`
	Over          bool          `json:"over"`
	BoardLength   int           `json:"board_length"`
	BoardHeight   int           `json:"board_height"`
	Board         [][]Tile      `json:"board"`
}

// Snapshot captures the game's current state, including each unit's legal
// destinations.
func (g *Game) Snapshot() *State {
	s := &State{
		ConfigName:    g.config.Name,
		Turn:          g.turn,
		ActiveColor:   g.active,
		Phase:         g.phase.String(),
		Units:         make([]UnitState, 0, len(g.units)),
		DeployedCount: g.deployedCount,
		Version:       g.version,
		Over:          g.over,
		BoardLength:   g.board.Length,
		BoardHeight:   g.board.Height,
		Board:         g.board.Tiles(),
	}
	for _, u := range g.Units() {
		s.Units = append(s.Units, UnitState{
			ID:         u.ID,
			Name:       u.Name,
			Type:       u.Type,
			Color:      u.Color,
			X:          u.X,
			Y:          u.Y,
			Abilities:  append([]string(nil), u.template.Abilities...),
			LegalMoves: g.legalMoves(u),
		})
	}
	for _, p := range g.players {
		ps := PlayerState{Color: p.Color, Warp: p.Warp, Flipped: p.Flipped, Palette: []PaletteState{}}
		for _, t := range g.roster.Types() {
			entry, ok := p.Palette[t]
			if !ok {
				continue
			}
			ps.Palette = append(ps.Palette, PaletteState{
				Type:      t,
				Name:      t.String(),
				Cost:      entry.Cost,
				Remaining: entry.Remaining,
				Starting:  entry.Starting,
			})
		}
		s.Players = append(s.Players, ps)
	}
	return s
}

// UnitByID returns the unit with the given ID from the snapshot.
func (s *State) UnitByID(id UnitID) (UnitState, bool) {
	for _, u := range s.Units {
		if u.ID == id {
			return u, true
		}
	}
	return UnitState{}, false
}
