package engine

// PaletteEntry tracks how many units of one type a player may still deploy.
type PaletteEntry struct {
	Cost      int `json:"cost"`
	Remaining int `json:"remaining"`
	Starting  int `json:"starting"`
}

// Player holds one side's resources.
type Player struct {
	Color   Color
	Warp    int
	Palette map[UnitType]*PaletteEntry
	// Flipped players see every template mirrored on the Y axis.
	Flipped bool
}

func newPlayer(c Color, warp int) *Player {
	return &Player{
		Color:   c,
		Warp:    warp,
		Palette: make(map[UnitType]*PaletteEntry),
		Flipped: c == Black,
	}
}

// CanAfford reports whether the player has an entry for t with units left and
// enough warp to pay for one.
func (p *Player) CanAfford(t UnitType) bool {
	entry, ok := p.Palette[t]
	return ok && entry.Remaining > 0 && entry.Cost <= p.Warp
}

func (p *Player) spend(t UnitType) {
	entry := p.Palette[t]
	entry.Remaining--
	p.Warp -= entry.Cost
}
