package slotmask

// Preferences holds one professor's weekly slot preferences as two disjoint
// masks. A slot is never in both sets at once: setting it in one clears it
// from the other. Like Mask, Preferences is an immutable value.
type Preferences struct {
	Grid      Grid
	Preferred Mask
	Blocked   Mask
}

func NewPreferences(grid Grid) Preferences {
	return Preferences{Grid: grid}
}

// SetPreferred marks or unmarks (day, period) as preferred. Marking also
// removes the slot from the blocked set.
func (p Preferences) SetPreferred(day, period int, on bool) (Preferences, error) {
	bit, err := p.Grid.Bit(day, period)
	if err != nil {
		return p, err
	}
	p.Preferred = p.Preferred.SetTo(bit, on)
	if on {
		p.Blocked = p.Blocked.Clear(bit)
	}
	return p, nil
}

// SetBlocked marks or unmarks (day, period) as blocked. Marking also removes
// the slot from the preferred set.
func (p Preferences) SetBlocked(day, period int, on bool) (Preferences, error) {
	bit, err := p.Grid.Bit(day, period)
	if err != nil {
		return p, err
	}
	p.Blocked = p.Blocked.SetTo(bit, on)
	if on {
		p.Preferred = p.Preferred.Clear(bit)
	}
	return p, nil
}

func (p Preferences) IsPreferred(day, period int) (bool, error) {
	bit, err := p.Grid.Bit(day, period)
	if err != nil {
		return false, err
	}
	return p.Preferred.IsSet(bit), nil
}

func (p Preferences) IsBlocked(day, period int) (bool, error) {
	bit, err := p.Grid.Bit(day, period)
	if err != nil {
		return false, err
	}
	return p.Blocked.IsSet(bit), nil
}

// ClearAll resets both sets to the empty mask.
func (p Preferences) ClearAll() Preferences {
	p.Preferred = Mask{}
	p.Blocked = Mask{}
	return p
}

func (p Preferences) HasAnyPreferred() bool {
	return !p.Preferred.IsEmpty()
}

func (p Preferences) HasAnyBlocked() bool {
	return !p.Blocked.IsEmpty()
}
