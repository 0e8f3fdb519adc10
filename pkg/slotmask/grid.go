package slotmask

import (
	"errors"
	"fmt"
)

const (
	MaxCycleDays     = 30
	MaxPeriodsPerDay = 12
)

var ErrInvalidSlot = errors.New("slot is outside the schedule grid")

// Slot addresses a single (day, period) cell of the weekly schedule grid.
type Slot struct {
	Day    int `json:"day" mapstructure:"day"`
	Period int `json:"period" mapstructure:"period"`
}

func (s Slot) String() string {
	return fmt.Sprintf("(day %v, period %v)", s.Day, s.Period)
}

// Grid bounds the dimensions of the schedule cycle. Bit positions of every
// mask derived from a grid are day-major: day*PeriodsPerDay + period.
type Grid struct {
	CycleDays     int
	PeriodsPerDay int
}

func NewGrid(cycleDays, periodsPerDay int) (Grid, error) {
	if cycleDays < 1 || cycleDays > MaxCycleDays {
		return Grid{}, fmt.Errorf("cycleDays must be between 1 and %v: %v", MaxCycleDays, cycleDays)
	}
	if periodsPerDay < 1 || periodsPerDay > MaxPeriodsPerDay {
		return Grid{}, fmt.Errorf("periodsPerDay must be between 1 and %v: %v", MaxPeriodsPerDay, periodsPerDay)
	}
	return Grid{CycleDays: cycleDays, PeriodsPerDay: periodsPerDay}, nil
}

// Slots returns the total number of cells, which is also the mask width in bits.
func (g Grid) Slots() int {
	return g.CycleDays * g.PeriodsPerDay
}

func (g Grid) Contains(slot Slot) bool {
	return slot.Day >= 0 && slot.Day < g.CycleDays &&
		slot.Period >= 0 && slot.Period < g.PeriodsPerDay
}

// Bit returns the mask bit position of (day, period). Out-of-range input is
// a caller error, never clamped.
func (g Grid) Bit(day, period int) (int, error) {
	if !g.Contains(Slot{Day: day, Period: period}) {
		return 0, fmt.Errorf("%w: (day %v, period %v) on a %vx%v grid",
			ErrInvalidSlot, day, period, g.CycleDays, g.PeriodsPerDay)
	}
	return day*g.PeriodsPerDay + period, nil
}
