package slotmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferredAndBlockedAreMutuallyExclusive(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)

	t.Run("preferred then blocked", func(t *testing.T) {
		// Act
		prefs := NewPreferences(grid)
		prefs, err := prefs.SetPreferred(2, 3, true)
		assert.Nil(t, err)
		prefs, err = prefs.SetBlocked(2, 3, true)
		assert.Nil(t, err)

		// Assert
		preferred, _ := prefs.IsPreferred(2, 3)
		blocked, _ := prefs.IsBlocked(2, 3)
		assert.False(t, preferred)
		assert.True(t, blocked)
		assert.False(t, prefs.Preferred.Intersects(prefs.Blocked))
	})

	t.Run("blocked then preferred", func(t *testing.T) {
		// Act
		prefs := NewPreferences(grid)
		prefs, err := prefs.SetBlocked(2, 3, true)
		assert.Nil(t, err)
		prefs, err = prefs.SetPreferred(2, 3, true)
		assert.Nil(t, err)

		// Assert
		preferred, _ := prefs.IsPreferred(2, 3)
		blocked, _ := prefs.IsBlocked(2, 3)
		assert.True(t, preferred)
		assert.False(t, blocked)
		assert.False(t, prefs.Preferred.Intersects(prefs.Blocked))
	})
}

func TestMutualExclusivityAcrossWholeGrid(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)
	prefs := NewPreferences(grid)

	// Act: mark everything preferred, then block every other slot
	for day := 0; day < grid.CycleDays; day++ {
		for period := 0; period < grid.PeriodsPerDay; period++ {
			prefs, err = prefs.SetPreferred(day, period, true)
			assert.Nil(t, err)
		}
	}
	for day := 0; day < grid.CycleDays; day++ {
		for period := 0; period < grid.PeriodsPerDay; period += 2 {
			prefs, err = prefs.SetBlocked(day, period, true)
			assert.Nil(t, err)
		}
	}

	// Assert
	assert.False(t, prefs.Preferred.Intersects(prefs.Blocked))
	assert.True(t, prefs.HasAnyPreferred())
	assert.True(t, prefs.HasAnyBlocked())
}

func TestSetPreferredIsIdempotent(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)

	// Act
	once, err := NewPreferences(grid).SetPreferred(1, 4, true)
	assert.Nil(t, err)
	twice, err := once.SetPreferred(1, 4, true)
	assert.Nil(t, err)

	// Assert
	assert.Equal(t, once.Preferred.String(), twice.Preferred.String())
	assert.Equal(t, once.Blocked.String(), twice.Blocked.String())
}

func TestUnsetSlotCanBeMarkedDirectly(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)

	// Act: the slot is in neither set beforehand
	prefs, err := NewPreferences(grid).SetBlocked(0, 0, true)

	// Assert
	assert.Nil(t, err)
	blocked, _ := prefs.IsBlocked(0, 0)
	assert.True(t, blocked)
}

func TestClearAllResetsBothMasks(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)
	prefs, _ := NewPreferences(grid).SetPreferred(0, 1, true)
	prefs, _ = prefs.SetBlocked(4, 7, true)

	// Act
	prefs = prefs.ClearAll()

	// Assert
	assert.False(t, prefs.HasAnyPreferred())
	assert.False(t, prefs.HasAnyBlocked())
	assert.Equal(t, "0", prefs.Preferred.String())
	assert.Equal(t, "0", prefs.Blocked.String())
}

func TestPreferencesRejectOutOfRangeSlots(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)
	prefs := NewPreferences(grid)

	// Act
	_, err = prefs.SetPreferred(5, 0, true)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidSlot)

	// Act
	_, err = prefs.SetBlocked(0, 8, true)

	// Assert
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestLargestGridStaysExact(t *testing.T) {
	// Arrange: 30x12 needs 360 bits
	grid, err := NewGrid(30, 12)
	assert.Nil(t, err)

	// Act
	prefs, err := NewPreferences(grid).SetPreferred(29, 11, true)
	assert.Nil(t, err)

	// Assert
	bit, err := grid.Bit(29, 11)
	assert.Nil(t, err)
	assert.Equal(t, 359, bit)
	assert.True(t, prefs.Preferred.IsSet(359))

	decoded, err := ParseMask(prefs.Preferred.String())
	assert.Nil(t, err)
	assert.True(t, decoded.IsSet(359))
}
