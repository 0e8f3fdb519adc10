package slotmask

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskZeroValue(t *testing.T) {
	// Arrange
	var mask Mask

	// Assert
	assert.True(t, mask.IsEmpty())
	assert.Equal(t, "0", mask.String())
	assert.False(t, mask.IsSet(0))
	assert.False(t, mask.IsSet(359))
}

func TestMaskSetAndClearAreImmutable(t *testing.T) {
	// Arrange
	var original Mask

	// Act
	updated := original.Set(13)
	cleared := updated.Clear(13)

	// Assert
	assert.False(t, original.IsSet(13))
	assert.True(t, updated.IsSet(13))
	assert.False(t, cleared.IsSet(13))
	assert.Equal(t, "0", original.String())
}

func TestMaskHighBitSurvivesDecimalRoundTrip(t *testing.T) {
	// Arrange: a 300-bit mask would lose precision through any float64 path
	mask := Mask{}.Set(299).Set(0)

	// Act
	encoded := mask.String()
	decoded, err := ParseMask(encoded)

	// Assert
	assert.Nil(t, err)
	assert.True(t, decoded.IsSet(299))
	assert.True(t, decoded.IsSet(0))
	assert.False(t, decoded.IsSet(150))
	assert.Equal(t, encoded, decoded.String())
}

func TestMaskWireEncodingForKnownSlot(t *testing.T) {
	// Arrange
	grid, err := NewGrid(5, 8)
	assert.Nil(t, err)

	// Act: preferred slot at (day 4, period 7) on a 5x8 grid is bit 39
	bit, err := grid.Bit(4, 7)
	assert.Nil(t, err)
	mask := Mask{}.Set(bit)

	// Assert: 2^39
	assert.Equal(t, "549755813888", mask.String())
}

func TestParseMaskRejectsGarbage(t *testing.T) {
	scenarios := []string{"", "abc", "-1", "0x10", "1.5"}

	for _, scenario := range scenarios {
		_, err := ParseMask(scenario)
		assert.NotNil(t, err, scenario)
	}
}

func TestMaskIntersects(t *testing.T) {
	// Arrange
	first := Mask{}.Set(3).Set(70)
	second := Mask{}.Set(70)
	third := Mask{}.Set(4)

	// Assert
	assert.True(t, first.Intersects(second))
	assert.False(t, first.Intersects(third))
	assert.False(t, Mask{}.Intersects(first))
}

func TestMaskTextRoundTrip(t *testing.T) {
	// Arrange
	mask := Mask{}.Set(39).Set(200)

	// Act
	text, err := mask.MarshalText()
	assert.Nil(t, err)

	var decoded Mask
	err = decoded.UnmarshalText(text)

	// Assert
	assert.Nil(t, err)
	assert.True(t, decoded.Equal(mask))
}
