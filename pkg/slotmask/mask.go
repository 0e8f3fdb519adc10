package slotmask

import (
	"fmt"
	"math/big"
)

// Mask is an arbitrary-precision set of slots encoded by bit position. The
// zero value is the empty mask. Masks are immutable: every update returns a
// new value, so they can be shared freely.
//
// The wire encoding is the base-10 decimal string of the underlying integer
// ("0" when empty). Grids can reach 30x12 = 360 bits, well past what a
// float64 round-trip preserves, hence big.Int rather than native integers.
type Mask struct {
	bits *big.Int
}

func ParseMask(s string) (Mask, error) {
	bits, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Mask{}, fmt.Errorf("mask must be a base-10 integer: %q", s)
	}
	if bits.Sign() < 0 {
		return Mask{}, fmt.Errorf("mask must not be negative: %q", s)
	}
	return Mask{bits: bits}, nil
}

func (m Mask) big() *big.Int {
	if m.bits == nil {
		return new(big.Int)
	}
	return m.bits
}

func (m Mask) IsSet(index int) bool {
	if index < 0 || m.bits == nil {
		return false
	}
	return m.bits.Bit(index) == 1
}

// SetTo returns a copy of the mask with bit index set or cleared. Negative
// indices are rejected upstream by Grid.Bit; here they simply return the
// mask unchanged.
func (m Mask) SetTo(index int, on bool) Mask {
	if index < 0 {
		return m
	}
	bit := uint(0)
	if on {
		bit = 1
	}
	return Mask{bits: new(big.Int).SetBit(m.big(), index, bit)}
}

func (m Mask) Set(index int) Mask {
	return m.SetTo(index, true)
}

func (m Mask) Clear(index int) Mask {
	return m.SetTo(index, false)
}

func (m Mask) IsEmpty() bool {
	return m.bits == nil || m.bits.Sign() == 0
}

// Intersects reports whether the two masks share any slot.
func (m Mask) Intersects(other Mask) bool {
	return new(big.Int).And(m.big(), other.big()).Sign() != 0
}

func (m Mask) Equal(other Mask) bool {
	return m.big().Cmp(other.big()) == 0
}

func (m Mask) String() string {
	return m.big().Text(10)
}

func (m Mask) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mask) UnmarshalText(text []byte) error {
	parsed, err := ParseMask(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
