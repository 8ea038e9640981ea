// =============================
// File: internal/dex/curve/fixedpoint.go
// =============================
package curve

import "github.com/holiman/uint256"

// Rounding selects the direction of an integer division.
type Rounding int

const (
	// Floor rounds toward zero. Used for amounts paid out.
	Floor Rounding = iota
	// Ceil rounds away from zero. Used for amounts owed to the protocol.
	Ceil
)

func (r Rounding) String() string {
	if r == Ceil {
		return "ceil"
	}
	return "floor"
}

// MulDiv returns x*y/d rounded in the requested direction. The product is
// computed at full precision, so only a quotient above 2^256-1 overflows.
func MulDiv(x, y, d *uint256.Int, rounding Rounding) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}

	out, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	if rounding == Ceil && !new(uint256.Int).MulMod(x, y, d).IsZero() {
		if _, overflow := out.AddOverflow(out, uint256.NewInt(1)); overflow {
			return nil, ErrOverflow
		}
	}
	return out, nil
}

// Div returns x/d rounded in the requested direction.
func Div(x, d *uint256.Int, rounding Rounding) (*uint256.Int, error) {
	return MulDiv(x, uint256.NewInt(1), d, rounding)
}

// Wad is a fixed-point number with 18 decimals: the raw value 1e18 is 1.0.
type Wad struct {
	raw uint256.Int
}

// WadOne returns 1.0.
func WadOne() Wad {
	return Wad{raw: *wadUnit}
}

// NewWad wraps a raw 18-decimal value.
func NewWad(raw *uint256.Int) Wad {
	return Wad{raw: *raw}
}

// WadFromBps converts basis points into a Wad (100 bps == 0.01).
func WadFromBps(bps uint64) Wad {
	raw := new(uint256.Int).Mul(uint256.NewInt(bps), uint256.NewInt(100_000_000_000_000))
	return Wad{raw: *raw}
}

// Raw returns a copy of the underlying 18-decimal integer.
func (w Wad) Raw() *uint256.Int {
	return new(uint256.Int).Set(&w.raw)
}

// LessThanOne reports whether w < 1.0.
func (w Wad) LessThanOne() bool {
	return w.raw.Lt(wadUnit)
}

func (w Wad) IsZero() bool {
	return w.raw.IsZero()
}

// MulFloor returns floor(x * w).
func (w Wad) MulFloor(x *uint256.Int) (*uint256.Int, error) {
	return MulDiv(x, &w.raw, wadUnit, Floor)
}

// DivOnePlusFloor returns floor(x / (1 + w)).
func (w Wad) DivOnePlusFloor(x *uint256.Int) (*uint256.Int, error) {
	den, overflow := new(uint256.Int).AddOverflow(wadUnit, &w.raw)
	if overflow {
		return nil, ErrOverflow
	}
	return MulDiv(x, wadUnit, den, Floor)
}

// String renders w as a decimal fraction, e.g. "0.05".
func (w Wad) String() string {
	return FormatUnits(&w.raw, 18)
}
