package protocol

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTickSize = errors.New("tick size must be positive")
	ErrNotOnTick       = errors.New("value is not a multiple of the tick size")
	ErrNotPositive     = errors.New("value must be positive")
	ErrOutOfRange      = errors.New("value exceeds the int64 tick range")
)

var maxTicks = decimal.NewFromInt(math.MaxInt64)

// TickSize converts between decimal strings on the wire and the integer
// ticks (or lots) the book stores.
type TickSize struct {
	size decimal.Decimal
}

// NewTickSize parses a tick size such as "0.01".
func NewTickSize(s string) (TickSize, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return TickSize{}, fmt.Errorf("tick size %q: %w", s, err)
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return TickSize{}, ErrInvalidTickSize
	}
	return TickSize{size: d}, nil
}

// UnitTick treats wire values as integer ticks already.
func UnitTick() TickSize {
	return TickSize{size: decimal.NewFromInt(1)}
}

func (t TickSize) String() string {
	return t.size.String()
}

// ToTicks parses s and returns how many ticks it spans. The value must be
// strictly positive, an exact multiple of the tick size and fit in an int64.
func (t TickSize) ToTicks(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%q: %w", s, ErrNotPositive)
	}

	q := d.Div(t.size)
	if !q.IsInteger() {
		return 0, fmt.Errorf("%q with tick %s: %w", s, t.size, ErrNotOnTick)
	}
	if q.GreaterThan(maxTicks) {
		return 0, fmt.Errorf("%q with tick %s: %w", s, t.size, ErrOutOfRange)
	}
	return q.IntPart(), nil
}

// FromTicks renders n ticks back to the wire form.
func (t TickSize) FromTicks(n int64) string {
	return decimal.NewFromInt(n).Mul(t.size).String()
}
