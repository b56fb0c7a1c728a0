package orderbook

import (
	"fmt"
	"strings"

	"github.com/0x5487/orderbook/protocol"
	"github.com/rs/xid"
)

type Side = protocol.Side

const (
	Buy  Side = protocol.SideBuy
	Sell Side = protocol.SideSell
)

// Order is an immutable resting limit order. Price is in ticks, quantity in lots.
// A modification produces a new Order value; use WithQuantity.
type Order struct {
	id         string
	instrument string
	side       Side
	price      int64
	quantity   int64
}

// NewOrder validates its arguments and returns the order.
func NewOrder(id string, instrument string, side Side, price int64, quantity int64) (Order, error) {
	o := Order{
		id:         id,
		instrument: instrument,
		side:       side,
		price:      price,
		quantity:   quantity,
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// MustNewOrder is like NewOrder but panics on invalid input. Intended for tests and fixtures.
func MustNewOrder(id string, instrument string, side Side, price int64, quantity int64) Order {
	o, err := NewOrder(id, instrument, side, price, quantity)
	if err != nil {
		panic(err)
	}
	return o
}

// NewOrderID returns a globally unique, roughly time-sortable order id.
func NewOrderID() string {
	return xid.New().String()
}

func (o Order) ID() string         { return o.id }
func (o Order) Instrument() string { return o.instrument }
func (o Order) Side() Side         { return o.side }
func (o Order) Price() int64       { return o.price }
func (o Order) Quantity() int64    { return o.quantity }

// Volume is price * quantity.
func (o Order) Volume() int64 {
	return o.price * o.quantity
}

// BookKey returns the key of the side book this order rests in.
func (o Order) BookKey() string {
	return CompositeKey(o.instrument, o.side)
}

// WithQuantity returns a copy of o carrying the new quantity.
func (o Order) WithQuantity(quantity int64) (Order, error) {
	revised := o
	revised.quantity = quantity
	if err := revised.validate(); err != nil {
		return Order{}, err
	}
	return revised, nil
}

func (o Order) String() string {
	return fmt.Sprintf("Order{id=%s instrument=%s side=%s price=%d quantity=%d}",
		o.id, o.instrument, o.side, o.price, o.quantity)
}

func (o Order) validate() error {
	switch {
	case isBlank(o.id):
		return fmt.Errorf("order id cannot be blank: %w", ErrInvalidParam)
	case isBlank(o.instrument):
		return fmt.Errorf("instrument cannot be blank: %w", ErrInvalidParam)
	case strings.Contains(o.instrument, keySeparator):
		return fmt.Errorf("instrument %q cannot contain %q: %w", o.instrument, keySeparator, ErrInvalidParam)
	case !o.side.IsValid():
		return fmt.Errorf("side %d is invalid: %w", o.side, ErrInvalidParam)
	case o.price <= 0:
		return fmt.Errorf("price must be positive, got %d: %w", o.price, ErrInvalidParam)
	case o.quantity <= 0:
		return fmt.Errorf("quantity must be positive, got %d: %w", o.quantity, ErrInvalidParam)
	}
	return nil
}

// CompositeKey combines instrument and side into the side-book key, e.g. "VOD.L::BUY".
func CompositeKey(instrument string, side Side) string {
	return instrument + keySeparator + side.String()
}

func isBlank(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}
