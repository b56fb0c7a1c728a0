package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	order, err := NewOrder("order1", "test", Buy, 200, 10)
	require.NoError(t, err)

	assert.Equal(t, "order1", order.ID())
	assert.Equal(t, "test", order.Instrument())
	assert.Equal(t, Buy, order.Side())
	assert.Equal(t, int64(200), order.Price())
	assert.Equal(t, int64(10), order.Quantity())
	assert.Equal(t, int64(2000), order.Volume())
	assert.Equal(t, "test::BUY", order.BookKey())
}

func TestNewOrderValidation(t *testing.T) {
	testCases := []struct {
		name       string
		id         string
		instrument string
		side       Side
		price      int64
		quantity   int64
	}{
		{name: "blank id", id: "  ", instrument: "VOD.L", side: Buy, price: 1, quantity: 1},
		{name: "empty id", id: "", instrument: "VOD.L", side: Buy, price: 1, quantity: 1},
		{name: "blank instrument", id: "a", instrument: "", side: Buy, price: 1, quantity: 1},
		{name: "separator in instrument", id: "a", instrument: "VOD::L", side: Sell, price: 1, quantity: 1},
		{name: "missing side", id: "a", instrument: "VOD.L", side: 0, price: 1, quantity: 1},
		{name: "zero price", id: "a", instrument: "VOD.L", side: Buy, price: 0, quantity: 1},
		{name: "negative price", id: "a", instrument: "VOD.L", side: Buy, price: -5, quantity: 1},
		{name: "zero quantity", id: "a", instrument: "VOD.L", side: Sell, price: 1, quantity: 0},
		{name: "negative quantity", id: "a", instrument: "VOD.L", side: Sell, price: 1, quantity: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.id, tc.instrument, tc.side, tc.price, tc.quantity)
			assert.ErrorIs(t, err, ErrInvalidParam)
		})
	}
}

func TestOrderWithQuantity(t *testing.T) {
	first := MustNewOrder("order1", "test", Sell, 200, 10)

	second, err := first.WithQuantity(4)
	require.NoError(t, err)

	assert.Equal(t, int64(10), first.Quantity())
	assert.Equal(t, int64(4), second.Quantity())
	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, first.Price(), second.Price())
	assert.NotEqual(t, first, second)

	_, err = first.WithQuantity(0)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestOrderEquality(t *testing.T) {
	a := MustNewOrder("order1", "test", Buy, 200, 10)
	b := MustNewOrder("order1", "test", Buy, 200, 10)
	c := MustNewOrder("order1", "test", Buy, 200, 11)

	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.False(t, a == c)
}

func TestCompositeKey(t *testing.T) {
	assert.Equal(t, "VOD.L::BUY", CompositeKey("VOD.L", Buy))
	assert.Equal(t, "VOD.L::SELL", CompositeKey("VOD.L", Sell))
	assert.NotEqual(t, CompositeKey("VOD.L", Buy), CompositeKey("VOD.L", Sell))
}

func TestNewOrderID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewOrderID()
		assert.NotEmpty(t, id)
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestMustNewOrderPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustNewOrder("a", "VOD.L", Buy, 0, 1)
	})
}
