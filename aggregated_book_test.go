package orderbook

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDepthChange(t *testing.T) {
	order := MustNewOrder("A", "X", Buy, 100, 5)

	open := NewOpenLog(1, order)
	defer releaseBookLog(open)
	change := CalculateDepthChange(open)
	assert.Equal(t, DepthChange{Instrument: "X", Side: Buy, Price: 100, QuantityDiff: 5, CountDiff: 1}, change)

	up, _ := order.WithQuantity(8)
	amendUp := NewAmendLog(2, up, 5)
	defer releaseBookLog(amendUp)
	assert.Equal(t, int64(3), CalculateDepthChange(amendUp).QuantityDiff)
	assert.Equal(t, int64(0), CalculateDepthChange(amendUp).CountDiff)

	down, _ := order.WithQuantity(2)
	amendDown := NewAmendLog(3, down, 5)
	defer releaseBookLog(amendDown)
	assert.Equal(t, int64(-3), CalculateDepthChange(amendDown).QuantityDiff)

	cancel := NewCancelLog(4, order)
	defer releaseBookLog(cancel)
	change = CalculateDepthChange(cancel)
	assert.Equal(t, int64(-5), change.QuantityDiff)
	assert.Equal(t, int64(-1), change.CountDiff)

	assert.True(t, CalculateDepthChange(&BookLog{Type: "unknown"}).IsZero())
}

func TestAggregatedBookReplay(t *testing.T) {
	publishLog := NewMemoryPublishLog()
	manager := NewOrderBookManager(WithPublishLog(publishLog))
	rng := rand.New(rand.NewSource(42))

	ids := []string{}
	for i := 0; i < 500; i++ {
		switch {
		case len(ids) > 0 && rng.Intn(4) == 0:
			idx := rng.Intn(len(ids))
			_, err := manager.DeleteOrder(ids[idx])
			require.NoError(t, err)
			ids = append(ids[:idx], ids[idx+1:]...)
		case len(ids) > 0 && rng.Intn(3) == 0:
			_, err := manager.ModifyOrder(ids[rng.Intn(len(ids))], int64(rng.Intn(20)+1))
			require.NoError(t, err)
		default:
			side := Buy
			if rng.Intn(2) == 0 {
				side = Sell
			}
			id := strconv.Itoa(i)
			order := MustNewOrder(id, "X", side, int64(rng.Intn(10)+95), int64(rng.Intn(20)+1))
			require.NoError(t, manager.AddOrder(order))
			ids = append(ids, id)
		}
	}

	agg := NewAggregatedBook()
	logs := publishLog.Since(0)
	for i := range logs {
		require.NoError(t, agg.Replay(&logs[i]))
	}
	assert.Equal(t, manager.LastSequenceID(), agg.SequenceID())

	for _, side := range []Side{Buy, Sell} {
		best, ok := manager.BestPrice("X", side)
		aggBest, aggOK := agg.Best("X", side)
		assert.Equal(t, ok, aggOK)
		assert.Equal(t, best, aggBest)

		for price := int64(95); price < 105; price++ {
			qty, _ := manager.TotalQuantityAtLevel("X", side, price)
			n, _ := manager.OrderNumAtLevel("X", side, price)
			lvl := agg.Level("X", side, price)
			assert.Equal(t, qty, lvl.Quantity, "side %s price %d", side, price)
			assert.Equal(t, n, lvl.Count, "side %s price %d", side, price)
		}
	}
}

func TestAggregatedBookSequence(t *testing.T) {
	agg := NewAggregatedBook()
	order := MustNewOrder("A", "X", Sell, 100, 5)

	require.NoError(t, agg.Replay(&BookLog{SequenceID: 1, Type: LogTypeOpen, Instrument: "X", Side: Sell, OrderID: "A", Price: 100, Quantity: 5}))

	// duplicates are ignored
	require.NoError(t, agg.Replay(&BookLog{SequenceID: 1, Type: LogTypeOpen, Instrument: "X", Side: Sell, OrderID: "A", Price: 100, Quantity: 5}))
	assert.Equal(t, AggregatedLevel{Quantity: 5, Count: 1}, agg.Level("X", Sell, 100))

	// gaps are rejected and not applied
	cancel := NewCancelLog(3, order)
	defer releaseBookLog(cancel)
	err := agg.Replay(cancel)
	assert.ErrorIs(t, err, ErrSequenceGap)
	assert.Equal(t, uint64(1), agg.SequenceID())
	assert.Equal(t, AggregatedLevel{Quantity: 5, Count: 1}, agg.Level("X", Sell, 100))

	cancel.SequenceID = 2
	require.NoError(t, agg.Replay(cancel))
	assert.Equal(t, AggregatedLevel{}, agg.Level("X", Sell, 100))
	_, ok := agg.Best("X", Sell)
	assert.False(t, ok)

	agg.OnRebuild(10)
	assert.Equal(t, uint64(10), agg.SequenceID())
	require.NoError(t, agg.Replay(&BookLog{SequenceID: 11, Type: LogTypeOpen, Instrument: "X", Side: Buy, OrderID: "B", Price: 90, Quantity: 1}))
	best, ok := agg.Best("X", Buy)
	assert.True(t, ok)
	assert.Equal(t, int64(90), best)
}
