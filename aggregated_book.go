package orderbook

import (
	"fmt"
	"sync"

	"github.com/igrmk/treemap/v2"
)

// AggregatedLevel is the depth of one price level: summed quantity and order count.
type AggregatedLevel struct {
	Quantity int64
	Count    int64
}

// AggregatedBook maintains a simplified view of the books,
// tracking only price levels and their aggregated quantities (depth).
// It is designed for downstream services that need to rebuild
// book state from BookLog events received via message queue.
type AggregatedBook struct {
	mu    sync.RWMutex
	seqID uint64 // Last applied SequenceID for gap detection and deduplication
	books map[string]*treemap.TreeMap[int64, AggregatedLevel]
}

// NewAggregatedBook creates a new AggregatedBook with no levels.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		books: make(map[string]*treemap.TreeMap[int64, AggregatedLevel]),
	}
}

// SequenceID returns the last processed sequence ID.
// Used for synchronization and gap detection during rebuild.
func (ab *AggregatedBook) SequenceID() uint64 {
	ab.mu.RLock()
	defer ab.mu.RUnlock()
	return ab.seqID
}

// Replay applies a BookLog event to update the aggregated book state.
// Logs at or below the current sequence ID are ignored as duplicates.
// A log that skips a sequence ID returns ErrSequenceGap and is not applied.
func (ab *AggregatedBook) Replay(log *BookLog) error {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	if log.SequenceID <= ab.seqID {
		return nil
	}
	if log.SequenceID != ab.seqID+1 {
		return fmt.Errorf("expected %d, got %d: %w", ab.seqID+1, log.SequenceID, ErrSequenceGap)
	}

	change := CalculateDepthChange(log)
	if !change.IsZero() {
		ab.apply(change)
	}
	ab.seqID = log.SequenceID
	return nil
}

func (ab *AggregatedBook) apply(change DepthChange) {
	key := CompositeKey(change.Instrument, change.Side)
	levels, ok := ab.books[key]
	if !ok {
		levels = treemap.New[int64, AggregatedLevel]()
		ab.books[key] = levels
	}

	lvl, _ := levels.Get(change.Price)
	lvl.Quantity += change.QuantityDiff
	lvl.Count += change.CountDiff

	if lvl.Count <= 0 {
		levels.Del(change.Price)
		return
	}
	levels.Set(change.Price, lvl)
}

// OnRebuild drops every level and restarts sequence checking after seqID.
// Call it before replaying events from a known offset.
func (ab *AggregatedBook) OnRebuild(seqID uint64) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	ab.books = make(map[string]*treemap.TreeMap[int64, AggregatedLevel])
	ab.seqID = seqID
}

// Level returns the aggregated depth at a price. The zero value means no orders.
func (ab *AggregatedBook) Level(instrument string, side Side, price int64) AggregatedLevel {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	levels, ok := ab.books[CompositeKey(instrument, side)]
	if !ok {
		return AggregatedLevel{}
	}
	lvl, _ := levels.Get(price)
	return lvl
}

// Best returns the highest buy or lowest sell price with resting quantity.
func (ab *AggregatedBook) Best(instrument string, side Side) (int64, bool) {
	ab.mu.RLock()
	defer ab.mu.RUnlock()

	levels, ok := ab.books[CompositeKey(instrument, side)]
	if !ok || levels.Len() == 0 {
		return 0, false
	}

	if side == Buy {
		it := levels.Reverse()
		return it.Key(), it.Valid()
	}
	it := levels.Iterator()
	return it.Key(), it.Valid()
}
