package orderbook

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/0x5487/orderbook/protocol"
)

// OrderBookManager keeps the resting orders of every instrument, split by side.
//
// All mutations are serialized by one manager-wide lock because order ids are
// unique across every instrument and side. Reads take the shared side of the
// same lock, so each query sees the book between two complete mutations.
// Consecutive queries are not guaranteed to see the same state.
type OrderBookManager struct {
	mu     sync.RWMutex
	orders map[string]Order

	// books maps CompositeKey(instrument, side) to *sideBook. Books are created
	// on the first order for a pair and never removed.
	books sync.Map

	seqID      atomic.Uint64 // Sequence ID of the last published BookLog
	publishLog PublishLog
	serializer protocol.Serializer
}

// Option configures an OrderBookManager.
type Option func(*OrderBookManager)

// WithPublishLog sets the sink receiving a BookLog for every mutation.
func WithPublishLog(p PublishLog) Option {
	return func(m *OrderBookManager) {
		if p != nil {
			m.publishLog = p
		}
	}
}

// WithBookCapacity presizes the order id index.
func WithBookCapacity(n int) Option {
	return func(m *OrderBookManager) {
		if n > 0 {
			m.orders = make(map[string]Order, n)
		}
	}
}

// WithSerializer sets the payload codec used by CommandExecutor.
func WithSerializer(s protocol.Serializer) Option {
	return func(m *OrderBookManager) {
		if s != nil {
			m.serializer = s
		}
	}
}

// NewOrderBookManager creates an empty manager.
func NewOrderBookManager(opts ...Option) *OrderBookManager {
	m := &OrderBookManager{
		orders:     make(map[string]Order),
		publishLog: NewDiscardPublishLog(),
		serializer: &protocol.DefaultJSONSerializer{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddOrder rests a new order at the tail of its price level.
// Returns ErrDuplicateOrder if an order with the same id exists on any instrument or side.
func (m *OrderBookManager) AddOrder(order Order) error {
	if err := order.validate(); err != nil {
		logger.Warn("add order rejected", "order_id", order.id, "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.id]; ok {
		logger.Warn("add order rejected: duplicate id",
			"order_id", order.id, "instrument", order.instrument, "side", order.side.String())
		return fmt.Errorf("order %s: %w", order.id, ErrDuplicateOrder)
	}

	book := m.sideBookLocked(order.instrument, order.side)
	if err := book.add(order); err != nil {
		// the id index and the book disagree
		panic(err)
	}
	m.orders[order.id] = order

	m.publish(NewOpenLog(m.seqID.Add(1), order))
	return nil
}

// ModifyOrder sets the quantity of an existing order.
// It returns false without changing anything when the quantity is unchanged.
// An increase moves the order to the back of its price level; a decrease keeps its place.
func (m *OrderBookManager) ModifyOrder(id string, newQuantity int64) (bool, error) {
	if isBlank(id) {
		return false, fmt.Errorf("order id cannot be blank: %w", ErrInvalidParam)
	}
	if newQuantity <= 0 {
		return false, fmt.Errorf("quantity must be positive, got %d: %w", newQuantity, ErrInvalidParam)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.orders[id]
	if !ok {
		logger.Warn("modify order rejected: not found", "order_id", id)
		return false, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if current.quantity == newQuantity {
		return false, nil
	}

	book := m.mustSideBook(current)
	revised, modified, err := book.modify(id, newQuantity)
	if err != nil {
		return false, err
	}
	if !modified {
		return false, nil
	}
	m.orders[id] = revised

	m.publish(NewAmendLog(m.seqID.Add(1), revised, current.quantity))
	return true, nil
}

// DeleteOrder removes an existing order from the book.
func (m *OrderBookManager) DeleteOrder(id string) (bool, error) {
	if isBlank(id) {
		return false, fmt.Errorf("order id cannot be blank: %w", ErrInvalidParam)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.orders[id]
	if !ok {
		logger.Warn("delete order rejected: not found", "order_id", id)
		return false, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	removed, err := m.mustSideBook(current).remove(id)
	if err != nil {
		panic(err)
	}
	delete(m.orders, id)

	m.publish(NewCancelLog(m.seqID.Add(1), removed))
	return true, nil
}

// BestPrice returns the highest buy or lowest sell price for the instrument.
// ok is false when nothing rests on that side.
func (m *OrderBookManager) BestPrice(instrument string, side Side) (price int64, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book := m.sideBook(instrument, side)
	if book == nil {
		return 0, false
	}
	return book.bestPrice()
}

// OrderNumAtLevel returns how many orders rest at price, or 0 if none.
func (m *OrderBookManager) OrderNumAtLevel(instrument string, side Side, price int64) (int64, error) {
	if err := validateLevelQuery(instrument, side, price); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	book := m.sideBook(instrument, side)
	if book == nil {
		return 0, nil
	}
	return book.orderCount(price), nil
}

// TotalQuantityAtLevel returns the summed quantity at price, or 0 if none.
func (m *OrderBookManager) TotalQuantityAtLevel(instrument string, side Side, price int64) (int64, error) {
	if err := validateLevelQuery(instrument, side, price); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	book := m.sideBook(instrument, side)
	if book == nil {
		return 0, nil
	}
	return book.totalQuantity(price), nil
}

// TotalVolumeAtLevel returns the sum of price*quantity at price, or 0 if none.
func (m *OrderBookManager) TotalVolumeAtLevel(instrument string, side Side, price int64) (int64, error) {
	if err := validateLevelQuery(instrument, side, price); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	book := m.sideBook(instrument, side)
	if book == nil {
		return 0, nil
	}
	return book.totalVolume(price), nil
}

// OrdersAtLevel returns the orders resting at price in queue priority order.
// The slice is a copy and never nil.
func (m *OrderBookManager) OrdersAtLevel(instrument string, side Side, price int64) ([]Order, error) {
	if err := validateLevelQuery(instrument, side, price); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	book := m.sideBook(instrument, side)
	if book == nil {
		return []Order{}, nil
	}
	return book.ordersAt(price), nil
}

// Order returns the current version of the order with the given id.
func (m *OrderBookManager) Order(id string) (Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	return o, ok
}

// OrderCount returns the number of resting orders across all books.
func (m *OrderBookManager) OrderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.orders)
}

// Depth returns up to limit levels of one side, best price first.
func (m *OrderBookManager) Depth(instrument string, side Side, limit uint32) (*protocol.GetDepthResponse, error) {
	if limit == 0 {
		return nil, fmt.Errorf("depth limit must be positive: %w", ErrInvalidParam)
	}
	if err := validateBookKey(instrument, side); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	resp := &protocol.GetDepthResponse{
		Instrument: instrument,
		Side:       side,
		Levels:     []*protocol.DepthItem{},
	}
	if book := m.sideBook(instrument, side); book != nil {
		resp.Levels = book.depth(limit)
	}
	return resp, nil
}

// Stats returns level and order counts for both sides of the instrument.
func (m *OrderBookManager) Stats(instrument string) (*protocol.GetStatsResponse, error) {
	if err := validateBookKey(instrument, Buy); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &protocol.GetStatsResponse{Instrument: instrument}
	if bid := m.sideBook(instrument, Buy); bid != nil {
		stats.BidDepthCount = bid.depthCount()
		stats.BidOrderCount = bid.orderTotal()
	}
	if ask := m.sideBook(instrument, Sell); ask != nil {
		stats.AskDepthCount = ask.depthCount()
		stats.AskOrderCount = ask.orderTotal()
	}
	return stats, nil
}

// LastSequenceID returns the sequence ID of the most recent BookLog.
func (m *OrderBookManager) LastSequenceID() uint64 {
	return m.seqID.Load()
}

// sideBook looks up an existing book without creating one.
func (m *OrderBookManager) sideBook(instrument string, side Side) *sideBook {
	if v, ok := m.books.Load(CompositeKey(instrument, side)); ok {
		return v.(*sideBook)
	}
	return nil
}

// sideBookLocked returns the book for the pair, creating it on first use.
// The caller must hold m.mu for writing.
func (m *OrderBookManager) sideBookLocked(instrument string, side Side) *sideBook {
	key := CompositeKey(instrument, side)
	if v, ok := m.books.Load(key); ok {
		return v.(*sideBook)
	}

	v, loaded := m.books.LoadOrStore(key, newSideBook(instrument, side))
	if !loaded {
		logger.Debug("side book created", "instrument", instrument, "side", side.String())
	}
	return v.(*sideBook)
}

// mustSideBook returns the book an indexed order rests in.
func (m *OrderBookManager) mustSideBook(order Order) *sideBook {
	book := m.sideBook(order.instrument, order.side)
	if book == nil {
		panic(fmt.Sprintf("orderbook: order %s indexed without book %s", order.id, order.BookKey()))
	}
	return book
}

func (m *OrderBookManager) publish(logs ...*BookLog) {
	m.publishLog.Publish(logs...)
	for _, log := range logs {
		releaseBookLog(log)
	}
}

func validateBookKey(instrument string, side Side) error {
	if isBlank(instrument) {
		return fmt.Errorf("instrument cannot be blank: %w", ErrInvalidParam)
	}
	if !side.IsValid() {
		return fmt.Errorf("side %d is invalid: %w", side, ErrInvalidParam)
	}
	return nil
}

func validateLevelQuery(instrument string, side Side, price int64) error {
	if err := validateBookKey(instrument, side); err != nil {
		return err
	}
	if price <= 0 {
		return fmt.Errorf("price level must be positive, got %d: %w", price, ErrInvalidParam)
	}
	return nil
}
