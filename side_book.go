package orderbook

import (
	"fmt"

	"github.com/0x5487/orderbook/protocol"
	"github.com/huandu/skiplist"
)

// sideBook holds every resting order of one (instrument, side) pair.
// Price levels are kept in a skiplist ordered best-first, so the front
// element is always the best level.
type sideBook struct {
	instrument  string
	side        Side
	totalOrders int64
	depthList   *skiplist.SkipList
	priceList   map[int64]*skiplist.Element
	nodes       map[string]*levelNode

	// best is valid only while hasBest is true.
	best    int64
	hasBest bool
}

// newSideBook creates an empty book. Buy levels are sorted by price in
// descending order, sell levels in ascending order.
func newSideBook(instrument string, side Side) *sideBook {
	var cmp skiplist.GreaterThanFunc
	if side == Buy {
		cmp = func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)
			switch {
			case p1 < p2:
				return 1
			case p1 > p2:
				return -1
			}
			return 0
		}
	} else {
		cmp = func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)
			switch {
			case p1 > p2:
				return 1
			case p1 < p2:
				return -1
			}
			return 0
		}
	}

	return &sideBook{
		instrument: instrument,
		side:       side,
		depthList:  skiplist.New(cmp),
		priceList:  make(map[int64]*skiplist.Element),
		nodes:      make(map[string]*levelNode),
	}
}

// better reports whether price a ranks ahead of price c on this side.
func (b *sideBook) better(a, c int64) bool {
	if b.side == Buy {
		return a > c
	}
	return a < c
}

func (b *sideBook) level(price int64) *priceLevel {
	el, ok := b.priceList[price]
	if !ok {
		return nil
	}
	lvl, _ := el.Value.(*priceLevel)
	return lvl
}

// add appends order at the tail of its price level.
func (b *sideBook) add(order Order) error {
	if _, ok := b.nodes[order.id]; ok {
		return fmt.Errorf("order %s: %w", order.id, ErrDuplicateOrder)
	}

	lvl := b.level(order.price)
	if lvl == nil {
		lvl = newPriceLevel(order.price)
		b.priceList[order.price] = b.depthList.Set(order.price, lvl)
	}

	b.nodes[order.id] = lvl.append(order)
	b.totalOrders++

	if !b.hasBest || b.better(order.price, b.best) {
		b.best = order.price
		b.hasBest = true
	}
	return nil
}

// remove deletes the order and drops its level once the level is empty.
func (b *sideBook) remove(id string) (Order, error) {
	node, ok := b.nodes[id]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	price := node.order.price
	el, ok := b.priceList[price]
	if !ok {
		panic(fmt.Sprintf("orderbook: order %s indexed without level %d", id, price))
	}
	lvl, _ := el.Value.(*priceLevel)

	lvl.remove(node)
	delete(b.nodes, id)
	b.totalOrders--

	if lvl.isEmpty() {
		b.depthList.RemoveElement(el)
		delete(b.priceList, price)

		if price == b.best {
			b.resetBest()
		}
	}

	return node.order, nil
}

// resetBest reloads the best price from the front of the depth list.
func (b *sideBook) resetBest() {
	front := b.depthList.Front()
	if front == nil {
		b.best = 0
		b.hasBest = false
		return
	}
	lvl, _ := front.Value.(*priceLevel)
	b.best = lvl.price
	b.hasBest = true
}

// modify changes the quantity of a resting order and returns the revised order.
// A larger quantity loses queue priority and moves to the tail of the level.
// A smaller quantity keeps its place.
func (b *sideBook) modify(id string, newQuantity int64) (Order, bool, error) {
	node, ok := b.nodes[id]
	if !ok {
		return Order{}, false, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}

	old := node.order
	if newQuantity == old.quantity {
		return old, false, nil
	}

	revised, err := old.WithQuantity(newQuantity)
	if err != nil {
		return Order{}, false, err
	}

	lvl := b.level(old.price)
	if lvl == nil {
		panic(fmt.Sprintf("orderbook: order %s indexed without level %d", id, old.price))
	}

	if newQuantity > old.quantity {
		lvl.remove(node)
		b.nodes[id] = lvl.append(revised)
	} else {
		lvl.replace(node, revised)
	}

	return revised, true, nil
}

func (b *sideBook) bestPrice() (int64, bool) {
	return b.best, b.hasBest
}

func (b *sideBook) orderCount(price int64) int64 {
	if lvl := b.level(price); lvl != nil {
		return lvl.count
	}
	return 0
}

func (b *sideBook) totalQuantity(price int64) int64 {
	if lvl := b.level(price); lvl != nil {
		return lvl.totalQuantity
	}
	return 0
}

func (b *sideBook) totalVolume(price int64) int64 {
	if lvl := b.level(price); lvl != nil {
		return lvl.totalVolume
	}
	return 0
}

// ordersAt returns a snapshot of the orders at price in queue order.
func (b *sideBook) ordersAt(price int64) []Order {
	if lvl := b.level(price); lvl != nil {
		return lvl.orders()
	}
	return []Order{}
}

// depth returns up to limit levels, best price first.
func (b *sideBook) depth(limit uint32) []*protocol.DepthItem {
	result := make([]*protocol.DepthItem, 0, min(int(limit), len(b.priceList)))

	el := b.depthList.Front()

	var i uint32
	for i < limit && el != nil {
		lvl, _ := el.Value.(*priceLevel)
		result = append(result, &protocol.DepthItem{
			Price:    lvl.price,
			Quantity: lvl.totalQuantity,
			Volume:   lvl.totalVolume,
			Count:    lvl.count,
		})

		el = el.Next()
		i++
	}

	return result
}

func (b *sideBook) orderTotal() int64 {
	return b.totalOrders
}

func (b *sideBook) depthCount() int64 {
	return int64(len(b.priceList))
}
