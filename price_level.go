package orderbook

// levelNode links one order into its price level's FIFO.
type levelNode struct {
	order Order
	next  *levelNode
	prev  *levelNode
}

// priceLevel is the FIFO queue of orders resting at one price.
// count, totalQuantity and totalVolume always equal the fold of the queue.
type priceLevel struct {
	price         int64
	head          *levelNode
	tail          *levelNode
	count         int64
	totalQuantity int64
	totalVolume   int64
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{price: price}
}

// append pushes order to the tail and returns its node.
func (l *priceLevel) append(order Order) *levelNode {
	node := &levelNode{order: order, prev: l.tail}
	if l.tail != nil {
		l.tail.next = node
	} else {
		l.head = node
	}
	l.tail = node

	l.count++
	l.totalQuantity += order.quantity
	l.totalVolume += order.Volume()
	return node
}

// remove unlinks node from the queue.
func (l *priceLevel) remove(node *levelNode) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}

	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	node.next = nil
	node.prev = nil

	l.count--
	l.totalQuantity -= node.order.quantity
	l.totalVolume -= node.order.Volume()
}

// replace swaps the order held by node without moving it in the queue.
func (l *priceLevel) replace(node *levelNode, order Order) {
	l.totalQuantity += order.quantity - node.order.quantity
	l.totalVolume += order.Volume() - node.order.Volume()
	node.order = order
}

func (l *priceLevel) isEmpty() bool {
	return l.head == nil
}

// orders returns a copy of the queue in priority order.
func (l *priceLevel) orders() []Order {
	result := make([]Order, 0, l.count)
	for node := l.head; node != nil; node = node.next {
		result = append(result, node.order)
	}
	return result
}
