package orderbook

import (
	"sync"
	"time"

	"github.com/0x5487/orderbook/protocol"
)

type LogType = protocol.LogType

const (
	LogTypeOpen   LogType = protocol.LogTypeOpen
	LogTypeAmend  LogType = protocol.LogTypeAmend
	LogTypeCancel LogType = protocol.LogTypeCancel
)

// BookLog represents a change to the resting book.
// SequenceID is increasing across the whole manager, used for ordering,
// deduplication, and rebuild synchronization in downstream systems.
type BookLog struct {
	SequenceID  uint64    `json:"seq_id"`
	Type        LogType   `json:"type"` // Event type: open, amend, cancel
	Instrument  string    `json:"instrument"`
	Side        Side      `json:"side"`
	OrderID     string    `json:"order_id"`
	Price       int64     `json:"price"`
	Quantity    int64     `json:"quantity"`
	OldQuantity int64     `json:"old_quantity,omitempty"` // Only set for Amend events
	CreatedAt   time.Time `json:"created_at"`
}

var bookLogPool = sync.Pool{
	New: func() any {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	*log = BookLog{}
	bookLogPool.Put(log)
}

func newOrderLog(seqID uint64, logType LogType, order Order) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = logType
	log.Instrument = order.instrument
	log.Side = order.side
	log.OrderID = order.id
	log.Price = order.price
	log.Quantity = order.quantity
	log.CreatedAt = time.Now().UTC()
	return log
}

func NewOpenLog(seqID uint64, order Order) *BookLog {
	return newOrderLog(seqID, LogTypeOpen, order)
}

func NewCancelLog(seqID uint64, order Order) *BookLog {
	return newOrderLog(seqID, LogTypeCancel, order)
}

func NewAmendLog(seqID uint64, order Order, oldQuantity int64) *BookLog {
	log := newOrderLog(seqID, LogTypeAmend, order)
	log.OldQuantity = oldQuantity
	return log
}
