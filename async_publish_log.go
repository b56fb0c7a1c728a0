package orderbook

import "context"

// LogHandler receives book logs on the consumer goroutine of an AsyncPublishLog.
type LogHandler func(log *BookLog)

func (h LogHandler) OnEvent(log *BookLog) {
	h(log)
}

// AsyncPublishLog hands cloned logs to a ring buffer so the mutation path
// only pays for the copy. The handler runs on a single goroutine in sequence order.
//
// The handler must not call the manager's mutating methods: a full ring
// blocks Publish while the manager holds its mutation lock.
type AsyncPublishLog struct {
	ring *RingBuffer[*BookLog]
}

// NewAsyncPublishLog creates and starts an async sink. capacity must be a power of 2.
func NewAsyncPublishLog(capacity int64, handler LogHandler) *AsyncPublishLog {
	p := &AsyncPublishLog{
		ring: NewRingBuffer[*BookLog](capacity, handler),
	}
	p.ring.Start()
	return p
}

// Publish clones logs into the ring. Logs published after Close are dropped.
func (p *AsyncPublishLog) Publish(logs ...*BookLog) {
	for _, log := range logs {
		cpy := new(BookLog)
		*cpy = *log
		if !p.ring.Publish(cpy) {
			logger.Warn("book log dropped after close", "seq_id", log.SequenceID, "order_id", log.OrderID)
		}
	}
}

// Pending returns the number of logs not yet handled.
func (p *AsyncPublishLog) Pending() int64 {
	return p.ring.Pending()
}

// Close waits for queued logs to be handled.
func (p *AsyncPublishLog) Close(ctx context.Context) error {
	return p.ring.Shutdown(ctx)
}
