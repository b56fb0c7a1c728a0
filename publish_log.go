package orderbook

import "sync"

// PublishLog receives the book logs of each successful mutation, in sequence order.
//
// Publish runs under the manager's mutation lock and the logs go back to a pool
// when it returns. Implementations that keep a log past the call must copy it,
// and must not call the manager's mutating methods.
type PublishLog interface {
	Publish(...*BookLog)
}

// MemoryPublishLog records book logs by value so a caller can audit what
// happened to an order or an instrument.
type MemoryPublishLog struct {
	mu      sync.RWMutex
	logs    []BookLog
	byOrder map[string][]int
}

func NewMemoryPublishLog() *MemoryPublishLog {
	return &MemoryPublishLog{
		byOrder: make(map[string][]int),
	}
}

func (m *MemoryPublishLog) Publish(logs ...*BookLog) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, log := range logs {
		m.byOrder[log.OrderID] = append(m.byOrder[log.OrderID], len(m.logs))
		m.logs = append(m.logs, *log)
	}
}

// Len returns how many logs were recorded.
func (m *MemoryPublishLog) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs)
}

// Last returns the most recent log.
func (m *MemoryPublishLog) Last() (BookLog, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.logs) == 0 {
		return BookLog{}, false
	}
	return m.logs[len(m.logs)-1], true
}

// ByOrder returns the lifecycle of one order: its open, amends and cancel.
func (m *MemoryPublishLog) ByOrder(orderID string) []BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.byOrder[orderID]
	logs := make([]BookLog, len(idx))
	for i, n := range idx {
		logs[i] = m.logs[n]
	}
	return logs
}

// ByInstrument returns the logs of both sides of an instrument.
func (m *MemoryPublishLog) ByInstrument(instrument string) []BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var logs []BookLog
	for _, log := range m.logs {
		if log.Instrument == instrument {
			logs = append(logs, log)
		}
	}
	return logs
}

// Since returns the logs with a sequence id greater than seqID, for replaying
// into a view that has already applied everything up to seqID.
func (m *MemoryPublishLog) Since(seqID uint64) []BookLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// sequence ids are assigned in publish order
	start := len(m.logs)
	for start > 0 && m.logs[start-1].SequenceID > seqID {
		start--
	}
	logs := make([]BookLog, len(m.logs)-start)
	copy(logs, m.logs[start:])
	return logs
}

// DiscardPublishLog drops every log.
type DiscardPublishLog struct{}

func NewDiscardPublishLog() *DiscardPublishLog {
	return &DiscardPublishLog{}
}

func (p *DiscardPublishLog) Publish(logs ...*BookLog) {}
