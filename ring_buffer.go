package orderbook

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
)

// ErrRingBufferTimeout is returned when shutdown does not drain in time.
var ErrRingBufferTimeout = errors.New("ring buffer: shutdown timeout")

// EventHandler consumes events published to a RingBuffer.
type EventHandler[T any] interface {
	OnEvent(event T)
}

// RingBuffer is a multi-producer, single-consumer ring of events.
// Producers claim a slot with CAS, write it, then mark it published;
// one goroutine consumes slots strictly in sequence order.
type RingBuffer[T any] struct {
	// padding keeps the two hot counters on separate cache lines
	_                [56]byte
	producerSequence atomic.Int64
	_                [56]byte
	consumerSequence atomic.Int64
	_                [56]byte

	buffer     []T
	bufferMask int64
	capacity   int64

	// published[i] holds the sequence last written to slot i
	published []int64

	handler    EventHandler[T]
	isShutdown atomic.Bool
	done       chan struct{}
}

// NewRingBuffer creates a ring of the given capacity, which must be a power of 2.
func NewRingBuffer[T any](capacity int64, handler EventHandler[T]) *RingBuffer[T] {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		panic("ring buffer: capacity must be a power of 2")
	}

	rb := &RingBuffer[T]{
		buffer:     make([]T, capacity),
		published:  make([]int64, capacity),
		capacity:   capacity,
		bufferMask: capacity - 1,
		handler:    handler,
		done:       make(chan struct{}),
	}

	rb.producerSequence.Store(-1)
	rb.consumerSequence.Store(-1)
	for i := range rb.published {
		atomic.StoreInt64(&rb.published[i], -1)
	}

	return rb
}

// Publish blocks while the ring is full. It reports false once shutdown has begun.
func (rb *RingBuffer[T]) Publish(event T) bool {
	if rb.isShutdown.Load() {
		return false
	}

	var seq int64
	for {
		current := rb.producerSequence.Load()
		seq = current + 1

		if seq-rb.capacity > rb.consumerSequence.Load() {
			runtime.Gosched()
			continue
		}
		if rb.producerSequence.CompareAndSwap(current, seq) {
			break
		}
		runtime.Gosched()
	}

	idx := seq & rb.bufferMask
	rb.buffer[idx] = event
	atomic.StoreInt64(&rb.published[idx], seq)
	return true
}

// Start launches the consumer goroutine.
func (rb *RingBuffer[T]) Start() {
	go rb.consume()
}

// Shutdown stops new publishes and waits until every claimed event is consumed.
// Producers must have returned from Publish before Shutdown is called.
func (rb *RingBuffer[T]) Shutdown(ctx context.Context) error {
	rb.isShutdown.Store(true)

	select {
	case <-rb.done:
		return nil
	case <-ctx.Done():
		return ErrRingBufferTimeout
	}
}

func (rb *RingBuffer[T]) consume() {
	defer close(rb.done)

	next := rb.consumerSequence.Load() + 1
	for {
		stopping := rb.isShutdown.Load()
		available := rb.producerSequence.Load()

		if next > available {
			if stopping {
				return
			}
			runtime.Gosched()
			continue
		}

		for ; next <= available; next++ {
			idx := next & rb.bufferMask
			for atomic.LoadInt64(&rb.published[idx]) != next {
				runtime.Gosched()
			}

			event := rb.buffer[idx]
			var zero T
			rb.buffer[idx] = zero
			rb.handler.OnEvent(event)
			rb.consumerSequence.Store(next)
		}
	}
}

// Pending returns how many claimed events are not consumed yet.
func (rb *RingBuffer[T]) Pending() int64 {
	return rb.producerSequence.Load() - rb.consumerSequence.Load()
}
