// Package ring implements a lock-free single-producer/single-consumer
// circular buffer, used to carry InputCommands from the server's TCP
// sessions to the goroutine that owns the book.Engine.
package ring

import "sync/atomic"

const cacheLineSize = 64

// Buffer is a fixed-capacity SPSC ring. Push is only safe from a single
// producer goroutine; Read is only safe from a single consumer goroutine.
// Concurrent Push calls, or concurrent Read calls, are undefined — exactly
// the single-writer model SPEC_FULL.md requires of everything feeding the
// engine.
type Buffer[T any] struct {
	buffer []T
	mask   uint64

	_pad1    [cacheLineSize - 8]byte
	writePos uint64
	_pad2    [cacheLineSize - 8]byte
	readPos  uint64
	_pad3    [cacheLineSize - 8]byte
}

// New returns a ring buffer with capacity rounded up to the next power of
// two (so index masking stays a single AND instruction).
func New[T any](capacity int) *Buffer[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &Buffer[T]{
		buffer: make([]T, size),
		mask:   uint64(size - 1),
	}
}

// Push blocks (busy-waiting) until there is space, then appends v.
func (r *Buffer[T]) Push(v T) {
	capacity := uint64(len(r.buffer))
	for {
		write := atomic.LoadUint64(&r.writePos)
		read := atomic.LoadUint64(&r.readPos)

		if write-read < capacity {
			r.buffer[write&r.mask] = v
			atomic.StoreUint64(&r.writePos, write+1)
			return
		}
		// Full: spin until the consumer frees a slot.
	}
}

// TryPush appends v without blocking, reporting whether there was room.
func (r *Buffer[T]) TryPush(v T) bool {
	capacity := uint64(len(r.buffer))
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)
	if write-read >= capacity {
		return false
	}
	r.buffer[write&r.mask] = v
	atomic.StoreUint64(&r.writePos, write+1)
	return true
}

// Read blocks (busy-waiting) until at least one element is available,
// copies up to len(out) elements into it, and returns the count read.
func (r *Buffer[T]) Read(out []T) int {
	for {
		if n := r.TryRead(out); n > 0 {
			return n
		}
		// Empty: spin until the producer publishes.
	}
}

// TryRead copies up to len(out) available elements into it without
// blocking, returning the count read (0 if the buffer is currently
// empty). Callers that must interleave draining with other work (e.g. a
// single-goroutine loop that also ticks a simulator between reads) should
// use this instead of Read.
func (r *Buffer[T]) TryRead(out []T) int {
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)

	available := write - read
	if available == 0 {
		return 0
	}

	count := available
	if uint64(len(out)) < count {
		count = uint64(len(out))
	}
	for i := uint64(0); i < count; i++ {
		out[i] = r.buffer[(read+i)&r.mask]
	}
	atomic.StoreUint64(&r.readPos, read+count)
	return int(count)
}

// Len reports the number of unread elements currently buffered.
func (r *Buffer[T]) Len() int {
	write := atomic.LoadUint64(&r.writePos)
	read := atomic.LoadUint64(&r.readPos)
	return int(write - read)
}
