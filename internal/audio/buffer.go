package audio

import (
	"fmt"
	"sync"
)

// RingBuffer is a fixed-size circular byte buffer used between the
// capture callback and the recognizer, and between synthesis and the
// playback device. Safe for one writer and one reader.
type RingBuffer struct {
	mu    sync.RWMutex
	data  []byte
	size  int
	head  int // next read position
	tail  int // next write position
	count int // bytes currently stored
}

// NewRingBuffer creates a ring buffer holding size bytes.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]byte, size),
		size: size,
	}
}

// Write copies as much of p as fits and returns the number of bytes
// stored. Writing to a full buffer is an error; a partial write is not.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	free := rb.size - rb.count
	if free == 0 {
		return 0, fmt.Errorf("buffer is full")
	}

	n := len(p)
	if n > free {
		n = free
	}

	// At most two segments when the write crosses the end of the array
	first := rb.size - rb.tail
	if first > n {
		first = n
	}
	copy(rb.data[rb.tail:], p[:first])
	copy(rb.data, p[first:n])

	rb.tail = (rb.tail + n) % rb.size
	rb.count += n
	return n, nil
}

// Read copies up to len(p) stored bytes into p and returns how many
// were copied. An empty buffer reads zero bytes.
func (rb *RingBuffer) Read(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if n > rb.count {
		n = rb.count
	}
	if n == 0 {
		return 0
	}

	first := rb.size - rb.head
	if first > n {
		first = n
	}
	copy(p[:first], rb.data[rb.head:rb.head+first])
	copy(p[first:n], rb.data)

	rb.head = (rb.head + n) % rb.size
	rb.count -= n
	return n
}

// Available returns the number of bytes waiting to be read.
func (rb *RingBuffer) Available() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Free returns the number of bytes that can still be written.
func (rb *RingBuffer) Free() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size - rb.count
}

// Reset discards all stored bytes.
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.head = 0
	rb.tail = 0
	rb.count = 0
}

// Size returns the buffer capacity in bytes.
func (rb *RingBuffer) Size() int {
	return rb.size
}

// IsFull reports whether no more bytes can be written.
func (rb *RingBuffer) IsFull() bool {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count == rb.size
}

// IsEmpty reports whether there is nothing to read.
func (rb *RingBuffer) IsEmpty() bool {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count == 0
}
