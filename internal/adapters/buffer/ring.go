package buffer

import (
	"fmt"
	"sync"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// Ring is a fixed-capacity, arena-backed ring buffer of scored samples.
// The backing slice never grows, so memory use stays flat under sustained
// store outages. When full, Append evicts the oldest sample; overflow is
// expected steady-state behavior and is counted, never raised as an error.
type Ring struct {
	mu      sync.Mutex
	buf     []domain.ScoredSample
	head    int
	size    int
	evicted uint64
}

func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring buffer capacity must be positive, got %d", capacity)
	}
	return &Ring{buf: make([]domain.ScoredSample, capacity)}, nil
}

// Append stores s, evicting the oldest sample when full. Never blocks.
func (r *Ring) Append(s domain.ScoredSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == len(r.buf) {
		r.buf[r.head] = s
		r.head = (r.head + 1) % len(r.buf)
		r.evicted++
		return
	}
	r.buf[(r.head+r.size)%len(r.buf)] = s
	r.size++
}

// Drain removes and returns up to max samples in FIFO order.
func (r *Ring) Drain(max int) []domain.ScoredSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil
	}
	n := max
	if n <= 0 || n > r.size {
		n = r.size
	}
	out := make([]domain.ScoredSample, n)
	for i := 0; i < n; i++ {
		idx := (r.head + i) % len(r.buf)
		out[i] = r.buf[idx]
		r.buf[idx] = domain.ScoredSample{}
	}
	r.head = (r.head + n) % len(r.buf)
	r.size -= n
	return out
}

// RequeueFront reinserts samples at the head preserving their relative
// order, so a later flush still ships them in original chronological order.
// When there is not enough room, the oldest requeued samples are dropped
// (consistent with the buffer's oldest-first eviction); the count of
// dropped samples is returned for loss accounting.
func (r *Ring) RequeueFront(samples []domain.ScoredSample) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	free := len(r.buf) - r.size
	dropped := 0
	if len(samples) > free {
		dropped = len(samples) - free
		samples = samples[dropped:]
	}
	for i := len(samples) - 1; i >= 0; i-- {
		r.head = (r.head - 1 + len(r.buf)) % len(r.buf)
		r.buf[r.head] = samples[i]
		r.size++
	}
	return dropped
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Evicted reports the monotonically increasing count of samples lost to
// capacity overflow on Append.
func (r *Ring) Evicted() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evicted
}

var _ ports.SampleBuffer = (*Ring)(nil)
