package ports

import "github.com/jordauld1/pi-sensor/internal/domain"

// SampleBuffer is the bounded FIFO store between the sampling loop and the
// flusher. Append never blocks and never fails: on a full buffer the oldest
// sample is evicted and counted. RequeueFront reinserts a failed batch at
// the head preserving order; it returns how many samples had to be dropped
// because the buffer was full.
type SampleBuffer interface {
	Append(s domain.ScoredSample)
	// Drain removes up to max samples in FIFO order; max <= 0 drains all.
	Drain(max int) []domain.ScoredSample
	RequeueFront(samples []domain.ScoredSample) (dropped int)
	Len() int
	Evicted() uint64
}
