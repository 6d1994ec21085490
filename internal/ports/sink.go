package ports

import "github.com/jordauld1/pi-sensor/internal/domain"

// Sink persists batches of scored samples to the time-series store.
// Failures carry no structured recovery hint; the flusher treats every
// failure identically for retry purposes.
type Sink interface {
	WriteBatch(samples []domain.ScoredSample) error
	Name() string
}
