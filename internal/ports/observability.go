package ports

import "github.com/jordauld1/pi-sensor/internal/domain"

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)

	// RecordLoss accounts samples dropped on purpose (buffer eviction,
	// retry exhaustion with a full buffer). Dropping is allowed; silent
	// dropping is not.
	RecordLoss(n int, reason string, sample *domain.ScoredSample)
}

type Field struct {
	Key   string
	Value any
}
