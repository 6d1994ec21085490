package pipeline

import (
	"context"
	"time"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// FlushState labels the outcome of one flush cycle:
// IDLE -> DRAINING -> SENDING -> {SUCCESS | RETRY | DROPPED}.
type FlushState int

const (
	FlushIdle FlushState = iota // empty buffer, nothing to do
	FlushSuccess
	FlushRequeued // retries exhausted, batch returned to the buffer head
	FlushAborted  // shutdown mid-retry, batch returned whole
)

// FlushResult reports what one cycle did, for tests and logging.
type FlushResult struct {
	State    FlushState
	Attempts int
	Sent     int
	Requeued int
	Dropped  int
}

// Flusher drains the sample buffer on its own cadence and ships batches to
// the sink with bounded retry. While a batch is being retried it is held
// outside the buffer so it cannot reorder with newly appended samples; only
// after retries are exhausted is it requeued at the head.
type Flusher struct {
	buf  ports.SampleBuffer
	sink ports.Sink
	obs  ports.Observability
	pol  ports.Policy

	// sleep waits for the retry backoff; it returns false when ctx was
	// cancelled first. Injectable so tests run without wall-clock delays.
	sleep func(ctx context.Context, d time.Duration) bool
	now   func() time.Time
}

func NewFlusher(buf ports.SampleBuffer, sink ports.Sink, obs ports.Observability, pol ports.Policy) *Flusher {
	return &Flusher{
		buf:   buf,
		sink:  sink,
		obs:   obs,
		pol:   pol,
		sleep: sleepCtx,
		now:   time.Now,
	}
}

// Run flushes on the configured interval until ctx is cancelled, then
// drains whatever remains while the sink keeps accepting, so shutdown
// never strands a full buffer silently.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.pol.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for f.FlushOnce(ctx).State == FlushSuccess {
			}
			return
		case <-ticker.C:
			f.FlushOnce(ctx)
		}
	}
}

// FlushOnce executes a single flush cycle. An empty buffer is a no-op, not
// an error. On cancellation the in-flight batch is requeued whole; it is
// never partially removed without a send confirmation.
func (f *Flusher) FlushOnce(ctx context.Context) FlushResult {
	batch := f.buf.Drain(f.pol.BatchSize)
	if len(batch) == 0 {
		return FlushResult{State: FlushIdle}
	}

	for attempt := 1; ; attempt++ {
		start := f.now()
		err := f.sink.WriteBatch(batch)
		if err == nil {
			f.obs.ObserveLatency("pisensor_flush_latency_seconds", f.now().Sub(start).Seconds())
			f.obs.IncCounter("pisensor_samples_flushed_total", float64(len(batch)))
			return FlushResult{State: FlushSuccess, Attempts: attempt, Sent: len(batch)}
		}

		f.obs.IncCounter("pisensor_flush_failures_total", 1)
		f.obs.LogError("flush_failed", err,
			ports.Field{Key: "sink", Value: f.sink.Name()},
			ports.Field{Key: "attempt", Value: attempt},
			ports.Field{Key: "batch", Value: len(batch)})

		if attempt >= f.pol.MaxRetries {
			return f.requeue(batch, attempt, FlushRequeued)
		}
		if !f.sleep(ctx, f.pol.RetryBackoff) {
			return f.requeue(batch, attempt, FlushAborted)
		}
	}
}

func (f *Flusher) requeue(batch []domain.ScoredSample, attempts int, state FlushState) FlushResult {
	dropped := f.buf.RequeueFront(batch)
	if state == FlushRequeued {
		f.obs.IncCounter("pisensor_batches_requeued_total", 1)
	}
	if dropped > 0 {
		f.obs.RecordLoss(dropped, "requeue overflow", &batch[0])
	}
	return FlushResult{
		State:    state,
		Attempts: attempts,
		Requeued: len(batch) - dropped,
		Dropped:  dropped,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
