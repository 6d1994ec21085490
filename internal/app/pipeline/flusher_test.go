package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jordauld1/pi-sensor/internal/adapters/buffer"
	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

type mockSink struct {
	failures int
	calls    int
	batches  [][]domain.ScoredSample
}

func (m *mockSink) WriteBatch(samples []domain.ScoredSample) error {
	m.calls++
	copied := make([]domain.ScoredSample, len(samples))
	copy(copied, samples)
	m.batches = append(m.batches, copied)
	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		return errors.New("store unreachable")
	}
	return nil
}

func (m *mockSink) Name() string { return "mock" }

type mockObs struct {
	counters map[string]float64
	losses   int
	errors   []error
}

func newMockObs() *mockObs { return &mockObs{counters: make(map[string]float64)} }

func (m *mockObs) LogInfo(string, ...ports.Field) {}
func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.errors = append(m.errors, err)
}
func (m *mockObs) LogCritical(string, error, ...ports.Field) {}
func (m *mockObs) IncCounter(name string, v float64)         { m.counters[name] += v }
func (m *mockObs) ObserveLatency(string, float64)            {}
func (m *mockObs) SetGauge(name string, v float64)           { m.counters[name] = v }
func (m *mockObs) RecordLoss(n int, _ string, _ *domain.ScoredSample) {
	m.losses += n
}

func testPolicy() ports.Policy {
	return ports.Policy{
		SampleInterval: time.Second,
		FlushInterval:  time.Second,
		ReadTimeout:    time.Second,
		BufferCapacity: 16,
		BatchSize:      4,
		MaxRetries:     3,
		RetryBackoff:   5 * time.Second,
		DegradedAfter:  3,
		FailedAfter:    10,
	}
}

// newTestFlusher replaces the backoff sleep with a recorder so retry tests
// run without wall-clock delays.
func newTestFlusher(buf ports.SampleBuffer, sink ports.Sink, obs ports.Observability, pol ports.Policy) (*Flusher, *[]time.Duration) {
	f := NewFlusher(buf, sink, obs, pol)
	var slept []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) bool {
		slept = append(slept, d)
		return true
	}
	return f, &slept
}

func fillBuffer(t *testing.T, n int) *buffer.Ring {
	t.Helper()
	ring, err := buffer.NewRing(16)
	if err != nil {
		t.Fatalf("new ring: %v", err)
	}
	for i := 1; i <= n; i++ {
		ring.Append(domain.ScoredSample{Timestamp: time.Unix(int64(i), 0)})
	}
	return ring
}

func TestFlushEmptyBufferIsNoop(t *testing.T) {
	ring, _ := buffer.NewRing(4)
	sink := &mockSink{}
	f, _ := newTestFlusher(ring, sink, newMockObs(), testPolicy())

	res := f.FlushOnce(context.Background())
	if res.State != FlushIdle {
		t.Fatalf("state = %v, want FlushIdle", res.State)
	}
	if sink.calls != 0 {
		t.Fatalf("sink calls = %d, want 0", sink.calls)
	}
}

func TestFlushSucceedsFirstAttempt(t *testing.T) {
	ring := fillBuffer(t, 6)
	sink := &mockSink{}
	obs := newMockObs()
	f, slept := newTestFlusher(ring, sink, obs, testPolicy())

	res := f.FlushOnce(context.Background())
	if res.State != FlushSuccess || res.Sent != 4 || res.Attempts != 1 {
		t.Fatalf("result = %+v, want success of 4 on attempt 1", res)
	}
	if len(*slept) != 0 {
		t.Fatalf("backoffs = %v, want none", *slept)
	}
	if ring.Len() != 2 {
		t.Fatalf("buffer len = %d, want 2 left after batch of 4", ring.Len())
	}
	if obs.counters["pisensor_samples_flushed_total"] != 4 {
		t.Fatalf("flushed counter = %f, want 4", obs.counters["pisensor_samples_flushed_total"])
	}
}

func TestFlushSucceedsOnFinalRetry(t *testing.T) {
	pol := testPolicy()
	ring := fillBuffer(t, 3)
	sink := &mockSink{failures: pol.MaxRetries - 1}
	obs := newMockObs()
	f, slept := newTestFlusher(ring, sink, obs, pol)

	res := f.FlushOnce(context.Background())
	if res.State != FlushSuccess {
		t.Fatalf("state = %v, want FlushSuccess", res.State)
	}
	if res.Attempts != pol.MaxRetries {
		t.Fatalf("attempts = %d, want %d", res.Attempts, pol.MaxRetries)
	}
	if ring.Len() != 0 {
		t.Fatalf("buffer len = %d, want 0 (zero requeue on eventual success)", ring.Len())
	}
	if len(*slept) != pol.MaxRetries-1 {
		t.Fatalf("backoffs = %d, want %d", len(*slept), pol.MaxRetries-1)
	}
	for _, d := range *slept {
		if d != pol.RetryBackoff {
			t.Fatalf("backoff = %v, want %v", d, pol.RetryBackoff)
		}
	}
}

func TestFlushRequeuesAfterExhaustedRetries(t *testing.T) {
	pol := testPolicy()
	ring := fillBuffer(t, 3)
	sink := &mockSink{failures: -1} // always fails
	obs := newMockObs()
	f, _ := newTestFlusher(ring, sink, obs, pol)

	res := f.FlushOnce(context.Background())
	if res.State != FlushRequeued {
		t.Fatalf("state = %v, want FlushRequeued", res.State)
	}
	if sink.calls != pol.MaxRetries {
		t.Fatalf("sink calls = %d, want exactly %d attempts", sink.calls, pol.MaxRetries)
	}
	if res.Requeued != 3 || res.Dropped != 0 {
		t.Fatalf("result = %+v, want all 3 requeued", res)
	}
	if obs.counters["pisensor_batches_requeued_total"] != 1 {
		t.Fatalf("requeue counter = %f, want 1", obs.counters["pisensor_batches_requeued_total"])
	}

	// Requeued samples come back first, in original chronological order.
	got := ring.Drain(0)
	if len(got) != 3 || got[0].Timestamp.Unix() != 1 || got[2].Timestamp.Unix() != 3 {
		t.Fatalf("buffer after requeue out of order: %+v", got)
	}
}

func TestFlushDropsWhenBufferFullOnRequeue(t *testing.T) {
	pol := testPolicy()
	pol.BatchSize = 2
	ring, err := buffer.NewRing(2)
	if err != nil {
		t.Fatalf("new ring: %v", err)
	}
	ring.Append(domain.ScoredSample{Timestamp: time.Unix(1, 0)})
	ring.Append(domain.ScoredSample{Timestamp: time.Unix(2, 0)})

	sink := &mockSink{failures: -1}
	obs := newMockObs()
	f, _ := newTestFlusher(ring, sink, obs, pol)

	// While the flusher holds the batch, the sampler refills the buffer.
	f.sleep = func(context.Context, time.Duration) bool {
		ring.Append(domain.ScoredSample{Timestamp: time.Unix(3, 0)})
		return true
	}

	res := f.FlushOnce(context.Background())
	if res.State != FlushRequeued {
		t.Fatalf("state = %v, want FlushRequeued", res.State)
	}
	if res.Dropped == 0 {
		t.Fatalf("expected dropped samples when buffer lacks room, got %+v", res)
	}
	if obs.losses != res.Dropped {
		t.Fatalf("loss accounting = %d, want %d", obs.losses, res.Dropped)
	}
	if ring.Len() > 2 {
		t.Fatalf("buffer len = %d exceeds capacity", ring.Len())
	}
}

func TestFlushAbortsOnCancelledContext(t *testing.T) {
	pol := testPolicy()
	ring := fillBuffer(t, 3)
	sink := &mockSink{failures: -1}
	f := NewFlusher(ring, sink, newMockObs(), pol)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.FlushOnce(ctx)
	if res.State != FlushAborted {
		t.Fatalf("state = %v, want FlushAborted", res.State)
	}
	if sink.calls != 1 {
		t.Fatalf("sink calls = %d, want 1 before aborting", sink.calls)
	}
	// The whole in-flight batch is back: nothing partially removed.
	if ring.Len() != 3 {
		t.Fatalf("buffer len = %d, want full batch of 3 restored", ring.Len())
	}
	got := ring.Drain(0)
	if got[0].Timestamp.Unix() != 1 || got[2].Timestamp.Unix() != 3 {
		t.Fatalf("restored batch out of order: %+v", got)
	}
}
