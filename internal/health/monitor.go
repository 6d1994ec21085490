package health

import (
	"sync"
	"time"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/validate"
)

// Status is the error-count derived operational state of a logical sensor.
type Status string

const (
	Healthy  Status = "HEALTHY"
	Degraded Status = "DEGRADED"
	Failed   Status = "FAILED"
)

// Snapshot is what the scorer consumes for degraded-mode fallback.
type Snapshot struct {
	Status            Status
	ConsecutiveErrors int
	LastKnownGood     *float64
	LastGoodAt        time.Time
	OpStatus          string
}

type sensorState struct {
	consecutiveErrors int
	lastKnownGood     *float64
	lastGoodAt        time.Time
	opStatus          string
}

// Monitor tracks consecutive-error counts per logical sensor. Status is a
// pure function of the error count vs the configured thresholds; the
// last-known-good value is retained across any number of failures to
// support graceful degradation.
type Monitor struct {
	mu            sync.Mutex
	degradedAfter int
	failedAfter   int
	sensors       map[domain.Kind]*sensorState
}

func NewMonitor(degradedAfter, failedAfter int) *Monitor {
	return &Monitor{
		degradedAfter: degradedAfter,
		failedAfter:   failedAfter,
		sensors:       make(map[domain.Kind]*sensorState),
	}
}

// Record feeds one validation result into the state machine. A result is
// good only when validation passed AND the device reported operational
// readiness; anything else increments the error count. Only this monitor
// may update lastKnownGood -- no component bypasses it to store raw values.
func (m *Monitor) Record(res validate.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(res.Reading.Kind)
	st.opStatus = res.Reading.OpStatus

	if res.Fresh() {
		st.consecutiveErrors = 0
		v := *res.Reading.Value
		st.lastKnownGood = &v
		st.lastGoodAt = res.Reading.Timestamp
		return
	}
	st.consecutiveErrors++
}

// Current returns the sensor's status snapshot. Unknown sensors report
// Healthy with no fallback value.
func (m *Monitor) Current(kind domain.Kind) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(kind)
	snap := Snapshot{
		Status:            m.statusFor(st.consecutiveErrors),
		ConsecutiveErrors: st.consecutiveErrors,
		LastGoodAt:        st.lastGoodAt,
		OpStatus:          st.opStatus,
	}
	if st.lastKnownGood != nil {
		v := *st.lastKnownGood
		snap.LastKnownGood = &v
	}
	return snap
}

// Snapshot returns the current state of every tracked sensor.
func (m *Monitor) Snapshot() map[domain.Kind]Snapshot {
	out := make(map[domain.Kind]Snapshot, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		out[kind] = m.Current(kind)
	}
	return out
}

func (m *Monitor) state(kind domain.Kind) *sensorState {
	st, ok := m.sensors[kind]
	if !ok {
		st = &sensorState{opStatus: domain.StatusOperatingOK}
		m.sensors[kind] = st
	}
	return st
}

func (m *Monitor) statusFor(errs int) Status {
	switch {
	case errs >= m.failedAfter:
		return Failed
	case errs >= m.degradedAfter:
		return Degraded
	default:
		return Healthy
	}
}
