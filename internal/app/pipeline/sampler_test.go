package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jordauld1/pi-sensor/internal/adapters/buffer"
	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/health"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// scriptedReader plays back whatever readings the test loads into it,
// covering all kinds like the real sensor suite does.
type scriptedReader struct {
	out []domain.Reading
	err error
}

func (r *scriptedReader) Name() string         { return "scripted" }
func (r *scriptedReader) Kinds() []domain.Kind { return domain.Kinds }
func (r *scriptedReader) Read(context.Context) ([]domain.Reading, error) {
	return r.out, r.err
}

// blockingReader never returns until the read deadline cancels it.
type blockingReader struct{}

func (blockingReader) Name() string         { return "blocking" }
func (blockingReader) Kinds() []domain.Kind { return domain.Kinds }
func (blockingReader) Read(ctx context.Context) ([]domain.Reading, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func okReadings(now time.Time, aqi, tvoc, eco2 float64) []domain.Reading {
	mk := func(kind domain.Kind, v float64) domain.Reading {
		return domain.Reading{Kind: kind, Value: domain.Float(v), Timestamp: now, OpStatus: domain.StatusOperatingOK}
	}
	return []domain.Reading{
		mk(domain.KindTemperature, 23.5),
		mk(domain.KindHumidity, 45.2),
		mk(domain.KindPressure, 1013.2),
		mk(domain.KindAQI, aqi),
		mk(domain.KindTVOC, tvoc),
		mk(domain.KindECO2, eco2),
	}
}

func newTestSampler(t *testing.T, reader ports.SensorReader) (*Sampler, *buffer.Ring, *mockObs) {
	t.Helper()
	ring, err := buffer.NewRing(16)
	if err != nil {
		t.Fatalf("new ring: %v", err)
	}
	obs := newMockObs()
	mon := health.NewMonitor(3, 10)
	s := NewSampler([]ports.SensorReader{reader}, mon, ring, obs, testPolicy())
	s.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return s, ring, obs
}

func TestCycleNominal(t *testing.T) {
	reader := &scriptedReader{}
	s, ring, obs := newTestSampler(t, reader)
	reader.out = okReadings(s.now(), 1, 250, 800)

	sample := s.Cycle(context.Background())

	if sample.AQIRating != "Excellent" {
		t.Errorf("AQIRating = %q, want Excellent", sample.AQIRating)
	}
	if sample.ECO2Rating != "Good" {
		t.Errorf("ECO2Rating = %q, want Good", sample.ECO2Rating)
	}
	if sample.SensorStatus != domain.StatusOperatingOK {
		t.Errorf("SensorStatus = %q, want %q", sample.SensorStatus, domain.StatusOperatingOK)
	}
	if sample.EnvironmentalScore != 80 {
		t.Errorf("score = %f, want 80 (eCO2 at 800 ppm is the worst band)", sample.EnvironmentalScore)
	}
	if len(sample.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want none", sample.Recommendations)
	}
	if ring.Len() != 1 {
		t.Errorf("buffer len = %d, want 1", ring.Len())
	}
	if obs.counters["pisensor_environmental_score"] != 80 {
		t.Errorf("score gauge = %f, want 80", obs.counters["pisensor_environmental_score"])
	}
}

func TestCycleHighECO2Recommends(t *testing.T) {
	reader := &scriptedReader{}
	s, _, _ := newTestSampler(t, reader)
	reader.out = okReadings(s.now(), 1, 250, 2500)

	sample := s.Cycle(context.Background())

	if sample.ECO2Rating != "Unacceptable" {
		t.Errorf("ECO2Rating = %q, want Unacceptable", sample.ECO2Rating)
	}
	if sample.EnvironmentalScore != 20 {
		t.Errorf("score = %f, want 20", sample.EnvironmentalScore)
	}
	if len(sample.Recommendations) == 0 || sample.Recommendations[0] != "increase ventilation" {
		t.Errorf("recommendations = %v, want ventilation first", sample.Recommendations)
	}
}

func TestCycleSubstitutesAfterSensorFailure(t *testing.T) {
	reader := &scriptedReader{}
	s, ring, obs := newTestSampler(t, reader)

	// One healthy cycle seeds the last known good AQI of 2.
	reader.out = okReadings(s.now(), 2, 250, 600)
	s.Cycle(context.Background())

	// The air quality channel then stops producing valid output while the
	// other quantities keep flowing.
	broken := okReadings(s.now(), 0, 250, 600)
	for i := range broken {
		if broken[i].Kind == domain.KindAQI {
			broken[i].Value = nil
			broken[i].OpStatus = domain.StatusNoValidOutput
		}
	}
	reader.out = broken

	var sample domain.ScoredSample
	for i := 0; i < 12; i++ {
		sample = s.Cycle(context.Background())
	}

	if got := s.monitor.Current(domain.KindAQI).Status; got != health.Failed {
		t.Fatalf("AQI status after 12 bad cycles = %v, want %v", got, health.Failed)
	}
	if sample.AQI == nil || *sample.AQI != 2 {
		t.Errorf("AQI = %v, want last known good 2", sample.AQI)
	}
	if sample.AQIRating != "Good" {
		t.Errorf("AQIRating = %q, want Good", sample.AQIRating)
	}
	if !strings.Contains(sample.SensorStatus, "aqi failed (last known good)") {
		t.Errorf("SensorStatus = %q, want aqi marked failed with substitution", sample.SensorStatus)
	}
	if obs.counters["pisensor_read_errors_total"] != 12 {
		t.Errorf("read errors = %f, want 12", obs.counters["pisensor_read_errors_total"])
	}
	if ring.Len() != 13 {
		t.Errorf("buffer len = %d, want 13 (every cycle buffered)", ring.Len())
	}
}

func TestCycleBoundsUnresponsiveReader(t *testing.T) {
	s, ring, obs := newTestSampler(t, blockingReader{})
	s.pol.ReadTimeout = 20 * time.Millisecond

	start := time.Now()
	sample := s.Cycle(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cycle took %v, want bounded by the read timeout", elapsed)
	}

	if sample.Temperature != nil || sample.AQI != nil {
		t.Errorf("expected all fields absent, got %+v", sample)
	}
	if !strings.Contains(sample.SensorStatus, "(no data)") {
		t.Errorf("SensorStatus = %q, want no-data annotation", sample.SensorStatus)
	}
	if ring.Len() != 1 {
		t.Errorf("buffer len = %d, want 1 even when every read fails", ring.Len())
	}
	if len(obs.errors) == 0 {
		t.Errorf("expected sensor_read_failed to be logged")
	}
}
