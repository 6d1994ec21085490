package pipeline

import (
	"context"
	"time"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/health"
	"github.com/jordauld1/pi-sensor/internal/ports"
	"github.com/jordauld1/pi-sensor/internal/scoring"
	"github.com/jordauld1/pi-sensor/internal/validate"
)

// Sampler drives one sampling cycle on a fixed cadence:
// read -> validate -> health update -> score -> buffer append, plus
// fire-and-forget display/publish. A slow or failing store never delays
// sampling; the flusher runs on its own goroutine and cadence, and the
// shared buffer serializes access internally.
type Sampler struct {
	readers   []ports.SensorReader
	monitor   *health.Monitor
	buf       ports.SampleBuffer
	obs       ports.Observability
	pol       ports.Policy
	displays  []ports.Display
	publisher ports.Publisher

	now func() time.Time
}

func NewSampler(readers []ports.SensorReader, monitor *health.Monitor, buf ports.SampleBuffer, obs ports.Observability, pol ports.Policy) *Sampler {
	return &Sampler{
		readers: readers,
		monitor: monitor,
		buf:     buf,
		obs:     obs,
		pol:     pol,
		now:     time.Now,
	}
}

// AttachDisplay registers a render target for each cycle's sample.
func (s *Sampler) AttachDisplay(d ports.Display) {
	if d != nil {
		s.displays = append(s.displays, d)
	}
}

// AttachPublisher registers a live feed for each cycle's sample.
func (s *Sampler) AttachPublisher(p ports.Publisher) {
	if p != nil {
		s.publisher = p
	}
}

// Run samples on the configured interval until ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.pol.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle executes one sampling pass and returns the sample it buffered.
// Individual sensor failures degrade the sample, never abort the cycle.
func (s *Sampler) Cycle(ctx context.Context) domain.ScoredSample {
	now := s.now()
	results := make(map[domain.Kind]validate.Result, len(domain.Kinds))

	for _, r := range s.readers {
		for _, rd := range s.readFrom(ctx, r, now) {
			res := validate.CheckKind(rd)
			if !res.InRange {
				s.obs.IncCounter("pisensor_read_errors_total", 1)
			}
			s.monitor.Record(res)
			results[rd.Kind] = res
		}
	}

	sample := scoring.Score(results, s.monitor.Snapshot(), now)
	s.buf.Append(sample)

	for _, d := range s.displays {
		d.Render(0, sample)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(sample); err != nil {
			s.obs.LogError("publish_failed", err)
		}
	}

	s.obs.SetGauge("pisensor_buffer_length", float64(s.buf.Len()))
	s.obs.SetGauge("pisensor_buffer_evicted_total", float64(s.buf.Evicted()))
	s.obs.SetGauge("pisensor_environmental_score", sample.EnvironmentalScore)
	return sample
}

// readFrom polls one reader under the bounded read timeout. A failed or
// timed-out read yields absent readings for every kind the reader covers,
// so an unresponsive sensor can never stall the pipeline.
func (s *Sampler) readFrom(ctx context.Context, r ports.SensorReader, now time.Time) []domain.Reading {
	readCtx, cancel := context.WithTimeout(ctx, s.pol.ReadTimeout)
	defer cancel()

	readings, err := r.Read(readCtx)
	if err == nil {
		return readings
	}

	s.obs.LogError("sensor_read_failed", err, ports.Field{Key: "sensor", Value: r.Name()})
	absent := make([]domain.Reading, 0, len(r.Kinds()))
	for _, kind := range r.Kinds() {
		absent = append(absent, domain.Reading{
			Kind:      kind,
			Timestamp: now,
			OpStatus:  domain.StatusNoValidOutput,
		})
	}
	return absent
}
