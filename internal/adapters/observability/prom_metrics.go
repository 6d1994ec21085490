package observability

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	flushed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pisensor_samples_flushed_total",
		Help: "Samples successfully written to the time-series store.",
	})
	flushFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pisensor_flush_failures_total",
		Help: "Failed batch write attempts, including retries.",
	})
	requeued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pisensor_batches_requeued_total",
		Help: "Batches returned to the buffer after exhausting retries.",
	})
	lost := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pisensor_samples_lost_total",
		Help: "Samples dropped on purpose: buffer eviction or requeue overflow.",
	})
	readErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pisensor_read_errors_total",
		Help: "Sensor reads that failed validation or timed out.",
	})
	bufferLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pisensor_buffer_length",
		Help: "Samples currently held in the in-memory ring buffer.",
	})
	bufferEvicted := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pisensor_buffer_evicted_total",
		Help: "Cumulative samples evicted from the buffer by overflow.",
	})
	envScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pisensor_environmental_score",
		Help: "Composite environmental score of the latest sample (worst band wins).",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pisensor_flush_latency_seconds",
		Help:    "Latency of one successful batch write to the store.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(flushed, flushFailures, requeued, lost, readErrors,
		bufferLen, bufferEvicted, envScore, latency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"pisensor_samples_flushed_total":  flushed,
			"pisensor_flush_failures_total":   flushFailures,
			"pisensor_batches_requeued_total": requeued,
			"pisensor_samples_lost_total":     lost,
			"pisensor_read_errors_total":      readErrors,
		},
		gauges: map[string]prometheus.Gauge{
			"pisensor_buffer_length":        bufferLen,
			"pisensor_buffer_evicted_total": bufferEvicted,
			"pisensor_environmental_score":  envScore,
		},
		histos: map[string]prometheus.Observer{
			"pisensor_flush_latency_seconds": latency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordLoss(n int, reason string, sample *domain.ScoredSample) {
	if n <= 0 {
		return
	}
	p.IncCounter("pisensor_samples_lost_total", float64(n))
	if sample != nil {
		log.Printf("LOSS: %d sample(s) dropped (%s), oldest ts=%s", n, reason, sample.Timestamp.Format(time.RFC3339))
		return
	}
	log.Printf("LOSS: %d sample(s) dropped (%s)", n, reason)
}

func formatFields(fields []ports.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
