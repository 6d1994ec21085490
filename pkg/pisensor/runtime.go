package pisensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/jordauld1/pi-sensor/internal/adapters/buffer"
	"github.com/jordauld1/pi-sensor/internal/adapters/display"
	"github.com/jordauld1/pi-sensor/internal/adapters/mqtt"
	"github.com/jordauld1/pi-sensor/internal/adapters/observability"
	"github.com/jordauld1/pi-sensor/internal/adapters/sensors"
	"github.com/jordauld1/pi-sensor/internal/adapters/sink"
	"github.com/jordauld1/pi-sensor/internal/app/pipeline"
	"github.com/jordauld1/pi-sensor/internal/health"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// Option customizes the dependencies used by Runtime.
type Option func(*overrides)

type overrides struct {
	readers       []SensorReader
	sink          Sink
	buffer        SampleBuffer
	observability Observability
	displays      []Display
	publisher     Publisher
}

// WithReaders injects custom sensor sources (simulators, network feeds)
// in place of the I2C hardware stack.
func WithReaders(readers ...SensorReader) Option {
	return func(o *overrides) {
		o.readers = append(o.readers, readers...)
	}
}

// WithSink injects a custom sink so samples can go to any store or API.
func WithSink(s Sink) Option {
	return func(o *overrides) {
		o.sink = s
	}
}

// WithBuffer injects a custom buffer implementation.
func WithBuffer(b SampleBuffer) Option {
	return func(o *overrides) {
		o.buffer = b
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) Option {
	return func(o *overrides) {
		o.observability = obs
	}
}

// WithDisplay adds a render target for each cycle's sample.
func WithDisplay(d Display) Option {
	return func(o *overrides) {
		o.displays = append(o.displays, d)
	}
}

// WithPublisher injects a custom live feed in place of the MQTT client.
func WithPublisher(p Publisher) Option {
	return func(o *overrides) {
		o.publisher = p
	}
}

// Runtime wires the sensor stack -> sampler -> buffer -> flusher -> sink
// pipeline and exposes lifecycle hooks for embedding the station inside
// any Go service.
type Runtime struct {
	cfg        *Config
	obs        ports.Observability
	buf        ports.SampleBuffer
	sampler    *pipeline.Sampler
	flusher    *pipeline.Flusher
	db         *sql.DB
	publisher  ports.Publisher
	metricsSrv *http.Server

	cancel context.CancelFunc
	done   sync.WaitGroup

	closers []func() error
}

// NewRuntime bootstraps the default adapters (PiicoDev I2C sensor suite,
// ring buffer, Timescale sink, Prometheus observability, optional MQTT
// and displays). Options override any dependency.
func NewRuntime(cfg *Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var ov overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	obs := ov.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	buf := ov.buffer
	if buf == nil {
		ring, err := buffer.NewRing(cfg.Policy.BufferCapacity)
		if err != nil {
			return nil, err
		}
		buf = ring
	}

	r := &Runtime{cfg: cfg, obs: obs, buf: buf}

	readers := ov.readers
	if len(readers) == 0 {
		suite, err := sensors.NewSuite(sensors.SuiteOpts{
			Bus:        cfg.I2C.Bus,
			TMP117Addr: cfg.I2C.TMP117Addr,
			BME280Addr: cfg.I2C.BME280Addr,
			ENS160Addr: cfg.I2C.ENS160Addr,
		})
		if err != nil {
			return nil, err
		}
		readers = []SensorReader{suite}
		r.closers = append(r.closers, suite.Close)
	}

	snk := ov.sink
	if snk == nil {
		db, err := sql.Open("postgres", cfg.Timescale.ConnString)
		if err != nil {
			return nil, err
		}
		r.db = db
		snk = sink.NewTimescaleSink(db, cfg.Timescale.Table, cfg.Location)
	}

	monitor := health.NewMonitor(cfg.Policy.DegradedAfter, cfg.Policy.FailedAfter)
	r.sampler = pipeline.NewSampler(readers, monitor, buf, obs, cfg.Policy)
	r.flusher = pipeline.NewFlusher(buf, snk, obs, cfg.Policy)

	if cfg.Display.Console {
		r.sampler.AttachDisplay(display.NewConsole(os.Stdout))
	}
	if cfg.Display.OLED {
		bus, err := i2creg.Open(cfg.I2C.Bus)
		if err != nil {
			return nil, fmt.Errorf("i2c open for oled: %w", err)
		}
		oled, err := display.NewOLED(bus, obs)
		if err != nil {
			bus.Close()
			return nil, err
		}
		r.sampler.AttachDisplay(oled)
		r.closers = append(r.closers, oled.Halt, bus.Close)
	}
	for _, d := range ov.displays {
		r.sampler.AttachDisplay(d)
	}

	pub := ov.publisher
	if pub == nil && cfg.MQTT.Broker != "" {
		p, err := mqtt.NewPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			return nil, err
		}
		pub = p
	}
	if pub != nil {
		r.publisher = pub
		r.sampler.AttachPublisher(pub)
	}

	return r, nil
}

// Start launches the sampler and flusher goroutines and the metrics
// server. It returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.done.Add(2)
	go func() {
		defer r.done.Done()
		r.sampler.Run(ctx)
	}()
	go func() {
		defer r.done.Done()
		r.flusher.Run(ctx)
	}()

	r.startMetrics()
	r.obs.LogInfo("runtime_started",
		ports.Field{Key: "location", Value: r.cfg.Location},
		ports.Field{Key: "sample_interval", Value: r.cfg.Policy.SampleInterval.String()})
	return nil
}

// Run starts the runtime and blocks until the provided context is
// cancelled, then attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops sampling, runs the flusher's final drain, and closes the
// metrics server, publisher, store connection and hardware handles.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.cancel != nil {
		r.cancel()
		r.done.Wait()
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.publisher != nil {
		r.publisher.Close()
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}
