package pisensor

import (
	"github.com/jordauld1/pi-sensor/internal/app/config"
	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// Sample is the scored environmental record that flows from the sampler
// through the buffer into sinks, displays and publishers. Exported so
// custom adapters can reference it.
type Sample = domain.ScoredSample

// Reading is one raw polled value for one quantity.
type Reading = domain.Reading

// Kind identifies a measured quantity (temperature, humidity, ...).
type Kind = domain.Kind

// SensorReader streams raw readings from any source (I2C stack,
// simulator, network feed) into the pipeline.
type SensorReader = ports.SensorReader

// SampleBuffer is the bounded in-memory buffer that decouples sampling
// from flushing.
type SampleBuffer = ports.SampleBuffer

// Sink consumes batches of scored samples and persists them downstream.
type Sink = ports.Sink

// Display renders the latest sample somewhere visible.
type Display = ports.Display

// Publisher pushes each sample to a live feed.
type Publisher = ports.Publisher

// Observability emits metrics and logs about the pipeline.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// Config re-exports the root configuration struct so embedding projects
// can construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls sampling, flushing and health thresholds.
	Policy = ports.Policy
	// I2CConfig names the bus and breakout addresses.
	I2CConfig = config.I2CConfig
	// TimescaleConfig configures the sink.
	TimescaleConfig = config.TimescaleConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// MQTTConfig configures the optional live feed.
	MQTTConfig = config.MQTTConfig
	// DisplayConfig selects render targets.
	DisplayConfig = config.DisplayConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
