package ports

import "time"

// Policy bundles the pipeline tunables. Constructed once from config at
// startup; components never read ambient state.
type Policy struct {
	SampleInterval time.Duration `yaml:"sample_interval"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`

	BufferCapacity int           `yaml:"buffer_capacity"`
	BatchSize      int           `yaml:"batch_size"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`

	// Consecutive-error thresholds for the health monitor.
	DegradedAfter int `yaml:"degraded_after"`
	FailedAfter   int `yaml:"failed_after"`
}
