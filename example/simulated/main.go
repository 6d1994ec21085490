package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jordauld1/pi-sensor/internal/adapters/sensors"
	"github.com/jordauld1/pi-sensor/pkg/pisensor"
)

// Runs the station entirely in software: simulated sensors feed the
// pipeline and flushed batches are printed instead of stored.
func main() {
	cfg := &pisensor.Config{
		Timescale: pisensor.TimescaleConfig{
			ConnString: "postgres://unused@localhost/unused?sslmode=disable",
		},
		Metrics: pisensor.MetricsConfig{Addr: ":9100"},
	}
	cfg.ApplyDefaults()
	cfg.Policy.SampleInterval = time.Second
	cfg.Policy.FlushInterval = 5 * time.Second

	printer := pisensor.NewCallbackSink("stdout", func(batch []pisensor.Sample) error {
		for _, sample := range batch {
			fmt.Printf("%s score=%.0f status=%q recommendations=%v\n",
				sample.Timestamp.Format(time.RFC3339),
				sample.EnvironmentalScore,
				sample.SensorStatus,
				sample.Recommendations,
			)
		}
		return nil
	})

	rt, err := pisensor.NewRuntime(cfg,
		pisensor.WithReaders(sensors.NewSim(3*time.Second)),
		pisensor.WithSink(printer),
	)
	if err != nil {
		log.Fatalf("new runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime exited: %v", err)
	}
}
