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

// Consumes flushed batches from a channel sink, the shape to use when the
// embedding service wants to fan samples out to its own consumers.
func main() {
	cfg := &pisensor.Config{
		Timescale: pisensor.TimescaleConfig{
			ConnString: "postgres://unused@localhost/unused?sslmode=disable",
		},
		Metrics: pisensor.MetricsConfig{Addr: ":9101"},
	}
	cfg.ApplyDefaults()
	cfg.Policy.FlushInterval = 5 * time.Second

	sink, batches, closeBatches := pisensor.NewChannelSink("fanout", 32)
	defer closeBatches()

	go fanoutWorker("ingest", batches)

	rt, err := pisensor.NewRuntime(cfg,
		pisensor.WithReaders(sensors.NewSim(3*time.Second)),
		pisensor.WithSink(sink),
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

func fanoutWorker(name string, batches <-chan []pisensor.Sample) {
	for batch := range batches {
		fmt.Printf("[%s] forwarding %d samples at %s\n", name, len(batch), time.Now().Format(time.RFC3339))
	}
}
