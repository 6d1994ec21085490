package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jordauld1/pi-sensor/internal/adapters/sensors"
	"github.com/jordauld1/pi-sensor/pkg/pisensor"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("pi-sensor %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to station configuration file")
	sim := fs.Bool("sim", false, "Use simulated sensors instead of the I2C hardware stack")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := pisensor.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var opts []pisensor.Option
	if *sim {
		opts = append(opts, pisensor.WithReaders(sensors.NewSim(3*time.Second)))
	}

	rt, err := pisensor.NewRuntime(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rt.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := pisensor.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"pisensor_environmental_score":   0,
		"pisensor_buffer_length":         0,
		"pisensor_samples_flushed_total": 0,
		"pisensor_samples_lost_total":    0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] score=%.0f buffered=%.0f flushed=%.0f lost=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["pisensor_environmental_score"],
		targets["pisensor_buffer_length"],
		targets["pisensor_samples_flushed_total"],
		targets["pisensor_samples_lost_total"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`pi-sensor environmental station

Usage:
  pi-sensor <command> [flags]

Commands:
  run        Start the station using the provided config
  validate   Load and validate a config file without starting the station
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  pi-sensor run -config ./config.yaml
  pi-sensor run -config ./config.yaml -sim
  pi-sensor validate -config ./config.yaml
  pi-sensor stats -url http://localhost:9100/metrics -interval 1s
`)
}
