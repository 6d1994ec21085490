package sensors

import (
	"context"
	"math"
	"time"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// Sim generates smooth, plausible indoor readings without any hardware.
// Useful on a development machine and in the embedding example.
type Sim struct {
	start  time.Time
	warmUp time.Duration
}

var _ ports.SensorReader = (*Sim)(nil)

// NewSim returns a simulated sensor stack. For the first warmUp the gas
// channels report the warm-up status the real ENS160 goes through after
// power-on, so downstream freshness handling can be exercised end to end.
func NewSim(warmUp time.Duration) *Sim {
	return &Sim{start: time.Now(), warmUp: warmUp}
}

func (s *Sim) Name() string { return "simulated" }

func (s *Sim) Kinds() []domain.Kind { return domain.Kinds }

func (s *Sim) Read(context.Context) ([]domain.Reading, error) {
	now := time.Now()
	elapsed := time.Since(s.start).Seconds()

	op := domain.StatusOperatingOK
	if time.Since(s.start) < s.warmUp {
		op = domain.StatusWarmUp
	}

	eco2 := 650 + 300*math.Sin(elapsed/45)
	aqi := 1.0
	if eco2 >= 1000 {
		aqi = 2
	}

	mk := func(kind domain.Kind, v float64, op string) domain.Reading {
		return domain.Reading{Kind: kind, Value: domain.Float(v), Timestamp: now, OpStatus: op}
	}
	return []domain.Reading{
		mk(domain.KindTemperature, 22.5+1.5*math.Sin(elapsed/60), domain.StatusOperatingOK),
		mk(domain.KindHumidity, 45+8*math.Sin(elapsed/90), domain.StatusOperatingOK),
		mk(domain.KindPressure, 1013+2*math.Sin(elapsed/300), domain.StatusOperatingOK),
		mk(domain.KindAQI, aqi, op),
		mk(domain.KindTVOC, 200+120*math.Sin(elapsed/30), op),
		mk(domain.KindECO2, eco2, op),
	}, nil
}
