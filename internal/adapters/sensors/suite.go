package sensors

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// SuiteOpts carries the I2C wiring of the sensor stack. Zero values fall
// back to the default bus and the PiicoDev breakout addresses.
type SuiteOpts struct {
	Bus        string
	TMP117Addr uint16
	BME280Addr uint16
	ENS160Addr uint16
}

// Suite reads the full PiicoDev sensor stack as one logical source:
// TMP117 for temperature, BME280 for pressure and humidity, ENS160 for
// air quality. Each cycle the fresh temperature and humidity are fed into
// the ENS160's compensation registers before its gas channels are read,
// so the air quality figures track ambient conditions.
type Suite struct {
	bus  i2c.BusCloser
	temp *TMP117
	atmo *BME280
	air  *ENS160
}

var _ ports.SensorReader = (*Suite)(nil)

func NewSuite(opts SuiteOpts) (*Suite, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(opts.Bus)
	if err != nil {
		return nil, fmt.Errorf("i2c open %q: %w", opts.Bus, err)
	}

	s := &Suite{bus: bus}
	if s.temp, err = NewTMP117(bus, addrOr(opts.TMP117Addr, DefaultTMP117Addr)); err != nil {
		bus.Close()
		return nil, err
	}
	if s.atmo, err = NewBME280(bus, addrOr(opts.BME280Addr, DefaultBME280Addr)); err != nil {
		bus.Close()
		return nil, err
	}
	if s.air, err = NewENS160(bus, addrOr(opts.ENS160Addr, DefaultENS160Addr)); err != nil {
		bus.Close()
		return nil, err
	}
	return s, nil
}

func addrOr(addr, def uint16) uint16 {
	if addr == 0 {
		return def
	}
	return addr
}

func (s *Suite) Name() string { return "piicodev-suite" }

func (s *Suite) Kinds() []domain.Kind { return domain.Kinds }

// Read polls every channel once. A failing device yields absent readings
// for its kinds only; the rest of the stack still reports.
func (s *Suite) Read(ctx context.Context) ([]domain.Reading, error) {
	now := time.Now()
	out := make([]domain.Reading, 0, len(domain.Kinds))

	tempC, tempErr := s.temp.TempC()
	out = append(out, reading(domain.KindTemperature, tempC, now, tempErr))

	_, presHPa, humRH, atmoErr := s.atmo.Sense()
	out = append(out,
		reading(domain.KindHumidity, humRH, now, atmoErr),
		reading(domain.KindPressure, presHPa, now, atmoErr),
	)

	if err := ctx.Err(); err != nil {
		return out, err
	}

	// Compensation wants real ambient values; skip it when either input
	// channel failed this cycle and let the chip keep its previous inputs.
	if tempErr == nil && atmoErr == nil {
		if err := s.air.SetAmbient(tempC, humRH); err != nil {
			return out, err
		}
	}

	op, err := s.air.Operation()
	if err != nil {
		op = domain.StatusNoValidOutput
	}
	aqi, aqiErr := s.air.AQI()
	tvoc, tvocErr := s.air.TVOC()
	eco2, eco2Err := s.air.ECO2()
	out = append(out,
		airReading(domain.KindAQI, float64(aqi), now, op, aqiErr),
		airReading(domain.KindTVOC, float64(tvoc), now, op, tvocErr),
		airReading(domain.KindECO2, float64(eco2), now, op, eco2Err),
	)
	return out, nil
}

func (s *Suite) Close() error { return s.bus.Close() }

func reading(kind domain.Kind, v float64, now time.Time, err error) domain.Reading {
	if err != nil {
		return domain.Reading{Kind: kind, Timestamp: now, OpStatus: domain.StatusNoValidOutput}
	}
	return domain.Reading{Kind: kind, Value: domain.Float(v), Timestamp: now, OpStatus: domain.StatusOperatingOK}
}

func airReading(kind domain.Kind, v float64, now time.Time, op string, err error) domain.Reading {
	if err != nil {
		return domain.Reading{Kind: kind, Timestamp: now, OpStatus: domain.StatusNoValidOutput}
	}
	return domain.Reading{Kind: kind, Value: domain.Float(v), Timestamp: now, OpStatus: op}
}
