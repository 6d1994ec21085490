package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

// DefaultBME280Addr is the PiicoDev breakout's I2C address.
const DefaultBME280Addr = 0x77

// BME280 wraps the Bosch combined humidity/pressure sensor. Its
// temperature output is read only as a fallback; see TMP117.
type BME280 struct {
	dev *bmxx80.Dev
}

func NewBME280(bus i2c.Bus, addr uint16) (*BME280, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("bme280 init at 0x%02X: %w", addr, err)
	}
	return &BME280{dev: dev}, nil
}

// Sense reads temperature (°C), pressure (hPa) and relative humidity (%RH).
func (s *BME280) Sense() (tempC, presHPa, humRH float64, err error) {
	var e physic.Env
	if err := s.dev.Sense(&e); err != nil {
		return 0, 0, 0, fmt.Errorf("bme280 sense: %w", err)
	}
	tempC = e.Temperature.Celsius()
	presHPa = float64(e.Pressure) / float64(physic.Pascal) / 100
	humRH = float64(e.Humidity) / float64(physic.PercentRH)
	return tempC, presHPa, humRH, nil
}

func (s *BME280) Halt() error { return s.dev.Halt() }
