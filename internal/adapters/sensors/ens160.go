package sensors

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/jordauld1/pi-sensor/internal/domain"
)

// ENS160 register map (ScioSense ENS160 datasheet rev 1.1).
const (
	ens160RegPartID   = 0x00
	ens160RegOpMode   = 0x10
	ens160RegTempIn   = 0x13
	ens160RegRHIn     = 0x15
	ens160RegStatus   = 0x20
	ens160RegAQI      = 0x21
	ens160RegTVOC     = 0x22
	ens160RegECO2     = 0x24

	ens160OpModeStandard = 0x02

	ens160PartID = 0x0160

	// DefaultENS160Addr is the PiicoDev breakout's I2C address.
	DefaultENS160Addr = 0x53
)

// ENS160 drives the ScioSense ENS160 digital metal-oxide gas sensor over
// I2C. The chip reports an UBA air quality index, TVOC in ppb and eCO2 in
// ppm, and accepts ambient temperature and relative humidity inputs that
// it uses to compensate its readings.
type ENS160 struct {
	dev i2c.Dev
}

func NewENS160(bus i2c.Bus, addr uint16) (*ENS160, error) {
	s := &ENS160{dev: i2c.Dev{Bus: bus, Addr: addr}}

	var id [2]byte
	if err := s.dev.Tx([]byte{ens160RegPartID}, id[:]); err != nil {
		return nil, fmt.Errorf("ens160 part id: %w", err)
	}
	if got := binary.LittleEndian.Uint16(id[:]); got != ens160PartID {
		return nil, fmt.Errorf("ens160 at 0x%02X: unexpected part id 0x%04X", addr, got)
	}

	if err := s.dev.Tx([]byte{ens160RegOpMode, ens160OpModeStandard}, nil); err != nil {
		return nil, fmt.Errorf("ens160 set standard mode: %w", err)
	}
	return s, nil
}

// SetAmbient feeds the current air temperature and relative humidity into
// the sensor's compensation registers. TEMP_IN wants Kelvin scaled by 64,
// RH_IN wants %RH scaled by 512.
func (s *ENS160) SetAmbient(tempC, rh float64) error {
	t := uint16((tempC + 273.15) * 64)
	h := uint16(rh * 512)

	buf := []byte{ens160RegTempIn, 0, 0}
	binary.LittleEndian.PutUint16(buf[1:], t)
	if err := s.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("ens160 temp_in: %w", err)
	}
	binary.LittleEndian.PutUint16(buf[1:], h)
	buf[0] = ens160RegRHIn
	if err := s.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("ens160 rh_in: %w", err)
	}
	return nil
}

// Operation reads DEVICE_STATUS and maps the validity flag (bits 2-3) to
// the sensor's reported operating state.
func (s *ENS160) Operation() (string, error) {
	var st [1]byte
	if err := s.dev.Tx([]byte{ens160RegStatus}, st[:]); err != nil {
		return "", fmt.Errorf("ens160 status: %w", err)
	}
	switch (st[0] >> 2) & 0x03 {
	case 0:
		return domain.StatusOperatingOK, nil
	case 1:
		return domain.StatusWarmUp, nil
	case 2:
		return domain.StatusInitialStartUp, nil
	default:
		return domain.StatusNoValidOutput, nil
	}
}

// AQI reads the UBA air quality index, 1 (excellent) to 5 (unhealthy).
func (s *ENS160) AQI() (int, error) {
	var b [1]byte
	if err := s.dev.Tx([]byte{ens160RegAQI}, b[:]); err != nil {
		return 0, fmt.Errorf("ens160 aqi: %w", err)
	}
	return int(b[0] & 0x07), nil
}

// TVOC reads the total volatile organic compound concentration in ppb.
func (s *ENS160) TVOC() (int, error) {
	var b [2]byte
	if err := s.dev.Tx([]byte{ens160RegTVOC}, b[:]); err != nil {
		return 0, fmt.Errorf("ens160 tvoc: %w", err)
	}
	return int(binary.LittleEndian.Uint16(b[:])), nil
}

// ECO2 reads the CO2-equivalent concentration in ppm.
func (s *ENS160) ECO2() (int, error) {
	var b [2]byte
	if err := s.dev.Tx([]byte{ens160RegECO2}, b[:]); err != nil {
		return 0, fmt.Errorf("ens160 eco2: %w", err)
	}
	return int(binary.LittleEndian.Uint16(b[:])), nil
}
