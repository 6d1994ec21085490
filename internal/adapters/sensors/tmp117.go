package sensors

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

const (
	tmp117RegTemp = 0x00

	// tmp117LSB is the temperature resolution, 7.8125 m°C per count.
	tmp117LSB = 0.0078125

	// DefaultTMP117Addr is the PiicoDev breakout's I2C address.
	DefaultTMP117Addr = 0x48
)

// TMP117 drives the TI TMP117 high-accuracy temperature sensor. It is the
// preferred temperature source; the BME280's internal thermometer runs
// warm and is only kept for its pressure and humidity channels.
type TMP117 struct {
	dev i2c.Dev
}

func NewTMP117(bus i2c.Bus, addr uint16) (*TMP117, error) {
	s := &TMP117{dev: i2c.Dev{Bus: bus, Addr: addr}}
	if _, err := s.TempC(); err != nil {
		return nil, fmt.Errorf("tmp117 probe at 0x%02X: %w", addr, err)
	}
	return s, nil
}

// TempC reads the temperature result register in degrees Celsius.
func (s *TMP117) TempC() (float64, error) {
	var b [2]byte
	if err := s.dev.Tx([]byte{tmp117RegTemp}, b[:]); err != nil {
		return 0, fmt.Errorf("tmp117 read: %w", err)
	}
	raw := int16(binary.BigEndian.Uint16(b[:]))
	return float64(raw) * tmp117LSB, nil
}
