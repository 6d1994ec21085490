package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// OLED renders samples on a 128x64 SSD1306 panel, one metric per line.
// The driver speaks to the panel's fixed I2C address 0x3C.
type OLED struct {
	dev *ssd1306.Dev
	obs ports.Observability
}

var _ ports.Display = (*OLED)(nil)

func NewOLED(bus i2c.Bus, obs ports.Observability) (*OLED, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("ssd1306 init: %w", err)
	}
	return &OLED{dev: dev, obs: obs}, nil
}

// Render draws the requested page. Page 0 is the live metrics view; any
// other page shows the sensor status and recommendations.
func (o *OLED) Render(page int, s domain.ScoredSample) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	var lines []string
	if page == 0 {
		lines = []string{
			fmt.Sprintf("Temp: %sC", fmtFloat(s.Temperature)),
			fmt.Sprintf("Humid: %s%%", fmtFloat(s.Humidity)),
			fmt.Sprintf("Press: %shPa", fmtFloat(s.Pressure)),
			fmt.Sprintf("AQI: %s%s", fmtInt(s.AQI), bracket(s.AQIRating)),
			fmt.Sprintf("TVOC: %sppb", fmtInt(s.TVOC)),
			fmt.Sprintf("eCO2: %sppm%s", fmtInt(s.ECO2), bracket(s.ECO2Rating)),
		}
	} else {
		lines = append(lines,
			fmt.Sprintf("Score: %.0f", s.EnvironmentalScore),
			s.SensorStatus,
		)
		lines = append(lines, s.Recommendations...)
	}

	for i, line := range lines {
		if i >= 6 {
			break
		}
		drawer.Dot = fixed.P(0, 10*i+10)
		drawer.DrawBytes([]byte(line))
	}

	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		o.obs.LogError("oled_draw_failed", err)
	}
}

func (o *OLED) Halt() error { return o.dev.Halt() }
