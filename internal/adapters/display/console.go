package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// Console prints each sample as a short human-readable block, the way you
// would watch the station from an attached terminal.
type Console struct {
	w io.Writer
}

var _ ports.Display = (*Console)(nil)

func NewConsole(w io.Writer) *Console { return &Console{w: w} }

func (c *Console) Render(_ int, s domain.ScoredSample) {
	fmt.Fprintf(c.w, "Temp: %s °C, Press: %s hPa, Humid: %s %%RH\n",
		fmtFloat(s.Temperature), fmtFloat(s.Pressure), fmtFloat(s.Humidity))
	fmt.Fprintf(c.w, "AQI: %s%s, TVOC: %s ppb, eCO2: %s ppm%s\n",
		fmtInt(s.AQI), bracket(s.AQIRating), fmtInt(s.TVOC), fmtInt(s.ECO2), bracket(s.ECO2Rating))
	fmt.Fprintf(c.w, "Score: %.0f, Sensor Status: %s\n", s.EnvironmentalScore, s.SensorStatus)
	for _, r := range s.Recommendations {
		fmt.Fprintf(c.w, "  -> %s\n", r)
	}
	fmt.Fprintln(c.w, "--------------------------------")
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "--"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func fmtInt(v *int64) string {
	if v == nil {
		return "--"
	}
	return strconv.FormatInt(*v, 10)
}

func bracket(rating string) string {
	if rating == "" {
		return ""
	}
	return " [" + rating + "]"
}
