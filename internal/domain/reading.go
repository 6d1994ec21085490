package domain

import "time"

// Kind identifies one physical quantity measured by the station.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindHumidity    Kind = "humidity"
	KindPressure    Kind = "pressure"
	KindAQI         Kind = "aqi"
	KindTVOC        Kind = "tvoc"
	KindECO2        Kind = "eco2"
)

// Kinds lists every quantity in the order readings flow through a cycle.
var Kinds = []Kind{KindTemperature, KindHumidity, KindPressure, KindAQI, KindTVOC, KindECO2}

// Operational status strings as reported by the ENS160. A reading is only
// trustworthy when the device reports StatusOperatingOK, regardless of how
// plausible the raw number looks.
const (
	StatusOperatingOK    = "operating ok"
	StatusWarmUp         = "warm-up"
	StatusInitialStartUp = "initial start-up"
	StatusNoValidOutput  = "no valid output"
)

// Range is the declared physical [Min, Max] for a kind.
type Range struct {
	Min float64
	Max float64
}

// Ranges holds the declared signal characteristics per kind.
// AQI-UBA: 1-5, TVOC: 0-65000 ppb, eCO2: 400-65000 ppm CO2 equiv.
var Ranges = map[Kind]Range{
	KindTemperature: {Min: -40, Max: 85},
	KindHumidity:    {Min: 0, Max: 100},
	KindPressure:    {Min: 300, Max: 1100},
	KindAQI:         {Min: 1, Max: 5},
	KindTVOC:        {Min: 0, Max: 65000},
	KindECO2:        {Min: 400, Max: 65000},
}

// Reading is one polled value for one quantity. Value is nil when the
// underlying sensor produced no usable output.
type Reading struct {
	Kind      Kind
	Value     *float64
	Timestamp time.Time
	OpStatus  string
}

// Float is a convenience constructor for a *float64 reading value.
func Float(v float64) *float64 { return &v }
