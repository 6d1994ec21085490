package domain

import "time"

// ScoredSample is the unit stored in the buffer and shipped to the
// time-series store. Pointer fields are nil when the sensor was failed with
// no last-known-good value to substitute; they are written as SQL NULL and
// excluded from the composite score.
type ScoredSample struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature,omitempty"`
	Humidity    *float64  `json:"humidity,omitempty"`
	Pressure    *float64  `json:"pressure,omitempty"`
	AQI         *int64    `json:"aqi,omitempty"`
	TVOC        *int64    `json:"tvoc,omitempty"`
	ECO2        *int64    `json:"eco2,omitempty"`

	AQIRating    string `json:"aqi_rating"`
	ECO2Rating   string `json:"eco2_rating"`
	SensorStatus string `json:"sensor_status"`

	EnvironmentalScore float64  `json:"environmental_score"`
	Recommendations    []string `json:"recommendations,omitempty"`
}
