package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/ports"
)

// SensorTag is the constant sensor identifier carried on every point.
const SensorTag = "piicodev-air-quality"

// columns is the external point schema. Names and types are part of the
// downstream contract and must not change.
const columns = "ts, sensor, location, temperature, humidity, pressure, aqi, tvoc, eco2, aqi_rating, eco2_rating, sensor_status"

// TimescaleSink writes scored samples to a TimescaleDB hypertable.
type TimescaleSink struct {
	db        *sql.DB
	tableName string
	location  string
}

func NewTimescaleSink(db *sql.DB, table, location string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table, location: location}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteBatch(samples []domain.ScoredSample) error {
	if len(samples) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (")
	b.WriteString(columns)
	b.WriteString(") VALUES ")

	const perRow = 12
	args := make([]any, 0, len(samples)*perRow)
	for i, s := range samples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := 0; j < perRow; j++ {
			if j > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d", len(args)+j+1)
		}
		b.WriteString(")")

		args = append(args,
			s.Timestamp,
			SensorTag,
			t.location,
			nullFloat(s.Temperature),
			nullFloat(s.Humidity),
			nullFloat(s.Pressure),
			nullInt(s.AQI),
			nullInt(s.TVOC),
			nullInt(s.ECO2),
			s.AQIRating,
			s.ECO2Rating,
			s.SensorStatus,
		)
	}

	b.WriteString(" ON CONFLICT (ts, sensor, location) DO NOTHING")

	if _, err := t.db.Exec(b.String(), args...); err != nil {
		return fmt.Errorf("write batch of %d: %w", len(samples), err)
	}
	return nil
}

// Absent sensor values are written as NULL, never zero.
func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

var _ ports.Sink = (*TimescaleSink)(nil)
