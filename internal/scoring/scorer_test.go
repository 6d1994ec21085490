package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/health"
	"github.com/jordauld1/pi-sensor/internal/validate"
)

func freshResults(values map[domain.Kind]float64) map[domain.Kind]validate.Result {
	out := make(map[domain.Kind]validate.Result, len(values))
	for kind, v := range values {
		out[kind] = validate.CheckKind(domain.Reading{
			Kind:      kind,
			Value:     domain.Float(v),
			Timestamp: time.Now(),
			OpStatus:  domain.StatusOperatingOK,
		})
	}
	return out
}

func healthyAll() map[domain.Kind]health.Snapshot {
	out := make(map[domain.Kind]health.Snapshot, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		out[kind] = health.Snapshot{Status: health.Healthy, OpStatus: domain.StatusOperatingOK}
	}
	return out
}

func nominal() map[domain.Kind]float64 {
	return map[domain.Kind]float64{
		domain.KindTemperature: 23.5,
		domain.KindHumidity:    45.2,
		domain.KindPressure:    1013.2,
		domain.KindAQI:         1,
		domain.KindTVOC:        250,
		domain.KindECO2:        800,
	}
}

func TestAQIRating(t *testing.T) {
	want := map[int64]string{1: "Excellent", 2: "Good", 3: "Moderate", 4: "Poor", 5: "Unhealthy"}
	for aqi, rating := range want {
		if got := AQIRating(aqi); got != rating {
			t.Errorf("AQIRating(%d) = %q, want %q", aqi, got, rating)
		}
	}
	if got := AQIRating(0); got != "" {
		t.Errorf("AQIRating(0) = %q, want empty", got)
	}
}

func TestECO2RatingBands(t *testing.T) {
	cases := []struct {
		ppm  float64
		want string
	}{
		{400, "Excellent"},
		{799, "Excellent"},
		{800, "Good"},
		{999, "Good"},
		{1000, "Fair"},
		{1499, "Fair"},
		{1500, "Poor"},
		{1999, "Poor"},
		{2000, "Unacceptable"},
		{2500, "Unacceptable"},
	}
	for _, tc := range cases {
		if got := ECO2Rating(tc.ppm); got != tc.want {
			t.Errorf("ECO2Rating(%g) = %q, want %q", tc.ppm, got, tc.want)
		}
	}
}

func TestScoreNominal(t *testing.T) {
	sample := Score(freshResults(nominal()), healthyAll(), time.Now())

	if sample.AQIRating != "Excellent" {
		t.Errorf("aqi_rating = %q, want Excellent", sample.AQIRating)
	}
	if sample.ECO2Rating != "Good" {
		t.Errorf("eco2_rating = %q, want Good", sample.ECO2Rating)
	}
	if len(sample.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want none", sample.Recommendations)
	}
	if sample.SensorStatus != domain.StatusOperatingOK {
		t.Errorf("sensor_status = %q, want %q", sample.SensorStatus, domain.StatusOperatingOK)
	}
	if sample.Temperature == nil || *sample.Temperature != 23.5 {
		t.Errorf("temperature = %v, want 23.5", sample.Temperature)
	}
	if sample.AQI == nil || *sample.AQI != 1 {
		t.Errorf("aqi = %v, want 1", sample.AQI)
	}
	// eCO2 at 800 sits in the Good band, which caps the composite.
	if sample.EnvironmentalScore != 80 {
		t.Errorf("environmental score = %g, want 80", sample.EnvironmentalScore)
	}
}

func TestScoreHighECO2(t *testing.T) {
	values := nominal()
	values[domain.KindECO2] = 2500
	sample := Score(freshResults(values), healthyAll(), time.Now())

	if sample.ECO2Rating != "Unacceptable" {
		t.Errorf("eco2_rating = %q, want Unacceptable", sample.ECO2Rating)
	}
	if len(sample.Recommendations) == 0 || sample.Recommendations[0] != "increase ventilation" {
		t.Errorf("recommendations = %v, want ventilation first", sample.Recommendations)
	}
	if sample.EnvironmentalScore != 20 {
		t.Errorf("environmental score = %g, want worst-band 20", sample.EnvironmentalScore)
	}
}

func TestScoreWorstBandMonotone(t *testing.T) {
	base := Score(freshResults(nominal()), healthyAll(), time.Now())

	worse := []map[domain.Kind]float64{
		{domain.KindAQI: 4},
		{domain.KindTVOC: 6000},
		{domain.KindECO2: 1600},
		{domain.KindHumidity: 80},
	}
	for _, delta := range worse {
		values := nominal()
		for kind, v := range delta {
			values[kind] = v
		}
		got := Score(freshResults(values), healthyAll(), time.Now())
		if got.EnvironmentalScore > base.EnvironmentalScore {
			t.Errorf("moving %v to a worse band improved score %g -> %g",
				delta, base.EnvironmentalScore, got.EnvironmentalScore)
		}
	}
}

func TestRecommendationOrderMostSevereFirst(t *testing.T) {
	values := nominal()
	values[domain.KindECO2] = 2500    // severity 4
	values[domain.KindTVOC] = 2500    // severity 3
	values[domain.KindHumidity] = 75  // severity 2
	sample := Score(freshResults(values), healthyAll(), time.Now())

	want := []string{"increase ventilation", "identify and remove VOC sources", "dehumidify the room"}
	if len(sample.Recommendations) != len(want) {
		t.Fatalf("recommendations = %v, want %v", sample.Recommendations, want)
	}
	for i := range want {
		if sample.Recommendations[i] != want[i] {
			t.Fatalf("recommendations = %v, want %v", sample.Recommendations, want)
		}
	}
}

func TestScoreSubstitutesLastKnownGood(t *testing.T) {
	results := freshResults(nominal())
	// AQI sensor reports no valid output this cycle.
	results[domain.KindAQI] = validate.CheckKind(domain.Reading{
		Kind:      domain.KindAQI,
		Timestamp: time.Now(),
		OpStatus:  domain.StatusNoValidOutput,
	})

	snaps := healthyAll()
	snaps[domain.KindAQI] = health.Snapshot{
		Status:        health.Failed,
		LastKnownGood: domain.Float(2),
		OpStatus:      domain.StatusNoValidOutput,
	}

	sample := Score(results, snaps, time.Now())
	if sample.AQI == nil || *sample.AQI != 2 {
		t.Fatalf("aqi = %v, want substituted last known good 2", sample.AQI)
	}
	if sample.AQIRating != "Good" {
		t.Fatalf("aqi_rating = %q, want Good from substituted value", sample.AQIRating)
	}
	if !strings.Contains(sample.SensorStatus, "aqi failed (last known good)") {
		t.Fatalf("sensor_status = %q, want aqi substitution annotated", sample.SensorStatus)
	}
}

func TestScoreAbsentWithoutFallback(t *testing.T) {
	results := freshResults(nominal())
	results[domain.KindAQI] = validate.CheckKind(domain.Reading{
		Kind:      domain.KindAQI,
		Timestamp: time.Now(),
		OpStatus:  domain.StatusNoValidOutput,
	})

	snaps := healthyAll()
	snaps[domain.KindAQI] = health.Snapshot{Status: health.Failed, OpStatus: domain.StatusNoValidOutput}

	sample := Score(results, snaps, time.Now())
	if sample.AQI != nil {
		t.Fatalf("aqi = %v, want absent (never zero)", *sample.AQI)
	}
	if sample.AQIRating != "" {
		t.Fatalf("aqi_rating = %q, want empty for absent factor", sample.AQIRating)
	}
	if !strings.Contains(sample.SensorStatus, "aqi failed (no data)") {
		t.Fatalf("sensor_status = %q, want absent aqi surfaced", sample.SensorStatus)
	}
	// The absent factor must be excluded, not treated as zero: the rest of
	// the nominal inputs keep the composite at the eCO2 Good band.
	if sample.EnvironmentalScore != 80 {
		t.Fatalf("environmental score = %g, want 80 with aqi excluded", sample.EnvironmentalScore)
	}
}
