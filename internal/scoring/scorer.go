package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jordauld1/pi-sensor/internal/domain"
	"github.com/jordauld1/pi-sensor/internal/health"
	"github.com/jordauld1/pi-sensor/internal/validate"
)

// Band severity runs 0 (best) to 4 (worst). The composite score is the
// minimum band score over the factors present: worst-band-wins, so the
// overall score is never better than its worst contributing factor.
const (
	severityExcellent = iota
	severityGood
	severityModerate
	severityPoor
	severityUnacceptable
)

func bandScore(severity int) float64 { return 100 - 20*float64(severity) }

// AQIRating maps the UBA air quality index 1-5 to its category.
func AQIRating(aqi int64) string {
	switch aqi {
	case 1:
		return "Excellent"
	case 2:
		return "Good"
	case 3:
		return "Moderate"
	case 4:
		return "Poor"
	case 5:
		return "Unhealthy"
	default:
		return ""
	}
}

// ECO2Rating maps an eCO2 concentration in ppm to its band. Bands are
// half-open on the upper bound except the last, which is open-ended.
func ECO2Rating(ppm float64) string {
	switch {
	case ppm < 800:
		return "Excellent"
	case ppm < 1000:
		return "Good"
	case ppm < 1500:
		return "Fair"
	case ppm < 2000:
		return "Poor"
	default:
		return "Unacceptable"
	}
}

func aqiSeverity(aqi float64) int {
	s := int(aqi) - 1
	if s < severityExcellent {
		s = severityExcellent
	}
	if s > severityUnacceptable {
		s = severityUnacceptable
	}
	return s
}

func eco2Severity(ppm float64) int {
	switch {
	case ppm < 800:
		return severityExcellent
	case ppm < 1000:
		return severityGood
	case ppm < 1500:
		return severityModerate
	case ppm < 2000:
		return severityPoor
	default:
		return severityUnacceptable
	}
}

// TVOC bands in ppb: Low 0-500, Moderate 500-2000, High 2000-5000,
// Very High >5000.
func tvocSeverity(ppb float64) int {
	switch {
	case ppb < 500:
		return severityExcellent
	case ppb < 2000:
		return severityGood
	case ppb < 5000:
		return severityPoor
	default:
		return severityUnacceptable
	}
}

// Comfort band 30-60 %RH; one band worse within 20-30/60-70, two beyond.
func humiditySeverity(rh float64) int {
	switch {
	case rh >= 30 && rh <= 60:
		return severityExcellent
	case rh >= 20 && rh <= 70:
		return severityGood
	default:
		return severityModerate
	}
}

// factor is one contributing quantity after freshness resolution.
type factor struct {
	kind        domain.Kind
	value       float64
	fresh       bool
	substituted bool
	snap        health.Snapshot
}

// recommendation priority breaks severity ties; most severe factor first.
var recommendPriority = map[domain.Kind]int{
	domain.KindECO2:     0,
	domain.KindTVOC:     1,
	domain.KindHumidity: 2,
	domain.KindAQI:      3,
}

// Score derives a ScoredSample from one cycle's validated readings and the
// health monitor's snapshot. Readings that failed the dual freshness gate
// are substituted with the sensor's last known good value when one exists;
// with none, the field stays absent and is excluded from the composite.
func Score(results map[domain.Kind]validate.Result, snaps map[domain.Kind]health.Snapshot, now time.Time) domain.ScoredSample {
	sample := domain.ScoredSample{Timestamp: now}

	factors := make(map[domain.Kind]*factor, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		f := resolve(kind, results[kind], snaps[kind])
		if f == nil {
			continue
		}
		factors[kind] = f

		v := f.value
		switch kind {
		case domain.KindTemperature:
			sample.Temperature = &v
		case domain.KindHumidity:
			sample.Humidity = &v
		case domain.KindPressure:
			sample.Pressure = &v
		case domain.KindAQI:
			n := int64(math.Round(v))
			sample.AQI = &n
			sample.AQIRating = AQIRating(n)
		case domain.KindTVOC:
			n := int64(math.Round(v))
			sample.TVOC = &n
		case domain.KindECO2:
			n := int64(math.Round(v))
			sample.ECO2 = &n
			sample.ECO2Rating = ECO2Rating(v)
		}
	}

	sample.SensorStatus = sensorStatus(factors, snaps)
	sample.EnvironmentalScore = composite(factors)
	sample.Recommendations = recommend(factors)
	return sample
}

// resolve applies the graceful-degradation contract for one kind. Returns
// nil when no fresh value and no fallback exists (field recorded absent).
func resolve(kind domain.Kind, res validate.Result, snap health.Snapshot) *factor {
	if res.Fresh() {
		return &factor{kind: kind, value: *res.Reading.Value, fresh: true, snap: snap}
	}
	if snap.LastKnownGood != nil {
		return &factor{kind: kind, value: *snap.LastKnownGood, substituted: true, snap: snap}
	}
	return nil
}

func severityOf(kind domain.Kind, value float64) (int, bool) {
	switch kind {
	case domain.KindAQI:
		return aqiSeverity(value), true
	case domain.KindTVOC:
		return tvocSeverity(value), true
	case domain.KindECO2:
		return eco2Severity(value), true
	case domain.KindHumidity:
		return humiditySeverity(value), true
	default:
		// Temperature and pressure are recorded but carry no band.
		return 0, false
	}
}

func composite(factors map[domain.Kind]*factor) float64 {
	score := -1.0
	for kind, f := range factors {
		sev, banded := severityOf(kind, f.value)
		if !banded {
			continue
		}
		if s := bandScore(sev); score < 0 || s < score {
			score = s
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

func recommend(factors map[domain.Kind]*factor) []string {
	type advice struct {
		severity int
		priority int
		text     string
	}
	var out []advice

	if f, ok := factors[domain.KindECO2]; ok {
		if sev := eco2Severity(f.value); sev >= severityModerate {
			out = append(out, advice{sev, recommendPriority[domain.KindECO2], "increase ventilation"})
		}
	}
	if f, ok := factors[domain.KindTVOC]; ok {
		if sev := tvocSeverity(f.value); sev >= severityPoor {
			out = append(out, advice{sev, recommendPriority[domain.KindTVOC], "identify and remove VOC sources"})
		}
	}
	if f, ok := factors[domain.KindHumidity]; ok {
		if sev := humiditySeverity(f.value); sev >= severityGood {
			text := "use a humidifier"
			if f.value > 60 {
				text = "dehumidify the room"
			}
			out = append(out, advice{sev, recommendPriority[domain.KindHumidity], text})
		}
	}
	if f, ok := factors[domain.KindAQI]; ok {
		if sev := aqiSeverity(f.value); sev >= severityPoor {
			out = append(out, advice{sev, recommendPriority[domain.KindAQI], "run an air purifier"})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].severity != out[j].severity {
			return out[i].severity > out[j].severity
		}
		return out[i].priority < out[j].priority
	})

	texts := make([]string, 0, len(out))
	for _, a := range out {
		texts = append(texts, a.text)
	}
	return texts
}

// sensorStatus surfaces degradation plainly instead of skipping silently.
func sensorStatus(factors map[domain.Kind]*factor, snaps map[domain.Kind]health.Snapshot) string {
	var parts []string
	for _, kind := range domain.Kinds {
		f, ok := factors[kind]
		if ok && f.fresh {
			continue
		}
		status := strings.ToLower(string(snaps[kind].Status))
		if ok {
			parts = append(parts, fmt.Sprintf("%s %s (last known good)", kind, status))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s (no data)", kind, status))
		}
	}
	if len(parts) == 0 {
		return domain.StatusOperatingOK
	}
	return strings.Join(parts, "; ")
}
