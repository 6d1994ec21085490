package validate

import (
	"fmt"
	"math"

	"github.com/jordauld1/pi-sensor/internal/domain"
)

// Result is derived per reading and never persisted beyond the current
// pipeline pass. Out-of-range is a normal outcome the caller branches on,
// not an error.
type Result struct {
	Reading domain.Reading
	InRange bool
	Reason  string
}

// Check validates a raw reading against the declared range for its kind.
// No side effects.
func Check(r domain.Reading, rng domain.Range) Result {
	if r.Value == nil {
		return Result{Reading: r, Reason: "no value reported"}
	}
	v := *r.Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{Reading: r, Reason: fmt.Sprintf("non-numeric value %v", v)}
	}
	if v < rng.Min || v > rng.Max {
		return Result{
			Reading: r,
			Reason:  fmt.Sprintf("value %g outside declared range [%g, %g]", v, rng.Min, rng.Max),
		}
	}
	return Result{Reading: r, InRange: true}
}

// CheckKind looks up the declared range for the reading's kind. Unknown
// kinds fail validation rather than passing unchecked.
func CheckKind(r domain.Reading) Result {
	rng, ok := domain.Ranges[r.Kind]
	if !ok {
		return Result{Reading: r, Reason: fmt.Sprintf("unknown kind %q", r.Kind)}
	}
	return Check(r, rng)
}

// Fresh reports whether the result may be recorded as trustworthy data:
// the device must report operational readiness AND the value must be in
// range. This dual gate is what the health monitor records against.
func (res Result) Fresh() bool {
	return res.InRange && res.Reading.OpStatus == domain.StatusOperatingOK
}
