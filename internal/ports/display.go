package ports

import "github.com/jordauld1/pi-sensor/internal/domain"

// Display renders the current sample somewhere visible (console, OLED).
// Fire-and-forget: the pipeline never consumes a return value, render
// errors are the adapter's problem to log.
type Display interface {
	Render(page int, sample domain.ScoredSample)
}

// Publisher pushes each scored sample to a live feed (MQTT).
type Publisher interface {
	Publish(sample domain.ScoredSample) error
	Close()
}
