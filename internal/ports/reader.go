package ports

import (
	"context"

	"github.com/jordauld1/pi-sensor/internal/domain"
)

// SensorReader polls one physical device (or a suite of them) for raw
// readings. Read must honour ctx deadlines; a read that times out is
// reported as an error, never a hang. A failed read yields no readings;
// the sampling loop synthesizes absent readings for Kinds().
type SensorReader interface {
	Name() string
	Kinds() []domain.Kind
	Read(ctx context.Context) ([]domain.Reading, error)
}
