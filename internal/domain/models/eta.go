package models

import (
	"time"

	"github.com/google/uuid"
)

// ETACalculation is one stored arrival estimate. A new row is appended per
// recomputation; the job's display ETA timestamp is updated alongside.
type ETACalculation struct {
	ID    uuid.UUID
	JobID uuid.UUID

	Origin      Location
	Destination Location

	EstimatedMinutes    int
	EstimatedDistanceKm float64
	TrafficMultiplier   float64
	Confidence          float64
	Method              string

	CreatedAt time.Time
}
