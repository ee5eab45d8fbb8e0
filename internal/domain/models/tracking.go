package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackingState is the per-driver live motion aggregate. At most one
// instance exists per driver; all mutations for a driver are serialized
// by the tracking service.
type TrackingState struct {
	DriverID  uuid.UUID
	CompanyID uuid.UUID
	JobID     *uuid.UUID

	Location       Location
	SpeedKmh       float64
	HeadingDegrees float64
	AccuracyMeters float64

	Moving bool

	// Samples counts accepted readings this session. Zero means no fix yet.
	Samples int64

	// Accumulated since the current tracking session started.
	TotalDistanceKm  float64
	TotalDurationSec int64
	AvgSpeedKmh      float64
	MaxSpeedKmh      float64

	StartedAt time.Time
	UpdatedAt time.Time
}

// StaleAt reports whether the state is older than threshold at the given
// instant. Staleness is always computed on read, never stored.
func (t *TrackingState) StaleAt(now time.Time, threshold time.Duration) bool {
	return now.Sub(t.UpdatedAt) > threshold
}

// IngestResult is returned to the submitting driver client for every sample.
type IngestResult struct {
	State           *TrackingState
	DeltaKm         float64
	Moving          bool
	ETA             *ETACalculation
	CompletedWaypoint *Waypoint

	// Degraded means the sample row was durably recorded but the live
	// aggregate could not be updated; live state may be stale.
	Degraded bool
}

// SessionSummary is the final accumulated stats returned by StopSession.
type SessionSummary struct {
	JobID            uuid.UUID
	DriverID         uuid.UUID
	TotalDistanceKm  float64
	TotalDurationSec int64
	AvgSpeedKmh      float64
	MaxSpeedKmh      float64
	StartedAt        time.Time
	EndedAt          time.Time
}

// TrackingSnapshot is the read-model for "current tracking" queries.
type TrackingSnapshot struct {
	JobID    *uuid.UUID
	DriverID uuid.UUID
	State    *TrackingState
	Stale    bool
}
