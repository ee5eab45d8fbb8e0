package models

import (
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DeviceMeta carries optional device telemetry attached to a sample.
type DeviceMeta struct {
	BatteryLevel *float64 `json:"battery_level,omitempty"`
	NetworkType  string   `json:"network_type,omitempty"`
}

// LocationSample is one immutable GPS reading. Rows are append-only and
// never mutated after insertion.
type LocationSample struct {
	ID        uuid.UUID
	DriverID  uuid.UUID
	JobID     *uuid.UUID
	VehicleID *uuid.UUID

	Location       Location
	AccuracyMeters float64
	SpeedKmh       float64
	HeadingDegrees float64
	AltitudeMeters float64

	Device DeviceMeta
	Source types.LocationSource

	RecordedAt time.Time
	CreatedAt  time.Time
}

// HistoryFilter narrows a location-history query.
type HistoryFilter struct {
	DriverID *uuid.UUID
	JobID    *uuid.UUID
	From     time.Time
	To       time.Time
	Limit    int
}
