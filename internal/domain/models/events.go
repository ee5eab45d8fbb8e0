package models

import (
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

/* ======================= broadcast payloads ======================= */

type LocationBroadcast struct {
	DriverID       uuid.UUID  `json:"driver_id"`
	JobID          *uuid.UUID `json:"job_id,omitempty"`
	Location       Location   `json:"location"`
	SpeedKmh       float64    `json:"speed_kmh"`
	HeadingDegrees float64    `json:"heading_degrees,omitempty"`
	Moving         bool       `json:"moving"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	RecordedAt     time.Time  `json:"recorded_at"`
}

type JobStatusAutomatedBroadcast struct {
	JobID      uuid.UUID       `json:"job_id"`
	OldStatus  types.JobStatus `json:"old_status"`
	NewStatus  types.JobStatus `json:"new_status"`
	WaypointID uuid.UUID       `json:"waypoint_id"`
	WaypointType types.WaypointType `json:"waypoint_type"`
}

type GeofenceBroadcast struct {
	DriverID   uuid.UUID               `json:"driver_id"`
	JobID      *uuid.UUID              `json:"job_id,omitempty"`
	GeofenceID uuid.UUID               `json:"geofence_id"`
	Name       string                  `json:"geofence_name,omitempty"`
	EventType  types.GeofenceEventType `json:"event_type"`
	Location   Location                `json:"location"`
}

type DriverOfflineBroadcast struct {
	DriverID uuid.UUID `json:"driver_id"`
}

/* ======================= notification sink ======================= */

// Notification is the fire-and-forget message handed to the excluded
// notification subsystem when an automated change needs to alert a human.
type Notification struct {
	RecipientID   uuid.UUID           `json:"recipient_id"`
	RecipientType types.RecipientType `json:"recipient_type"`
	Title         string              `json:"title"`
	Message       string              `json:"message"`
	JobID         *uuid.UUID          `json:"job_id,omitempty"`
}
