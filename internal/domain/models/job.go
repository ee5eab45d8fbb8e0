package models

import (
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

// Job is the shipment record as seen by this engine. The job-management
// subsystem owns the full record; the engine reads identity, status and
// participants, and writes automated status advances and live position.
type Job struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Number    string
	Status    types.JobStatus

	DriverID  *uuid.UUID
	VehicleID *uuid.UUID
	ClientID  *uuid.UUID

	Waypoints []Waypoint

	LastKnownLocation *Location
	LastLocationAt    *time.Time
	ETAAt             *time.Time
}

// DeliveryWaypoint returns the last incomplete DELIVERY stop, used as the
// ETA destination. Nil when the job has no pending delivery.
func (j *Job) DeliveryWaypoint() *Waypoint {
	for i := len(j.Waypoints) - 1; i >= 0; i-- {
		w := &j.Waypoints[i]
		if w.Type == types.WaypointDelivery && !w.Completed && w.Center != nil {
			return w
		}
	}
	return nil
}

// JobStatusEvent is the audit entry appended on every status transition.
type JobStatusEvent struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	OldStatus  types.JobStatus
	NewStatus  types.JobStatus
	Cause      types.StatusCause
	WaypointID *uuid.UUID
	CreatedAt  time.Time
}
