package proximity

import (
	"context"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/google/uuid"
)

type WaypointRepo interface {
	MarkCompleted(ctx context.Context, waypointID uuid.UUID, at time.Time) error
}

type GeofenceRepo interface {
	ListActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Geofence, error)
	LatestEvent(ctx context.Context, driverID, geofenceID uuid.UUID) (*models.GeofenceEvent, error)
	AppendEvent(ctx context.Context, event *models.GeofenceEvent) error
}

type Autogate interface {
	Apply(ctx context.Context, job *models.Job, wp *models.Waypoint) (*models.JobStatusEvent, error)
}

type Broadcaster interface {
	Publish(ctx context.Context, topic realtime.Topic, event realtime.Event) int
}
