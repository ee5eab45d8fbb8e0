package tracking

import (
	"context"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/google/uuid"
)

type TrackingRepo interface {
	Create(ctx context.Context, state *models.TrackingState) error
	Update(ctx context.Context, state *models.TrackingState) error
	GetByDriver(ctx context.Context, driverID uuid.UUID) (*models.TrackingState, error)
	GetByJob(ctx context.Context, jobID uuid.UUID) (*models.TrackingState, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, updatedSince time.Time) ([]models.TrackingState, error)
	Delete(ctx context.Context, driverID uuid.UUID) error
}

type SampleRepo interface {
	Insert(ctx context.Context, sample *models.LocationSample) error
	History(ctx context.Context, filter models.HistoryFilter) ([]models.LocationSample, error)
}

type JobRepo interface {
	GetByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	UpdateStatus(ctx context.Context, jobID uuid.UUID, status types.JobStatus) error
	AppendStatusEvent(ctx context.Context, event *models.JobStatusEvent) error
	UpdateLastLocation(ctx context.Context, jobID uuid.UUID, loc models.Location, at time.Time) error
}

type DriverRepo interface {
	GetByID(ctx context.Context, driverID uuid.UUID) (*models.Driver, error)
	SetOnline(ctx context.Context, driverID uuid.UUID, online bool, at time.Time) error
	SetCurrentJob(ctx context.Context, driverID uuid.UUID, jobID *uuid.UUID) error
}

type Proximity interface {
	EvaluateWaypoints(ctx context.Context, job *models.Job, loc models.Location) (*models.Waypoint, error)
	CheckGeofences(ctx context.Context, driverID uuid.UUID, jobID *uuid.UUID, companyID uuid.UUID, loc models.Location, accuracyM float64) ([]models.GeofenceEvent, error)
}

type ETAEstimator interface {
	Estimate(ctx context.Context, jobID uuid.UUID, from, to models.Location) (*models.ETACalculation, error)
}

type Broadcaster interface {
	Publish(ctx context.Context, topic realtime.Topic, event realtime.Event) int
}
