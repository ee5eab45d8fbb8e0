package autogate

import (
	"context"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/google/uuid"
)

type JobRepo interface {
	UpdateStatus(ctx context.Context, jobID uuid.UUID, status types.JobStatus) error
	AppendStatusEvent(ctx context.Context, event *models.JobStatusEvent) error
}

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

type Broadcaster interface {
	Publish(ctx context.Context, topic realtime.Topic, event realtime.Event) int
}
