// Package autogate advances a job's status purely from geospatial
// proximity evidence: waypoint-type reach events are mapped to status
// transitions under a monotonicity rule, so automation can only move a
// shipment forward.
package autogate

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/fleetgate/fleet-tracking-system/pkg/trm"
	"github.com/google/uuid"
)

const serviceName = "tracking-engine"

// statusRank orders the forward path of the lifecycle. Side states
// (ON_HOLD, CANCELLED) are absent: automation never touches them.
var statusRank = map[types.JobStatus]int{
	types.StatusCreated:    0,
	types.StatusAssigned:   1,
	types.StatusInTransit:  2,
	types.StatusAtPickup:   3,
	types.StatusLoaded:     4,
	types.StatusAtDelivery: 5,
	types.StatusDelivered:  6,
	types.StatusCompleted:  7,
}

// waypointTarget maps a reached waypoint type to the status it drives
// the job toward. REST_STOP is deliberately absent: resting changes nothing.
var waypointTarget = map[types.WaypointType]types.JobStatus{
	types.WaypointPickup:     types.StatusAtPickup,
	types.WaypointDelivery:   types.StatusAtDelivery,
	types.WaypointCheckpoint: types.StatusInTransit,
	types.WaypointYard:       types.StatusInTransit,
	types.WaypointPort:       types.StatusInTransit,
}

// Target returns the automated transition for a waypoint-type reach event
// against the current status, and whether one applies at all. The
// monotonicity rule: a transition only applies when it strictly advances
// the lifecycle rank, so a job at LOADED can never fall back to AT_PICKUP
// and a DELIVERED or COMPLETED job is frozen for automation.
func Target(wt types.WaypointType, current types.JobStatus) (types.JobStatus, bool) {
	target, ok := waypointTarget[wt]
	if !ok {
		return "", false
	}

	currentRank, ok := statusRank[current]
	if !ok {
		// ON_HOLD / CANCELLED: manual-only territory.
		return "", false
	}

	if statusRank[target] <= currentRank {
		return "", false
	}

	return target, true
}

// Engine applies automated transitions: persists the status change with
// its audit entry in one transaction, then broadcasts and notifies.
type Engine struct {
	jobs        JobRepo
	notifier    Notifier
	broadcaster Broadcaster
	trm         trm.TxManager
	l           logger.Logger
}

func New(jobs JobRepo, notifier Notifier, broadcaster Broadcaster, trm trm.TxManager, l logger.Logger) *Engine {
	return &Engine{
		jobs:        jobs,
		notifier:    notifier,
		broadcaster: broadcaster,
		trm:         trm,
		l:           l,
	}
}

// Apply evaluates a waypoint reach against the job's current status and,
// when an automated transition applies, persists it and fans it out.
// Returns nil when automation decided to do nothing.
func (e *Engine) Apply(ctx context.Context, job *models.Job, wp *models.Waypoint) (*models.JobStatusEvent, error) {
	const op = "autogate.Engine.Apply"

	next, ok := Target(wp.Type, job.Status)
	if !ok {
		return nil, nil
	}

	event := &models.JobStatusEvent{
		ID:         uuid.New(),
		JobID:      job.ID,
		OldStatus:  job.Status,
		NewStatus:  next,
		Cause:      types.CauseSystem,
		WaypointID: &wp.ID,
		CreatedAt:  time.Now().UTC(),
	}

	// Status write and audit entry are one unit.
	fn := func(ctx context.Context) error {
		if err := e.jobs.UpdateStatus(ctx, job.ID, next); err != nil {
			return fmt.Errorf("failed to update job status: %w", err)
		}
		if err := e.jobs.AppendStatusEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to append status event: %w", err)
		}
		return nil
	}
	if err := e.trm.Do(ctx, fn); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	oldStatus := job.Status
	job.Status = next

	metrics.AutogateTransitionsTotal.WithLabelValues(serviceName, next.String()).Inc()
	e.l.Info(wrap.WithAction(ctx, "autogate_transition"), "automated status transition",
		"job_id", job.ID,
		"old_status", oldStatus,
		"new_status", next,
		"waypoint_id", wp.ID,
	)

	e.fanout(ctx, job, wp, event)

	return event, nil
}

// fanout broadcasts the transition to everyone watching the job and fires
// the human-facing notification. Both are best-effort.
func (e *Engine) fanout(ctx context.Context, job *models.Job, wp *models.Waypoint, statusEvent *models.JobStatusEvent) {
	payload := models.JobStatusAutomatedBroadcast{
		JobID:        job.ID,
		OldStatus:    statusEvent.OldStatus,
		NewStatus:    statusEvent.NewStatus,
		WaypointID:   wp.ID,
		WaypointType: wp.Type,
	}
	event := realtime.NewEvent(realtime.EventJobStatusAutomated, payload)

	e.broadcaster.Publish(ctx, realtime.CompanyTopic(job.CompanyID), event)
	e.broadcaster.Publish(ctx, realtime.JobTopic(job.ID), event)
	e.broadcaster.Publish(ctx, realtime.PublicTrackingTopic(job.ID), event)

	if job.ClientID != nil {
		e.broadcaster.Publish(ctx, realtime.ClientTopic(*job.ClientID), event)

		n := models.Notification{
			RecipientID:   *job.ClientID,
			RecipientType: types.RecipientClient,
			Title:         "Shipment update",
			Message:       fmt.Sprintf("Shipment %s is now %s", job.Number, statusEvent.NewStatus),
			JobID:         &job.ID,
		}
		e.broadcaster.Publish(ctx, realtime.ClientTopic(*job.ClientID),
			realtime.NewEvent(realtime.EventNotification, n))

		if err := e.notifier.Notify(ctx, n); err != nil {
			e.l.Warn(wrap.WithAction(ctx, "autogate_notify"), "failed to dispatch notification",
				"job_id", job.ID,
				"err", err.Error(),
			)
		}
	}
}
