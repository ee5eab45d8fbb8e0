// Package proximity turns raw positions into reach events: waypoint
// arrival detection for job automation, and standing geofence edge
// transitions for company zones.
package proximity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/geo"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/google/uuid"
)

const serviceName = "tracking-engine"

// accuracy above this makes a containment call suspect.
const lowConfidenceAccuracyM = 50.0

type Engine struct {
	waypoints WaypointRepo
	geofences GeofenceRepo
	autogate  Autogate
	broadcast Broadcaster
	l         logger.Logger
}

func New(waypoints WaypointRepo, geofences GeofenceRepo, autogate Autogate, broadcast Broadcaster, l logger.Logger) *Engine {
	return &Engine{
		waypoints: waypoints,
		geofences: geofences,
		autogate:  autogate,
		broadcast: broadcast,
		l:         l,
	}
}

// EvaluateWaypoints checks the position against the job's incomplete
// waypoints in sequence order and completes the first one whose detection
// circle contains the point. At most one waypoint completes per sample;
// overlapping circles resolve to the lower sequence number. The completed
// waypoint (if any) is handed to the autogate for a possible status
// transition.
func (e *Engine) EvaluateWaypoints(ctx context.Context, job *models.Job, loc models.Location) (*models.Waypoint, error) {
	const op = "proximity.Engine.EvaluateWaypoints"

	candidates := make([]*models.Waypoint, 0, len(job.Waypoints))
	for i := range job.Waypoints {
		w := &job.Waypoints[i]
		if !w.Completed && w.Center != nil {
			candidates = append(candidates, w)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Sequence < candidates[j].Sequence
	})

	for _, wp := range candidates {
		if !geo.InCircle(loc, *wp.Center, wp.EffectiveRadiusM()) {
			continue
		}

		now := time.Now().UTC()
		if err := e.waypoints.MarkCompleted(ctx, wp.ID, now); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to complete waypoint: %w", op, err))
		}
		wp.Completed = true
		wp.CompletedAt = &now

		e.l.Info(wrap.WithAction(ctx, "waypoint_reached"), "waypoint reached",
			"job_id", job.ID,
			"waypoint_id", wp.ID,
			"waypoint_type", wp.Type,
			"sequence", wp.Sequence,
		)

		if _, err := e.autogate.Apply(ctx, job, wp); err != nil {
			return nil, err
		}
		return wp, nil
	}

	return nil, nil
}

// CheckGeofences compares the position against every active fence of the
// company and records an event for each containment edge crossed since
// the driver's last known side of that fence. A fence the driver was
// already inside produces nothing. Per-fence failures are logged and
// skipped so one bad fence cannot block the rest.
func (e *Engine) CheckGeofences(ctx context.Context, driverID uuid.UUID, jobID *uuid.UUID, companyID uuid.UUID, loc models.Location, accuracyM float64) ([]models.GeofenceEvent, error) {
	const op = "proximity.Engine.CheckGeofences"

	fences, err := e.geofences.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to list geofences: %w", op, err))
	}

	var crossed []models.GeofenceEvent
	for i := range fences {
		fence := &fences[i]

		contained := contains(fence, loc)

		last, err := e.geofences.LatestEvent(ctx, driverID, fence.ID)
		if err != nil {
			e.l.Warn(wrap.WithAction(ctx, "geofence_check"), "failed to load latest geofence event",
				"geofence_id", fence.ID,
				"driver_id", driverID,
				"err", err.Error(),
			)
			continue
		}
		wasInside := last != nil && last.Type == types.GeofenceEnter

		var eventType types.GeofenceEventType
		switch {
		case contained && !wasInside:
			eventType = types.GeofenceEnter
		case !contained && wasInside:
			eventType = types.GeofenceExit
		default:
			continue
		}

		event := models.GeofenceEvent{
			ID:         uuid.New(),
			DriverID:   driverID,
			JobID:      jobID,
			GeofenceID: fence.ID,
			Type:       eventType,
			Location:   loc,
			Confidence: confidence(accuracyM),
			CreatedAt:  time.Now().UTC(),
		}
		if err := e.geofences.AppendEvent(ctx, &event); err != nil {
			e.l.Warn(wrap.WithAction(ctx, "geofence_check"), "failed to record geofence event",
				"geofence_id", fence.ID,
				"driver_id", driverID,
				"err", err.Error(),
			)
			continue
		}

		metrics.GeofenceEventsTotal.WithLabelValues(serviceName, eventType.String()).Inc()
		e.fanout(ctx, fence, &event)
		crossed = append(crossed, event)
	}

	return crossed, nil
}

func (e *Engine) fanout(ctx context.Context, fence *models.Geofence, event *models.GeofenceEvent) {
	payload := models.GeofenceBroadcast{
		DriverID:   event.DriverID,
		JobID:      event.JobID,
		GeofenceID: fence.ID,
		Name:       fence.Name,
		EventType:  event.Type,
		Location:   event.Location,
	}

	wsType := realtime.EventGeofenceEntered
	if event.Type == types.GeofenceExit {
		wsType = realtime.EventGeofenceExited
	}
	wsEvent := realtime.NewEvent(wsType, payload)

	e.broadcast.Publish(ctx, realtime.CompanyTopic(fence.CompanyID), wsEvent)
	if event.JobID != nil {
		e.broadcast.Publish(ctx, realtime.JobTopic(*event.JobID), wsEvent)
	}
}

func contains(fence *models.Geofence, loc models.Location) bool {
	switch fence.Kind {
	case types.GeofencePolygon:
		return geo.InPolygon(loc, fence.Ring)
	default:
		if fence.Center == nil {
			return false
		}
		return geo.InCircle(loc, *fence.Center, fence.RadiusM)
	}
}

func confidence(accuracyM float64) string {
	if accuracyM > lowConfidenceAccuracyM {
		return "low"
	}
	return "high"
}
