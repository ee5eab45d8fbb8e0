// Package tracking is the ingestion and session core: it serializes GPS
// samples per driver, maintains the live motion aggregate, and drives the
// proximity, geofence and ETA stages off every accepted sample.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/geo"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/fleetgate/fleet-tracking-system/pkg/trm"
	"github.com/google/uuid"
)

const serviceName = "tracking-engine"

const (
	// staleAfter flags a job-scoped read-model entry whose last update is
	// too old; ad-hoc presence tracking tolerates twice that.
	staleAfter      = 5 * time.Minute
	adhocStaleAfter = 10 * time.Minute
	// evictAfter drops a session from the live cache and from active lists.
	evictAfter = 30 * time.Minute

	// Reported speed above this counts as moving.
	movingThresholdKmh = 5.0

	// A sample timestamped further in the future than this is rejected.
	maxClockSkew = 5 * time.Minute

	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

type Service struct {
	tracking  TrackingRepo
	samples   SampleRepo
	jobs      JobRepo
	drivers   DriverRepo
	proximity Proximity
	eta       ETAEstimator
	broadcast Broadcaster
	trm       trm.TxManager
	l         logger.Logger

	locks *keyedMutex
	cache *liveCache
}

func New(
	tracking TrackingRepo,
	samples SampleRepo,
	jobs JobRepo,
	drivers DriverRepo,
	proximity Proximity,
	eta ETAEstimator,
	broadcast Broadcaster,
	trm trm.TxManager,
	l logger.Logger,
) *Service {
	return &Service{
		tracking:  tracking,
		samples:   samples,
		jobs:      jobs,
		drivers:   drivers,
		proximity: proximity,
		eta:       eta,
		broadcast: broadcast,
		trm:       trm,
		l:         l,
		locks:     newKeyedMutex(),
		cache:     newLiveCache(evictAfter),
	}
}

/* ======================= ingestion ======================= */

// Ingest records one GPS sample and runs the full pipeline: validation,
// durable append, aggregate update, waypoint and geofence evaluation, ETA
// recomputation and live broadcast. All samples for one driver are
// processed strictly one at a time.
//
// The sample append is the only hard write: once it commits, downstream
// failures degrade the result instead of failing it, so a position is
// never lost to a broken side effect.
func (s *Service) Ingest(ctx context.Context, sample *models.LocationSample) (*models.IngestResult, error) {
	const op = "tracking.Service.Ingest"

	if err := validateSample(sample); err != nil {
		metrics.RecordIngest(serviceName, err)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	unlock := s.locks.Lock(sample.DriverID)
	defer unlock()

	now := time.Now().UTC()
	ctx = wrap.WithDriverID(ctx, sample.DriverID.String())

	state, err := s.liveState(ctx, sample.DriverID, now)
	if err != nil {
		metrics.RecordIngest(serviceName, err)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	if sample.JobID != nil {
		if state == nil || state.JobID == nil || *state.JobID != *sample.JobID {
			err := s.rejectJobSample(ctx, sample)
			metrics.RecordIngest(serviceName, err)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
	}

	if state == nil {
		// Presence-only tracking without a job: the session starts
		// implicitly at the first sample.
		state, err = s.newSessionlessState(ctx, sample)
		if err != nil {
			metrics.RecordIngest(serviceName, err)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if err := s.tracking.Create(ctx, state); err != nil {
			metrics.RecordIngest(serviceName, err)
			return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to create tracking state: %w", op, err))
		}
	}

	sample.ID = uuid.New()
	sample.CreatedAt = now
	if err := s.samples.Insert(ctx, sample); err != nil {
		metrics.RecordIngest(serviceName, err)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to store sample: %w", op, err))
	}
	metrics.RecordIngest(serviceName, nil)

	res := &models.IngestResult{State: state}

	// Late sample: already durably stored, but it must not rewind the
	// aggregate or trigger stale automation. Only prior samples count,
	// not the session creation instant.
	if state.Samples > 0 && sample.RecordedAt.Before(state.UpdatedAt) {
		s.l.Debug(wrap.WithAction(ctx, "ingest"), "out-of-order sample stored without aggregate update",
			"recorded_at", sample.RecordedAt,
			"state_at", state.UpdatedAt,
		)
		return res, nil
	}

	res.DeltaKm, res.Moving = motion(state, sample)
	applySample(state, sample, res.DeltaKm, res.Moving)

	if err := s.tracking.Update(ctx, state); err != nil {
		res.Degraded = true
		s.l.Warn(wrap.WithAction(ctx, "ingest"), "sample stored but aggregate update failed",
			"driver_id", sample.DriverID,
			"err", err.Error(),
		)
	}
	s.cache.Put(state, now)

	s.runAutomation(ctx, state, sample, res)
	s.broadcastLocation(ctx, state, sample, res)

	return res, nil
}

// runAutomation executes the stages that hang off an accepted sample.
// Every stage is best-effort relative to the already-committed sample.
func (s *Service) runAutomation(ctx context.Context, state *models.TrackingState, sample *models.LocationSample, res *models.IngestResult) {
	if _, err := s.proximity.CheckGeofences(ctx, sample.DriverID, sample.JobID, state.CompanyID, sample.Location, sample.AccuracyMeters); err != nil {
		res.Degraded = true
		s.l.Warn(wrap.WithAction(ctx, "ingest_geofences"), "geofence evaluation failed",
			"err", err.Error(),
		)
	}

	if sample.JobID == nil {
		return
	}
	ctx = wrap.WithJobID(ctx, sample.JobID.String())

	job, err := s.jobs.GetByID(ctx, *sample.JobID)
	if err != nil {
		res.Degraded = true
		s.l.Warn(wrap.WithAction(ctx, "ingest_automation"), "failed to load job, skipping automation",
			"err", err.Error(),
		)
		return
	}

	wp, err := s.proximity.EvaluateWaypoints(ctx, job, sample.Location)
	if err != nil {
		res.Degraded = true
		s.l.Warn(wrap.WithAction(ctx, "ingest_waypoints"), "waypoint evaluation failed",
			"err", err.Error(),
		)
	}
	res.CompletedWaypoint = wp

	if dest := job.DeliveryWaypoint(); dest != nil {
		calc, err := s.eta.Estimate(ctx, job.ID, sample.Location, *dest.Center)
		if err != nil {
			res.Degraded = true
			s.l.Warn(wrap.WithAction(ctx, "ingest_eta"), "eta recomputation failed",
				"err", err.Error(),
			)
		} else {
			res.ETA = calc
		}
	}

	if err := s.jobs.UpdateLastLocation(ctx, job.ID, sample.Location, sample.RecordedAt); err != nil {
		s.l.Warn(wrap.WithAction(ctx, "ingest_automation"), "failed to update job last location",
			"err", err.Error(),
		)
	}
}

func (s *Service) broadcastLocation(ctx context.Context, state *models.TrackingState, sample *models.LocationSample, res *models.IngestResult) {
	payload := models.LocationBroadcast{
		DriverID:        sample.DriverID,
		JobID:           sample.JobID,
		Location:        sample.Location,
		SpeedKmh:        sample.SpeedKmh,
		HeadingDegrees:  sample.HeadingDegrees,
		Moving:          res.Moving,
		TotalDistanceKm: state.TotalDistanceKm,
		RecordedAt:      sample.RecordedAt,
	}
	event := realtime.NewEvent(realtime.EventLocationUpdate, payload)

	s.broadcast.Publish(ctx, realtime.DriverTopic(sample.DriverID), event)
	s.broadcast.Publish(ctx, realtime.CompanyTopic(state.CompanyID), event)
	if sample.JobID != nil {
		s.broadcast.Publish(ctx, realtime.JobTopic(*sample.JobID), event)
		s.broadcast.Publish(ctx, realtime.PublicTrackingTopic(*sample.JobID), event)
	}
}

// liveState loads the driver's aggregate, preferring the in-memory copy.
func (s *Service) liveState(ctx context.Context, driverID uuid.UUID, now time.Time) (*models.TrackingState, error) {
	if state := s.cache.Get(driverID, now); state != nil {
		return state, nil
	}

	state, err := s.tracking.GetByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if now.Sub(state.UpdatedAt) > evictAfter {
		return nil, nil
	}
	s.cache.Put(state, now)
	return state, nil
}

// rejectJobSample picks the rejection for a job-tagged sample with no
// matching session: a job the driver is not assigned to is a not-found,
// an assigned job without a session is a session conflict.
func (s *Service) rejectJobSample(ctx context.Context, sample *models.LocationSample) error {
	job, err := s.jobs.GetByID(ctx, *sample.JobID)
	if err != nil {
		return err
	}
	if job.DriverID == nil || *job.DriverID != sample.DriverID {
		return types.ErrJobNotAssignedToDriver
	}
	return types.ErrSessionNotActive
}

func (s *Service) newSessionlessState(ctx context.Context, sample *models.LocationSample) (*models.TrackingState, error) {
	driver, err := s.drivers.GetByID(ctx, sample.DriverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver: %w", err)
	}
	if !driver.Active {
		return nil, types.ErrDriverNotFound
	}
	return &models.TrackingState{
		DriverID:  driver.ID,
		CompanyID: driver.CompanyID,
		Location:  sample.Location,
		StartedAt: sample.RecordedAt,
		UpdatedAt: sample.RecordedAt,
	}, nil
}

/* ======================= sessions ======================= */

// StartSession opens job tracking for a driver. The job must be assigned
// to that driver and must not already have an active session. A job still
// in ASSIGNED moves to IN_TRANSIT with an audit entry in the same
// transaction that creates the session.
func (s *Service) StartSession(ctx context.Context, jobID, driverID uuid.UUID) (*models.TrackingState, error) {
	const op = "tracking.Service.StartSession"
	ctx = wrap.WithJobID(wrap.WithDriverID(ctx, driverID.String()), jobID.String())

	unlock := s.locks.Lock(driverID)
	defer unlock()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if job.DriverID == nil || *job.DriverID != driverID {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrJobNotAssignedToDriver))
	}

	if existing, err := s.tracking.GetByJob(ctx, jobID); err == nil && existing != nil {
		if time.Now().UTC().Sub(existing.UpdatedAt) <= evictAfter {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrSessionAlreadyActive))
		}
	} else if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	now := time.Now().UTC()
	state := &models.TrackingState{
		DriverID:  driverID,
		CompanyID: job.CompanyID,
		JobID:     &job.ID,
		StartedAt: now,
		UpdatedAt: now,
	}
	if driver.LastLocation != nil {
		state.Location = *driver.LastLocation
	}

	fn := func(ctx context.Context) error {
		if err := s.tracking.Create(ctx, state); err != nil {
			return fmt.Errorf("failed to create tracking state: %w", err)
		}
		if job.Status == types.StatusAssigned {
			event := &models.JobStatusEvent{
				ID:        uuid.New(),
				JobID:     job.ID,
				OldStatus: types.StatusAssigned,
				NewStatus: types.StatusInTransit,
				Cause:     types.CauseSystem,
				CreatedAt: now,
			}
			if err := s.jobs.UpdateStatus(ctx, job.ID, types.StatusInTransit); err != nil {
				return fmt.Errorf("failed to advance job status: %w", err)
			}
			if err := s.jobs.AppendStatusEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to append status event: %w", err)
			}
		}
		if err := s.drivers.SetOnline(ctx, driverID, true, now); err != nil {
			return fmt.Errorf("failed to set driver online: %w", err)
		}
		if err := s.drivers.SetCurrentJob(ctx, driverID, &job.ID); err != nil {
			return fmt.Errorf("failed to set current job: %w", err)
		}
		return nil
	}
	if err := s.trm.Do(ctx, fn); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.cache.Put(state, now)
	metrics.DriversOnlineGauge.WithLabelValues(serviceName).Inc()

	s.l.Info(wrap.WithAction(ctx, "session_start"), "tracking session started",
		"job_id", jobID,
		"driver_id", driverID,
	)

	return state, nil
}

// StopSession closes job tracking and returns the accumulated session
// stats. The driver goes offline and a driver_offline event reaches the
// company topic.
func (s *Service) StopSession(ctx context.Context, jobID, driverID uuid.UUID) (*models.SessionSummary, error) {
	const op = "tracking.Service.StopSession"
	ctx = wrap.WithJobID(wrap.WithDriverID(ctx, driverID.String()), jobID.String())

	unlock := s.locks.Lock(driverID)
	defer unlock()

	now := time.Now().UTC()

	state, err := s.liveState(ctx, driverID, now)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if state == nil || state.JobID == nil || *state.JobID != jobID {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrSessionNotActive))
	}

	summary := &models.SessionSummary{
		JobID:            jobID,
		DriverID:         driverID,
		TotalDistanceKm:  state.TotalDistanceKm,
		TotalDurationSec: state.TotalDurationSec,
		AvgSpeedKmh:      state.AvgSpeedKmh,
		MaxSpeedKmh:      state.MaxSpeedKmh,
		StartedAt:        state.StartedAt,
		EndedAt:          now,
	}

	fn := func(ctx context.Context) error {
		if err := s.tracking.Delete(ctx, driverID); err != nil {
			return fmt.Errorf("failed to delete tracking state: %w", err)
		}
		if err := s.drivers.SetOnline(ctx, driverID, false, now); err != nil {
			return fmt.Errorf("failed to set driver offline: %w", err)
		}
		if err := s.drivers.SetCurrentJob(ctx, driverID, nil); err != nil {
			return fmt.Errorf("failed to clear current job: %w", err)
		}
		return nil
	}
	if err := s.trm.Do(ctx, fn); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.cache.Delete(driverID)
	metrics.DriversOnlineGauge.WithLabelValues(serviceName).Dec()

	s.broadcast.Publish(ctx, realtime.CompanyTopic(state.CompanyID),
		realtime.NewEvent(realtime.EventDriverOffline, models.DriverOfflineBroadcast{DriverID: driverID}))

	s.l.Info(wrap.WithAction(ctx, "session_stop"), "tracking session stopped",
		"job_id", jobID,
		"driver_id", driverID,
		"total_distance_km", summary.TotalDistanceKm,
	)

	return summary, nil
}

// HandleDriverDisconnect flips the driver offline when their realtime
// connection drops. The session itself stays open: a flaky network must
// not erase accumulated stats.
func (s *Service) HandleDriverDisconnect(ctx context.Context, driverID, companyID uuid.UUID) {
	now := time.Now().UTC()
	if err := s.drivers.SetOnline(ctx, driverID, false, now); err != nil {
		s.l.Warn(wrap.WithAction(ctx, "driver_disconnect"), "failed to set driver offline",
			"driver_id", driverID,
			"err", err.Error(),
		)
	}
	s.broadcast.Publish(ctx, realtime.CompanyTopic(companyID),
		realtime.NewEvent(realtime.EventDriverOffline, models.DriverOfflineBroadcast{DriverID: driverID}))
}

/* ======================= reads ======================= */

// CurrentTracking returns the live snapshot for one job. Staleness is
// computed against the read instant, never stored.
func (s *Service) CurrentTracking(ctx context.Context, jobID uuid.UUID) (*models.TrackingSnapshot, error) {
	const op = "tracking.Service.CurrentTracking"

	state, err := s.tracking.GetByJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrTrackingNotFound))
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	now := time.Now().UTC()
	return &models.TrackingSnapshot{
		JobID:    &jobID,
		DriverID: state.DriverID,
		State:    state,
		Stale:    state.StaleAt(now, staleAfter),
	}, nil
}

// CompanyTracking lists every live session of a company. Sessions silent
// for more than the eviction window are omitted; the rest carry a stale
// flag once past the staleness threshold.
func (s *Service) CompanyTracking(ctx context.Context, companyID uuid.UUID) ([]models.TrackingSnapshot, error) {
	const op = "tracking.Service.CompanyTracking"

	now := time.Now().UTC()
	states, err := s.tracking.ListByCompany(ctx, companyID, now.Add(-evictAfter))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	snapshots := make([]models.TrackingSnapshot, 0, len(states))
	for i := range states {
		state := &states[i]
		threshold := staleAfter
		if state.JobID == nil {
			threshold = adhocStaleAfter
		}
		snapshots = append(snapshots, models.TrackingSnapshot{
			JobID:    state.JobID,
			DriverID: state.DriverID,
			State:    state,
			Stale:    state.StaleAt(now, threshold),
		})
	}
	return snapshots, nil
}

// History returns stored samples matching the filter, newest first.
func (s *Service) History(ctx context.Context, filter models.HistoryFilter) ([]models.LocationSample, error) {
	const op = "tracking.Service.History"

	if filter.DriverID == nil && filter.JobID == nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, types.ErrNotFound))
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}

	samples, err := s.samples.History(ctx, filter)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return samples, nil
}

/* ======================= helpers ======================= */

func validateSample(sample *models.LocationSample) error {
	lat, lon := sample.Location.Latitude, sample.Location.Longitude
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return types.ErrInvalidCoordinates
	}
	if sample.SpeedKmh < 0 {
		return types.ErrInvalidSpeed
	}
	if sample.HeadingDegrees < 0 || sample.HeadingDegrees > 360 {
		return types.ErrInvalidHeading
	}
	if sample.RecordedAt.IsZero() || sample.RecordedAt.After(time.Now().Add(maxClockSkew)) {
		return types.ErrInvalidTimestamp
	}
	return nil
}

// motion derives the travelled delta and movement flag for a sample
// against the previous aggregate position. Cumulative distance is the
// exact sum of successive displacements; the moving flag comes solely
// from the reported speed.
func motion(state *models.TrackingState, sample *models.LocationSample) (deltaKm float64, moving bool) {
	moving = sample.SpeedKmh > movingThresholdKmh

	if state.Samples == 0 {
		// First sample of the session has no previous position.
		return 0, moving
	}

	return geo.DistanceMeters(state.Location, sample.Location) / 1000, moving
}

func applySample(state *models.TrackingState, sample *models.LocationSample, deltaKm float64, moving bool) {
	state.Location = sample.Location
	state.SpeedKmh = sample.SpeedKmh
	state.HeadingDegrees = sample.HeadingDegrees
	state.AccuracyMeters = sample.AccuracyMeters
	state.Moving = moving
	state.Samples++

	state.TotalDistanceKm += deltaKm
	if d := int64(sample.RecordedAt.Sub(state.StartedAt).Seconds()); d > state.TotalDurationSec {
		state.TotalDurationSec = d
	}
	if state.TotalDurationSec > 0 {
		hours := float64(state.TotalDurationSec) / 3600
		state.AvgSpeedKmh = state.TotalDistanceKm / hours
	}
	if sample.SpeedKmh > state.MaxSpeedKmh {
		state.MaxSpeedKmh = sample.SpeedKmh
	}
	state.UpdatedAt = sample.RecordedAt
}
