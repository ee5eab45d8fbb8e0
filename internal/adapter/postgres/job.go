package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobRepo reads the shipment view this engine needs and writes the fields
// it owns: status, last known position and the status audit trail.
type JobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepo(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	const op = "JobRepo.GetByID"
	query := `
		SELECT
			id, company_id, job_number, status,
			driver_id, vehicle_id, client_id,
			last_latitude, last_longitude, last_location_at, eta_at
		FROM jobs
		WHERE id = $1;`

	var (
		job      models.Job
		lastLat  *float64
		lastLon  *float64
	)

	start := time.Now()
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, jobID).Scan(
		&job.ID, &job.CompanyID, &job.Number, &job.Status,
		&job.DriverID, &job.VehicleID, &job.ClientID,
		&lastLat, &lastLon, &job.LastLocationAt, &job.ETAAt,
	)
	metrics.RecordDatabaseQuery(serviceName, "job_get", err, time.Since(start))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrJobNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if lastLat != nil && lastLon != nil {
		job.LastKnownLocation = &models.Location{Latitude: *lastLat, Longitude: *lastLon}
	}

	waypoints, err := r.listWaypoints(ctx, jobID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	job.Waypoints = waypoints

	return &job, nil
}

func (r *JobRepo) listWaypoints(ctx context.Context, jobID uuid.UUID) ([]models.Waypoint, error) {
	query := `
		SELECT id, job_id, sequence, type, name, latitude, longitude, radius_m, completed, completed_at
		FROM waypoints
		WHERE job_id = $1
		ORDER BY sequence;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waypoints []models.Waypoint
	for rows.Next() {
		var (
			w   models.Waypoint
			lat *float64
			lon *float64
		)
		if err := rows.Scan(&w.ID, &w.JobID, &w.Sequence, &w.Type, &w.Name, &lat, &lon, &w.RadiusM, &w.Completed, &w.CompletedAt); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			w.Center = &models.Location{Latitude: *lat, Longitude: *lon}
		}
		waypoints = append(waypoints, w)
	}
	return waypoints, rows.Err()
}

func (r *JobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, status types.JobStatus) error {
	const op = "JobRepo.UpdateStatus"
	query := `
		UPDATE jobs
		SET status = $2, updated_at = now()
		WHERE id = $1;`

	start := time.Now()
	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, jobID, status)
	metrics.RecordDatabaseQuery(serviceName, "job_update_status", err, time.Since(start))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrJobNotFound
	}
	return nil
}

func (r *JobRepo) AppendStatusEvent(ctx context.Context, event *models.JobStatusEvent) error {
	const op = "JobRepo.AppendStatusEvent"
	query := `
		INSERT INTO job_status_events(id, job_id, old_status, new_status, cause, waypoint_id, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7);`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query,
		event.ID, event.JobID, event.OldStatus, event.NewStatus, event.Cause, event.WaypointID, event.CreatedAt,
	); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *JobRepo) UpdateLastLocation(ctx context.Context, jobID uuid.UUID, loc models.Location, at time.Time) error {
	const op = "JobRepo.UpdateLastLocation"
	query := `
		UPDATE jobs
		SET last_latitude = $2, last_longitude = $3, last_location_at = $4, updated_at = now()
		WHERE id = $1;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, jobID, loc.Latitude, loc.Longitude, at); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// SetETA moves the job's display ETA timestamp.
func (r *JobRepo) SetETA(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	const op = "JobRepo.SetETA"
	query := `UPDATE jobs SET eta_at = $2, updated_at = now() WHERE id = $1;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, jobID, at); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// IsParticipant reports whether the user takes part in the job as its
// driver or client. Used by the realtime topic authorizer.
func (r *JobRepo) IsParticipant(ctx context.Context, jobID, userID uuid.UUID) (bool, error) {
	const op = "JobRepo.IsParticipant"
	query := `
		SELECT EXISTS(
			SELECT 1 FROM jobs
			WHERE id = $1 AND (driver_id = $2 OR client_id = $2)
		);`

	var ok bool
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, jobID, userID).Scan(&ok); err != nil {
		return false, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return ok, nil
}

// BelongsToCompany reports whether the job is owned by the company.
func (r *JobRepo) BelongsToCompany(ctx context.Context, jobID, companyID uuid.UUID) (bool, error) {
	const op = "JobRepo.BelongsToCompany"
	query := `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1 AND company_id = $2);`

	var ok bool
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, jobID, companyID).Scan(&ok); err != nil {
		return false, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return ok, nil
}
