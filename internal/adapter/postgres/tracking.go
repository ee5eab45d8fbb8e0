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

const serviceName = "tracking-engine"

// TrackingRepo persists the per-driver live motion aggregate. One row per
// driver; the row is deleted when the session stops.
type TrackingRepo struct {
	db *pgxpool.Pool
}

func NewTrackingRepo(db *pgxpool.Pool) *TrackingRepo {
	return &TrackingRepo{db: db}
}

const trackingColumns = `
	driver_id, company_id, job_id,
	latitude, longitude, speed_kmh, heading_degrees, accuracy_meters,
	moving, samples,
	total_distance_km, total_duration_sec, avg_speed_kmh, max_speed_kmh,
	started_at, updated_at`

func (r *TrackingRepo) Create(ctx context.Context, state *models.TrackingState) error {
	const op = "TrackingRepo.Create"
	query := `
		INSERT INTO tracking_states(` + trackingColumns + `)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	start := time.Now()
	_, err := TxorDB(ctx, r.db).Exec(ctx, query,
		state.DriverID, state.CompanyID, state.JobID,
		state.Location.Latitude, state.Location.Longitude,
		state.SpeedKmh, state.HeadingDegrees, state.AccuracyMeters,
		state.Moving, state.Samples,
		state.TotalDistanceKm, state.TotalDurationSec, state.AvgSpeedKmh, state.MaxSpeedKmh,
		state.StartedAt, state.UpdatedAt,
	)
	metrics.RecordDatabaseQuery(serviceName, "tracking_create", err, time.Since(start))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *TrackingRepo) Update(ctx context.Context, state *models.TrackingState) error {
	const op = "TrackingRepo.Update"
	query := `
		UPDATE tracking_states
		SET
			job_id = $2,
			latitude = $3,
			longitude = $4,
			speed_kmh = $5,
			heading_degrees = $6,
			accuracy_meters = $7,
			moving = $8,
			samples = $9,
			total_distance_km = $10,
			total_duration_sec = $11,
			avg_speed_kmh = $12,
			max_speed_kmh = $13,
			updated_at = $14
		WHERE driver_id = $1;`

	start := time.Now()
	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query,
		state.DriverID, state.JobID,
		state.Location.Latitude, state.Location.Longitude,
		state.SpeedKmh, state.HeadingDegrees, state.AccuracyMeters,
		state.Moving, state.Samples,
		state.TotalDistanceKm, state.TotalDurationSec, state.AvgSpeedKmh, state.MaxSpeedKmh,
		state.UpdatedAt,
	)
	metrics.RecordDatabaseQuery(serviceName, "tracking_update", err, time.Since(start))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrTrackingNotFound
	}
	return nil
}

func (r *TrackingRepo) GetByDriver(ctx context.Context, driverID uuid.UUID) (*models.TrackingState, error) {
	const op = "TrackingRepo.GetByDriver"
	query := `SELECT ` + trackingColumns + ` FROM tracking_states WHERE driver_id = $1;`

	state, err := scanTrackingState(TxorDB(ctx, r.db).QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return state, nil
}

func (r *TrackingRepo) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.TrackingState, error) {
	const op = "TrackingRepo.GetByJob"
	query := `SELECT ` + trackingColumns + ` FROM tracking_states WHERE job_id = $1;`

	state, err := scanTrackingState(TxorDB(ctx, r.db).QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return state, nil
}

func (r *TrackingRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, updatedSince time.Time) ([]models.TrackingState, error) {
	const op = "TrackingRepo.ListByCompany"
	query := `
		SELECT ` + trackingColumns + `
		FROM tracking_states
		WHERE company_id = $1 AND updated_at > $2
		ORDER BY updated_at DESC;`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, companyID, updatedSince)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var states []models.TrackingState
	for rows.Next() {
		state, err := scanTrackingState(rows)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return states, nil
}

func (r *TrackingRepo) Delete(ctx context.Context, driverID uuid.UUID) error {
	const op = "TrackingRepo.Delete"

	if _, err := TxorDB(ctx, r.db).Exec(ctx, `DELETE FROM tracking_states WHERE driver_id = $1;`, driverID); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func scanTrackingState(row pgx.Row) (*models.TrackingState, error) {
	var state models.TrackingState
	err := row.Scan(
		&state.DriverID, &state.CompanyID, &state.JobID,
		&state.Location.Latitude, &state.Location.Longitude,
		&state.SpeedKmh, &state.HeadingDegrees, &state.AccuracyMeters,
		&state.Moving, &state.Samples,
		&state.TotalDistanceKm, &state.TotalDurationSec, &state.AvgSpeedKmh, &state.MaxSpeedKmh,
		&state.StartedAt, &state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &state, nil
}
