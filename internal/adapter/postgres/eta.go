package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ETARepo appends arrival estimates and keeps the job's display ETA in
// step. One row per recomputation; history is never rewritten.
type ETARepo struct {
	db   *pgxpool.Pool
	jobs *JobRepo
}

func NewETARepo(db *pgxpool.Pool, jobs *JobRepo) *ETARepo {
	return &ETARepo{db: db, jobs: jobs}
}

func (r *ETARepo) Append(ctx context.Context, calc *models.ETACalculation) error {
	const op = "ETARepo.Append"
	query := `
		INSERT INTO eta_calculations(
			id, job_id,
			origin_latitude, origin_longitude, destination_latitude, destination_longitude,
			estimated_minutes, estimated_distance_km, traffic_multiplier, confidence, method,
			created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query,
		calc.ID, calc.JobID,
		calc.Origin.Latitude, calc.Origin.Longitude,
		calc.Destination.Latitude, calc.Destination.Longitude,
		calc.EstimatedMinutes, calc.EstimatedDistanceKm, calc.TrafficMultiplier, calc.Confidence, calc.Method,
		calc.CreatedAt,
	); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *ETARepo) SetJobETA(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	return r.jobs.SetETA(ctx, jobID, at)
}
