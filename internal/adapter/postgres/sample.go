package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SampleRepo stores raw GPS readings. The table is append-only: rows are
// inserted once and never updated or deleted by the engine.
type SampleRepo struct {
	db *pgxpool.Pool
}

func NewSampleRepo(db *pgxpool.Pool) *SampleRepo {
	return &SampleRepo{db: db}
}

func (r *SampleRepo) Insert(ctx context.Context, sample *models.LocationSample) error {
	const op = "SampleRepo.Insert"
	query := `
		INSERT INTO location_samples(
			id, driver_id, job_id, vehicle_id,
			latitude, longitude, accuracy_meters, speed_kmh, heading_degrees, altitude_meters,
			battery_level, network_type, source,
			recorded_at, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`

	start := time.Now()
	_, err := TxorDB(ctx, r.db).Exec(ctx, query,
		sample.ID, sample.DriverID, sample.JobID, sample.VehicleID,
		sample.Location.Latitude, sample.Location.Longitude,
		sample.AccuracyMeters, sample.SpeedKmh, sample.HeadingDegrees, sample.AltitudeMeters,
		sample.Device.BatteryLevel, sample.Device.NetworkType, sample.Source,
		sample.RecordedAt, sample.CreatedAt,
	)
	metrics.RecordDatabaseQuery(serviceName, "sample_insert", err, time.Since(start))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

func (r *SampleRepo) History(ctx context.Context, filter models.HistoryFilter) ([]models.LocationSample, error) {
	const op = "SampleRepo.History"

	query := `
		SELECT
			id, driver_id, job_id, vehicle_id,
			latitude, longitude, accuracy_meters, speed_kmh, heading_degrees, altitude_meters,
			battery_level, network_type, source,
			recorded_at, created_at
		FROM location_samples
		WHERE ($1::uuid IS NULL OR driver_id = $1)
		  AND ($2::uuid IS NULL OR job_id = $2)
		  AND ($3::timestamptz IS NULL OR recorded_at >= $3)
		  AND ($4::timestamptz IS NULL OR recorded_at <= $4)
		ORDER BY recorded_at DESC
		LIMIT $5;`

	var from, to *time.Time
	if !filter.From.IsZero() {
		from = &filter.From
	}
	if !filter.To.IsZero() {
		to = &filter.To
	}

	start := time.Now()
	rows, err := TxorDB(ctx, r.db).Query(ctx, query, filter.DriverID, filter.JobID, from, to, filter.Limit)
	metrics.RecordDatabaseQuery(serviceName, "sample_history", err, time.Since(start))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var samples []models.LocationSample
	for rows.Next() {
		var s models.LocationSample
		if err := rows.Scan(
			&s.ID, &s.DriverID, &s.JobID, &s.VehicleID,
			&s.Location.Latitude, &s.Location.Longitude,
			&s.AccuracyMeters, &s.SpeedKmh, &s.HeadingDegrees, &s.AltitudeMeters,
			&s.Device.BatteryLevel, &s.Device.NetworkType, &s.Source,
			&s.RecordedAt, &s.CreatedAt,
		); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return samples, nil
}
