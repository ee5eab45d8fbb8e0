package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GeofenceRepo stores company zones and their append-only event trail.
// Polygon rings are kept as JSONB; containment math happens in Go.
type GeofenceRepo struct {
	db *pgxpool.Pool
}

func NewGeofenceRepo(db *pgxpool.Pool) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) ListActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Geofence, error) {
	const op = "GeofenceRepo.ListActiveByCompany"
	query := `
		SELECT id, company_id, name, kind, center_latitude, center_longitude, radius_m, ring, active, created_at
		FROM geofences
		WHERE company_id = $1 AND active = true;`

	start := time.Now()
	rows, err := TxorDB(ctx, r.db).Query(ctx, query, companyID)
	metrics.RecordDatabaseQuery(serviceName, "geofence_list", err, time.Since(start))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var fences []models.Geofence
	for rows.Next() {
		var (
			fence   models.Geofence
			lat     *float64
			lon     *float64
			ringRaw []byte
		)
		if err := rows.Scan(&fence.ID, &fence.CompanyID, &fence.Name, &fence.Kind,
			&lat, &lon, &fence.RadiusM, &ringRaw, &fence.Active, &fence.CreatedAt); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		if lat != nil && lon != nil {
			fence.Center = &models.Location{Latitude: *lat, Longitude: *lon}
		}
		if len(ringRaw) > 0 {
			if err := json.Unmarshal(ringRaw, &fence.Ring); err != nil {
				return nil, wrap.Error(ctx, fmt.Errorf("%s: malformed ring for geofence %s: %w", op, fence.ID, err))
			}
		}
		fences = append(fences, fence)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return fences, nil
}

func (r *GeofenceRepo) LatestEvent(ctx context.Context, driverID, geofenceID uuid.UUID) (*models.GeofenceEvent, error) {
	const op = "GeofenceRepo.LatestEvent"
	query := `
		SELECT id, driver_id, job_id, geofence_id, type, latitude, longitude, confidence, created_at
		FROM geofence_events
		WHERE driver_id = $1 AND geofence_id = $2
		ORDER BY created_at DESC
		LIMIT 1;`

	var event models.GeofenceEvent
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, driverID, geofenceID).Scan(
		&event.ID, &event.DriverID, &event.JobID, &event.GeofenceID, &event.Type,
		&event.Location.Latitude, &event.Location.Longitude, &event.Confidence, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return &event, nil
}

func (r *GeofenceRepo) AppendEvent(ctx context.Context, event *models.GeofenceEvent) error {
	const op = "GeofenceRepo.AppendEvent"
	query := `
		INSERT INTO geofence_events(id, driver_id, job_id, geofence_id, type, latitude, longitude, confidence, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query,
		event.ID, event.DriverID, event.JobID, event.GeofenceID, event.Type,
		event.Location.Latitude, event.Location.Longitude, event.Confidence, event.CreatedAt,
	); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
