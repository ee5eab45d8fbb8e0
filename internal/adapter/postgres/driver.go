package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DriverRepo struct {
	db *pgxpool.Pool
}

func NewDriverRepo(db *pgxpool.Pool) *DriverRepo {
	return &DriverRepo{db: db}
}

func (r *DriverRepo) GetByID(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	const op = "DriverRepo.GetByID"
	query := `
		SELECT id, company_id, name, active, online, last_latitude, last_longitude, last_seen_at, current_job_id
		FROM drivers
		WHERE id = $1;`

	var (
		driver models.Driver
		lat    *float64
		lon    *float64
	)
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, driverID).Scan(
		&driver.ID, &driver.CompanyID, &driver.Name, &driver.Active, &driver.Online,
		&lat, &lon, &driver.LastSeenAt, &driver.CurrentJobID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrDriverNotFound
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if lat != nil && lon != nil {
		driver.LastLocation = &models.Location{Latitude: *lat, Longitude: *lon}
	}
	return &driver, nil
}

func (r *DriverRepo) SetOnline(ctx context.Context, driverID uuid.UUID, online bool, at time.Time) error {
	const op = "DriverRepo.SetOnline"
	query := `
		UPDATE drivers
		SET online = $2, last_seen_at = $3
		WHERE id = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, driverID, online, at)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrDriverNotFound
	}
	return nil
}

func (r *DriverRepo) SetCurrentJob(ctx context.Context, driverID uuid.UUID, jobID *uuid.UUID) error {
	const op = "DriverRepo.SetCurrentJob"
	query := `UPDATE drivers SET current_job_id = $2 WHERE id = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, driverID, jobID)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrDriverNotFound
	}
	return nil
}

// UpdateLastLocation mirrors the freshest fix onto the driver row.
func (r *DriverRepo) UpdateLastLocation(ctx context.Context, driverID uuid.UUID, loc models.Location, at time.Time) error {
	const op = "DriverRepo.UpdateLastLocation"
	query := `
		UPDATE drivers
		SET last_latitude = $2, last_longitude = $3, last_seen_at = $4
		WHERE id = $1;`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, driverID, loc.Latitude, loc.Longitude, at); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
