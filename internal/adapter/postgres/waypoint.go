package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaypointRepo struct {
	db *pgxpool.Pool
}

func NewWaypointRepo(db *pgxpool.Pool) *WaypointRepo {
	return &WaypointRepo{db: db}
}

// MarkCompleted flags a waypoint as reached. Completing an already
// completed waypoint is a no-op at the database level; the guard lives in
// the proximity engine.
func (r *WaypointRepo) MarkCompleted(ctx context.Context, waypointID uuid.UUID, at time.Time) error {
	const op = "WaypointRepo.MarkCompleted"
	query := `
		UPDATE waypoints
		SET completed = true, completed_at = $2
		WHERE id = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, waypointID, at)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
