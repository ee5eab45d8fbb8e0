package eta

import (
	"context"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/google/uuid"
)

// Provider is a higher-fidelity external routing source. The naive
// calculation is the fallback whenever the provider fails or is absent.
type Provider interface {
	Route(ctx context.Context, from, to models.Location) (minutes int, distanceKm float64, err error)
}

type ETARepo interface {
	Append(ctx context.Context, calc *models.ETACalculation) error
	SetJobETA(ctx context.Context, jobID uuid.UUID, at time.Time) error
}
