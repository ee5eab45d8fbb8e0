// Package eta derives arrival estimates from a plain distance/speed model
// with a time-of-day traffic multiplier. No road-network data is involved,
// which the low confidence value reflects.
package eta

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/geo"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/google/uuid"
)

const (
	assumedAverageSpeedKmh = 50.0

	rushMultiplier      = 1.5
	overnightMultiplier = 0.8
	naiveConfidence     = 0.7

	methodNaive    = "naive"
	methodProvider = "provider"
)

// RushWindows are the local hours the naive model treats as rush hour,
// start inclusive, end exclusive.
type RushWindows struct {
	MorningStart int
	MorningEnd   int
	EveningStart int
	EveningEnd   int
}

func DefaultRushWindows() RushWindows {
	return RushWindows{MorningStart: 7, MorningEnd: 10, EveningStart: 17, EveningEnd: 20}
}

func (w RushWindows) contains(hour int) bool {
	return (hour >= w.MorningStart && hour < w.MorningEnd) ||
		(hour >= w.EveningStart && hour < w.EveningEnd)
}

type Estimator struct {
	repo     ETARepo
	provider Provider
	rush     RushWindows
	l        logger.Logger

	now func() time.Time
}

// New builds an estimator. provider may be nil; the naive model then
// handles everything.
func New(repo ETARepo, provider Provider, rush RushWindows, l logger.Logger) *Estimator {
	return &Estimator{
		repo:     repo,
		provider: provider,
		rush:     rush,
		l:        l,
		now:      time.Now,
	}
}

// Estimate computes the arrival estimate for a job, appends the
// calculation row and moves the job's display ETA timestamp to
// now + estimate. Provider failures fall back to the naive model and
// never fail the request.
func (e *Estimator) Estimate(ctx context.Context, jobID uuid.UUID, from, to models.Location) (*models.ETACalculation, error) {
	const op = "eta.Estimator.Estimate"

	now := e.now()
	calc := e.calculate(ctx, jobID, from, to, now)

	if err := e.repo.Append(ctx, calc); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to store calculation: %w", op, err))
	}

	etaAt := now.Add(time.Duration(calc.EstimatedMinutes) * time.Minute)
	if err := e.repo.SetJobETA(ctx, jobID, etaAt); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: failed to update job eta: %w", op, err))
	}

	return calc, nil
}

func (e *Estimator) calculate(ctx context.Context, jobID uuid.UUID, from, to models.Location, now time.Time) *models.ETACalculation {
	if e.provider != nil {
		minutes, distanceKm, err := e.provider.Route(ctx, from, to)
		if err == nil {
			return &models.ETACalculation{
				ID:                  uuid.New(),
				JobID:               jobID,
				Origin:              from,
				Destination:         to,
				EstimatedMinutes:    minutes,
				EstimatedDistanceKm: distanceKm,
				TrafficMultiplier:   1.0,
				Confidence:          0.9,
				Method:              methodProvider,
				CreatedAt:           now,
			}
		}
		e.l.Warn(wrap.WithAction(ctx, "eta_provider_fallback"),
			"eta provider failed, falling back to naive model",
			"job_id", jobID,
			"err", err.Error(),
		)
	}

	return e.naive(jobID, from, to, now)
}

func (e *Estimator) naive(jobID uuid.UUID, from, to models.Location, now time.Time) *models.ETACalculation {
	distanceKm := geo.Distance(from, to)
	baseMinutes := distanceKm / assumedAverageSpeedKmh * 60
	multiplier := trafficMultiplier(e.rush, now)

	return &models.ETACalculation{
		ID:                  uuid.New(),
		JobID:               jobID,
		Origin:              from,
		Destination:         to,
		EstimatedMinutes:    int(math.Round(baseMinutes * multiplier)),
		EstimatedDistanceKm: distanceKm,
		TrafficMultiplier:   multiplier,
		Confidence:          naiveConfidence,
		Method:              methodNaive,
		CreatedAt:           now,
	}
}

// trafficMultiplier picks the time-of-day factor: the configured rush
// windows slow things down, overnight (22-05) speeds them up.
func trafficMultiplier(rush RushWindows, t time.Time) float64 {
	hour := t.Hour()
	switch {
	case rush.contains(hour):
		return rushMultiplier
	case hour >= 22 || hour < 5:
		return overnightMultiplier
	default:
		return 1.0
	}
}
