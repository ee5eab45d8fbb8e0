package eta

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/geo"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/google/uuid"
)

type fakeETARepo struct {
	calcs  []*models.ETACalculation
	etaAt  time.Time
	jobID  uuid.UUID
}

func (f *fakeETARepo) Append(ctx context.Context, calc *models.ETACalculation) error {
	f.calcs = append(f.calcs, calc)
	return nil
}

func (f *fakeETARepo) SetJobETA(ctx context.Context, jobID uuid.UUID, at time.Time) error {
	f.jobID, f.etaAt = jobID, at
	return nil
}

type failingProvider struct{}

func (failingProvider) Route(ctx context.Context, from, to models.Location) (int, float64, error) {
	return 0, 0, errors.New("routing service unreachable")
}

type fixedProvider struct{}

func (fixedProvider) Route(ctx context.Context, from, to models.Location) (int, float64, error) {
	return 42, 33.3, nil
}

func atHour(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 2, hour, 30, 0, 0, time.UTC)
	}
}

func TestTrafficMultiplier(t *testing.T) {
	tests := []struct {
		hour int
		want float64
	}{
		{3, 0.8},  // overnight
		{6, 1.0},  // early morning, before rush
		{8, 1.5},  // morning rush
		{12, 1.0}, // midday
		{18, 1.5}, // evening rush
		{21, 1.0}, // evening
		{23, 0.8}, // overnight
	}

	for _, tt := range tests {
		got := trafficMultiplier(DefaultRushWindows(), time.Date(2025, 6, 2, tt.hour, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("hour %d: multiplier = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestTrafficMultiplier_ConfiguredWindows(t *testing.T) {
	// Shifted rush windows move the multiplier with them.
	shifted := RushWindows{MorningStart: 9, MorningEnd: 12, EveningStart: 16, EveningEnd: 19}

	if got := trafficMultiplier(shifted, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)); got != 1.0 {
		t.Errorf("hour 8 outside shifted window: multiplier = %v, want 1.0", got)
	}
	if got := trafficMultiplier(shifted, time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)); got != 1.5 {
		t.Errorf("hour 11 inside shifted window: multiplier = %v, want 1.5", got)
	}
	if got := trafficMultiplier(shifted, time.Date(2025, 6, 2, 19, 0, 0, 0, time.UTC)); got != 1.0 {
		t.Errorf("hour 19 at exclusive end: multiplier = %v, want 1.0", got)
	}
}

func TestEstimate_NaiveMidday(t *testing.T) {
	repo := &fakeETARepo{}
	est := New(repo, nil, DefaultRushWindows(), logger.InitLogger("test", logger.LevelError))
	est.now = atHour(12)

	from := models.Location{Latitude: 6.9271, Longitude: 79.8612}
	to := models.Location{Latitude: 7.2906, Longitude: 80.6337} // Kandy, ~94 km

	jobID := uuid.New()
	calc, err := est.Estimate(context.Background(), jobID, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	distanceKm := geo.Distance(from, to)
	wantMinutes := int(math.Round(distanceKm / 50 * 60))
	if calc.EstimatedMinutes != wantMinutes {
		t.Errorf("minutes = %d, want %d", calc.EstimatedMinutes, wantMinutes)
	}
	if calc.TrafficMultiplier != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", calc.TrafficMultiplier)
	}
	if calc.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", calc.Confidence)
	}
	if calc.Method != methodNaive {
		t.Errorf("method = %s, want %s", calc.Method, methodNaive)
	}

	if len(repo.calcs) != 1 {
		t.Fatalf("expected one stored calculation, got %d", len(repo.calcs))
	}
	wantETA := est.now().Add(time.Duration(wantMinutes) * time.Minute)
	if !repo.etaAt.Equal(wantETA) {
		t.Errorf("job eta = %v, want %v", repo.etaAt, wantETA)
	}
}

func TestEstimate_RushHourScalesUp(t *testing.T) {
	repo := &fakeETARepo{}
	est := New(repo, nil, DefaultRushWindows(), logger.InitLogger("test", logger.LevelError))

	from := models.Location{Latitude: 6.9271, Longitude: 79.8612}
	to := models.Location{Latitude: 7.2906, Longitude: 80.6337}

	est.now = atHour(12)
	midday, err := est.Estimate(context.Background(), uuid.New(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	est.now = atHour(8)
	rush, err := est.Estimate(context.Background(), uuid.New(), from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rush.EstimatedMinutes <= midday.EstimatedMinutes {
		t.Errorf("rush hour estimate (%d) must exceed midday estimate (%d)",
			rush.EstimatedMinutes, midday.EstimatedMinutes)
	}
}

func TestEstimate_ProviderUsedWhenHealthy(t *testing.T) {
	repo := &fakeETARepo{}
	est := New(repo, fixedProvider{}, DefaultRushWindows(), logger.InitLogger("test", logger.LevelError))
	est.now = atHour(12)

	calc, err := est.Estimate(context.Background(), uuid.New(),
		models.Location{Latitude: 6.9, Longitude: 79.8},
		models.Location{Latitude: 7.0, Longitude: 80.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calc.Method != methodProvider {
		t.Errorf("method = %s, want %s", calc.Method, methodProvider)
	}
	if calc.EstimatedMinutes != 42 {
		t.Errorf("minutes = %d, want 42", calc.EstimatedMinutes)
	}
}

func TestEstimate_ProviderFailureFallsBack(t *testing.T) {
	repo := &fakeETARepo{}
	est := New(repo, failingProvider{}, DefaultRushWindows(), logger.InitLogger("test", logger.LevelError))
	est.now = atHour(12)

	calc, err := est.Estimate(context.Background(), uuid.New(),
		models.Location{Latitude: 6.9, Longitude: 79.8},
		models.Location{Latitude: 7.0, Longitude: 80.0})
	if err != nil {
		t.Fatalf("provider failure must not fail the request: %v", err)
	}
	if calc.Method != methodNaive {
		t.Errorf("method = %s, want naive fallback", calc.Method)
	}
}
