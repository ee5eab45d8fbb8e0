package proximity

import (
	"context"
	"testing"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/google/uuid"
)

type fakeWaypointRepo struct {
	completed []uuid.UUID
}

func (f *fakeWaypointRepo) MarkCompleted(ctx context.Context, waypointID uuid.UUID, at time.Time) error {
	f.completed = append(f.completed, waypointID)
	return nil
}

type fakeGeofenceRepo struct {
	fences []models.Geofence
	latest map[uuid.UUID]*models.GeofenceEvent
	events []*models.GeofenceEvent
}

func (f *fakeGeofenceRepo) ListActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Geofence, error) {
	return f.fences, nil
}

func (f *fakeGeofenceRepo) LatestEvent(ctx context.Context, driverID, geofenceID uuid.UUID) (*models.GeofenceEvent, error) {
	return f.latest[geofenceID], nil
}

func (f *fakeGeofenceRepo) AppendEvent(ctx context.Context, event *models.GeofenceEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeAutogate struct {
	applied []*models.Waypoint
}

func (f *fakeAutogate) Apply(ctx context.Context, job *models.Job, wp *models.Waypoint) (*models.JobStatusEvent, error) {
	f.applied = append(f.applied, wp)
	return &models.JobStatusEvent{}, nil
}

type fakeBroadcaster struct {
	topics []realtime.Topic
	events []realtime.Event
}

func (f *fakeBroadcaster) Publish(ctx context.Context, topic realtime.Topic, event realtime.Event) int {
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return 1
}

func loc(lat, lon float64) models.Location {
	return models.Location{Latitude: lat, Longitude: lon}
}

func locPtr(lat, lon float64) *models.Location {
	l := loc(lat, lon)
	return &l
}

func newEngine(wr *fakeWaypointRepo, gr *fakeGeofenceRepo, ag *fakeAutogate, bc *fakeBroadcaster) *Engine {
	if wr == nil {
		wr = &fakeWaypointRepo{}
	}
	if gr == nil {
		gr = &fakeGeofenceRepo{latest: map[uuid.UUID]*models.GeofenceEvent{}}
	}
	if ag == nil {
		ag = &fakeAutogate{}
	}
	if bc == nil {
		bc = &fakeBroadcaster{}
	}
	return New(wr, gr, ag, bc, logger.InitLogger("test", logger.LevelError))
}

func TestEvaluateWaypoints_FirstInSequenceWins(t *testing.T) {
	center := locPtr(6.9271, 79.8612)
	// Two overlapping circles at the same spot; the lower sequence must win
	// even though it appears later in the slice.
	job := &models.Job{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Status:    types.StatusAssigned,
		Waypoints: []models.Waypoint{
			{ID: uuid.New(), Sequence: 2, Type: types.WaypointDelivery, Center: center, RadiusM: 200},
			{ID: uuid.New(), Sequence: 1, Type: types.WaypointPickup, Center: center, RadiusM: 200},
		},
	}

	wr := &fakeWaypointRepo{}
	ag := &fakeAutogate{}
	engine := newEngine(wr, nil, ag, nil)

	wp, err := engine.EvaluateWaypoints(context.Background(), job, *center)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wp == nil {
		t.Fatal("expected a completed waypoint")
	}
	if wp.Sequence != 1 {
		t.Errorf("completed sequence = %d, want 1", wp.Sequence)
	}
	if !wp.Completed || wp.CompletedAt == nil {
		t.Error("waypoint must be marked completed in memory")
	}
	if len(wr.completed) != 1 {
		t.Errorf("expected exactly one completion write, got %d", len(wr.completed))
	}
	if len(ag.applied) != 1 {
		t.Errorf("autogate must see exactly the completed waypoint, got %d", len(ag.applied))
	}
}

func TestEvaluateWaypoints_SkipsCompletedAndOutOfRange(t *testing.T) {
	job := &models.Job{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Status:    types.StatusInTransit,
		Waypoints: []models.Waypoint{
			{ID: uuid.New(), Sequence: 1, Type: types.WaypointPickup, Center: locPtr(6.9271, 79.8612), RadiusM: 150, Completed: true},
			{ID: uuid.New(), Sequence: 2, Type: types.WaypointDelivery, Center: locPtr(7.2906, 80.6337), RadiusM: 150},
			{ID: uuid.New(), Sequence: 3, Type: types.WaypointCheckpoint}, // no geofence
		},
	}

	wr := &fakeWaypointRepo{}
	engine := newEngine(wr, nil, nil, nil)

	// Position inside the already-completed pickup circle only.
	wp, err := engine.EvaluateWaypoints(context.Background(), job, loc(6.9271, 79.8612))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wp != nil {
		t.Fatalf("nothing should complete, got waypoint seq %d", wp.Sequence)
	}
	if len(wr.completed) != 0 {
		t.Error("no completion write expected")
	}
}

func TestEvaluateWaypoints_DefaultRadius(t *testing.T) {
	center := locPtr(6.9271, 79.8612)
	job := &models.Job{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Status:    types.StatusAssigned,
		Waypoints: []models.Waypoint{
			// RadiusM zero: the 150 m default applies.
			{ID: uuid.New(), Sequence: 1, Type: types.WaypointPickup, Center: center},
		},
	}

	engine := newEngine(nil, nil, nil, nil)

	// ~100 m north of center (0.0009 degrees of latitude).
	wp, err := engine.EvaluateWaypoints(context.Background(), job, loc(6.9280, 79.8612))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wp == nil {
		t.Fatal("point 100 m away must be inside the default 150 m radius")
	}
}

func TestCheckGeofences_EnterThenNoDuplicate(t *testing.T) {
	driverID := uuid.New()
	companyID := uuid.New()
	fence := models.Geofence{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      "Depot",
		Kind:      types.GeofenceCircle,
		Center:    locPtr(6.9271, 79.8612),
		RadiusM:   300,
		Active:    true,
	}

	gr := &fakeGeofenceRepo{fences: []models.Geofence{fence}, latest: map[uuid.UUID]*models.GeofenceEvent{}}
	bc := &fakeBroadcaster{}
	engine := newEngine(nil, gr, nil, bc)

	inside := loc(6.9271, 79.8612)
	events, err := engine.CheckGeofences(context.Background(), driverID, nil, companyID, inside, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != types.GeofenceEnter {
		t.Fatalf("expected one ENTER event, got %+v", events)
	}
	if len(bc.topics) != 1 {
		t.Errorf("expected one company broadcast, got %d", len(bc.topics))
	}

	// Driver stays inside: the derived state suppresses a second ENTER.
	gr.latest[fence.ID] = gr.events[0]
	events, err = engine.CheckGeofences(context.Background(), driverID, nil, companyID, inside, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("staying inside must not emit events, got %d", len(events))
	}

	// Driver leaves: one EXIT.
	outside := loc(7.1, 80.0)
	events, err = engine.CheckGeofences(context.Background(), driverID, nil, companyID, outside, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].Type != types.GeofenceExit {
		t.Fatalf("expected one EXIT event, got %+v", events)
	}
}

func TestCheckGeofences_PolygonAndConfidence(t *testing.T) {
	driverID := uuid.New()
	companyID := uuid.New()
	jobID := uuid.New()
	fence := models.Geofence{
		ID:        uuid.New(),
		CompanyID: companyID,
		Name:      "Port zone",
		Kind:      types.GeofencePolygon,
		Ring: []models.Location{
			loc(6.90, 79.80), loc(6.90, 79.90), loc(7.00, 79.90), loc(7.00, 79.80),
		},
		Active: true,
	}

	gr := &fakeGeofenceRepo{fences: []models.Geofence{fence}, latest: map[uuid.UUID]*models.GeofenceEvent{}}
	bc := &fakeBroadcaster{}
	engine := newEngine(nil, gr, nil, bc)

	events, err := engine.CheckGeofences(context.Background(), driverID, &jobID, companyID, loc(6.95, 79.85), 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one ENTER event, got %d", len(events))
	}
	if events[0].Confidence != "low" {
		t.Errorf("confidence = %s, want low for 120 m accuracy", events[0].Confidence)
	}
	if events[0].JobID == nil || *events[0].JobID != jobID {
		t.Error("event must carry the active job id")
	}
	// Company topic plus job topic.
	if len(bc.topics) != 2 {
		t.Errorf("expected 2 broadcasts, got %d", len(bc.topics))
	}
}
