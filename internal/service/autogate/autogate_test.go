package autogate

import (
	"context"
	"testing"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/google/uuid"
)

func TestTarget_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		wt       types.WaypointType
		current  types.JobStatus
		want     types.JobStatus
		applies  bool
	}{
		{"pickup from assigned", types.WaypointPickup, types.StatusAssigned, types.StatusAtPickup, true},
		{"pickup from in transit", types.WaypointPickup, types.StatusInTransit, types.StatusAtPickup, true},
		{"delivery from loaded", types.WaypointDelivery, types.StatusLoaded, types.StatusAtDelivery, true},
		{"delivery from in transit", types.WaypointDelivery, types.StatusInTransit, types.StatusAtDelivery, true},
		{"checkpoint from assigned", types.WaypointCheckpoint, types.StatusAssigned, types.StatusInTransit, true},
		{"yard from created", types.WaypointYard, types.StatusCreated, types.StatusInTransit, true},
		{"rest stop never transitions", types.WaypointRestStop, types.StatusInTransit, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Target(tt.wt, tt.current)
			if ok != tt.applies {
				t.Fatalf("applies = %v, want %v", ok, tt.applies)
			}
			if ok && got != tt.want {
				t.Fatalf("target = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTarget_Monotonicity(t *testing.T) {
	// Once LOADED (or further), a pickup reach can no longer regress the job.
	for _, status := range []types.JobStatus{
		types.StatusLoaded, types.StatusAtDelivery, types.StatusDelivered, types.StatusCompleted,
	} {
		if _, ok := Target(types.WaypointPickup, status); ok {
			t.Errorf("pickup from %s must be suppressed", status)
		}
	}

	// DELIVERED and COMPLETED are frozen for all automation.
	for _, status := range []types.JobStatus{types.StatusDelivered, types.StatusCompleted} {
		for _, wt := range []types.WaypointType{
			types.WaypointPickup, types.WaypointDelivery, types.WaypointCheckpoint,
			types.WaypointYard, types.WaypointPort, types.WaypointRestStop,
		} {
			if _, ok := Target(wt, status); ok {
				t.Errorf("%s from %s must be suppressed", wt, status)
			}
		}
	}

	// Re-reaching a waypoint whose status was already applied changes nothing.
	if _, ok := Target(types.WaypointPickup, types.StatusAtPickup); ok {
		t.Error("pickup from AT_PICKUP must not fire a duplicate transition")
	}

	// Manual side states are out of automation's reach.
	for _, status := range []types.JobStatus{types.StatusOnHold, types.StatusCancelled} {
		if _, ok := Target(types.WaypointDelivery, status); ok {
			t.Errorf("automation must not touch %s", status)
		}
	}
}

/* ======================= Apply ======================= */

type fakeJobRepo struct {
	statusUpdates []types.JobStatus
	events        []*models.JobStatusEvent
	failStatus    error
}

func (f *fakeJobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, status types.JobStatus) error {
	if f.failStatus != nil {
		return f.failStatus
	}
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

func (f *fakeJobRepo) AppendStatusEvent(ctx context.Context, event *models.JobStatusEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fakeNotifier struct {
	sent []models.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n models.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

type fakeBroadcaster struct {
	published []realtime.Event
	topics    []realtime.Topic
}

func (f *fakeBroadcaster) Publish(ctx context.Context, topic realtime.Topic, event realtime.Event) int {
	f.published = append(f.published, event)
	f.topics = append(f.topics, topic)
	return 1
}

type noopTxManager struct{}

func (noopTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestApply_PickupTransition(t *testing.T) {
	repo := &fakeJobRepo{}
	notifier := &fakeNotifier{}
	broadcaster := &fakeBroadcaster{}
	engine := New(repo, notifier, broadcaster, noopTxManager{}, logger.InitLogger("test", logger.LevelError))

	clientID := uuid.New()
	job := &models.Job{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		Number:    "JOB-1001",
		Status:    types.StatusAssigned,
		ClientID:  &clientID,
	}
	wp := &models.Waypoint{ID: uuid.New(), JobID: job.ID, Type: types.WaypointPickup}

	event, err := engine.Apply(context.Background(), job, wp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event == nil {
		t.Fatal("expected a status event")
	}

	if job.Status != types.StatusAtPickup {
		t.Errorf("job status = %s, want AT_PICKUP", job.Status)
	}
	if event.Cause != types.CauseSystem {
		t.Errorf("cause = %s, want system-detected", event.Cause)
	}
	if event.WaypointID == nil || *event.WaypointID != wp.ID {
		t.Error("status event must reference the triggering waypoint")
	}
	if len(repo.events) != 1 {
		t.Errorf("expected one audit entry, got %d", len(repo.events))
	}
	if len(notifier.sent) != 1 {
		t.Errorf("expected one client notification, got %d", len(notifier.sent))
	}
	// Company, job, public-tracking and client topics hear the transition,
	// and the client topic also carries the notification event.
	if len(broadcaster.topics) != 5 {
		t.Errorf("expected 5 topic publishes, got %d", len(broadcaster.topics))
	}
}

func TestApply_SuppressedTransitionDoesNothing(t *testing.T) {
	repo := &fakeJobRepo{}
	broadcaster := &fakeBroadcaster{}
	engine := New(repo, &fakeNotifier{}, broadcaster, noopTxManager{}, logger.InitLogger("test", logger.LevelError))

	job := &models.Job{ID: uuid.New(), CompanyID: uuid.New(), Status: types.StatusLoaded}
	wp := &models.Waypoint{ID: uuid.New(), JobID: job.ID, Type: types.WaypointPickup}

	event, err := engine.Apply(context.Background(), job, wp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event != nil {
		t.Fatal("suppressed transition must not produce an event")
	}
	if job.Status != types.StatusLoaded {
		t.Errorf("job status must stay LOADED, got %s", job.Status)
	}
	if len(repo.statusUpdates) != 0 || len(broadcaster.published) != 0 {
		t.Error("suppressed transition must not write or broadcast")
	}
}
