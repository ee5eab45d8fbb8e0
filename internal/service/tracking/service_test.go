package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/google/uuid"
)

/* ======================= fakes ======================= */

type fakeTrackingRepo struct {
	byDriver   map[uuid.UUID]*models.TrackingState
	failUpdate error
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{byDriver: map[uuid.UUID]*models.TrackingState{}}
}

func (f *fakeTrackingRepo) Create(ctx context.Context, state *models.TrackingState) error {
	f.byDriver[state.DriverID] = state
	return nil
}

func (f *fakeTrackingRepo) Update(ctx context.Context, state *models.TrackingState) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	f.byDriver[state.DriverID] = state
	return nil
}

func (f *fakeTrackingRepo) GetByDriver(ctx context.Context, driverID uuid.UUID) (*models.TrackingState, error) {
	if state, ok := f.byDriver[driverID]; ok {
		return state, nil
	}
	return nil, types.ErrNotFound
}

func (f *fakeTrackingRepo) GetByJob(ctx context.Context, jobID uuid.UUID) (*models.TrackingState, error) {
	for _, state := range f.byDriver {
		if state.JobID != nil && *state.JobID == jobID {
			return state, nil
		}
	}
	return nil, types.ErrNotFound
}

func (f *fakeTrackingRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, updatedSince time.Time) ([]models.TrackingState, error) {
	var out []models.TrackingState
	for _, state := range f.byDriver {
		if state.CompanyID == companyID && state.UpdatedAt.After(updatedSince) {
			out = append(out, *state)
		}
	}
	return out, nil
}

func (f *fakeTrackingRepo) Delete(ctx context.Context, driverID uuid.UUID) error {
	delete(f.byDriver, driverID)
	return nil
}

type fakeSampleRepo struct {
	samples    []*models.LocationSample
	failInsert error
}

func (f *fakeSampleRepo) Insert(ctx context.Context, sample *models.LocationSample) error {
	if f.failInsert != nil {
		return f.failInsert
	}
	f.samples = append(f.samples, sample)
	return nil
}

func (f *fakeSampleRepo) History(ctx context.Context, filter models.HistoryFilter) ([]models.LocationSample, error) {
	out := make([]models.LocationSample, 0, len(f.samples))
	for _, s := range f.samples {
		out = append(out, *s)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs          map[uuid.UUID]*models.Job
	statusUpdates []types.JobStatus
	events        []*models.JobStatusEvent
	lastLocations int
}

func newFakeJobRepo(jobs ...*models.Job) *fakeJobRepo {
	m := map[uuid.UUID]*models.Job{}
	for _, j := range jobs {
		m[j.ID] = j
	}
	return &fakeJobRepo{jobs: m}
}

func (f *fakeJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	if job, ok := f.jobs[jobID]; ok {
		return job, nil
	}
	return nil, types.ErrJobNotFound
}

func (f *fakeJobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, status types.JobStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	if job, ok := f.jobs[jobID]; ok {
		job.Status = status
	}
	return nil
}

func (f *fakeJobRepo) AppendStatusEvent(ctx context.Context, event *models.JobStatusEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeJobRepo) UpdateLastLocation(ctx context.Context, jobID uuid.UUID, loc models.Location, at time.Time) error {
	f.lastLocations++
	return nil
}

type fakeDriverRepo struct {
	drivers map[uuid.UUID]*models.Driver
	online  []bool
}

func newFakeDriverRepo(drivers ...*models.Driver) *fakeDriverRepo {
	m := map[uuid.UUID]*models.Driver{}
	for _, d := range drivers {
		m[d.ID] = d
	}
	return &fakeDriverRepo{drivers: m}
}

func (f *fakeDriverRepo) GetByID(ctx context.Context, driverID uuid.UUID) (*models.Driver, error) {
	if d, ok := f.drivers[driverID]; ok {
		return d, nil
	}
	return nil, types.ErrDriverNotFound
}

func (f *fakeDriverRepo) SetOnline(ctx context.Context, driverID uuid.UUID, online bool, at time.Time) error {
	f.online = append(f.online, online)
	if d, ok := f.drivers[driverID]; ok {
		d.Online = online
	}
	return nil
}

func (f *fakeDriverRepo) SetCurrentJob(ctx context.Context, driverID uuid.UUID, jobID *uuid.UUID) error {
	if d, ok := f.drivers[driverID]; ok {
		d.CurrentJobID = jobID
	}
	return nil
}

type fakeProximity struct {
	completed      *models.Waypoint
	geofenceEvents []models.GeofenceEvent
	waypointCalls  int
	geofenceCalls  int
}

func (f *fakeProximity) EvaluateWaypoints(ctx context.Context, job *models.Job, loc models.Location) (*models.Waypoint, error) {
	f.waypointCalls++
	return f.completed, nil
}

func (f *fakeProximity) CheckGeofences(ctx context.Context, driverID uuid.UUID, jobID *uuid.UUID, companyID uuid.UUID, loc models.Location, accuracyM float64) ([]models.GeofenceEvent, error) {
	f.geofenceCalls++
	return f.geofenceEvents, nil
}

type fakeETA struct {
	calc  *models.ETACalculation
	calls int
}

func (f *fakeETA) Estimate(ctx context.Context, jobID uuid.UUID, from, to models.Location) (*models.ETACalculation, error) {
	f.calls++
	if f.calc == nil {
		return nil, errors.New("no estimate")
	}
	return f.calc, nil
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

type noopTxManager struct{}

func (noopTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

/* ======================= fixtures ======================= */

type fixture struct {
	svc       *Service
	tracking  *fakeTrackingRepo
	samples   *fakeSampleRepo
	jobs      *fakeJobRepo
	drivers   *fakeDriverRepo
	proximity *fakeProximity
	eta       *fakeETA
	broadcast *fakeBroadcaster

	companyID uuid.UUID
	driverID  uuid.UUID
	jobID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	companyID := uuid.New()
	driverID := uuid.New()
	jobID := uuid.New()

	dest := models.Location{Latitude: 7.2906, Longitude: 80.6337}
	job := &models.Job{
		ID:        jobID,
		CompanyID: companyID,
		Number:    "JOB-2001",
		Status:    types.StatusAssigned,
		DriverID:  &driverID,
		Waypoints: []models.Waypoint{
			{ID: uuid.New(), JobID: jobID, Sequence: 1, Type: types.WaypointDelivery, Center: &dest, RadiusM: 150},
		},
	}
	driver := &models.Driver{ID: driverID, CompanyID: companyID, Name: "K. Perera", Active: true}

	f := &fixture{
		tracking:  newFakeTrackingRepo(),
		samples:   &fakeSampleRepo{},
		jobs:      newFakeJobRepo(job),
		drivers:   newFakeDriverRepo(driver),
		proximity: &fakeProximity{},
		eta:       &fakeETA{calc: &models.ETACalculation{EstimatedMinutes: 30}},
		broadcast: &fakeBroadcaster{},
		companyID: companyID,
		driverID:  driverID,
		jobID:     jobID,
	}
	f.svc = New(f.tracking, f.samples, f.jobs, f.drivers, f.proximity, f.eta, f.broadcast,
		noopTxManager{}, logger.InitLogger("test", logger.LevelError))
	return f
}

func (f *fixture) sample(lat, lon float64, at time.Time) *models.LocationSample {
	return &models.LocationSample{
		DriverID:   f.driverID,
		JobID:      &f.jobID,
		Location:   models.Location{Latitude: lat, Longitude: lon},
		SpeedKmh:   40,
		Source:     types.SourceDeviceGPS,
		RecordedAt: at,
	}
}

/* ======================= ingestion ======================= */

func TestIngest_RejectsInvalidSamples(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	tests := []struct {
		name    string
		mutate  func(*models.LocationSample)
		wantErr error
	}{
		{"latitude too high", func(s *models.LocationSample) { s.Location.Latitude = 91 }, types.ErrInvalidCoordinates},
		{"longitude too low", func(s *models.LocationSample) { s.Location.Longitude = -181 }, types.ErrInvalidCoordinates},
		{"negative speed", func(s *models.LocationSample) { s.SpeedKmh = -1 }, types.ErrInvalidSpeed},
		{"heading over 360", func(s *models.LocationSample) { s.HeadingDegrees = 361 }, types.ErrInvalidHeading},
		{"zero timestamp", func(s *models.LocationSample) { s.RecordedAt = time.Time{} }, types.ErrInvalidTimestamp},
		{"far future timestamp", func(s *models.LocationSample) { s.RecordedAt = now.Add(time.Hour) }, types.ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := f.sample(6.9271, 79.8612, now)
			tt.mutate(sample)

			_, err := f.svc.Ingest(context.Background(), sample)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(f.samples.samples) != 0 {
				t.Error("invalid sample must not be stored")
			}
		})
	}
}

func TestIngest_JobSampleWithoutSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ingest(context.Background(), f.sample(6.9271, 79.8612, time.Now().UTC()))
	if !errors.Is(err, types.ErrSessionNotActive) {
		t.Fatalf("err = %v, want ErrSessionNotActive", err)
	}
}

func TestIngest_JobNotAssignedToDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherDriver := uuid.New()
	otherJob := &models.Job{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		Status:    types.StatusAssigned,
		DriverID:  &otherDriver,
	}
	f.jobs.jobs[otherJob.ID] = otherJob

	sample := f.sample(6.9271, 79.8612, time.Now().UTC())
	sample.JobID = &otherJob.ID
	_, err := f.svc.Ingest(ctx, sample)
	if !errors.Is(err, types.ErrJobNotAssignedToDriver) {
		t.Fatalf("err = %v, want ErrJobNotAssignedToDriver", err)
	}

	unknown := uuid.New()
	sample = f.sample(6.9271, 79.8612, time.Now().UTC())
	sample.JobID = &unknown
	if _, err := f.svc.Ingest(ctx, sample); !errors.Is(err, types.ErrJobNotFound) {
		t.Fatalf("err = %v, want ErrJobNotFound", err)
	}
	if len(f.samples.samples) != 0 {
		t.Error("rejected samples must not be stored")
	}
}

func TestIngest_FullPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.jobID, f.driverID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	f.broadcast.topics = nil // drop session broadcasts from the count

	base := time.Now().UTC().Add(-time.Minute)
	if _, err := f.svc.Ingest(ctx, f.sample(6.9271, 79.8612, base)); err != nil {
		t.Fatalf("first sample: %v", err)
	}

	// ~1 km north, 30 s later.
	res, err := f.svc.Ingest(ctx, f.sample(6.9361, 79.8612, base.Add(30*time.Second)))
	if err != nil {
		t.Fatalf("second sample: %v", err)
	}

	if res.Degraded {
		t.Error("healthy pipeline must not be degraded")
	}
	if res.DeltaKm < 0.9 || res.DeltaKm > 1.1 {
		t.Errorf("delta = %.3f km, want ~1 km", res.DeltaKm)
	}
	if !res.Moving {
		t.Error("1 km displacement must count as moving")
	}
	if res.State.TotalDistanceKm < 0.9 {
		t.Errorf("accumulated distance = %.3f km, want ~1 km", res.State.TotalDistanceKm)
	}
	if res.State.Samples != 2 {
		t.Errorf("samples = %d, want 2", res.State.Samples)
	}
	if res.ETA == nil || res.ETA.EstimatedMinutes != 30 {
		t.Error("eta must come back on job samples with a pending delivery")
	}

	if len(f.samples.samples) != 2 {
		t.Fatalf("stored samples = %d, want 2", len(f.samples.samples))
	}
	if f.proximity.waypointCalls != 2 || f.proximity.geofenceCalls != 2 {
		t.Error("proximity stages must run on every accepted sample")
	}
	if f.jobs.lastLocations != 2 {
		t.Error("job last location must track every accepted sample")
	}
	// driver, company, job, public-tracking per sample.
	if len(f.broadcast.topics) != 8 {
		t.Errorf("broadcasts = %d, want 8", len(f.broadcast.topics))
	}
}

func TestIngest_SmallDisplacementStillAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.jobID, f.driverID); err != nil {
		t.Fatalf("start session: %v", err)
	}

	base := time.Now().UTC().Add(-time.Minute)
	if _, err := f.svc.Ingest(ctx, f.sample(6.9271, 79.8612, base)); err != nil {
		t.Fatalf("first sample: %v", err)
	}

	// ~5 m displacement, reported stationary. The distance sum counts
	// every displacement; only the moving flag follows the speed.
	sample := f.sample(6.92714, 79.8612, base.Add(10*time.Second))
	sample.SpeedKmh = 0
	res, err := f.svc.Ingest(ctx, sample)
	if err != nil {
		t.Fatalf("second sample: %v", err)
	}

	if res.DeltaKm < 0.003 || res.DeltaKm > 0.006 {
		t.Errorf("delta = %v km, want ~0.0045", res.DeltaKm)
	}
	if res.Moving {
		t.Error("zero reported speed must not count as moving")
	}
	if res.State.TotalDistanceKm != res.DeltaKm {
		t.Errorf("accumulated distance = %v, want exactly the displacement %v",
			res.State.TotalDistanceKm, res.DeltaKm)
	}
}

func TestIngest_DegradedWhenAggregateUpdateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.jobID, f.driverID); err != nil {
		t.Fatalf("start session: %v", err)
	}
	f.tracking.failUpdate = errors.New("connection reset")

	res, err := f.svc.Ingest(ctx, f.sample(6.9271, 79.8612, time.Now().UTC()))
	if err != nil {
		t.Fatalf("degraded ingest must still succeed: %v", err)
	}
	if !res.Degraded {
		t.Error("result must be flagged degraded")
	}
	if len(f.samples.samples) != 1 {
		t.Error("the sample itself must be durably stored")
	}
}

func TestIngest_OutOfOrderSampleStoredButIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.jobID, f.driverID); err != nil {
		t.Fatalf("start session: %v", err)
	}

	base := time.Now().UTC().Add(-time.Minute)
	if _, err := f.svc.Ingest(ctx, f.sample(6.9271, 79.8612, base)); err != nil {
		t.Fatalf("first sample: %v", err)
	}

	late := f.sample(6.9361, 79.8612, base.Add(-30*time.Second))
	res, err := f.svc.Ingest(ctx, late)
	if err != nil {
		t.Fatalf("late sample: %v", err)
	}

	if len(f.samples.samples) != 2 {
		t.Error("late sample must still be stored")
	}
	if res.DeltaKm != 0 || res.State.Samples != 1 {
		t.Error("late sample must not advance the aggregate")
	}
}

func TestIngest_SessionlessPresenceTracking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sample := f.sample(6.9271, 79.8612, time.Now().UTC())
	sample.JobID = nil

	res, err := f.svc.Ingest(ctx, sample)
	if err != nil {
		t.Fatalf("sessionless ingest: %v", err)
	}
	if res.State == nil || res.State.JobID != nil {
		t.Fatal("expected a jobless tracking state")
	}
	if res.State.CompanyID != f.companyID {
		t.Error("state must inherit the driver's company")
	}
	// driver + company topics only, no job automation.
	if len(f.broadcast.topics) != 2 {
		t.Errorf("broadcasts = %d, want 2", len(f.broadcast.topics))
	}
	if f.proximity.waypointCalls != 0 {
		t.Error("no waypoint evaluation without a job")
	}
	if f.proximity.geofenceCalls != 1 {
		t.Error("geofences still apply to sessionless tracking")
	}
}

/* ======================= sessions ======================= */

func TestStartSession_AdvancesAssignedJob(t *testing.T) {
	f := newFixture(t)

	state, err := f.svc.StartSession(context.Background(), f.jobID, f.driverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.JobID == nil || *state.JobID != f.jobID {
		t.Error("state must carry the job")
	}

	job := f.jobs.jobs[f.jobID]
	if job.Status != types.StatusInTransit {
		t.Errorf("job status = %s, want IN_TRANSIT", job.Status)
	}
	if len(f.jobs.events) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(f.jobs.events))
	}
	if f.jobs.events[0].Cause != types.CauseSystem {
		t.Error("session start transition must be system-caused")
	}
	if d := f.drivers.drivers[f.driverID]; !d.Online || d.CurrentJobID == nil {
		t.Error("driver must be online with the job set")
	}
}

func TestStartSession_WrongDriver(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartSession(context.Background(), f.jobID, uuid.New())
	if !errors.Is(err, types.ErrJobNotAssignedToDriver) {
		t.Fatalf("err = %v, want ErrJobNotAssignedToDriver", err)
	}
}

func TestStartSession_AlreadyActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.jobID, f.driverID); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := f.svc.StartSession(ctx, f.jobID, f.driverID)
	if !errors.Is(err, types.ErrSessionAlreadyActive) {
		t.Fatalf("err = %v, want ErrSessionAlreadyActive", err)
	}
}

func TestStopSession_ReturnsSummaryAndGoesOffline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.jobID, f.driverID); err != nil {
		t.Fatalf("start: %v", err)
	}

	base := time.Now().UTC().Add(-time.Minute)
	if _, err := f.svc.Ingest(ctx, f.sample(6.9271, 79.8612, base)); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if _, err := f.svc.Ingest(ctx, f.sample(6.9361, 79.8612, base.Add(30*time.Second))); err != nil {
		t.Fatalf("sample: %v", err)
	}

	summary, err := f.svc.StopSession(ctx, f.jobID, f.driverID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if summary.TotalDistanceKm < 0.9 {
		t.Errorf("summary distance = %.3f, want ~1 km", summary.TotalDistanceKm)
	}
	if d := f.drivers.drivers[f.driverID]; d.Online {
		t.Error("driver must be offline after stop")
	}

	last := f.broadcast.events[len(f.broadcast.events)-1]
	if last.Type != realtime.EventDriverOffline {
		t.Errorf("last broadcast = %s, want driver_offline", last.Type)
	}

	if _, err := f.svc.StopSession(ctx, f.jobID, f.driverID); !errors.Is(err, types.ErrSessionNotActive) {
		t.Fatalf("second stop err = %v, want ErrSessionNotActive", err)
	}
}

/* ======================= reads ======================= */

func TestCurrentTracking_StaleFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CurrentTracking(ctx, f.jobID); !errors.Is(err, types.ErrTrackingNotFound) {
		t.Fatalf("err = %v, want ErrTrackingNotFound", err)
	}

	state := &models.TrackingState{
		DriverID:  f.driverID,
		CompanyID: f.companyID,
		JobID:     &f.jobID,
		UpdatedAt: time.Now().UTC().Add(-10 * time.Minute),
	}
	f.tracking.byDriver[f.driverID] = state

	snap, err := f.svc.CurrentTracking(ctx, f.jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Stale {
		t.Error("10-minute-old state must be flagged stale")
	}

	state.UpdatedAt = time.Now().UTC()
	snap, err = f.svc.CurrentTracking(ctx, f.jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Stale {
		t.Error("fresh state must not be stale")
	}
}

func TestCompanyTracking_OmitsEvictedSessions(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	fresh := uuid.New()
	f.tracking.byDriver[fresh] = &models.TrackingState{
		DriverID: fresh, CompanyID: f.companyID, UpdatedAt: now.Add(-time.Minute),
	}
	// 7 minutes quiet: stale for a job session (5 min threshold) but not
	// for ad-hoc presence (10 min threshold).
	staleJob := uuid.New()
	f.tracking.byDriver[staleJob] = &models.TrackingState{
		DriverID: staleJob, CompanyID: f.companyID, JobID: &f.jobID, UpdatedAt: now.Add(-7 * time.Minute),
	}
	adhoc := uuid.New()
	f.tracking.byDriver[adhoc] = &models.TrackingState{
		DriverID: adhoc, CompanyID: f.companyID, UpdatedAt: now.Add(-7 * time.Minute),
	}
	gone := uuid.New()
	f.tracking.byDriver[gone] = &models.TrackingState{
		DriverID: gone, CompanyID: f.companyID, UpdatedAt: now.Add(-45 * time.Minute),
	}

	snaps, err := f.svc.CompanyTracking(context.Background(), f.companyID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("snapshots = %d, want 3 (45-minute session evicted)", len(snaps))
	}
	for _, snap := range snaps {
		switch snap.DriverID {
		case staleJob:
			if !snap.Stale {
				t.Error("7-minute job session must be stale")
			}
		case fresh, adhoc:
			if snap.Stale {
				t.Errorf("driver %s must not be stale", snap.DriverID)
			}
		}
	}
}

func TestHistory_LimitClamping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.History(ctx, models.HistoryFilter{}); err == nil {
		t.Fatal("history without driver or job filter must fail")
	}

	for i := 0; i < 150; i++ {
		f.samples.samples = append(f.samples.samples, &models.LocationSample{ID: uuid.New()})
	}

	out, err := f.svc.History(ctx, models.HistoryFilter{DriverID: &f.driverID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != defaultHistoryLimit {
		t.Errorf("default limit = %d results, want %d", len(out), defaultHistoryLimit)
	}
}
