package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	"github.com/google/uuid"
)

func testRegistry() *Registry {
	return NewRegistry("test", logger.InitLogger("test", logger.LevelError))
}

func TestPublish_EmptyTopic(t *testing.T) {
	r := testRegistry()

	delivered := r.Publish(context.Background(), JobTopic(uuid.New()), NewEvent(EventLocationUpdate, nil))
	if delivered != 0 {
		t.Fatalf("publish to empty topic must deliver to zero recipients, got %d", delivered)
	}
}

func TestRegister_DriverAutoTopics(t *testing.T) {
	r := testRegistry()
	driverID, companyID := uuid.New(), uuid.New()

	conn := r.Register(nil, Identity{
		Class:     types.ConnDriver,
		DriverID:  driverID,
		CompanyID: companyID,
	})
	defer r.Unregister(context.Background(), conn)

	if got := r.TopicSize(DriverTopic(driverID)); got != 1 {
		t.Errorf("driver must be joined to its driver topic, size %d", got)
	}
	if got := r.TopicSize(CompanyTopic(companyID)); got != 1 {
		t.Errorf("driver must be joined to its company topic, size %d", got)
	}
}

func TestJoin_Authorization(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()
	companyID := uuid.New()

	operator := r.Register(nil, Identity{Class: types.ConnOperator, CompanyID: companyID})
	anon := r.Register(nil, Identity{Class: types.ConnAnonymous})
	defer r.Unregister(ctx, operator)
	defer r.Unregister(ctx, anon)

	// Anonymous may join public tracking rooms and nothing else.
	if err := r.Join(ctx, anon, PublicTrackingTopic(uuid.New())); err != nil {
		t.Errorf("anonymous join to public-tracking must succeed: %v", err)
	}
	if err := r.Join(ctx, anon, CompanyTopic(companyID)); !errors.Is(err, types.ErrTopicForbidden) {
		t.Errorf("anonymous join to company topic must be forbidden, got %v", err)
	}

	// Operators cannot join another company's topic.
	if err := r.Join(ctx, operator, CompanyTopic(uuid.New())); !errors.Is(err, types.ErrTopicForbidden) {
		t.Errorf("cross-company join must be forbidden, got %v", err)
	}

	// Job rooms go through the installed authorizer.
	if err := r.Join(ctx, operator, JobTopic(uuid.New())); !errors.Is(err, types.ErrTopicForbidden) {
		t.Errorf("job join without authorizer must be forbidden, got %v", err)
	}
	r.SetAuthorizer(func(ctx context.Context, id Identity, topic Topic) error {
		return nil
	})
	if err := r.Join(ctx, operator, JobTopic(uuid.New())); err != nil {
		t.Errorf("job join with permissive authorizer must succeed: %v", err)
	}
}

func TestPublish_DeliversToJoined(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()
	companyID := uuid.New()

	op1 := r.Register(nil, Identity{Class: types.ConnOperator, CompanyID: companyID})
	op2 := r.Register(nil, Identity{Class: types.ConnOperator, CompanyID: companyID})
	other := r.Register(nil, Identity{Class: types.ConnOperator, CompanyID: uuid.New()})
	defer r.Unregister(ctx, op1)
	defer r.Unregister(ctx, op2)
	defer r.Unregister(ctx, other)

	delivered := r.Publish(ctx, CompanyTopic(companyID), NewEvent(EventDriverOffline, nil))
	if delivered != 2 {
		t.Fatalf("expected delivery to 2 company members, got %d", delivered)
	}

	select {
	case <-op1.send:
	default:
		t.Error("op1 should have a pending message")
	}
	if len(other.send) != 0 {
		t.Error("other company's connection must receive nothing")
	}
}

func TestPublish_DropsSlowConsumer(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()
	companyID := uuid.New()

	op := r.Register(nil, Identity{Class: types.ConnOperator, CompanyID: companyID})

	// Fill the send buffer without draining it.
	for i := 0; i < sendBufferSize; i++ {
		r.Publish(ctx, CompanyTopic(companyID), NewEvent(EventLocationUpdate, nil))
	}
	if r.ConnCount() != 1 {
		t.Fatal("connection should still be registered while the buffer has room")
	}

	// One more publish overflows the buffer and drops the consumer.
	delivered := r.Publish(ctx, CompanyTopic(companyID), NewEvent(EventLocationUpdate, nil))
	if delivered != 0 {
		t.Errorf("overflowing publish must deliver to nobody, got %d", delivered)
	}
	if r.ConnCount() != 0 {
		t.Error("slow consumer must be unregistered")
	}
	_ = op
}

func TestUnregister_DriverDisconnectHook(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()
	driverID, companyID := uuid.New(), uuid.New()

	var gotDriver, gotCompany uuid.UUID
	r.SetDisconnectHandler(func(ctx context.Context, d, c uuid.UUID) {
		gotDriver, gotCompany = d, c
	})

	conn := r.Register(nil, Identity{Class: types.ConnDriver, DriverID: driverID, CompanyID: companyID})
	r.Unregister(ctx, conn)

	if gotDriver != driverID || gotCompany != companyID {
		t.Fatalf("disconnect hook got (%s, %s), want (%s, %s)", gotDriver, gotCompany, driverID, companyID)
	}

	// Unregistering twice is a no-op.
	r.Unregister(ctx, conn)
}

func TestSendAfterUnregister_DoesNotPanic(t *testing.T) {
	r := testRegistry()
	ctx := context.Background()

	conn := r.Register(nil, Identity{Class: types.ConnOperator, CompanyID: uuid.New()})
	r.Unregister(ctx, conn)

	// The read loop may still be replying (pong, error, ack) while the
	// registry drops the connection as a slow consumer.
	if conn.Send(NewEvent(EventPong, nil)) {
		t.Error("send on an unregistered connection must report failure")
	}
	if conn.trySend([]byte("late")) {
		t.Error("trySend on an unregistered connection must report failure")
	}
}

func TestParseTopic(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		raw      string
		wantKind string
		wantErr  bool
	}{
		{"company:" + id.String(), "company", false},
		{"job:" + id.String(), "job", false},
		{"public-tracking:" + id.String(), "public-tracking", false},
		{"unknown:" + id.String(), "", true},
		{"company", "", true},
		{"company:not-a-uuid", "", true},
	}

	for _, tt := range tests {
		kind, _, err := ParseTopic(tt.raw)
		if tt.wantErr && err == nil {
			t.Errorf("ParseTopic(%q) expected error", tt.raw)
		}
		if !tt.wantErr && (err != nil || kind != tt.wantKind) {
			t.Errorf("ParseTopic(%q) = %q, %v", tt.raw, kind, err)
		}
	}
}
