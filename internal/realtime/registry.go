package realtime

import (
	"context"
	"sync"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/fleetgate/fleet-tracking-system/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// AuthorizeFunc decides whether a connection may join a topic its identity
// does not cover directly (job and client rooms need a lookup the registry
// cannot do itself).
type AuthorizeFunc func(ctx context.Context, identity Identity, topic Topic) error

// DisconnectFunc is invoked after a driver connection is removed.
type DisconnectFunc func(ctx context.Context, driverID, companyID uuid.UUID)

// Registry tracks live connections and their topic memberships, and fans
// domain events out to every connection joined to a topic. Reads (publish)
// run concurrently; writes (register/join/leave) are serialized.
type Registry struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Conn
	topics map[Topic]map[*Conn]struct{}

	authorize    AuthorizeFunc
	onDisconnect DisconnectFunc

	serviceName string
	log         logger.Logger
}

func NewRegistry(serviceName string, log logger.Logger) *Registry {
	return &Registry{
		conns:       make(map[uuid.UUID]*Conn),
		topics:      make(map[Topic]map[*Conn]struct{}),
		serviceName: serviceName,
		log:         log,
	}
}

// SetAuthorizer installs the topic authorization hook.
func (r *Registry) SetAuthorizer(fn AuthorizeFunc) { r.authorize = fn }

// SetDisconnectHandler installs the driver-disconnect hook.
func (r *Registry) SetDisconnectHandler(fn DisconnectFunc) { r.onDisconnect = fn }

// Register adds a new connection and auto-joins the topics implied by its
// classification: drivers get driver:<id> and company:<id>, operators get
// company:<id>, anonymous connections get nothing until they join a
// public-tracking topic explicitly.
func (r *Registry) Register(ws *websocket.Conn, identity Identity) *Conn {
	conn := newConn(ws, identity)

	r.mu.Lock()
	r.conns[conn.id] = conn

	switch identity.Class {
	case types.ConnDriver:
		r.joinLocked(conn, DriverTopic(identity.DriverID))
		r.joinLocked(conn, CompanyTopic(identity.CompanyID))
	case types.ConnOperator:
		r.joinLocked(conn, CompanyTopic(identity.CompanyID))
	case types.ConnClient:
		r.joinLocked(conn, ClientTopic(identity.ClientID))
	}
	r.mu.Unlock()

	metrics.WebSocketConnectionsGauge.WithLabelValues(r.serviceName).Inc()

	ctx := wrap.WithAction(context.Background(), "ws_register")
	r.log.Debug(ctx, "connection registered",
		"conn_id", conn.id,
		"class", identity.Class,
	)

	return conn
}

// Unregister removes the connection from every topic and closes its send
// buffer. A driver connection going away flips the driver offline via the
// disconnect hook and broadcasts driver_offline to its company topic.
func (r *Registry) Unregister(ctx context.Context, conn *Conn) {
	r.mu.Lock()
	if _, ok := r.conns[conn.id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, conn.id)
	for topic, members := range r.topics {
		if _, ok := members[conn]; ok {
			delete(members, conn)
			if len(members) == 0 {
				delete(r.topics, topic)
			}
		}
	}
	conn.closeSend()
	r.mu.Unlock()

	metrics.WebSocketConnectionsGauge.WithLabelValues(r.serviceName).Dec()

	identity := conn.identity
	if identity.Class == types.ConnDriver {
		if r.onDisconnect != nil {
			r.onDisconnect(ctx, identity.DriverID, identity.CompanyID)
		}
	}

	r.log.Debug(wrap.WithAction(ctx, "ws_unregister"), "connection removed",
		"conn_id", conn.id,
		"class", identity.Class,
	)
}

// Join adds the connection to a topic after an authorization check:
// public-tracking rooms are open to everyone, company and driver topics
// must match the connection's identity, job and client rooms go through
// the installed authorizer.
func (r *Registry) Join(ctx context.Context, conn *Conn, topic Topic) error {
	kind, id, err := ParseTopic(string(topic))
	if err != nil {
		return err
	}

	identity := conn.identity

	switch kind {
	case prefixPublic:
		// open to anonymous trackers
	case prefixCompany:
		if identity.Class == types.ConnAnonymous || identity.CompanyID != id {
			return types.ErrTopicForbidden
		}
	case prefixDriver:
		if identity.Class != types.ConnDriver || identity.DriverID != id {
			return types.ErrTopicForbidden
		}
	case prefixJob, prefixClient:
		if identity.Class == types.ConnAnonymous {
			return types.ErrTopicForbidden
		}
		if r.authorize == nil {
			return types.ErrTopicForbidden
		}
		if err := r.authorize(ctx, identity, topic); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.joinLocked(conn, topic)
	r.mu.Unlock()

	r.log.Debug(wrap.WithAction(ctx, "ws_join_topic"), "joined topic",
		"conn_id", conn.id,
		"topic", topic,
	)

	return nil
}

func (r *Registry) joinLocked(conn *Conn, topic Topic) {
	members, ok := r.topics[topic]
	if !ok {
		members = make(map[*Conn]struct{})
		r.topics[topic] = members
	}
	members[conn] = struct{}{}
}

// Leave removes the connection from a topic.
func (r *Registry) Leave(conn *Conn, topic Topic) {
	r.mu.Lock()
	if members, ok := r.topics[topic]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(r.topics, topic)
		}
	}
	r.mu.Unlock()
}

// Publish delivers the event to every connection joined to the topic.
// Delivery is best-effort: no ack, no retry, no persistence of missed
// events. A topic with zero members is not an error. Slow consumers
// (full send buffer) are dropped so one stuck observer cannot affect the
// rest. Returns the number of connections the event was enqueued for.
func (r *Registry) Publish(ctx context.Context, topic Topic, event Event) int {
	data, err := event.marshal()
	if err != nil {
		r.log.Error(wrap.WithAction(ctx, "ws_publish"), "failed to marshal event", err,
			"event_type", event.Type,
		)
		return 0
	}

	var slow []*Conn

	r.mu.RLock()
	members := r.topics[topic]
	delivered := 0
	for conn := range members {
		if conn.trySend(data) {
			delivered++
		} else {
			slow = append(slow, conn)
		}
	}
	r.mu.RUnlock()

	// Drop slow consumers outside the read lock.
	for _, conn := range slow {
		r.log.Warn(wrap.WithAction(ctx, "ws_publish"), "dropping slow consumer",
			"conn_id", conn.id,
			"topic", topic,
		)
		r.Unregister(ctx, conn)
	}

	metrics.BroadcastsTotal.WithLabelValues(r.serviceName, event.Type).Inc()

	return delivered
}

// ConnCount returns the number of registered connections.
func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// TopicSize returns how many connections are joined to a topic.
func (r *Registry) TopicSize(topic Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[topic])
}

// Close drops every connection. Used on shutdown.
func (r *Registry) Close(ctx context.Context) {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.mu.Unlock()

	for _, conn := range conns {
		r.Unregister(ctx, conn)
	}

	r.log.Info(wrap.WithAction(ctx, "ws_registry_close"), "all websocket connections closed")
}
