package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fleetgate/fleet-tracking-system/internal/adapter/http/handler/dto"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/internal/realtime"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Outbound acks for session commands received over the socket.
const (
	eventTrackingStarted = "tracking_started"
	eventTrackingStopped = "tracking_stopped"
)

type WS struct {
	registry *realtime.Registry
	service  TrackingService
	validate *validator.Validate
	log      logger.Logger

	upgrader websocket.Upgrader
}

func NewWS(registry *realtime.Registry, service TrackingService, log logger.Logger) *WS {
	return &WS{
		registry: registry,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Serve godoc
// @Summary      Realtime websocket
// @Description  Upgrades to a websocket connection for live tracking events; authentication is optional, anonymous connections may only join public-tracking topics
// @Tags         Realtime
// @Success      101
// @Security     BearerAuth
// @Router       /ws [get]
func (h *WS) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_serve")

	principal := models.PrincipalFromContext(ctx)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error(ctx, "websocket upgrade failed", err)
		return
	}

	identity := realtime.Identity{
		Class:     principal.Class,
		DriverID:  principal.DriverID,
		CompanyID: principal.CompanyID,
		ClientID:  principal.ClientID,
	}

	conn := h.registry.Register(ws, identity)
	go conn.WritePump()

	h.readLoop(conn)
}

// readLoop drains inbound frames until the peer goes away. The request
// context dies with the HTTP handler, so a detached one carries the
// connection's log fields instead.
func (h *WS) readLoop(conn *realtime.Conn) {
	ctx := wrap.WithAction(context.Background(), "ws_read")
	identity := conn.Identity()
	if identity.Class == types.ConnDriver {
		ctx = wrap.WithDriverID(ctx, identity.DriverID.String())
	}

	defer h.registry.Unregister(ctx, conn)

	conn.PrepareRead()

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn(ctx, "websocket read failed", "error", err.Error())
			}
			return
		}

		var msg dto.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}

		h.dispatch(ctx, conn, msg)
	}
}

func (h *WS) dispatch(ctx context.Context, conn *realtime.Conn, msg dto.WSMessage) {
	switch msg.Type {
	case dto.WSPing:
		conn.Send(realtime.NewEvent(realtime.EventPong, nil))

	case dto.WSJoinTopic:
		h.joinTopic(ctx, conn, msg.Data)

	case dto.WSLeaveTopic:
		var payload dto.WSTopicPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Topic == "" {
			h.sendError(conn, "topic is required")
			return
		}
		h.registry.Leave(conn, realtime.Topic(payload.Topic))

	case dto.WSSubmitLocation:
		h.submitLocation(ctx, conn, msg.Data)

	case dto.WSStartTracking:
		h.session(ctx, conn, msg.Data, true)

	case dto.WSStopTracking:
		h.session(ctx, conn, msg.Data, false)

	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *WS) joinTopic(ctx context.Context, conn *realtime.Conn, data json.RawMessage) {
	var payload dto.WSTopicPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Topic == "" {
		h.sendError(conn, "topic is required")
		return
	}

	if err := h.registry.Join(ctx, conn, realtime.Topic(payload.Topic)); err != nil {
		h.sendError(conn, err.Error())
	}
}

func (h *WS) submitLocation(ctx context.Context, conn *realtime.Conn, data json.RawMessage) {
	identity := conn.Identity()
	if identity.Class != types.ConnDriver {
		h.sendError(conn, "only drivers may submit locations")
		return
	}

	var req dto.SubmitLocationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.sendError(conn, "malformed location payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	if _, err := h.service.Ingest(ctx, req.ToModel(identity.DriverID)); err != nil {
		h.sendError(conn, err.Error())
	}
}

func (h *WS) session(ctx context.Context, conn *realtime.Conn, data json.RawMessage, start bool) {
	identity := conn.Identity()
	if identity.Class != types.ConnDriver {
		h.sendError(conn, "only drivers may manage tracking sessions")
		return
	}

	var payload dto.WSJobPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.JobID == uuid.Nil {
		h.sendError(conn, "job_id is required")
		return
	}
	ctx = wrap.WithJobID(ctx, payload.JobID.String())

	if start {
		state, err := h.service.StartSession(ctx, payload.JobID, identity.DriverID)
		if err != nil {
			h.sendError(conn, err.Error())
			return
		}
		conn.Send(realtime.NewEvent(eventTrackingStarted, envelope{
			"job_id":     payload.JobID,
			"started_at": state.StartedAt,
		}))
		return
	}

	summary, err := h.service.StopSession(ctx, payload.JobID, identity.DriverID)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	conn.Send(realtime.NewEvent(eventTrackingStopped, dto.NewSessionSummaryResponse(summary)))
}

func (h *WS) sendError(conn *realtime.Conn, message string) {
	conn.Send(realtime.NewEvent(realtime.EventError, map[string]string{"message": message}))
}
