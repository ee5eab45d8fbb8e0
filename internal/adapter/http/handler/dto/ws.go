package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Inbound websocket message types.
const (
	WSSubmitLocation = "submit_location"
	WSStartTracking  = "start_tracking"
	WSStopTracking   = "stop_tracking"
	WSJoinTopic      = "join_topic"
	WSLeaveTopic     = "leave_topic"
	WSPing           = "ping"
)

// WSMessage is the envelope for every inbound websocket frame.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type WSJobPayload struct {
	JobID uuid.UUID `json:"job_id" validate:"required"`
}

type WSTopicPayload struct {
	Topic string `json:"topic" validate:"required"`
}
