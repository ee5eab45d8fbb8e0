package realtime

import (
	"encoding/json"
	"time"
)

// Outbound event types carried on the wire.
const (
	EventLocationUpdate     = "location_update"
	EventJobStatusAutomated = "job_status_automated"
	EventGeofenceEntered    = "geofence_entered"
	EventGeofenceExited     = "geofence_exited"
	EventDriverOffline      = "driver_offline"
	EventNotification       = "notification"
	EventPong               = "pong"
	EventError              = "error"
)

// Event is one typed message delivered to every connection on a topic.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// NewEvent stamps the event with the current time.
func NewEvent(eventType string, data any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func (e Event) marshal() ([]byte, error) {
	return json.Marshal(e)
}
