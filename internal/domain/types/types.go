package types

// JobStatus is the shipment lifecycle state machine.
// CREATED → ASSIGNED → IN_TRANSIT → AT_PICKUP → LOADED → AT_DELIVERY → DELIVERED → COMPLETED,
// with ON_HOLD and CANCELLED reachable from any non-terminal state by manual action only.
type JobStatus string

const (
	StatusCreated    JobStatus = "CREATED"
	StatusAssigned   JobStatus = "ASSIGNED"
	StatusInTransit  JobStatus = "IN_TRANSIT"
	StatusAtPickup   JobStatus = "AT_PICKUP"
	StatusLoaded     JobStatus = "LOADED"
	StatusAtDelivery JobStatus = "AT_DELIVERY"
	StatusDelivered  JobStatus = "DELIVERED"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusOnHold     JobStatus = "ON_HOLD"
	StatusCancelled  JobStatus = "CANCELLED"
)

func (s JobStatus) String() string {
	return string(s)
}

// WaypointType classifies an ordered stop on a job.
type WaypointType string

const (
	WaypointPickup     WaypointType = "PICKUP"
	WaypointDelivery   WaypointType = "DELIVERY"
	WaypointCheckpoint WaypointType = "CHECKPOINT"
	WaypointRestStop   WaypointType = "REST_STOP"
	WaypointYard       WaypointType = "YARD"
	WaypointPort       WaypointType = "PORT"
)

// GeofenceKind is the zone geometry.
type GeofenceKind string

const (
	GeofenceCircle  GeofenceKind = "CIRCLE"
	GeofencePolygon GeofenceKind = "POLYGON"
)

// GeofenceEventType marks a containment edge transition.
type GeofenceEventType string

const (
	GeofenceEnter GeofenceEventType = "ENTER"
	GeofenceExit  GeofenceEventType = "EXIT"
)

func (t GeofenceEventType) String() string {
	return string(t)
}

// StatusCause records what triggered a job status transition.
type StatusCause string

const (
	CauseManual StatusCause = "manual"
	CauseSystem StatusCause = "system-detected"
)

// LocationSource tags where a sample came from.
type LocationSource string

const (
	SourceDeviceGPS LocationSource = "device_gps"
	SourceManual    LocationSource = "manual"
)

// RecipientType addresses outbound notifications.
type RecipientType string

const (
	RecipientDriver   RecipientType = "driver"
	RecipientClient   RecipientType = "client"
	RecipientOperator RecipientType = "operator"
)

// ConnClass classifies an authenticated realtime connection.
type ConnClass string

const (
	ConnDriver    ConnClass = "driver"
	ConnOperator  ConnClass = "operator"
	ConnClient    ConnClass = "client"
	ConnAnonymous ConnClass = "anonymous"
)
