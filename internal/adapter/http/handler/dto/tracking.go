package dto

import (
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

type SubmitLocationRequest struct {
	JobID     *uuid.UUID `json:"job_id,omitempty"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`

	Latitude       float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude      float64 `json:"longitude" validate:"gte=-180,lte=180"`
	AccuracyMeters float64 `json:"accuracy_meters" validate:"gte=0"`
	SpeedKmh       float64 `json:"speed_kmh" validate:"gte=0"`
	HeadingDegrees float64 `json:"heading_degrees" validate:"gte=0,lte=360"`
	AltitudeMeters float64 `json:"altitude_meters"`

	BatteryLevel *float64 `json:"battery_level,omitempty" validate:"omitempty,gte=0,lte=100"`
	NetworkType  string   `json:"network_type,omitempty" validate:"omitempty,oneof=wifi 4g 5g 3g 2g"`
	Source       string   `json:"source,omitempty" validate:"omitempty,oneof=device_gps manual"`

	RecordedAt time.Time `json:"recorded_at" validate:"required"`
}

func (r *SubmitLocationRequest) ToModel(driverID uuid.UUID) *models.LocationSample {
	source := types.SourceDeviceGPS
	if r.Source == string(types.SourceManual) {
		source = types.SourceManual
	}

	return &models.LocationSample{
		DriverID:  driverID,
		JobID:     r.JobID,
		VehicleID: r.VehicleID,
		Location: models.Location{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		},
		AccuracyMeters: r.AccuracyMeters,
		SpeedKmh:       r.SpeedKmh,
		HeadingDegrees: r.HeadingDegrees,
		AltitudeMeters: r.AltitudeMeters,
		Device: models.DeviceMeta{
			BatteryLevel: r.BatteryLevel,
			NetworkType:  r.NetworkType,
		},
		Source:     source,
		RecordedAt: r.RecordedAt,
	}
}

type IngestResponse struct {
	DeltaKm           float64    `json:"delta_km"`
	Moving            bool       `json:"moving"`
	TotalDistanceKm   float64    `json:"total_distance_km"`
	EstimatedMinutes  *int       `json:"estimated_minutes,omitempty"`
	CompletedWaypoint *uuid.UUID `json:"completed_waypoint_id,omitempty"`
	Degraded          bool       `json:"degraded"`
}

func NewIngestResponse(res *models.IngestResult) IngestResponse {
	out := IngestResponse{
		DeltaKm:  res.DeltaKm,
		Moving:   res.Moving,
		Degraded: res.Degraded,
	}
	if res.State != nil {
		out.TotalDistanceKm = res.State.TotalDistanceKm
	}
	if res.ETA != nil {
		minutes := res.ETA.EstimatedMinutes
		out.EstimatedMinutes = &minutes
	}
	if res.CompletedWaypoint != nil {
		id := res.CompletedWaypoint.ID
		out.CompletedWaypoint = &id
	}
	return out
}

type TrackingSnapshotResponse struct {
	JobID           *uuid.UUID      `json:"job_id,omitempty"`
	DriverID        uuid.UUID       `json:"driver_id"`
	Location        models.Location `json:"location"`
	SpeedKmh        float64         `json:"speed_kmh"`
	HeadingDegrees  float64         `json:"heading_degrees"`
	Moving          bool            `json:"moving"`
	TotalDistanceKm float64         `json:"total_distance_km"`
	AvgSpeedKmh     float64         `json:"avg_speed_kmh"`
	MaxSpeedKmh     float64         `json:"max_speed_kmh"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Stale           bool            `json:"stale"`
}

func NewTrackingSnapshotResponse(snap *models.TrackingSnapshot) TrackingSnapshotResponse {
	out := TrackingSnapshotResponse{
		JobID:    snap.JobID,
		DriverID: snap.DriverID,
		Stale:    snap.Stale,
	}
	if snap.State != nil {
		out.Location = snap.State.Location
		out.SpeedKmh = snap.State.SpeedKmh
		out.HeadingDegrees = snap.State.HeadingDegrees
		out.Moving = snap.State.Moving
		out.TotalDistanceKm = snap.State.TotalDistanceKm
		out.AvgSpeedKmh = snap.State.AvgSpeedKmh
		out.MaxSpeedKmh = snap.State.MaxSpeedKmh
		out.UpdatedAt = snap.State.UpdatedAt
	}
	return out
}

type SessionSummaryResponse struct {
	JobID            uuid.UUID `json:"job_id"`
	DriverID         uuid.UUID `json:"driver_id"`
	TotalDistanceKm  float64   `json:"total_distance_km"`
	TotalDurationSec int64     `json:"total_duration_sec"`
	AvgSpeedKmh      float64   `json:"avg_speed_kmh"`
	MaxSpeedKmh      float64   `json:"max_speed_kmh"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
}

func NewSessionSummaryResponse(s *models.SessionSummary) SessionSummaryResponse {
	return SessionSummaryResponse{
		JobID:            s.JobID,
		DriverID:         s.DriverID,
		TotalDistanceKm:  s.TotalDistanceKm,
		TotalDurationSec: s.TotalDurationSec,
		AvgSpeedKmh:      s.AvgSpeedKmh,
		MaxSpeedKmh:      s.MaxSpeedKmh,
		StartedAt:        s.StartedAt,
		EndedAt:          s.EndedAt,
	}
}

type LocationSampleResponse struct {
	ID             uuid.UUID       `json:"id"`
	DriverID       uuid.UUID       `json:"driver_id"`
	JobID          *uuid.UUID      `json:"job_id,omitempty"`
	Location       models.Location `json:"location"`
	AccuracyMeters float64         `json:"accuracy_meters"`
	SpeedKmh       float64         `json:"speed_kmh"`
	HeadingDegrees float64         `json:"heading_degrees"`
	Source         string          `json:"source"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

func NewLocationSampleResponses(samples []models.LocationSample) []LocationSampleResponse {
	out := make([]LocationSampleResponse, 0, len(samples))
	for _, s := range samples {
		out = append(out, LocationSampleResponse{
			ID:             s.ID,
			DriverID:       s.DriverID,
			JobID:          s.JobID,
			Location:       s.Location,
			AccuracyMeters: s.AccuracyMeters,
			SpeedKmh:       s.SpeedKmh,
			HeadingDegrees: s.HeadingDegrees,
			Source:         string(s.Source),
			RecordedAt:     s.RecordedAt,
		})
	}
	return out
}
