package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/adapter/http/handler/dto"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/fleetgate/fleet-tracking-system/pkg/logger"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type TrackingService interface {
	Ingest(ctx context.Context, sample *models.LocationSample) (*models.IngestResult, error)
	StartSession(ctx context.Context, jobID, driverID uuid.UUID) (*models.TrackingState, error)
	StopSession(ctx context.Context, jobID, driverID uuid.UUID) (*models.SessionSummary, error)
	CurrentTracking(ctx context.Context, jobID uuid.UUID) (*models.TrackingSnapshot, error)
	CompanyTracking(ctx context.Context, companyID uuid.UUID) ([]models.TrackingSnapshot, error)
	History(ctx context.Context, filter models.HistoryFilter) ([]models.LocationSample, error)
}

type Tracking struct {
	service  TrackingService
	validate *validator.Validate
	log      logger.Logger
}

func NewTracking(service TrackingService, log logger.Logger) *Tracking {
	return &Tracking{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// SubmitLocation godoc
// @Summary      Submit a GPS location sample
// @Description  Records one location reading for the authenticated driver and returns the updated motion aggregate
// @Tags         Tracking
// @Accept       json
// @Produce      json
// @Param        input  body      dto.SubmitLocationRequest  true  "location sample"
// @Success      201    {object}  dto.IngestResponse
// @Failure      400    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracking/locations [post]
func (h *Tracking) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "submit_location")

	principal := models.PrincipalFromContext(ctx)
	ctx = wrap.WithDriverID(ctx, principal.DriverID.String())

	var req dto.SubmitLocationRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		failedValidationResponse(w, validationErrors(err))
		return
	}

	result, err := h.service.Ingest(ctx, req.ToModel(principal.DriverID))
	if err != nil {
		h.log.Error(ctx, "failed to ingest location sample", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"result": dto.NewIngestResponse(result)}, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// StartTracking godoc
// @Summary      Start a tracking session
// @Description  Opens the tracking session for a job assigned to the authenticated driver
// @Tags         Tracking
// @Produce      json
// @Param        job_id  path      string  true  "job id"
// @Success      201     {object}  map[string]any
// @Failure      403     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracking/jobs/{job_id}/start [post]
func (h *Tracking) StartTracking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "start_tracking")

	jobID, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	ctx = wrap.WithJobID(ctx, jobID.String())

	principal := models.PrincipalFromContext(ctx)

	state, err := h.service.StartSession(ctx, jobID, principal.DriverID)
	if err != nil {
		h.log.Error(ctx, "failed to start tracking session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"job_id":     jobID,
		"driver_id":  state.DriverID,
		"started_at": state.StartedAt,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// StopTracking godoc
// @Summary      Stop a tracking session
// @Description  Closes the session and returns the accumulated trip summary
// @Tags         Tracking
// @Produce      json
// @Param        job_id  path      string  true  "job id"
// @Success      200     {object}  dto.SessionSummaryResponse
// @Failure      409     {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracking/jobs/{job_id}/stop [post]
func (h *Tracking) StopTracking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "stop_tracking")

	jobID, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	ctx = wrap.WithJobID(ctx, jobID.String())

	principal := models.PrincipalFromContext(ctx)

	summary, err := h.service.StopSession(ctx, jobID, principal.DriverID)
	if err != nil {
		h.log.Error(ctx, "failed to stop tracking session", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"summary": dto.NewSessionSummaryResponse(summary)}, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// JobTracking godoc
// @Summary      Current tracking for a job
// @Description  Returns the live position and motion aggregate for a job, with a staleness flag
// @Tags         Tracking
// @Produce      json
// @Param        job_id  path      string  true  "job id"
// @Success      200     {object}  dto.TrackingSnapshotResponse
// @Failure      404     {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracking/jobs/{job_id} [get]
func (h *Tracking) JobTracking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "job_tracking")

	jobID, err := uuid.Parse(r.PathValue("job_id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid job id")
		return
	}
	ctx = wrap.WithJobID(ctx, jobID.String())

	snapshot, err := h.service.CurrentTracking(ctx, jobID)
	if err != nil {
		if !IsOneOf(err, types.ErrTrackingNotFound, types.ErrJobNotFound) {
			h.log.Error(ctx, "failed to load job tracking", err)
		}
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"tracking": dto.NewTrackingSnapshotResponse(snapshot)}, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// CompanyTracking godoc
// @Summary      Active drivers for the company
// @Description  Returns live snapshots for every driver of the caller's company with recent activity
// @Tags         Tracking
// @Produce      json
// @Success      200  {object}  map[string]any
// @Security     BearerAuth
// @Router       /tracking/companies/active [get]
func (h *Tracking) CompanyTracking(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "company_tracking")

	principal := models.PrincipalFromContext(ctx)

	snapshots, err := h.service.CompanyTracking(ctx, principal.CompanyID)
	if err != nil {
		h.log.Error(ctx, "failed to load company tracking", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	out := make([]dto.TrackingSnapshotResponse, 0, len(snapshots))
	for i := range snapshots {
		out = append(out, dto.NewTrackingSnapshotResponse(&snapshots[i]))
	}

	if err := writeJSON(w, http.StatusOK, envelope{"drivers": out, "count": len(out)}, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

// History godoc
// @Summary      Location history
// @Description  Returns stored location samples filtered by driver or job, newest first
// @Tags         Tracking
// @Produce      json
// @Param        driver_id  query     string  false  "driver id"
// @Param        job_id     query     string  false  "job id"
// @Param        from       query     string  false  "RFC3339 lower bound"
// @Param        to         query     string  false  "RFC3339 upper bound"
// @Param        limit      query     int     false  "max rows, default 100"
// @Success      200        {object}  map[string]any
// @Failure      400        {object}  map[string]string
// @Security     BearerAuth
// @Router       /tracking/history [get]
func (h *Tracking) History(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "location_history")

	filter, err := historyFilter(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	samples, err := h.service.History(ctx, filter)
	if err != nil {
		h.log.Error(ctx, "failed to load location history", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{
		"samples": dto.NewLocationSampleResponses(samples),
		"count":   len(samples),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}

func historyFilter(r *http.Request) (models.HistoryFilter, error) {
	var filter models.HistoryFilter
	q := r.URL.Query()

	if raw := q.Get("driver_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, types.ErrDriverNotFound
		}
		filter.DriverID = &id
	}
	if raw := q.Get("job_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, types.ErrJobNotFound
		}
		filter.JobID = &id
	}
	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, types.ErrInvalidTimestamp
		}
		filter.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, types.ErrInvalidTimestamp
		}
		filter.To = ts
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			n = 0
		}
		filter.Limit = n
	}

	return filter, nil
}
