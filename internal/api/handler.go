package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/icarus/internal/geolocation"
	"github.com/UnknownOlympus/icarus/internal/mapview"
	"github.com/UnknownOlympus/icarus/internal/models"
	"github.com/UnknownOlympus/icarus/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Tracker is the orchestrator state the API reads and drives.
type Tracker interface {
	View() mapview.View
	Flights() models.FlightSet
	SelectFlight(ctx context.Context, id string) error
	AnimationComplete(ctx context.Context) bool
}

// HealthChecker reports the health of a backing dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers of the map API.
type Handler struct {
	tracker  Tracker
	boundary *Boundary
	readings chan<- geolocation.Reading
	health   HealthChecker
	validate *validator.Validate
	log      *slog.Logger
}

type locationRequest struct {
	Available *bool              `json:"available" validate:"required"`
	Enabled   *bool              `json:"enabled"   validate:"required"`
	Coords    *models.Coordinate `json:"coords"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(
	tracker Tracker,
	boundary *Boundary,
	readings chan<- geolocation.Reading,
	health HealthChecker,
	log *slog.Logger,
) *Handler {
	return &Handler{
		tracker:  tracker,
		boundary: boundary,
		readings: readings,
		health:   health,
		validate: validator.New(),
		log:      log,
	}
}

// GetView returns the current map view.
func (h *Handler) GetView(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.tracker.View())
}

// GetFlights returns the current flight set.
func (h *Handler) GetFlights(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.tracker.Flights())
}

// PostLocation queues a location reading pushed by the map client.
func (h *Handler) PostLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reading := geolocation.Reading{Available: *req.Available, Enabled: *req.Enabled, Coords: req.Coords}

	select {
	case h.readings <- reading:
		h.log.DebugContext(r.Context(), "Location reading queued", "available", reading.Available, "enabled", reading.Enabled)
		w.WriteHeader(http.StatusAccepted)
	default:
		respondError(w, http.StatusServiceUnavailable, "location queue is full")
	}
}

// SelectFlight opens the popup for the flight in the path.
func (h *Handler) SelectFlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validate.Var(id, "required,alphanum,max=16"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid flight id")
		return
	}

	if err := h.tracker.SelectFlight(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrUnknownFlight) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "Failed to select flight", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to select flight")
		return
	}

	respondJSON(w, http.StatusOK, h.tracker.View())
}

// PopupOutside reports a pointer-down outside the popup bounds.
func (h *Handler) PopupOutside(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"delivered": h.boundary.Fire()})
}

// PopupAnimationEnd reports that the popup exit animation finished.
func (h *Handler) PopupAnimationEnd(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"changed": h.tracker.AnimationComplete(r.Context())})
}

// Health reports OK unless the snapshot store is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.log.DebugContext(r.Context(), "Performing health checks...")
	status, body := http.StatusOK, "OK"
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
	h.log.DebugContext(r.Context(), "Health checks completed", "status", status)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
