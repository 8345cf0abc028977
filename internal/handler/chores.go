package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/okantomi/chorewheel/internal/rotation"
	"github.com/okantomi/chorewheel/internal/websocket"
)

// ChoreHandler serves the day-to-day completion endpoints.
type ChoreHandler struct {
	tracker *rotation.Tracker
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewChoreHandler(tracker *rotation.Tracker, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{tracker: tracker, hub: hub, logger: logger}
}

// Today handles GET /api/chores/today?tenant_id=N.
func (h *ChoreHandler) Today(w http.ResponseWriter, r *http.Request) {
	tenantID, err := parseIDQuery(r, "tenant_id")
	if err != nil {
		writeBadRequest(w, "tenant_id is required")
		return
	}

	today, err := h.tracker.TodaysChores(tenantID, time.Now())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, today)
}

type completeRequest struct {
	PhotoRefs []string `json:"photo_refs"`
	Notes     *string  `json:"notes"`
}

// Complete handles POST /api/completions/{id}/complete.
func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid completion id")
		return
	}

	var req completeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	record, err := h.tracker.MarkComplete(id, rotation.CompleteOptions{
		PhotoRefs: req.PhotoRefs,
		Notes:     req.Notes,
	}, time.Now())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(websocket.NewEvent("completion", "completed", record.ID, map[string]any{
		"schedule_id": record.ScheduleID,
		"occupant_id": record.OccupantID,
		"chore_id":    record.ChoreID,
	}))

	writeJSON(w, http.StatusOK, record)
}

// Stats handles GET /api/occupants/{id}/stats.
func (h *ChoreHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid occupant id")
		return
	}

	stats, err := h.tracker.Stats(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
