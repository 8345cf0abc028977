package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/rotation"
	"github.com/okantomi/chorewheel/internal/websocket"
)

// SwapHandler serves the week-swap protocol endpoints.
type SwapHandler struct {
	swaps  *rotation.SwapService
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewSwapHandler(swaps *rotation.SwapService, hub *websocket.Hub, logger *slog.Logger) *SwapHandler {
	return &SwapHandler{swaps: swaps, hub: hub, logger: logger}
}

type createSwapRequest struct {
	RequesterOccupantID int64   `json:"requester_occupant_id"`
	TargetOccupantID    int64   `json:"target_occupant_id"`
	WeekID              string  `json:"week_id"`
	Reason              *string `json:"reason"`
}

// Create handles POST /api/swaps.
func (h *SwapHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSwapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.RequesterOccupantID == 0 || req.TargetOccupantID == 0 || req.WeekID == "" {
		writeBadRequest(w, "requester_occupant_id, target_occupant_id and week_id are required")
		return
	}

	sw, err := h.swaps.Propose(req.RequesterOccupantID, req.TargetOccupantID, req.WeekID, req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast("created", sw)
	writeJSON(w, http.StatusCreated, sw)
}

type respondSwapRequest struct {
	OccupantID int64 `json:"occupant_id"`
}

// Approve handles POST /api/swaps/{id}/approve.
func (h *SwapHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "approved", h.swaps.Approve)
}

// Reject handles POST /api/swaps/{id}/reject.
func (h *SwapHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "rejected", h.swaps.Reject)
}

// Cancel handles POST /api/swaps/{id}/cancel.
func (h *SwapHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "cancelled", h.swaps.Cancel)
}

func (h *SwapHandler) respond(w http.ResponseWriter, r *http.Request, action string, fn func(swapID, occupantID int64, now time.Time) (*model.SwapRequest, error)) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid swap id")
		return
	}

	var req respondSwapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.OccupantID == 0 {
		writeBadRequest(w, "occupant_id is required")
		return
	}

	sw, err := fn(id, req.OccupantID, time.Now())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.broadcast(action, sw)
	writeJSON(w, http.StatusOK, sw)
}

// List handles GET /api/swaps?occupant_id=N.
func (h *SwapHandler) List(w http.ResponseWriter, r *http.Request) {
	occupantID, err := parseIDQuery(r, "occupant_id")
	if err != nil {
		writeBadRequest(w, "occupant_id is required")
		return
	}

	swaps, err := h.swaps.ListByOccupant(occupantID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if swaps == nil {
		swaps = []model.SwapRequest{}
	}
	writeJSON(w, http.StatusOK, swaps)
}

func (h *SwapHandler) broadcast(action string, sw *model.SwapRequest) {
	h.hub.Broadcast(websocket.NewEvent("swap", action, sw.ID, map[string]any{
		"requester_occupant_id": sw.RequesterOccupantID,
		"target_occupant_id":    sw.TargetOccupantID,
		"schedule_id":           sw.ScheduleID,
		"status":                sw.Status,
	}))
}
