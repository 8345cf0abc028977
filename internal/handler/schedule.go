package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/rotation"
	"github.com/okantomi/chorewheel/internal/store"
	"github.com/okantomi/chorewheel/internal/week"
)

// ScheduleHandler serves the weekly schedule views.
type ScheduleHandler struct {
	registry     rotation.Registry
	materializer *rotation.Materializer
	schedules    *store.ScheduleStore
	logger       *slog.Logger
}

func NewScheduleHandler(registry rotation.Registry, materializer *rotation.Materializer, schedules *store.ScheduleStore, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		registry:     registry,
		materializer: materializer,
		schedules:    schedules,
		logger:       logger,
	}
}

type scheduleResponse struct {
	Schedule *model.ScheduleWeek      `json:"schedule"`
	Chores   []store.CompletionDetail `json:"chores"`
}

// Current handles GET /api/schedule/current?unit_id=N. It materializes the
// current week for the unit if it does not exist yet.
func (h *ScheduleHandler) Current(w http.ResponseWriter, r *http.Request) {
	unitID, err := parseIDQuery(r, "unit_id")
	if err != nil {
		writeBadRequest(w, "unit_id is required")
		return
	}

	sched, err := h.materializer.CurrentSchedule(unitID, time.Now())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if sched == nil {
		writeError(w, h.logger, rotation.ErrNotFound)
		return
	}

	details, err := h.unitCompletions(sched.ID, unitID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Schedule: sched, Chores: details})
}

// ByWeek handles GET /api/schedule/{weekID}?unit_id=N. A week that was
// never materialized is created for the unit on first access.
func (h *ScheduleHandler) ByWeek(w http.ResponseWriter, r *http.Request) {
	weekID := r.PathValue("weekID")
	unitID, err := parseIDQuery(r, "unit_id")
	if err != nil {
		writeBadRequest(w, "unit_id is required")
		return
	}

	weekStart, err := week.ParseIdentifier(weekID)
	if err != nil {
		writeBadRequest(w, "invalid week id")
		return
	}

	unit, err := h.registry.Unit(unitID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if unit == nil {
		writeError(w, h.logger, rotation.ErrNotFound)
		return
	}

	sched, err := h.materializer.ScheduleForWeek(weekID, &unitID, weekStart)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if sched == nil {
		writeError(w, h.logger, rotation.ErrNotFound)
		return
	}

	details, err := h.unitCompletions(sched.ID, unitID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{Schedule: sched, Chores: details})
}

func (h *ScheduleHandler) unitCompletions(scheduleID, unitID int64) ([]store.CompletionDetail, error) {
	occupants, err := h.registry.ActiveOccupants(unitID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(occupants))
	for i, o := range occupants {
		ids[i] = o.ID
	}

	details, err := h.schedules.CompletionsDetailed(scheduleID, ids)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []store.CompletionDetail{}
	}
	return details, nil
}
