package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/okantomi/chorewheel/internal/model"
	"github.com/okantomi/chorewheel/internal/rotation"
)

// TenancyHandler serves tenancy lifecycle endpoints.
type TenancyHandler struct {
	vacancies *rotation.Vacancies
	logger    *slog.Logger
}

func NewTenancyHandler(vacancies *rotation.Vacancies, logger *slog.Logger) *TenancyHandler {
	return &TenancyHandler{vacancies: vacancies, logger: logger}
}

// End handles POST /api/tenants/{id}/end. The response lists the coverage
// records written for the departing occupants.
func (h *TenancyHandler) End(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid tenant id")
		return
	}

	records, err := h.vacancies.EndTenancy(id, time.Now())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if records == nil {
		records = []model.TemporaryReassignment{}
	}
	writeJSON(w, http.StatusOK, records)
}
