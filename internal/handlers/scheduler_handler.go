package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/services/scheduler"
)

// SchedulerHandler handles maintenance endpoints
type SchedulerHandler struct {
	schedulerService *scheduler.Service
	logger           arbor.ILogger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(schedulerService *scheduler.Service, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		schedulerService: schedulerService,
		logger:           logger,
	}
}

// StatusHandler handles GET /api/maintenance/sweep
func (h *SchedulerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, h.schedulerService.Status())
}

// TriggerSweepHandler handles POST /api/maintenance/sweep
func (h *SchedulerHandler) TriggerSweepHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	deleted, err := h.schedulerService.RunSweep(r.Context())
	if errors.Is(err, scheduler.ErrSweepRunning) {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		WriteServiceError(w, h.logger, err, "run retention sweep")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"deleted": deleted,
	})
}
