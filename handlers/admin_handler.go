// handlers/admin_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/services"
)

const defaultHistoryLimit = 20

// AdminHandler manages the schedule cache and exposes the portal fetch log.
type AdminHandler struct {
	svc *services.ScheduleService
	log logger.Logger
}

func NewAdminHandler(svc *services.ScheduleService, log logger.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log.With("component", "admin")}
}

// Evict handles DELETE /api/admin/schedules/{year}/{month}.
func (h *AdminHandler) Evict(w http.ResponseWriter, r *http.Request) {
	bd, err := blockDateParam(r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), bd); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.log.Info("evicted cached schedule", "blockDate", bd.String())
	respondWithJSON(w, h.log, http.StatusOK, map[string]string{"status": "evicted", "blockDate": bd.String()})
}

// Fetches handles GET /api/admin/schedules/{year}/{month}/fetches?limit=N.
func (h *AdminHandler) Fetches(w http.ResponseWriter, r *http.Request) {
	bd, err := blockDateParam(r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondWithError(w, h.log, http.StatusBadRequest, "Invalid 'limit' query parameter")
			return
		}
		limit = n
	}
	history, err := h.svc.History(r.Context(), bd, limit)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, history)
}
