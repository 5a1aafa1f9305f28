// handlers/schedule_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gewnthar/crewsched/export"
	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/services"
)

const maxDocumentBytes = 8 << 20

type ScheduleHandler struct {
	svc *services.ScheduleService
	log logger.Logger
}

func NewScheduleHandler(svc *services.ScheduleService, log logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, log: log.With("component", "handler")}
}

// blockDateParam reads {year} and {month} from the route.
func blockDateParam(r *http.Request) (models.BlockDate, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return models.BlockDate{}, fmt.Errorf("invalid year %q", chi.URLParam(r, "year"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return models.BlockDate{}, fmt.Errorf("invalid month %q", chi.URLParam(r, "month"))
	}
	bd := models.BlockDate{Month: month, Year: year}
	if err := bd.Validate(); err != nil {
		return models.BlockDate{}, err
	}
	return bd, nil
}

func readDocument(w http.ResponseWriter, r *http.Request) (string, error) {
	defer r.Body.Close()
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return "", fmt.Errorf("empty document")
	}
	return string(b), nil
}

// Parse handles POST /api/schedules/parse with an HTML body.
func (h *ScheduleHandler) Parse(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(w, r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	schedule, err := h.svc.Parse(doc)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, schedule)
}

// List handles GET /api/schedules.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	dates, err := h.svc.List(r.Context())
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, dates)
}

// Get handles GET /api/schedules/{year}/{month}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSchedule(w, r, func(c *models.CachedSchedule) {
		respondWithJSON(w, h.log, http.StatusOK, c)
	})
}

// Import handles PUT /api/schedules/{year}/{month} with an HTML body.
func (h *ScheduleHandler) Import(w http.ResponseWriter, r *http.Request) {
	bd, err := blockDateParam(r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := readDocument(w, r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Import(r.Context(), bd, doc)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, c)
}

// Refresh handles POST /api/schedules/{year}/{month}/refresh.
func (h *ScheduleHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	bd, err := blockDateParam(r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Refresh(r.Context(), bd)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	respondWithJSON(w, h.log, http.StatusOK, c)
}

// LegsCSV handles GET /api/schedules/{year}/{month}/legs.csv.
func (h *ScheduleHandler) LegsCSV(w http.ResponseWriter, r *http.Request) {
	h.withSchedule(w, r, func(c *models.CachedSchedule) {
		h.writeCSV(w, fmt.Sprintf("legs-%s.csv", c.BlockDate()), func(out io.Writer) error {
			return export.WriteLegs(out, c.Schedule)
		})
	})
}

// CalendarCSV handles GET /api/schedules/{year}/{month}/calendar.csv.
func (h *ScheduleHandler) CalendarCSV(w http.ResponseWriter, r *http.Request) {
	h.withSchedule(w, r, func(c *models.CachedSchedule) {
		h.writeCSV(w, fmt.Sprintf("calendar-%s.csv", c.BlockDate()), func(out io.Writer) error {
			return export.WriteCalendar(out, c.Schedule)
		})
	})
}

func (h *ScheduleHandler) withSchedule(w http.ResponseWriter, r *http.Request, fn func(*models.CachedSchedule)) {
	bd, err := blockDateParam(r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Get(r.Context(), bd)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	fn(c)
}

// writeCSV renders into a buffer first so an encoding failure can still become a JSON error.
func (h *ScheduleHandler) writeCSV(w http.ResponseWriter, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
