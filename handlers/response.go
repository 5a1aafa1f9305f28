// handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gewnthar/crewsched/fetcher"
	"github.com/gewnthar/crewsched/logger"
	"github.com/gewnthar/crewsched/services"
)

func respondWithJSON(w http.ResponseWriter, log logger.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, log logger.Logger, code int, message string) {
	if code >= http.StatusInternalServerError {
		log.Error("API error", "status", code, "message", message)
	} else {
		log.Info("API error", "status", code, "message", message)
	}
	respondWithJSON(w, log, code, map[string]string{"error": message})
}

// statusFor maps service and portal errors to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidBlockDate):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNoFetcher), errors.Is(err, fetcher.ErrStillBuilding):
		return http.StatusServiceUnavailable
	case errors.Is(err, fetcher.ErrUnauthorized):
		return http.StatusBadGateway
	}
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondWithServiceError(w http.ResponseWriter, log logger.Logger, err error) {
	respondWithError(w, log, statusFor(err), err.Error())
}
