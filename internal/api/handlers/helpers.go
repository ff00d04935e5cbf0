package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amaumene/segmentarr/internal/services/mediaserver"
	"github.com/amaumene/segmentarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON body for failed requests
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps an upstream error onto an HTTP status and a sanitized
// message. Nothing resembling a credential leaves this function.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	status := http.StatusInternalServerError

	var apiErr *mediaserver.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Cause {
		case mediaserver.CauseAuth:
			status = http.StatusBadGateway // our token, not the caller's problem
		case mediaserver.CauseNotFound:
			status = http.StatusNotFound
		case mediaserver.CauseRateLimited:
			status = http.StatusTooManyRequests
		case mediaserver.CauseValidation:
			status = http.StatusBadRequest
		}
	}

	msg := utils.SanitizeError(err)
	logger.WithFields(logrus.Fields{
		"status": status,
		"error":  msg,
	}).Debug("Request failed")

	writeJSON(w, status, errorResponse{Error: msg})
}

// writeBadRequest reports a local validation failure
func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: utils.SanitizeError(err)})
}
