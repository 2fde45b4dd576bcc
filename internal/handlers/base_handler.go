package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
}

// messageResponse is the body of JSON API replies that carry only a status message
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, messageResponse{Success: false, Message: message})
}

// identity is a middleware that does nothing
func identity(next http.Handler) http.Handler {
	return next
}
