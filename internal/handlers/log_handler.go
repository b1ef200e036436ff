// File: internal/handlers/log_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/iyunix/go-linksports/internal/middleware"
)

const maxClientMessage = 2000

// ClientLogPayload is a log line reported by a client application.
type ClientLogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

type LogHandler struct {
	logger Logger
}

func NewLogHandler(logger Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogClientEvent writes a client-reported event to the server log at the
// reported level.
func (h *LogHandler) LogClientEvent(w http.ResponseWriter, r *http.Request) {
	var payload ClientLogPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		respondError(w, r, h.logger, badRequest("message is required"))
		return
	}
	if len(message) > maxClientMessage {
		message = message[:maxClientMessage]
	}

	fields := []interface{}{
		"message", message,
		"context", payload.Context,
		"request_id", middleware.RequestIDFromContext(r.Context()),
	}
	if u := currentUser(r); u != nil {
		fields = append(fields, "user_id", u.ID)
	}

	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error("CLIENT_LOG", fields...)
	case "warn", "warning":
		h.logger.Warn("CLIENT_LOG", fields...)
	case "debug":
		h.logger.Debug("CLIENT_LOG", fields...)
	default:
		h.logger.Info("CLIENT_LOG", fields...)
	}
	w.WriteHeader(http.StatusNoContent)
}
