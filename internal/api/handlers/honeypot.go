package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services"
	"baitlab/pkg/logger"
)

// HoneypotHandler serves the inbound conversational turn endpoint.
type HoneypotHandler struct {
	engagement *services.Engagement
	logger     *logger.Logger
}

// NewHoneypotHandler creates a new HoneypotHandler
func NewHoneypotHandler(engagement *services.Engagement, log *logger.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		engagement: engagement,
		logger:     log.WithComponent("honeypot"),
	}
}

// Turn handles POST /api/v1/honeypot (and the legacy /honeypot mount).
// A malformed payload is a 400 with no session mutation. Any internal
// fault degrades to a retryable reply; the response is never empty.
func (h *HoneypotHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request payload"})
		return
	}

	resp, err := h.engagement.HandleTurn(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message text is required"})
			return
		}

		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("turn processing failed")
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "error",
			"reply":  "Temporary issue, please retry",
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
