package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"baitlab/internal/infrastructure/database/repository"
	"baitlab/pkg/logger"
)

// EngagementsHandler serves the archived-engagement review endpoints.
type EngagementsHandler struct {
	repo   *repository.EngagementRepository
	logger *logger.Logger
}

// NewEngagementsHandler creates a new EngagementsHandler
func NewEngagementsHandler(repo *repository.EngagementRepository, log *logger.Logger) *EngagementsHandler {
	return &EngagementsHandler{
		repo:   repo,
		logger: log.WithComponent("engagements"),
	}
}

// List handles GET /api/v1/engagements
func (h *EngagementsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "archive not configured"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list engagements")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list engagements"})
		return
	}
	if records == nil {
		records = []*repository.EngagementRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"engagements": records,
		"count":       len(records),
	})
}

// Get handles GET /api/v1/engagements/{sessionID}
func (h *EngagementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "archive not configured"})
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	record, err := h.repo.Get(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "engagement not found"})
		return
	}

	writeJSON(w, http.StatusOK, record)
}
