package handlers

import (
	"net/http"

	"baitlab/internal/infrastructure/database/repository"
	"baitlab/internal/streaming"
	"baitlab/internal/telemetry"
	"baitlab/pkg/logger"
)

// StatsHandler serves the telemetry snapshot plus archive aggregates.
type StatsHandler struct {
	metrics     *telemetry.Metrics
	mirror      *telemetry.Mirror
	engagements *repository.EngagementRepository
	wsHub       *streaming.WebSocketHub
	logger      *logger.Logger
}

// NewStatsHandler creates a new StatsHandler. mirror, engagements and
// wsHub may be nil when those backends are disabled.
func NewStatsHandler(metrics *telemetry.Metrics, mirror *telemetry.Mirror, engagements *repository.EngagementRepository, wsHub *streaming.WebSocketHub, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		metrics:     metrics,
		mirror:      mirror,
		engagements: engagements,
		wsHub:       wsHub,
		logger:      log.WithComponent("stats"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"counters": h.metrics.Snapshot(),
	}

	if h.mirror != nil {
		if lifetime, err := h.mirror.Lifetime(r.Context()); err == nil {
			body["lifetime"] = lifetime
		} else {
			h.logger.Warn().Err(err).Msg("failed to read lifetime counters")
		}
	}

	if h.engagements != nil {
		if archive, err := h.engagements.Stats(r.Context()); err == nil {
			body["archive"] = archive
		} else {
			h.logger.Warn().Err(err).Msg("failed to query archive stats")
		}
	}

	if h.wsHub != nil {
		body["live_watchers"] = h.wsHub.ClientCount()
	}

	writeJSON(w, http.StatusOK, body)
}
