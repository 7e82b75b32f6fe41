package handlers

import (
	"baitlab/internal/domain/services"
	"baitlab/internal/domain/services/detection"
	"baitlab/internal/domain/services/intel"
	"baitlab/internal/domain/services/textnorm"
	"baitlab/internal/infrastructure/cache"
	"baitlab/internal/infrastructure/database"
	"baitlab/internal/infrastructure/database/repository"
	"baitlab/internal/streaming"
	"baitlab/internal/telemetry"
	"baitlab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health      *HealthHandler
	Honeypot    *HoneypotHandler
	Debug       *DebugHandler
	Stats       *StatsHandler
	Engagements *EngagementsHandler
	Streaming   *StreamingHandler
}

// Dependencies holds dependencies for handlers. Database, repository
// and streaming fields may be nil when those backends are disabled.
type Dependencies struct {
	Engagement    *services.Engagement
	Canonicalizer *textnorm.Canonicalizer
	Detector      *detection.Detector
	Extractor     *intel.Extractor
	Cache         *cache.RedisCache
	DB            *database.PostgresDB
	EngagementsDB *repository.EngagementRepository
	WSHub         *streaming.WebSocketHub
	EventBus      *streaming.EventBus
	Metrics       *telemetry.Metrics
	Mirror        *telemetry.Mirror
	Version       string
	Logger        *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(deps.Cache, deps.DB, deps.Version, deps.Logger),
		Honeypot:    NewHoneypotHandler(deps.Engagement, deps.Logger),
		Debug:       NewDebugHandler(deps.Canonicalizer, deps.Detector, deps.Extractor, deps.Logger),
		Stats:       NewStatsHandler(deps.Metrics, deps.Mirror, deps.EngagementsDB, deps.WSHub, deps.Logger),
		Engagements: NewEngagementsHandler(deps.EngagementsDB, deps.Logger),
		Streaming:   NewStreamingHandler(deps.WSHub, deps.EventBus, deps.Logger),
	}
}
