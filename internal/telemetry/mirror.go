package telemetry

import (
	"context"
	"strconv"
	"time"

	"baitlab/internal/infrastructure/cache"
	"baitlab/pkg/logger"
)

// Mirror periodically flushes counter deltas into a Redis hash so
// lifetime totals survive process restarts. Fields use the same names as
// the Snapshot JSON.
type Mirror struct {
	metrics *Metrics
	cache   *cache.RedisCache
	every   time.Duration
	logger  *logger.Logger

	last Snapshot
}

// NewMirror creates a mirror flushing every interval.
func NewMirror(metrics *Metrics, c *cache.RedisCache, every time.Duration, log *logger.Logger) *Mirror {
	if every <= 0 {
		every = 30 * time.Second
	}
	return &Mirror{
		metrics: metrics,
		cache:   c,
		every:   every,
		logger:  log.WithComponent("telemetry"),
	}
}

// Run flushes on a ticker until ctx is cancelled, then performs one
// final flush so shutdown loses nothing.
func (m *Mirror) Run(ctx context.Context) {
	ticker := time.NewTicker(m.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			m.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			m.Flush(ctx)
		}
	}
}

// Flush writes the deltas accumulated since the previous flush. On
// failure the baseline is kept, so the same deltas go out next time.
func (m *Mirror) Flush(ctx context.Context) {
	current := m.metrics.Snapshot()
	deltas := map[string]int64{}
	for field, pair := range counterPairs(m.last, current) {
		if d := pair[1] - pair[0]; d != 0 {
			deltas[field] = d
		}
	}
	if len(deltas) == 0 {
		return
	}
	if err := m.cache.HIncrByAll(ctx, cache.KeyStats, deltas); err != nil {
		m.logger.Warn().Err(err).Msg("failed to flush lifetime counters")
		return
	}
	m.last = current
}

// Lifetime reads the persisted totals, which span process restarts.
func (m *Mirror) Lifetime(ctx context.Context) (map[string]int64, error) {
	raw, err := m.cache.HGetAll(ctx, cache.KeyStats)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		totals[field] = n
	}
	return totals, nil
}

func counterPairs(prev, cur Snapshot) map[string][2]int64 {
	return map[string][2]int64{
		"requests":        {prev.Requests, cur.Requests},
		"scams_detected":  {prev.ScamsDetected, cur.ScamsDetected},
		"suspicious":      {prev.Suspicious, cur.Suspicious},
		"clean":           {prev.Clean, cur.Clean},
		"intel_items":     {prev.IntelItems, cur.IntelItems},
		"normalizations":  {prev.Normalizations, cur.Normalizations},
		"sessions_opened": {prev.SessionsOpened, cur.SessionsOpened},
		"sessions_closed": {prev.SessionsClosed, cur.SessionsClosed},
		"llm_calls":       {prev.LLMCalls, cur.LLMCalls},
		"llm_failures":    {prev.LLMFailures, cur.LLMFailures},
		"errors":          {prev.Errors, cur.Errors},
	}
}
