package textnorm

import (
	"context"
	"net/http"
	"sync"
	"time"

	"baitlab/internal/config"
	"baitlab/pkg/logger"
)

// Expander resolves shortener links by following redirects with a bounded
// timeout, bounded redirect count and a small worker pool. Results are
// cached in-process; failures are cached too so a dead shortener is not
// re-probed on every message.
type Expander struct {
	client     *http.Client
	maxWorkers int
	logger     *logger.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewExpander creates an Expander from configuration.
func NewExpander(cfg config.ExpanderConfig, log *logger.Logger) *Expander {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &Expander{
		client:     client,
		maxWorkers: workers,
		logger:     log.WithComponent("url-expander"),
		cache:      make(map[string]string),
	}
}

// ExpandAll resolves the given URLs concurrently. The returned map holds
// an entry only for URLs that resolved to a different final location;
// callers leave everything else unchanged.
func (e *Expander) ExpandAll(ctx context.Context, urls []string) map[string]string {
	results := make(map[string]string, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxWorkers)

	for _, u := range urls {
		wg.Add(1)
		go func(short string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			long := e.expand(ctx, short)
			if long != "" && long != short {
				mu.Lock()
				results[short] = long
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()
	return results
}

func (e *Expander) expand(ctx context.Context, short string) string {
	e.mu.RLock()
	cached, ok := e.cache[short]
	e.mu.RUnlock()
	if ok {
		return cached
	}

	final := short
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, short, nil)
	if err == nil {
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; link-resolver)")
		resp, err := e.client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.Request != nil && resp.Request.URL != nil {
				final = resp.Request.URL.String()
			}
		} else {
			e.logger.Debug().Err(err).Str("url", short).Msg("shortener resolution failed")
		}
	}

	e.mu.Lock()
	e.cache[short] = final
	e.mu.Unlock()
	return final
}
