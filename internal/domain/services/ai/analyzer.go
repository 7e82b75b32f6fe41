package ai

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/internal/infrastructure/cache"
	"baitlab/pkg/logger"
)

const analysisSystemPrompt = `You are a fraud analysis engine. Analyze the message for scam indicators and respond with ONLY a JSON object, no prose, matching exactly this schema:
{
  "intent": {"label": "<one of: credential_harvesting, financial_fraud, phishing_link, impersonation_scam, tech_support_scam, advance_fee_fraud, payment_redirection, emotional_manipulation, benign, unknown>", "confidence": <0.0-1.0>, "reasoning": "<short explanation>"},
  "social_engineering": {"tactics": [<zero or more of: urgency, fear, authority, scarcity, social_proof, reciprocity, greed, sympathy, guilt, intimidation>], "severity": "<none|low|medium|high|critical>", "details": "<short explanation>"},
  "scam_narrative": {"category": "<one of: bank_impersonation, government_impersonation, tech_support, lottery_prize, investment_fraud, romance_scam, job_offer_scam, kyc_update, account_verification, loan_approval, delivery_scam, tax_refund, insurance_scam, custom_clearance, unknown>", "stage": "<opening|trust_building|exploitation|extraction>", "description": "<short explanation>"},
  "composite_score": <0.0-1.0>
}`

const redisCacheTTL = 24 * time.Hour

// Analyzer classifies messages through the LLM with a two-level cache
// and a deterministic heuristic fallback. It never returns an error:
// when the model is unavailable or returns garbage the heuristic result
// is used instead, tagged with its source.
type Analyzer struct {
	client   *Client
	redis    *cache.RedisCache
	logger   *logger.Logger
	cacheTTL time.Duration

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	maxSize int
}

type lruEntry struct {
	key      string
	analysis *models.MessageAnalysis
	storedAt time.Time
}

// NewAnalyzer builds an Analyzer. redisCache may be nil, in which case
// only the in-process cache is used.
func NewAnalyzer(cfg config.LLMConfig, client *Client, redisCache *cache.RedisCache, log *logger.Logger) *Analyzer {
	size := cfg.CacheSize
	if size <= 0 {
		size = 512
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Analyzer{
		client:   client,
		redis:    redisCache,
		logger:   log.WithComponent("llm-analyzer"),
		cacheTTL: ttl,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		maxSize:  size,
	}
}

// Client exposes the underlying chat client for callers that need raw
// completions, such as the extraction and reply layers.
func (a *Analyzer) Client() *Client {
	return a.client
}

// Analyze classifies a canonicalized message in its conversation context.
// history holds prior counterpart messages, oldest first.
func (a *Analyzer) Analyze(ctx context.Context, text string, history []string) *models.MessageAnalysis {
	key := analysisKey(text, history)

	if hit := a.lruGet(key); hit != nil {
		hit.CacheHit = true
		return hit
	}
	if a.redis != nil {
		var cached models.MessageAnalysis
		if err := a.redis.GetJSON(ctx, cache.KeyLLMCachePrefix+key, &cached); err == nil {
			cached.CacheHit = true
			a.lruPut(key, &cached)
			return &cached
		}
	}

	analysis := a.analyzeUncached(ctx, text, history)

	a.lruPut(key, analysis)
	if a.redis != nil && analysis.Source == models.SourceLLM {
		if err := a.redis.SetJSON(ctx, cache.KeyLLMCachePrefix+key, analysis, redisCacheTTL); err != nil {
			a.logger.Warn().Err(err).Msg("failed to cache analysis in Redis")
		}
	}
	return analysis
}

func (a *Analyzer) analyzeUncached(ctx context.Context, text string, history []string) *models.MessageAnalysis {
	if a.client == nil || !a.client.Available() {
		return HeuristicAnalysis(text)
	}

	prompt := buildAnalysisPrompt(text, history)
	content, err := a.client.Chat(ctx, analysisSystemPrompt,
		[]ChatMessage{{Role: "user", Content: prompt}},
		ChatOptions{Temperature: 0.1, MaxTokens: 400})
	if err != nil {
		a.logger.Warn().Err(err).Msg("LLM analysis failed, using heuristic fallback")
		return HeuristicAnalysis(text)
	}

	analysis, err := parseAnalysis(content)
	if err != nil {
		a.logger.Warn().Err(err).Msg("LLM returned unparseable analysis, using heuristic fallback")
		return HeuristicAnalysis(text)
	}
	analysis.Source = models.SourceLLM
	analysis.Provider, _ = a.client.Provider()
	return analysis
}

// Compose generates a free-form persona reply. Callers provide the full
// system prompt; temperature is high since variety matters more than
// precision here.
func (a *Analyzer) Compose(ctx context.Context, system string, messages []ChatMessage) (string, error) {
	if a.client == nil || !a.client.Available() {
		return "", ErrNoProvider
	}
	return a.client.Chat(ctx, system, messages, ChatOptions{Temperature: 0.8, MaxTokens: 120})
}

func buildAnalysisPrompt(text string, history []string) string {
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Previous messages from the sender:\n")
		start := 0
		if len(history) > 4 {
			start = len(history) - 4
		}
		for _, h := range history[start:] {
			b.WriteString("- ")
			b.WriteString(truncate(h, 200))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Message to analyze:\n")
	b.WriteString(text)
	return b.String()
}

func analysisKey(text string, history []string) string {
	h := sha256.New()
	h.Write([]byte(text))
	start := 0
	if len(history) > 4 {
		start = len(history) - 4
	}
	for _, msg := range history[start:] {
		if len(msg) > 60 {
			msg = msg[len(msg)-60:]
		}
		h.Write([]byte("||"))
		h.Write([]byte(msg))
	}
	return hex.EncodeToString(h.Sum(nil))[:24]
}

// rawAnalysis mirrors the wire schema with loose types so a partially
// malformed response can still be salvaged field by field.
type rawAnalysis struct {
	Intent struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	} `json:"intent"`
	SocialEngineering struct {
		Tactics  []string `json:"tactics"`
		Severity string   `json:"severity"`
		Details  string   `json:"details"`
	} `json:"social_engineering"`
	ScamNarrative struct {
		Category    string `json:"category"`
		Stage       string `json:"stage"`
		Description string `json:"description"`
	} `json:"scam_narrative"`
	CompositeScore float64 `json:"composite_score"`
}

func parseAnalysis(content string) (*models.MessageAnalysis, error) {
	payload, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	return validateAnalysis(&raw), nil
}

// validateAnalysis clamps every field to the closed vocabularies.
// Out-of-vocabulary values degrade to safe defaults rather than failing
// the whole response.
func validateAnalysis(raw *rawAnalysis) *models.MessageAnalysis {
	intent := models.IntentResult{
		Label:      models.IntentLabel(raw.Intent.Label),
		Confidence: clamp01(raw.Intent.Confidence),
		Reasoning:  truncate(raw.Intent.Reasoning, 200),
	}
	if !intent.Label.Valid() {
		intent.Label = models.IntentUnknown
	}

	tactics := make([]models.Tactic, 0, len(raw.SocialEngineering.Tactics))
	for _, t := range raw.SocialEngineering.Tactics {
		tactic := models.Tactic(strings.ToLower(strings.TrimSpace(t)))
		if tactic.Valid() {
			tactics = append(tactics, tactic)
		}
	}
	severity := models.Severity(strings.ToLower(raw.SocialEngineering.Severity))
	if !severity.Valid() {
		severity = models.SeverityNone
	}

	category := models.NarrativeCategory(raw.ScamNarrative.Category)
	if !category.Valid() {
		category = models.NarrativeUnknown
	}
	stage := models.NarrativeStage(raw.ScamNarrative.Stage)
	if !stage.Valid() {
		stage = models.StageOpening
	}

	return &models.MessageAnalysis{
		Intent: intent,
		SocialEngineering: models.SocialEngineeringResult{
			Tactics:  tactics,
			Severity: severity,
			Details:  truncate(raw.SocialEngineering.Details, 200),
		},
		ScamNarrative: models.NarrativeResult{
			Category:    category,
			Stage:       stage,
			Description: truncate(raw.ScamNarrative.Description, 200),
		},
		CompositeScore: clamp01(raw.CompositeScore),
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func (a *Analyzer) lruGet(key string) *models.MessageAnalysis {
	a.mu.Lock()
	defer a.mu.Unlock()
	elem, ok := a.entries[key]
	if !ok {
		return nil
	}
	entry := elem.Value.(*lruEntry)
	if time.Since(entry.storedAt) > a.cacheTTL {
		a.order.Remove(elem)
		delete(a.entries, key)
		return nil
	}
	a.order.MoveToFront(elem)
	cp := *entry.analysis
	return &cp
}

func (a *Analyzer) lruPut(key string, analysis *models.MessageAnalysis) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if elem, ok := a.entries[key]; ok {
		elem.Value.(*lruEntry).analysis = analysis
		elem.Value.(*lruEntry).storedAt = time.Now()
		a.order.MoveToFront(elem)
		return
	}
	elem := a.order.PushFront(&lruEntry{key: key, analysis: analysis, storedAt: time.Now()})
	a.entries[key] = elem
	for a.order.Len() > a.maxSize {
		oldest := a.order.Back()
		a.order.Remove(oldest)
		delete(a.entries, oldest.Value.(*lruEntry).key)
	}
}
