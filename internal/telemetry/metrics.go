package telemetry

import "sync/atomic"

// Metrics holds process-lifetime counters for the engagement pipeline.
// All counters are monotonic and safe for concurrent use.
type Metrics struct {
	requests       atomic.Int64
	scamsDetected  atomic.Int64
	suspicious     atomic.Int64
	clean          atomic.Int64
	intelItems     atomic.Int64
	normalizations atomic.Int64
	sessionsOpened atomic.Int64
	sessionsClosed atomic.Int64
	llmCalls       atomic.Int64
	llmFailures    atomic.Int64
	errors         atomic.Int64
}

// New creates a zeroed metrics set.
func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncRequests()       { m.requests.Add(1) }
func (m *Metrics) IncScamsDetected()  { m.scamsDetected.Add(1) }
func (m *Metrics) IncSuspicious()     { m.suspicious.Add(1) }
func (m *Metrics) IncClean()          { m.clean.Add(1) }
func (m *Metrics) AddIntelItems(n int) {
	if n > 0 {
		m.intelItems.Add(int64(n))
	}
}
func (m *Metrics) IncNormalizations() { m.normalizations.Add(1) }
func (m *Metrics) IncSessionsOpened() { m.sessionsOpened.Add(1) }
func (m *Metrics) IncSessionsClosed() { m.sessionsClosed.Add(1) }
func (m *Metrics) IncLLMCalls()       { m.llmCalls.Add(1) }
func (m *Metrics) IncLLMFailures()    { m.llmFailures.Add(1) }
func (m *Metrics) IncErrors()         { m.errors.Add(1) }

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests       int64 `json:"requests"`
	ScamsDetected  int64 `json:"scams_detected"`
	Suspicious     int64 `json:"suspicious"`
	Clean          int64 `json:"clean"`
	IntelItems     int64 `json:"intel_items"`
	Normalizations int64 `json:"normalizations"`
	SessionsOpened int64 `json:"sessions_opened"`
	SessionsClosed int64 `json:"sessions_closed"`
	LLMCalls       int64 `json:"llm_calls"`
	LLMFailures    int64 `json:"llm_failures"`
	Errors         int64 `json:"errors"`
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Requests:       m.requests.Load(),
		ScamsDetected:  m.scamsDetected.Load(),
		Suspicious:     m.suspicious.Load(),
		Clean:          m.clean.Load(),
		IntelItems:     m.intelItems.Load(),
		Normalizations: m.normalizations.Load(),
		SessionsOpened: m.sessionsOpened.Load(),
		SessionsClosed: m.sessionsClosed.Load(),
		LLMCalls:       m.llmCalls.Load(),
		LLMFailures:    m.llmFailures.Load(),
		Errors:         m.errors.Load(),
	}
}
