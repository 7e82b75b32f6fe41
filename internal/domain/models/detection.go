package models

// DetectionVerdict is the three-way classification of one message.
type DetectionVerdict string

const (
	VerdictScam       DetectionVerdict = "scam"
	VerdictSuspicious DetectionVerdict = "suspicious"
	VerdictClean      DetectionVerdict = "clean"
)

// SignalScore is one signal's contribution to the composite score.
type SignalScore struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// DetectionResult is the per-message scoring output. It lives for one
// turn; only the composite feeds the session's rolling confidence.
type DetectionResult struct {
	Composite float64          `json:"composite"`
	Verdict   DetectionVerdict `json:"verdict"`
	Engage    bool             `json:"engage"`

	Signals        []SignalScore `json:"signals"`
	EmotionalBoost float64       `json:"emotional_boost,omitempty"`
	HistoryBoost   float64       `json:"history_boost,omitempty"`

	HardTrigger       bool   `json:"hard_trigger"`
	HardTriggerReason string `json:"hard_trigger_reason,omitempty"`

	// Structural signals, matched on the raw text.
	HasURL           bool `json:"has_url"`
	HasPhone         bool `json:"has_phone"`
	HasPaymentHandle bool `json:"has_payment_handle"`

	// Raw per-signal scores kept handy for the engage decision and the
	// red-flag builder.
	AuthorityScore float64 `json:"-"`
	PaymentScore   float64 `json:"-"`
	UrgencyScore   float64 `json:"-"`

	RedFlags []string         `json:"red_flags"`
	Analysis *MessageAnalysis `json:"analysis,omitempty"`
}

// Signal returns the named signal's score, or a zero value when absent.
func (r *DetectionResult) Signal(name string) SignalScore {
	for _, s := range r.Signals {
		if s.Name == name {
			return s
		}
	}
	return SignalScore{Name: name}
}
