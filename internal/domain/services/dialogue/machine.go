package dialogue

import (
	"regexp"
	"strings"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/intel"
)

var (
	paymentMentionRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(upi|account|bank|transfer|send|pay|payment|money|rs|rupees?|₹)\b`),
		regexp.MustCompile(`[a-zA-Z0-9.\-_]+@[a-zA-Z]+`),
		regexp.MustCompile(`\b\d{9,18}\b`),
	}
	linkMentionRe = []*regexp.Regexp{
		regexp.MustCompile(`https?://`),
		regexp.MustCompile(`(?i)\b(click|link|website|url|visit|open)\b`),
	}
	authorityClaimRe = regexp.MustCompile(`(?i)\b(officer|manager|inspector|executive|director|official|department|bank|rbi|government)\b`)
)

var urgencyWords = []string{"urgent", "immediately", "now", "quick", "asap", "hurry", "expire", "deadline", "today"}

func mentionsPayment(text string) bool {
	for _, re := range paymentMentionRe {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func mentionsLink(text string) bool {
	for _, re := range linkMentionRe {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func mentionsUrgency(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func claimsAuthority(text string) bool {
	return authorityClaimRe.MatchString(text)
}

// Machine decides state transitions. Closing happens two ways: the hard
// message ceiling, which always forces CLOSE, and soft signals from
// ESCALATE once the minimum engagement is met.
type Machine struct {
	maxMessages   int
	minEngagement int
}

// NewMachine builds a Machine from dialogue config.
func NewMachine(cfg config.DialogueConfig) *Machine {
	maxMessages := cfg.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 50
	}
	minEngagement := cfg.MinEngagement
	if minEngagement <= 0 {
		minEngagement = 5
	}
	return &Machine{maxMessages: maxMessages, minEngagement: minEngagement}
}

// MaxMessages is the hard conversation ceiling.
func (m *Machine) MaxMessages() int { return m.maxMessages }

// CeilingReached reports whether the session has hit the hard limit.
func (m *Machine) CeilingReached(session *models.Session) bool {
	return session.Messages >= m.maxMessages
}

// NextState computes the state for this turn given the counterpart's
// latest message.
func (m *Machine) NextState(session *models.Session, text string) models.ConversationState {
	current := session.State
	if !current.Valid() {
		current = models.StateInit
	}
	cfg := Config(current)
	exceededTurns := session.StateTurnCount >= cfg.MaxTurns

	hasPayment := mentionsPayment(text)
	hasLink := mentionsLink(text)

	in := session.Intel
	hasUPI := len(in.UPIIDs) > 0
	hasPhone := len(in.PhoneNumbers) > 0
	hasURLs := len(in.PhishingLinks) > 0

	if m.CeilingReached(session) {
		return models.StateClose
	}

	switch current {
	case models.StateInit:
		return models.StateProbeReason

	case models.StateProbeReason:
		switch {
		case hasPayment:
			return models.StateProbePayment
		case hasLink:
			return models.StateProbeLink
		case exceededTurns:
			return models.StateStall
		}
		return models.StateProbeReason

	case models.StateProbePayment:
		switch {
		case (hasUPI || len(in.BankAccounts) > 0) && exceededTurns:
			return models.StateConfirmDetails
		case hasLink:
			return models.StateProbeLink
		case exceededTurns:
			return models.StateEscalate
		}
		return models.StateProbePayment

	case models.StateProbeLink:
		switch {
		case hasURLs && exceededTurns:
			return models.StateConfirmDetails
		case hasPayment && !hasUPI:
			return models.StateProbePayment
		case exceededTurns:
			return models.StateStall
		}
		return models.StateProbeLink

	case models.StateStall:
		if exceededTurns {
			return models.StateEscalate
		}
		return models.StateStall

	case models.StateConfirmDetails:
		if exceededTurns {
			return models.StateEscalate
		}
		return models.StateConfirmDetails

	case models.StateEscalate:
		if m.shouldClose(session, hasPhone, hasUPI, hasURLs, exceededTurns) {
			return models.StateClose
		}
		return models.StateEscalate

	case models.StateClose:
		return models.StateClose
	}

	return current
}

// shouldClose evaluates the soft-close signals from ESCALATE. The
// conversation runs at least the minimum engagement regardless.
func (m *Machine) shouldClose(session *models.Session, hasPhone, hasUPI, hasURLs, exceededTurns bool) bool {
	if session.Messages < m.minEngagement {
		return false
	}

	score := intel.CalculateScore(session)
	patterns := intel.DetectPatterns(session)

	// Counterpart gave up.
	if patterns.Disengagement {
		return true
	}
	// Extraction has stalled with a decent haul banked.
	if patterns.StaleIntel && score.Artifacts >= 0.4 {
		return true
	}
	// High-quality extraction complete.
	if score.Total >= 0.75 {
		return true
	}
	// Good haul with diminishing returns.
	if score.Artifacts >= 0.6 && score.Novelty < 0.3 {
		return true
	}
	// Multiple warning signs at once.
	if patterns.Severity >= 0.7 {
		return true
	}
	// Core artifact combination secured after the state's turn budget.
	if hasPhone && (hasUPI || hasURLs) && exceededTurns {
		return true
	}
	return false
}

// CloseReason names the signal that ended the conversation, for the
// session record and the close event. Call only after NextState
// returned CLOSE.
func (m *Machine) CloseReason(session *models.Session) string {
	if m.CeilingReached(session) {
		return "message_ceiling_reached"
	}

	score := intel.CalculateScore(session)
	patterns := intel.DetectPatterns(session)

	switch {
	case patterns.Disengagement:
		return "counterpart_disengaged"
	case patterns.StaleIntel && score.Artifacts >= 0.4:
		return "stale_intel"
	case score.Total >= 0.75:
		return "extraction_complete"
	case score.Artifacts >= 0.6 && score.Novelty < 0.3:
		return "diminishing_returns"
	case patterns.Severity >= 0.7:
		return "pattern_severity"
	}
	return "core_artifacts_secured"
}
