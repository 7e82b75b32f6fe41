package intel

import (
	"strings"

	"baitlab/internal/domain/models"
)

// Weights for the conversation-value score.
const (
	weightArtifacts  = 0.35
	weightConfidence = 0.25
	weightEngagement = 0.20
	weightNovelty    = 0.20
)

// Score is the weighted conversation-value breakdown used by the
// closing policy.
type Score struct {
	Total          float64 `json:"score"`
	Artifacts      float64 `json:"artifacts"`
	ScamConfidence float64 `json:"scam_confidence"`
	Engagement     float64 `json:"engagement"`
	Novelty        float64 `json:"novelty"`

	UniqueItems    int `json:"unique_items"`
	TypesCollected int `json:"types_collected"`
}

// CalculateScore rates how valuable continuing the conversation is.
// Artifact quality dominates; confidence, engagement depth, and the
// rate of new extractions fill out the rest.
func CalculateScore(session *models.Session) Score {
	in := session.Intel

	// Artifact diversity matters more than raw volume. Free-form extras
	// are capped so they cannot inflate the score.
	additionalCount := 0
	for _, values := range in.AdditionalIntel {
		additionalCount += len(values)
	}
	if additionalCount > 3 {
		additionalCount = 3
	}
	uniqueCount := len(in.UPIIDs) + len(in.PhoneNumbers) + len(in.PhishingLinks) +
		len(in.BankAccounts) + len(in.Names) + len(in.Emails) +
		len(in.CaseIDs) + len(in.PolicyNumbers) + len(in.OrderNumbers) +
		additionalCount

	typesCollected := 0
	for _, field := range [][]string{
		in.UPIIDs, in.PhoneNumbers, in.PhishingLinks, in.BankAccounts,
		in.Names, in.Emails, in.CaseIDs, in.PolicyNumbers, in.OrderNumbers,
	} {
		if len(field) > 0 {
			typesCollected++
		}
	}
	diversityMultiplier := 1.0 + float64(typesCollected)*0.15
	artifactsScore := (float64(uniqueCount) / 10.0) * diversityMultiplier
	if artifactsScore > 1.0 {
		artifactsScore = 1.0
	}

	engagementScore := engagementDepth(session)
	noveltyScore := noveltyRate(session)

	total := weightArtifacts*artifactsScore +
		weightConfidence*session.ScamScore +
		weightEngagement*engagementScore +
		weightNovelty*noveltyScore

	return Score{
		Total:          total,
		Artifacts:      artifactsScore,
		ScamConfidence: session.ScamScore,
		Engagement:     engagementScore,
		Novelty:        noveltyScore,
		UniqueItems:    uniqueCount,
		TypesCollected: typesCollected,
	}
}

// engagementDepth rates counterpart engagement by average length of
// their recent messages.
func engagementDepth(session *models.Session) float64 {
	if len(session.History) < 2 {
		return 0.5
	}
	counterpart := session.CounterpartMessages()
	if len(counterpart) == 0 {
		return 0.5
	}
	if len(counterpart) > 3 {
		counterpart = counterpart[len(counterpart)-3:]
	}
	totalLen := 0
	for _, m := range counterpart {
		totalLen += len(m.Text)
	}
	avg := float64(totalLen) / float64(len(counterpart))
	switch {
	case avg >= 150:
		return 0.9
	case avg >= 80:
		return 0.7
	case avg >= 40:
		return 0.5
	default:
		return 0.3
	}
}

// noveltyRate rates whether recent turns are still producing new
// artifacts. High by default early on.
func noveltyRate(session *models.Session) float64 {
	log := session.NoveltyLog
	if len(log) < 3 {
		return 1.0
	}
	recent := log[len(log)-3:]
	newItems := 0
	for _, rec := range recent {
		newItems += rec.NewCount
	}
	switch {
	case newItems >= 3:
		return 0.9
	case newItems == 2:
		return 0.6
	case newItems == 1:
		return 0.4
	default:
		return 0.1
	}
}

// Patterns describes counterpart behavior relevant to the closing policy.
type Patterns struct {
	RepeatedPressure bool    `json:"repeated_pressure"`
	Disengagement    bool    `json:"disengagement"`
	StaleIntel       bool    `json:"stale_intel"`
	Severity         float64 `json:"severity"`
}

var pressureKeywords = []string{"urgent", "immediately", "now", "quick", "asap", "hurry"}

// DetectPatterns inspects recent counterpart behavior. Repeated
// pressure is noted but is not a closing signal; a pressured scammer is
// an extraction opportunity. Disengagement and stale intel raise
// severity.
func DetectPatterns(session *models.Session) Patterns {
	var p Patterns

	counterpart := session.CounterpartMessages()
	if len(counterpart) > 5 {
		counterpart = counterpart[len(counterpart)-5:]
	}

	recent := counterpart
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	pressureCount := 0
	for _, m := range recent {
		lower := strings.ToLower(m.Text)
		for _, kw := range pressureKeywords {
			if strings.Contains(lower, kw) {
				pressureCount++
				break
			}
		}
	}
	p.RepeatedPressure = pressureCount >= 2

	// Very short replies suggest giving up. The threshold is low since
	// short confirmations like "okay, send" are normal engagement.
	if len(counterpart) >= 2 {
		last2 := counterpart[len(counterpart)-2:]
		avg := float64(len(last2[0].Text)+len(last2[1].Text)) / 2.0
		if avg < 15 {
			p.Disengagement = true
			p.Severity += 0.4
		}
	}

	if len(session.NoveltyLog) >= 3 {
		recentNovelty := session.NoveltyLog[len(session.NoveltyLog)-3:]
		total := 0
		for _, rec := range recentNovelty {
			total += rec.NewCount
		}
		if total == 0 {
			p.StaleIntel = true
			p.Severity += 0.5
		}
	}

	return p
}
