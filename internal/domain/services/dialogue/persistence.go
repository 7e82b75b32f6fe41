package dialogue

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"baitlab/internal/domain/models"
)

// HashMessage returns the short content hash used for exact-repeat
// tracking in the session's message hash table.
func HashMessage(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:8]
}

var credentialDemandRe = regexp.MustCompile(`(?i)\b(otp|pin|cvv|password|passcode)\b`)

// tacticCategory classifies which pressure tactic a message leans on.
// A message can carry several.
func tacticCategories(text string) []string {
	var categories []string
	if mentionsPayment(text) {
		categories = append(categories, "payment_demand")
	}
	if mentionsLink(text) {
		categories = append(categories, "link_push")
	}
	if mentionsUrgency(text) {
		categories = append(categories, "urgency_threat")
	}
	if claimsAuthority(text) {
		categories = append(categories, "authority_pressure")
	}
	if credentialDemandRe.MatchString(text) {
		categories = append(categories, "credential_request")
	}
	return categories
}

// Persistence is the repetition assessment for the current turn.
type Persistence struct {
	ExactRepeat    bool   `json:"exact_repeat"`
	RepeatCount    int    `json:"repeat_count"`
	SemanticRepeat bool   `json:"semantic_repeat"`
	Category       string `json:"category,omitempty"`
}

// Detected reports whether any repetition signal fired.
func (p Persistence) Detected() bool {
	return p.ExactRepeat || p.SemanticRepeat
}

// DetectPersistence checks whether the counterpart is repeating itself,
// either verbatim (content hash seen before) or semantically (the same
// tactic category in 2+ of the last 4 counterpart messages including
// this one). The hash table must already include the current message.
func DetectPersistence(session *models.Session, text string) Persistence {
	var p Persistence

	if count := session.MessageHashes[HashMessage(text)]; count >= 2 {
		p.ExactRepeat = true
		p.RepeatCount = count
	}

	counterpart := session.CounterpartMessages()
	recent := []string{text}
	start := len(counterpart) - 3
	if start < 0 {
		start = 0
	}
	for _, m := range counterpart[start:] {
		recent = append(recent, m.Text)
	}

	hits := map[string]int{}
	for _, msg := range recent {
		for _, cat := range tacticCategories(msg) {
			hits[cat]++
		}
	}
	best := 0
	for cat, n := range hits {
		if n >= 2 && n > best {
			best = n
			p.SemanticRepeat = true
			p.Category = cat
		}
	}
	return p
}

var repetitionAcks = map[string][]string{
	"payment_demand": {
		"Yes yes, you told me about the payment already, I have written it down.",
		"I know, you keep saying about the money. I am trying, please.",
	},
	"link_push": {
		"You already sent me that link. I am trying to open it only.",
		"Same link again? Okay okay, I have it saved.",
	},
	"urgency_threat": {
		"I understand it is urgent, you said this before also.",
		"Please, you keep telling me to hurry, I am going as fast as I can.",
	},
	"authority_pressure": {
		"Yes sir, you told me who you are already.",
		"I remember, you said you are from the department.",
	},
	"credential_request": {
		"You asked me this before also. I am still looking for it.",
		"Again the same thing? I told you I am searching for it.",
	},
	"": {
		"You already told me this, I noted it down.",
		"Yes, you said the same thing before also.",
	},
}

// ackRepetition returns an acknowledgement opener matching the repeated
// tactic, so the reply does not respond as if the demand were new.
func (b *Behaviors) ackRepetition(p Persistence) string {
	pool, ok := repetitionAcks[p.Category]
	if !ok || len(pool) == 0 {
		pool = repetitionAcks[""]
	}
	return pool[b.Intn(len(pool))]
}
