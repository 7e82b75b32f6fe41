package dialogue

import (
	"math/rand"
	"strings"
	"sync"

	"baitlab/internal/domain/models"
)

var delayPhrases = []string{
	"Let me check...",
	"Wait, give me a moment...",
	"Hold on, I need to find...",
	"Just a second...",
	"Let me get my glasses...",
}

var fearPhrases = []string{
	"I'm getting worried about this.",
	"This is making me nervous.",
	"Should I be concerned?",
	"I'm scared something bad will happen.",
	"What if I do something wrong?",
}

var hesitationPhrases = []string{
	"I'm not sure about this...",
	"I don't know if I should...",
	"Maybe I should wait...",
	"Let me think about this first...",
	"I'm a bit hesitant...",
}

var typoPairs = []struct{ word, typo string }{
	{"account", "acount"},
	{"payment", "payement"},
	{"this", "thi s"},
	{"really", "realy"},
}

var correctionPhrases = []string{
	"Sorry, I meant to say: ",
	"Wait, let me correct that: ",
	"Actually, ",
	"No wait, ",
}

// Behaviors layers human texture onto generated replies: delay phrases,
// fear, hesitation, typos, and self-corrections, each probabilistic.
// The RNG is injectable so tests can pin outcomes.
type Behaviors struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBehaviors builds a Behaviors with the given seed source. Pass nil
// to use a time-seeded generator.
func NewBehaviors(rng *rand.Rand) *Behaviors {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Behaviors{rng: rng}
}

// Apply decorates a reply and records what was injected. Order matters:
// prefixes stack in front of the base reply, the typo mutates whatever
// text is present by then.
func (b *Behaviors) Apply(reply string, state models.ConversationState, turn int) (string, models.TurnMetadata) {
	b.mu.Lock()
	defer b.mu.Unlock()

	meta := models.TurnMetadata{Turn: turn, State: state}

	// Delay phrase, 25% with a 2-8s simulated typing delay.
	if b.rng.Float64() < 0.25 {
		phrase := delayPhrases[b.rng.Intn(len(delayPhrases))]
		meta.DelaySeconds = 2 + b.rng.Intn(7)
		reply = phrase + " " + reply
	}

	// Fear, more likely while payment details or escalation are in play.
	fearProb := 0.15
	if state == models.StateProbePayment || state == models.StateEscalate {
		fearProb = 0.30
	}
	if b.rng.Float64() < fearProb {
		meta.HasFear = true
		reply = fearPhrases[b.rng.Intn(len(fearPhrases))] + " " + reply
	}

	// Hesitation, elevated in link and payment probes.
	hesitationProb := 0.20
	if state == models.StateProbeLink || state == models.StateProbePayment {
		hesitationProb = 0.35
	}
	if b.rng.Float64() < hesitationProb {
		meta.HasHesitation = true
		reply = hesitationPhrases[b.rng.Intn(len(hesitationPhrases))] + " " + reply
	}

	// Typo, 10%. The mistake only lands when the chosen word occurs.
	if b.rng.Float64() < 0.10 {
		pair := typoPairs[b.rng.Intn(len(typoPairs))]
		lower := strings.ToLower(reply)
		if idx := strings.Index(lower, pair.word); idx != -1 {
			meta.HasTypo = true
			reply = reply[:idx] + pair.typo + reply[idx+len(pair.word):]
		}
	}

	// Self-correction, 8%.
	if b.rng.Float64() < 0.08 {
		meta.HasCorrection = true
		reply = correctionPhrases[b.rng.Intn(len(correctionPhrases))] + reply
	}

	return reply, meta
}

// Float64 exposes the shared RNG for other probabilistic choices.
func (b *Behaviors) Float64() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Float64()
}

// Intn exposes the shared RNG for index selection.
func (b *Behaviors) Intn(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Intn(n)
}
