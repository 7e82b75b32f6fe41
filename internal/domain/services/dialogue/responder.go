package dialogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/pkg/logger"
)

// personaClaims tracks what the persona has already said about itself
// so later replies stay consistent.
type personaClaims struct {
	MentionedPeople []string
	MentionedPlaces []string
	ClaimedActions  []string
	Limitations     []string
}

func extractPersonaClaims(history []models.Message) personaClaims {
	var claims personaClaims
	seenPeople := make(map[string]struct{})
	seenPlaces := make(map[string]struct{})

	for _, msg := range history {
		if msg.Sender != models.SenderAgent {
			continue
		}
		text := strings.ToLower(msg.Text)

		for _, person := range []string{"son", "daughter", "husband", "wife"} {
			if strings.Contains(text, person) {
				if _, dup := seenPeople[person]; !dup {
					seenPeople[person] = struct{}{}
					claims.MentionedPeople = append(claims.MentionedPeople, person)
				}
			}
		}
		if strings.Contains(text, "work") || strings.Contains(text, "office") {
			if _, dup := seenPlaces["at work"]; !dup {
				seenPlaces["at work"] = struct{}{}
				claims.MentionedPlaces = append(claims.MentionedPlaces, "at work")
			}
		}
		if strings.Contains(text, "branch") {
			if _, dup := seenPlaces["bank branch"]; !dup {
				seenPlaces["bank branch"] = struct{}{}
				claims.MentionedPlaces = append(claims.MentionedPlaces, "bank branch")
			}
		}
		if strings.Contains(text, "not good with") || strings.Contains(text, "never used") {
			limit := text
			if len(limit) > 50 {
				limit = limit[:50]
			}
			claims.Limitations = append(claims.Limitations, limit)
		}
		if strings.Contains(text, "call back") || strings.Contains(text, "call you") {
			claims.ClaimedActions = append(claims.ClaimedActions, "promised to call back")
		}
		if strings.Contains(text, "check") || strings.Contains(text, "verify") {
			claims.ClaimedActions = append(claims.ClaimedActions, "said will verify")
		}
	}
	return claims
}

var (
	amountRe     = regexp.MustCompile(`(?i)(rs\.?|rupees?|₹)\s*(\d+)`)
	callerNameRe = regexp.MustCompile(`(?i)\b(officer|mr|mrs|ms|inspector)\s+(\w+)`)
)

// interpolate fills template placeholders from extracted intel, the
// counterpart's message, and the persona's prior claims.
func interpolate(template string, in *models.Intel, counterpartText string, claims personaClaims) string {
	lower := strings.ToLower(counterpartText)

	entity := "the bank"
	switch {
	case strings.Contains(lower, "sbi") || strings.Contains(lower, "state bank"):
		entity = "State Bank"
	case strings.Contains(lower, "hdfc"):
		entity = "HDFC Bank"
	case strings.Contains(lower, "icici"):
		entity = "ICICI Bank"
	case strings.Contains(lower, "rbi") || strings.Contains(lower, "reserve bank"):
		entity = "Reserve Bank"
	case strings.Contains(lower, "government") || strings.Contains(lower, "ministry"):
		entity = "the government"
	case strings.Contains(lower, "police") || strings.Contains(lower, "cyber"):
		entity = "the police"
	}

	detail := "that information"
	switch {
	case len(in.UPIIDs) > 0:
		detail = in.UPIIDs[0]
	case len(in.PhoneNumbers) > 0:
		detail = in.PhoneNumbers[0]
	case len(in.PhishingLinks) > 0:
		detail = in.PhishingLinks[0]
	}

	amount := "that amount"
	if m := amountRe.FindStringSubmatch(counterpartText); m != nil {
		amount = "Rs." + m[2]
	}

	recipient := "that account"
	switch {
	case len(in.UPIIDs) > 0:
		recipient = in.UPIIDs[0]
	case len(in.BankAccounts) > 0:
		recipient = "account " + in.BankAccounts[0]
	}

	name := "your name"
	if m := callerNameRe.FindStringSubmatch(counterpartText); m != nil {
		name = m[2]
	}

	person := "my son"
	for _, p := range claims.MentionedPeople {
		person = "my " + p
		break
	}

	r := strings.NewReplacer(
		"{entity}", entity,
		"{detail}", detail,
		"{amount}", amount,
		"{recipient}", recipient,
		"{name}", name,
		"{person}", person,
	)
	return r.Replace(template)
}

// Responder generates persona replies: model-composed when available,
// template fallback otherwise, with micro-behaviors layered on top.
type Responder struct {
	analyzer  *ai.Analyzer
	behaviors *Behaviors
	machine   *Machine
	logger    *logger.Logger
}

// NewResponder wires the reply generator.
func NewResponder(analyzer *ai.Analyzer, behaviors *Behaviors, machine *Machine, log *logger.Logger) *Responder {
	return &Responder{
		analyzer:  analyzer,
		behaviors: behaviors,
		machine:   machine,
		logger:    log.WithComponent("dialogue"),
	}
}

// Execute advances the state machine and produces the turn's reply.
// Returns the reply, the new state, and the applied behavior metadata.
func (r *Responder) Execute(ctx context.Context, session *models.Session, counterpartText string) (string, models.ConversationState, models.TurnMetadata) {
	next := r.machine.NextState(session, counterpartText)
	turnInState := session.StateTurnCount
	if next != session.State {
		turnInState = 0
	}

	// A persona challenge preempts the normal reply; the state still
	// advances so strategy keeps moving underneath.
	if accused, _ := DetectAccusation(counterpartText); accused {
		reply, strategy := r.behaviors.Defend(session.Turn())
		meta := models.TurnMetadata{Turn: session.Turn(), State: next, DefenseUsed: strategy}
		return reply, next, meta
	}

	reply := r.generate(ctx, next, session, counterpartText, turnInState)

	// Repeated demands get acknowledged instead of answered fresh; the
	// targeted question survives after the acknowledgement.
	if p := DetectPersistence(session, counterpartText); p.Detected() {
		reply = r.behaviors.ackRepetition(p) + " " + reply
	}

	if field := InferAskedField(reply); field != "" {
		session.AskedFields[field]++
	}
	decorated, meta := r.behaviors.Apply(reply, next, session.Turn())
	return decorated, next, meta
}

func (r *Responder) generate(ctx context.Context, state models.ConversationState, session *models.Session, counterpartText string, turnInState int) string {
	cfg := Config(state)
	claims := extractPersonaClaims(session.History)
	_, missing := CollectedAndMissing(session.Intel, session.ScamType, session.AskedFields)

	if reply := r.composeLLM(ctx, state, session, counterpartText, cfg); reply != "" {
		return reply
	}

	template := pickTemplate(cfg.Responses, missing, turnInState)
	return interpolate(template, session.Intel, counterpartText, claims)
}

var fieldPrompts = map[string]string{
	models.FieldNames:         "Their full name, officer name, or supervisor name",
	models.FieldPhoneNumbers:  "A phone number (callback number, helpline, department landline)",
	models.FieldUPIIDs:        "A UPI ID",
	models.FieldBankAccounts:  "A bank account number and IFSC code",
	models.FieldEmails:        "An email address (official email, confirmation email)",
	models.FieldPhishingLinks: "A URL or website link (ask them to share the exact link)",
	models.FieldCaseIDs:       "A case ID, reference number, FIR number, or complaint number",
	models.FieldPolicyNumbers: "A policy number or insurance number",
	models.FieldOrderNumbers:  "An order number, tracking number, or AWB number",
}

// composeLLM asks the model for a contextual in-character reply.
// Returns "" when no provider is configured or the call fails, which
// sends the caller to templates.
func (r *Responder) composeLLM(ctx context.Context, state models.ConversationState, session *models.Session, counterpartText string, cfg stateConfig) string {
	if r.analyzer == nil || r.analyzer.Client() == nil || !r.analyzer.Client().Available() {
		return ""
	}

	history := session.History
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	var historyLines []string
	for _, msg := range history {
		role := "You"
		if msg.Sender == models.SenderCounterpart {
			role = "Scammer"
		}
		historyLines = append(historyLines, role+": "+msg.Text)
	}
	historyContext := "(first message)"
	if len(historyLines) > 0 {
		historyContext = strings.Join(historyLines, "\n")
	}

	_, missing := CollectedAndMissing(session.Intel, session.ScamType, session.AskedFields)
	var dataPoints []string
	for _, field := range missing {
		if prompt, ok := fieldPrompts[field]; ok {
			dataPoints = append(dataPoints, "  - "+prompt)
		}
	}
	dataPointsBlock := strings.Join(dataPoints, "\n")
	if dataPointsBlock == "" {
		dataPointsBlock = "  (All key data points collected or asked. Wind down naturally.)"
	}

	scamContext := ""
	if session.ScamType != models.NarrativeUnknown && session.ScamType != "" {
		scamContext = fmt.Sprintf("SCAM CONTEXT: This appears to be a %s scam. Only ask for data points relevant to this type.\n\n",
			scamTypeLabel(session.ScamType))
	}

	intelSummary := formatIntelSummary(session.Intel, session.ScamType, session.AskedFields)

	styleExamples := cfg.Responses
	if len(styleExamples) > 3 {
		styleExamples = styleExamples[:3]
	}

	system := "You are role-playing as an ordinary, slightly confused, non-tech-savvy person " +
		"who has received a suspicious call/message. You must NEVER reveal you are an AI, " +
		"bot, or honeypot. Never mention scam, fraud, police, or AI.\n\n" +
		scamContext +
		"YOUR PRIMARY OBJECTIVE: Ask questions that make the caller PROVIDE specific details.\n" +
		"Every reply MUST contain a direct question requesting ONE of these data points:\n" +
		dataPointsBlock + "\n\n" +
		"EXTRACTION INTELLIGENCE:\n" + intelSummary + "\n\n" +
		"IMPORTANT: Do NOT ask again for information already collected above.\n" +
		"Focus your question on ONE of the STILL MISSING items.\n\n" +
		"RULES:\n" +
		"- Reply in 1-2 short sentences only.\n" +
		"- Sound natural, confused, and slightly worried.\n" +
		"- Respond DIRECTLY to what the scammer just said.\n" +
		"- ALWAYS end with a specific question asking for a MISSING data point.\n" +
		"- Do NOT ask the scammer to repeat, spell out, or confirm details they already gave.\n" +
		"- Frame questions naturally: 'What is your name sir?', 'Can you give me the UPI ID?', " +
		"'What number should I call back on?', 'What is the case reference number?'\n" +
		"- CRITICAL: Only reference specific details (phone numbers, account numbers, URLs, names) " +
		"that were EXPLICITLY mentioned in the conversation history above. " +
		"Do NOT make up or assume any past interactions.\n" +
		"- Your current goal: " + cfg.Goal + "\n\n" +
		"STYLE EXAMPLES (do NOT copy verbatim, just match the tone):\n- " +
		strings.Join(styleExamples, "\n- ")

	user := fmt.Sprintf("Conversation so far:\n%s\n\nScammer's latest message:\n%q\n\nWrite your reply (1-2 sentences, stay in character):",
		historyContext, counterpartText)

	reply, err := r.analyzer.Compose(ctx, system, []ai.ChatMessage{{Role: "user", Content: user}})
	if err != nil {
		r.logger.Debug().Err(err).Msg("LLM reply composition failed, falling back to templates")
		return ""
	}
	return strings.Trim(strings.TrimSpace(reply), `"'`)
}
