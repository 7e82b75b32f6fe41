package models

import (
	"time"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderCounterpart Sender = "scammer"
	SenderAgent       Sender = "agent"
)

// Message is one entry in a session's conversation history.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Intel is the cumulative extracted-artifact aggregate for one session.
// Every field is a deduplicated, order-preserving list of normalized
// strings. Values are added only by the extraction merge step and the
// aggregate never shrinks.
type Intel struct {
	PhoneNumbers    []string            `json:"phoneNumbers"`
	UPIIDs          []string            `json:"upiIds"`
	PhishingLinks   []string            `json:"phishingLinks"`
	BankAccounts    []string            `json:"bankAccounts"`
	IFSCCodes       []string            `json:"ifscCodes"`
	Names           []string            `json:"names"`
	Emails          []string            `json:"emails"`
	CaseIDs         []string            `json:"caseIds"`
	PolicyNumbers   []string            `json:"policyNumbers"`
	OrderNumbers    []string            `json:"orderNumbers"`
	AdditionalIntel map[string][]string `json:"additionalIntel"`
}

// NewIntel returns an Intel with all fields initialized so serialized
// output always carries every key.
func NewIntel() *Intel {
	return &Intel{
		PhoneNumbers:    []string{},
		UPIIDs:          []string{},
		PhishingLinks:   []string{},
		BankAccounts:    []string{},
		IFSCCodes:       []string{},
		Names:           []string{},
		Emails:          []string{},
		CaseIDs:         []string{},
		PolicyNumbers:   []string{},
		OrderNumbers:    []string{},
		AdditionalIntel: map[string][]string{},
	}
}

// Backfill ensures every field slice and map is non-nil. Sessions stored
// before a field existed deserialize with nil slices; responses must still
// carry every key.
func (i *Intel) Backfill() {
	if i.PhoneNumbers == nil {
		i.PhoneNumbers = []string{}
	}
	if i.UPIIDs == nil {
		i.UPIIDs = []string{}
	}
	if i.PhishingLinks == nil {
		i.PhishingLinks = []string{}
	}
	if i.BankAccounts == nil {
		i.BankAccounts = []string{}
	}
	if i.IFSCCodes == nil {
		i.IFSCCodes = []string{}
	}
	if i.Names == nil {
		i.Names = []string{}
	}
	if i.Emails == nil {
		i.Emails = []string{}
	}
	if i.CaseIDs == nil {
		i.CaseIDs = []string{}
	}
	if i.PolicyNumbers == nil {
		i.PolicyNumbers = []string{}
	}
	if i.OrderNumbers == nil {
		i.OrderNumbers = []string{}
	}
	if i.AdditionalIntel == nil {
		i.AdditionalIntel = map[string][]string{}
	}
}

// Field returns the list stored under a fixed field key, or nil for an
// unknown key.
func (i *Intel) Field(key string) []string {
	switch key {
	case FieldPhoneNumbers:
		return i.PhoneNumbers
	case FieldUPIIDs:
		return i.UPIIDs
	case FieldPhishingLinks:
		return i.PhishingLinks
	case FieldBankAccounts:
		return i.BankAccounts
	case FieldIFSCCodes:
		return i.IFSCCodes
	case FieldNames:
		return i.Names
	case FieldEmails:
		return i.Emails
	case FieldCaseIDs:
		return i.CaseIDs
	case FieldPolicyNumbers:
		return i.PolicyNumbers
	case FieldOrderNumbers:
		return i.OrderNumbers
	}
	return nil
}

// Fixed intel field keys, matching the serialized field names.
const (
	FieldPhoneNumbers  = "phoneNumbers"
	FieldUPIIDs        = "upiIds"
	FieldPhishingLinks = "phishingLinks"
	FieldBankAccounts  = "bankAccounts"
	FieldIFSCCodes     = "ifscCodes"
	FieldNames         = "names"
	FieldEmails        = "emails"
	FieldCaseIDs       = "caseIds"
	FieldPolicyNumbers = "policyNumbers"
	FieldOrderNumbers  = "orderNumbers"
)

// IntelFieldKeys lists every fixed field key in canonical order.
var IntelFieldKeys = []string{
	FieldNames,
	FieldPhoneNumbers,
	FieldUPIIDs,
	FieldBankAccounts,
	FieldIFSCCodes,
	FieldEmails,
	FieldPhishingLinks,
	FieldCaseIDs,
	FieldPolicyNumbers,
	FieldOrderNumbers,
}

// NoveltyRecord logs how many genuinely new artifacts one turn yielded.
type NoveltyRecord struct {
	Turn      int            `json:"turn"`
	NewCount  int            `json:"new_count"`
	Breakdown map[string]int `json:"breakdown,omitempty"`
}

// StateTransition records one dialogue state change.
type StateTransition struct {
	From ConversationState `json:"from"`
	To   ConversationState `json:"to"`
	Turn int               `json:"turn"`
}

// TurnMetadata captures the micro-behaviors applied to one reply.
type TurnMetadata struct {
	Turn          int               `json:"turn"`
	State         ConversationState `json:"state"`
	DelaySeconds  int               `json:"delay_seconds"`
	HasTypo       bool              `json:"has_typo"`
	HasFear       bool              `json:"has_fear"`
	HasHesitation bool              `json:"has_hesitation"`
	HasCorrection bool              `json:"has_correction"`
	DefenseUsed   string            `json:"defense_used,omitempty"`
}

// Session is one scam-engagement conversation. It is created on the first
// inbound message for a new identifier, mutated every turn, and terminated
// exactly once.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	History  []Message `json:"history"`
	Messages int       `json:"messages"`

	State          ConversationState `json:"dialogue_state"`
	StateTurnCount int               `json:"state_turn_count"`
	StateHistory   []StateTransition `json:"state_history,omitempty"`

	ScamScore    float64           `json:"scam_score"`
	ScamType     NarrativeCategory `json:"scam_type"`
	ScamDetected bool              `json:"scam_detected"`

	Intel *Intel `json:"intel"`

	// AskedFields maps intel field key -> times the agent has asked for it.
	AskedFields map[string]int `json:"asked_fields,omitempty"`

	// MessageHashes counts exact-duplicate inbound messages by content hash.
	MessageHashes map[string]int `json:"message_hashes,omitempty"`

	NoveltyLog []NoveltyRecord `json:"novelty_log,omitempty"`
	Metadata   []TurnMetadata  `json:"response_metadata,omitempty"`

	Ended       bool   `json:"conversation_ended"`
	EndedReason string `json:"ended_reason,omitempty"`
	Reported    bool   `json:"reported"`
}

// NewSession creates a fresh session in the INIT state.
func NewSession(id string) *Session {
	return &Session{
		ID:            id,
		CreatedAt:     time.Now().UTC(),
		History:       []Message{},
		State:         StateInit,
		ScamScore:     0.5,
		ScamType:      NarrativeUnknown,
		Intel:         NewIntel(),
		AskedFields:   map[string]int{},
		MessageHashes: map[string]int{},
	}
}

// Backfill normalizes a session deserialized from storage.
func (s *Session) Backfill() {
	if s.Intel == nil {
		s.Intel = NewIntel()
	} else {
		s.Intel.Backfill()
	}
	if s.AskedFields == nil {
		s.AskedFields = map[string]int{}
	}
	if s.MessageHashes == nil {
		s.MessageHashes = map[string]int{}
	}
	if s.History == nil {
		s.History = []Message{}
	}
	if s.State == "" {
		s.State = StateInit
	}
	if s.ScamType == "" {
		s.ScamType = NarrativeUnknown
	}
}

// Turn is the number of completed counterpart turns.
func (s *Session) Turn() int {
	return s.Messages / 2
}

// CounterpartMessages returns the counterpart side of the history, most
// recent last.
func (s *Session) CounterpartMessages() []Message {
	out := make([]Message, 0, len(s.History)/2+1)
	for _, m := range s.History {
		if m.Sender == SenderCounterpart {
			out = append(out, m)
		}
	}
	return out
}

// EngagementDuration is the wall-clock span of the conversation so far.
func (s *Session) EngagementDuration() time.Duration {
	if len(s.History) < 2 {
		return 0
	}
	first := s.History[0].Timestamp
	last := s.History[len(s.History)-1].Timestamp
	if last.Before(first) {
		return 0
	}
	return last.Sub(first)
}
