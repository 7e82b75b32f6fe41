package models

import "time"

// ConversationState is the dialogue control state. CLOSE is terminal; all
// other states are transient and re-enterable.
type ConversationState string

const (
	StateInit           ConversationState = "INIT"
	StateProbeReason    ConversationState = "PROBE_REASON"
	StateProbePayment   ConversationState = "PROBE_PAYMENT"
	StateProbeLink      ConversationState = "PROBE_LINK"
	StateStall          ConversationState = "STALL"
	StateConfirmDetails ConversationState = "CONFIRM_DETAILS"
	StateEscalate       ConversationState = "ESCALATE_EXTRACTION"
	StateClose          ConversationState = "CLOSE"
)

// AllStates lists every conversation state.
var AllStates = []ConversationState{
	StateInit,
	StateProbeReason,
	StateProbePayment,
	StateProbeLink,
	StateStall,
	StateConfirmDetails,
	StateEscalate,
	StateClose,
}

// Valid reports whether the state is a member of the closed enumeration.
func (s ConversationState) Valid() bool {
	switch s {
	case StateInit, StateProbeReason, StateProbePayment, StateProbeLink,
		StateStall, StateConfirmDetails, StateEscalate, StateClose:
		return true
	}
	return false
}

// Terminal reports whether the state is absorbing.
func (s ConversationState) Terminal() bool {
	return s == StateClose
}

// TurnRequest is the inbound conversational turn payload.
type TurnRequest struct {
	SessionID           string        `json:"sessionId"`
	Message             TurnMessage   `json:"message"`
	ConversationHistory []TurnMessage `json:"conversationHistory,omitempty"`
}

// TurnMessage is one message as presented by the caller.
type TurnMessage struct {
	Sender    string     `json:"sender,omitempty"`
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// TurnResponse is the outbound payload for one conversational turn.
// TotalMessagesExchanged and EngagementDurationSeconds are top-level
// fields, never nested.
type TurnResponse struct {
	SessionID                 string   `json:"sessionId"`
	Status                    string   `json:"status"`
	Reply                     string   `json:"reply"`
	ScamDetected              bool     `json:"scamDetected"`
	ExtractedIntelligence     *Intel   `json:"extractedIntelligence"`
	TotalMessagesExchanged    int      `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int      `json:"engagementDurationSeconds"`
	AgentNotes                string   `json:"agentNotes"`
	ScamType                  string   `json:"scamType"`
	ConfidenceLevel           float64  `json:"confidenceLevel"`
	RedFlags                  []string `json:"redFlags"`
	ConversationEnded         bool     `json:"conversationEnded"`
}

// FinalReport is the termination callback payload. AdditionalIntel is
// deliberately excluded from the reported intelligence subset.
type FinalReport struct {
	SessionID                 string              `json:"sessionId"`
	Status                    string              `json:"status"`
	ScamDetected              bool                `json:"scamDetected"`
	ExtractedIntelligence     map[string][]string `json:"extractedIntelligence"`
	TotalMessagesExchanged    int                 `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int                 `json:"engagementDurationSeconds"`
	AgentNotes                string              `json:"agentNotes"`
}
