package models

// IntentLabel is the closed vocabulary of message intents.
type IntentLabel string

const (
	IntentCredentialHarvesting  IntentLabel = "credential_harvesting"
	IntentPhishingLink          IntentLabel = "phishing_link"
	IntentFinancialFraud        IntentLabel = "financial_fraud"
	IntentImpersonationScam     IntentLabel = "impersonation_scam"
	IntentTechSupportScam       IntentLabel = "tech_support_scam"
	IntentPaymentRedirection    IntentLabel = "payment_redirection"
	IntentEmotionalManipulation IntentLabel = "emotional_manipulation"
	IntentAdvanceFeeFraud       IntentLabel = "advance_fee_fraud"
	IntentRomanceScam           IntentLabel = "romance_scam"
	IntentBenign                IntentLabel = "benign"

	// IntentUnknown marks analyses whose label fell outside the closed
	// vocabulary. It is never a valid model output.
	IntentUnknown IntentLabel = "unknown"
)

// IntentLabels lists every valid intent label.
var IntentLabels = []IntentLabel{
	IntentCredentialHarvesting,
	IntentPhishingLink,
	IntentFinancialFraud,
	IntentImpersonationScam,
	IntentTechSupportScam,
	IntentPaymentRedirection,
	IntentEmotionalManipulation,
	IntentAdvanceFeeFraud,
	IntentRomanceScam,
	IntentBenign,
}

// Valid reports membership in the closed intent vocabulary.
func (l IntentLabel) Valid() bool {
	for _, v := range IntentLabels {
		if l == v {
			return true
		}
	}
	return false
}

// Tactic is a social-engineering tactic name.
type Tactic string

const (
	TacticFear         Tactic = "fear"
	TacticUrgency      Tactic = "urgency"
	TacticAuthority    Tactic = "authority"
	TacticScarcity     Tactic = "scarcity"
	TacticSocialProof  Tactic = "social_proof"
	TacticReciprocity  Tactic = "reciprocity"
	TacticGreed        Tactic = "greed"
	TacticSympathy     Tactic = "sympathy"
	TacticGuilt        Tactic = "guilt"
	TacticIntimidation Tactic = "intimidation"
)

// Tactics lists every valid social-engineering tactic.
var Tactics = []Tactic{
	TacticFear, TacticUrgency, TacticAuthority, TacticScarcity,
	TacticSocialProof, TacticReciprocity, TacticGreed,
	TacticSympathy, TacticGuilt, TacticIntimidation,
}

// Valid reports membership in the closed tactic vocabulary.
func (t Tactic) Valid() bool {
	for _, v := range Tactics {
		if t == v {
			return true
		}
	}
	return false
}

// Severity grades social-engineering pressure.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports membership in the closed severity vocabulary.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Score maps a severity onto [0,1] for composite blending.
func (s Severity) Score() float64 {
	switch s {
	case SeverityLow:
		return 0.2
	case SeverityMedium:
		return 0.4
	case SeverityHigh:
		return 0.7
	case SeverityCritical:
		return 0.9
	}
	return 0.0
}

// NarrativeCategory names which scam playbook is being run.
type NarrativeCategory string

const (
	NarrativeBankImpersonation       NarrativeCategory = "bank_impersonation"
	NarrativeGovernmentImpersonation NarrativeCategory = "government_impersonation"
	NarrativeTechSupport             NarrativeCategory = "tech_support"
	NarrativeLotteryPrize            NarrativeCategory = "lottery_prize"
	NarrativeInvestmentFraud         NarrativeCategory = "investment_fraud"
	NarrativeRomanceScam             NarrativeCategory = "romance_scam"
	NarrativeJobOfferScam            NarrativeCategory = "job_offer_scam"
	NarrativeDeliveryScam            NarrativeCategory = "delivery_scam"
	NarrativeTaxRefund               NarrativeCategory = "tax_refund"
	NarrativeAccountVerification     NarrativeCategory = "account_verification"
	NarrativeKYCUpdate               NarrativeCategory = "kyc_update"
	NarrativeLoanApproval            NarrativeCategory = "loan_approval"
	NarrativeCustomClearance         NarrativeCategory = "custom_clearance"
	NarrativeInsuranceScam           NarrativeCategory = "insurance_scam"
	NarrativeUnknown                 NarrativeCategory = "unknown"
)

// NarrativeCategories lists every valid narrative category.
var NarrativeCategories = []NarrativeCategory{
	NarrativeBankImpersonation,
	NarrativeGovernmentImpersonation,
	NarrativeTechSupport,
	NarrativeLotteryPrize,
	NarrativeInvestmentFraud,
	NarrativeRomanceScam,
	NarrativeJobOfferScam,
	NarrativeDeliveryScam,
	NarrativeTaxRefund,
	NarrativeAccountVerification,
	NarrativeKYCUpdate,
	NarrativeLoanApproval,
	NarrativeCustomClearance,
	NarrativeInsuranceScam,
	NarrativeUnknown,
}

// Valid reports membership in the closed narrative vocabulary.
func (c NarrativeCategory) Valid() bool {
	for _, v := range NarrativeCategories {
		if c == v {
			return true
		}
	}
	return false
}

// NarrativeStage places a conversation within the scam playbook.
type NarrativeStage string

const (
	StageOpening       NarrativeStage = "opening"
	StageBuildingTrust NarrativeStage = "building_trust"
	StageExploitation  NarrativeStage = "exploitation"
	StageClosing       NarrativeStage = "closing"
)

// Valid reports membership in the closed stage vocabulary.
func (s NarrativeStage) Valid() bool {
	switch s {
	case StageOpening, StageBuildingTrust, StageExploitation, StageClosing:
		return true
	}
	return false
}

// AnalysisSource tags whether an analysis came from the LLM or the
// deterministic fallback.
type AnalysisSource string

const (
	SourceLLM       AnalysisSource = "llm"
	SourceHeuristic AnalysisSource = "heuristic"
)

// IntentResult is the intent-classification section of an analysis.
type IntentResult struct {
	Label      IntentLabel `json:"label"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning"`
}

// SocialEngineeringResult lists the manipulation tactics in use.
type SocialEngineeringResult struct {
	Tactics  []Tactic `json:"tactics"`
	Severity Severity `json:"severity"`
	Details  string   `json:"details"`
}

// NarrativeResult classifies the scam playbook and its stage.
type NarrativeResult struct {
	Category    NarrativeCategory `json:"category"`
	Stage       NarrativeStage    `json:"stage"`
	Description string            `json:"description"`
}

// MessageAnalysis is the full structured output of the analysis
// collaborator, identical whether produced by the LLM or the heuristic.
type MessageAnalysis struct {
	Intent            IntentResult            `json:"intent"`
	SocialEngineering SocialEngineeringResult `json:"social_engineering"`
	ScamNarrative     NarrativeResult         `json:"scam_narrative"`
	CompositeScore    float64                 `json:"composite_score"`
	Source            AnalysisSource          `json:"source"`
	Provider          string                  `json:"provider,omitempty"`
	Model             string                  `json:"model,omitempty"`
	CacheHit          bool                    `json:"-"`
}
