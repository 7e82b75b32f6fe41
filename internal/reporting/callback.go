package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/pkg/logger"
)

// Reporter delivers the final engagement report to the configured
// collection endpoint. Delivery is attempted at most once per session;
// a failed POST is logged and dropped, never retried.
type Reporter struct {
	endpoint string
	client   *http.Client
	enabled  bool
	logger   *logger.Logger
}

// New builds a reporter from config. A missing endpoint disables it.
func New(cfg config.ReportingConfig, log *logger.Logger) *Reporter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reporter{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
		enabled:  cfg.Enabled && cfg.Endpoint != "",
		logger:   log.WithComponent("reporting"),
	}
}

// Enabled reports whether a callback endpoint is configured.
func (r *Reporter) Enabled() bool {
	return r.enabled
}

// Send posts the final report. Errors are returned for logging but the
// caller must not retry; the session is marked reported regardless.
func (r *Reporter) Send(ctx context.Context, report *models.FinalReport) error {
	if !r.enabled {
		return nil
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal final report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post final report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("report endpoint returned %d", resp.StatusCode)
	}

	r.logger.Info().
		Str("session_id", report.SessionID).
		Int("messages", report.TotalMessagesExchanged).
		Msg("Final report delivered")
	return nil
}

// BuildFinalReport assembles the callback payload from a terminated
// session. AdditionalIntel stays out of the reported subset.
func BuildFinalReport(session *models.Session, scamDetected bool, agentNotes string) *models.FinalReport {
	in := session.Intel
	intel := map[string][]string{
		models.FieldUPIIDs:        copyList(in.UPIIDs),
		models.FieldPhoneNumbers:  copyList(in.PhoneNumbers),
		models.FieldBankAccounts:  copyList(in.BankAccounts),
		models.FieldIFSCCodes:     copyList(in.IFSCCodes),
		models.FieldPhishingLinks: copyList(in.PhishingLinks),
		models.FieldEmails:        copyList(in.Emails),
		models.FieldCaseIDs:       copyList(in.CaseIDs),
		models.FieldPolicyNumbers: copyList(in.PolicyNumbers),
		models.FieldOrderNumbers:  copyList(in.OrderNumbers),
		models.FieldNames:         copyList(in.Names),
	}
	return &models.FinalReport{
		SessionID:                 session.ID,
		Status:                    "completed",
		ScamDetected:              scamDetected,
		ExtractedIntelligence:     intel,
		TotalMessagesExchanged:    session.Messages,
		EngagementDurationSeconds: int(session.EngagementDuration().Seconds()),
		AgentNotes:                agentNotes,
	}
}

func copyList(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
