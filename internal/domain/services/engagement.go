package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/detection"
	"baitlab/internal/domain/services/dialogue"
	"baitlab/internal/domain/services/intel"
	"baitlab/internal/domain/services/textnorm"
	"baitlab/internal/reporting"
	"baitlab/internal/telemetry"
	"baitlab/pkg/logger"
)

// ErrEmptyMessage rejects turns with no usable text.
var ErrEmptyMessage = errors.New("message text is empty")

// ErrSessionBusy signals another turn for the same session is mid-flight
// on a different instance.
var ErrSessionBusy = errors.New("session is processing another turn")

// SessionStore is the persistence surface the orchestrator needs.
// cache.SessionStore is the production implementation.
type SessionStore interface {
	Load(ctx context.Context, id string) (*models.Session, bool, error)
	Save(ctx context.Context, session *models.Session) error
	Lock(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id string) error
}

// EventPublisher receives engagement lifecycle events. Nil publishers
// are tolerated; events are then dropped.
type EventPublisher interface {
	PublishScamDetected(ctx context.Context, session *models.Session, result *models.DetectionResult) error
	PublishIntelExtracted(ctx context.Context, session *models.Session, newCount int, breakdown map[string]int, totalArtifacts int) error
	PublishSessionClosed(ctx context.Context, session *models.Session, reason string) error
}

// SessionArchiver stores terminated sessions durably. Optional.
type SessionArchiver interface {
	Archive(ctx context.Context, session *models.Session, scamDetected bool, artifactCount int, agentNotes string) error
}

// Engagement runs the full per-turn pipeline: canonicalize, detect,
// extract, advance the dialogue, persist, and on close fire the
// termination side effects exactly once.
type Engagement struct {
	sessions  SessionStore
	canon     *textnorm.Canonicalizer
	detector  *detection.Detector
	extractor *intel.Extractor
	machine   *dialogue.Machine
	responder *dialogue.Responder
	reporter  *reporting.Reporter
	publisher EventPublisher
	archiver  SessionArchiver
	metrics   *telemetry.Metrics
	logger    *logger.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngagement wires the orchestrator. publisher and archiver may be
// nil when NATS or Postgres are disabled.
func NewEngagement(
	sessions SessionStore,
	canon *textnorm.Canonicalizer,
	detector *detection.Detector,
	extractor *intel.Extractor,
	machine *dialogue.Machine,
	responder *dialogue.Responder,
	reporter *reporting.Reporter,
	publisher EventPublisher,
	archiver SessionArchiver,
	metrics *telemetry.Metrics,
	log *logger.Logger,
) *Engagement {
	return &Engagement{
		sessions:  sessions,
		canon:     canon,
		detector:  detector,
		extractor: extractor,
		machine:   machine,
		responder: responder,
		reporter:  reporter,
		publisher: publisher,
		archiver:  archiver,
		metrics:   metrics,
		logger:    log.WithComponent("engagement"),
	}
}

// lockSession serializes turns for one session within this process.
// Cross-session turns run fully parallel.
func (e *Engagement) lockSession(id string) func() {
	e.mu.Lock()
	if e.locks == nil {
		e.locks = make(map[string]*sessionLock)
	}
	l, ok := e.locks[id]
	if !ok {
		l = &sessionLock{}
		e.locks[id] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, id)
		}
		e.mu.Unlock()
	}
}

// HandleTurn processes one inbound conversational turn.
func (e *Engagement) HandleTurn(ctx context.Context, req *models.TurnRequest) (*models.TurnResponse, error) {
	text := strings.TrimSpace(req.Message.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	// Best-effort cross-instance lock; a Redis outage must not block
	// the turn.
	if acquired, err := e.sessions.Lock(ctx, sessionID, 30*time.Second); err == nil {
		if !acquired {
			return nil, ErrSessionBusy
		}
		defer e.sessions.Unlock(ctx, sessionID)
	}

	e.metrics.IncRequests()

	session, created, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if created {
		e.metrics.IncSessionsOpened()
		// A first contact may arrive mid-conversation; the payload
		// history primes the session so detection sees the escalation
		// context. Stored sessions keep their own history untouched.
		seedHistory(session, req.ConversationHistory)
	}

	// A message after termination gets a canned goodbye and changes
	// nothing.
	if session.Ended {
		resp := e.buildResponse(session, nil, "success", "Okay, thank you. I have to go now. Goodbye.")
		return resp, nil
	}

	session.MessageHashes[dialogue.HashMessage(text)]++

	canonical := e.canon.Canonicalize(ctx, text)
	e.metrics.IncNormalizations()

	// Prior counterpart messages give the detector its history context.
	var history []string
	for _, m := range session.CounterpartMessages() {
		history = append(history, m.Text)
	}

	result := e.detector.Detect(ctx, text, canonical, history)
	e.recordDetection(ctx, session, result)

	if !result.Engage {
		e.appendExchange(session, text, "Okay")
		if err := e.sessions.Save(ctx, session); err != nil {
			e.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to save session")
		}
		return e.buildResponse(session, result, "ignored", "Okay"), nil
	}

	// Extraction runs on the raw text before the dialogue sees the turn.
	e.extractor.ExtractAndApply(ctx, session, text)
	if n := len(session.NoveltyLog); n > 0 {
		last := session.NoveltyLog[n-1]
		if last.NewCount > 0 {
			e.metrics.AddIntelItems(last.NewCount)
			if e.publisher != nil {
				if err := e.publisher.PublishIntelExtracted(ctx, session, last.NewCount, last.Breakdown, countArtifacts(session.Intel)); err != nil {
					e.logger.Warn().Err(err).Msg("failed to publish intel event")
				}
			}
		}
	}

	reply, next, meta := e.responder.Execute(ctx, session, text)

	if next != session.State {
		session.StateHistory = append(session.StateHistory, models.StateTransition{
			From: session.State,
			To:   next,
			Turn: session.Turn(),
		})
		session.State = next
		session.StateTurnCount = 1
	} else {
		session.StateTurnCount++
	}
	session.Metadata = append(session.Metadata, meta)

	e.appendExchange(session, text, reply)

	if next == models.StateClose && !session.Ended {
		e.terminate(ctx, session, result)
	}

	if err := e.sessions.Save(ctx, session); err != nil {
		e.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to save session")
	}

	e.logger.Info().
		Str("session_id", sessionID).
		Str("state", string(session.State)).
		Str("verdict", string(result.Verdict)).
		Float64("score", result.Composite).
		Int("messages", session.Messages).
		Msg("turn processed")

	return e.buildResponse(session, result, "success", reply), nil
}

// recordDetection folds the turn's score into session state and emits
// the first-detection event.
func (e *Engagement) recordDetection(ctx context.Context, session *models.Session, result *models.DetectionResult) {
	// The rolling confidence only ratchets upward.
	if result.Composite > session.ScamScore {
		session.ScamScore = result.Composite
	}
	if result.Analysis != nil {
		if cat := result.Analysis.ScamNarrative.Category; cat != models.NarrativeUnknown && cat != "" {
			session.ScamType = cat
		}
	}

	switch result.Verdict {
	case models.VerdictScam:
		e.metrics.IncScamsDetected()
		if !session.ScamDetected {
			session.ScamDetected = true
			if e.publisher != nil {
				if err := e.publisher.PublishScamDetected(ctx, session, result); err != nil {
					e.logger.Warn().Err(err).Msg("failed to publish detection event")
				}
			}
		}
	case models.VerdictSuspicious:
		e.metrics.IncSuspicious()
	default:
		e.metrics.IncClean()
	}
}

// seedHistory primes a freshly created session with caller-supplied
// prior messages. The counterpart side feeds the history-escalation
// signal; agent-side entries keep turn counting consistent.
func seedHistory(session *models.Session, history []models.TurnMessage) {
	for _, m := range history {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		sender := models.SenderCounterpart
		switch strings.ToLower(strings.TrimSpace(m.Sender)) {
		case "user", "agent", "bot", "honeypot":
			sender = models.SenderAgent
		}
		msg := models.Message{Sender: sender, Text: text}
		if m.Timestamp != nil {
			msg.Timestamp = *m.Timestamp
		}
		session.History = append(session.History, msg)
		session.Messages++
	}
}

func (e *Engagement) appendExchange(session *models.Session, inbound, reply string) {
	now := time.Now().UTC()
	session.History = append(session.History,
		models.Message{Sender: models.SenderCounterpart, Text: inbound, Timestamp: now},
		models.Message{Sender: models.SenderAgent, Text: reply, Timestamp: now},
	)
	session.Messages += 2
}

// terminate runs the close side effects exactly once: flag, reason,
// report, archive, event. None of them can reopen the session.
func (e *Engagement) terminate(ctx context.Context, session *models.Session, result *models.DetectionResult) {
	session.Ended = true
	session.EndedReason = e.machine.CloseReason(session)
	e.metrics.IncSessionsClosed()

	notes := agentNotes(session, result)

	if e.reporter != nil && e.reporter.Enabled() && !session.Reported {
		session.Reported = true
		report := reporting.BuildFinalReport(session, session.ScamDetected, notes)
		if err := e.reporter.Send(ctx, report); err != nil {
			e.logger.Error().Err(err).Str("session_id", session.ID).Msg("final report delivery failed")
		}
	}

	if e.archiver != nil {
		if err := e.archiver.Archive(ctx, session, session.ScamDetected, countArtifacts(session.Intel), notes); err != nil {
			e.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to archive engagement")
		}
	}

	if e.publisher != nil {
		if err := e.publisher.PublishSessionClosed(ctx, session, session.EndedReason); err != nil {
			e.logger.Warn().Err(err).Msg("failed to publish close event")
		}
	}

	e.logger.Info().
		Str("session_id", session.ID).
		Str("reason", session.EndedReason).
		Int("messages", session.Messages).
		Int("artifacts", countArtifacts(session.Intel)).
		Msg("session terminated")
}

func (e *Engagement) buildResponse(session *models.Session, result *models.DetectionResult, status, reply string) *models.TurnResponse {
	session.Intel.Backfill()

	redFlags := []string{}
	if result != nil {
		redFlags = result.RedFlags
	}

	return &models.TurnResponse{
		SessionID:                 session.ID,
		Status:                    status,
		Reply:                     reply,
		ScamDetected:              session.ScamDetected,
		ExtractedIntelligence:     session.Intel,
		TotalMessagesExchanged:    session.Messages,
		EngagementDurationSeconds: int(session.EngagementDuration().Seconds()),
		AgentNotes:                agentNotes(session, result),
		ScamType:                  string(session.ScamType),
		ConfidenceLevel:           session.ScamScore,
		RedFlags:                  redFlags,
		ConversationEnded:         session.Ended,
	}
}

func countArtifacts(in *models.Intel) int {
	total := 0
	for _, key := range models.IntelFieldKeys {
		total += len(in.Field(key))
	}
	for _, values := range in.AdditionalIntel {
		total += len(values)
	}
	return total
}

// agentNotes summarizes observed tactics and the collected haul in
// analyst-readable sentences.
func agentNotes(session *models.Session, result *models.DetectionResult) string {
	var notes []string
	in := session.Intel

	if result != nil && result.Analysis != nil {
		if tactics := result.Analysis.SocialEngineering.Tactics; len(tactics) > 0 {
			names := make([]string, len(tactics))
			for i, t := range tactics {
				names[i] = strings.ReplaceAll(string(t), "_", " ")
			}
			notes = append(notes, "Counterpart applied "+strings.Join(names, ", ")+" pressure")
		}
	}
	if session.ScamType != models.NarrativeUnknown && session.ScamType != "" {
		notes = append(notes, "Conversation matched the "+strings.ReplaceAll(string(session.ScamType), "_", " ")+" playbook")
	}

	if n := len(in.PhishingLinks); n > 0 {
		notes = append(notes, fmt.Sprintf("Shared %d phishing link(s)", n))
	}
	if n := len(in.UPIIDs); n > 0 {
		notes = append(notes, fmt.Sprintf("Requested payment to %d UPI ID(s)", n))
	}
	if n := len(in.PhoneNumbers); n > 0 {
		notes = append(notes, fmt.Sprintf("Provided %d phone number(s) for callback", n))
	}
	if n := len(in.BankAccounts); n > 0 {
		notes = append(notes, fmt.Sprintf("Mentioned %d account number(s)", n))
	}
	if n := len(in.Emails); n > 0 {
		notes = append(notes, fmt.Sprintf("Gave %d email address(es)", n))
	}

	if session.Messages > 0 {
		if session.Messages < 10 {
			notes = append(notes, "Counterpart attempted quick conversion")
		} else {
			notes = append(notes, "Extended conversation to build trust")
		}
	}

	if len(notes) == 0 {
		notes = append(notes, "Suspicious messaging patterns detected with potential scam indicators")
	}
	return strings.Join(notes, ". ") + "."
}
