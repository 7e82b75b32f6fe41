package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/internal/domain/services/detection"
	"baitlab/internal/domain/services/dialogue"
	"baitlab/internal/domain/services/intel"
	"baitlab/internal/domain/services/textnorm"
	"baitlab/internal/telemetry"
	"baitlab/pkg/logger"
)

// memStore keeps sessions in a map so turn handling can be exercised
// without Redis.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*models.Session{}}
}

func (s *memStore) Load(_ context.Context, id string) (*models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, false, nil
	}
	return models.NewSession(id), true, nil
}

func (s *memStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *memStore) Lock(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (s *memStore) Unlock(context.Context, string) error                      { return nil }

type countingArchiver struct {
	calls int
}

func (a *countingArchiver) Archive(context.Context, *models.Session, bool, int, string) error {
	a.calls++
	return nil
}

func newTestEngagement() (*Engagement, *memStore) {
	log := logger.NewDefault()
	client := ai.NewClient(config.LLMConfig{}, log)
	analyzer := ai.NewAnalyzer(config.LLMConfig{}, client, nil, log)
	store := newMemStore()
	machine := dialogue.NewMachine(config.DialogueConfig{})
	behaviors := dialogue.NewBehaviors(rand.New(rand.NewSource(7)))
	responder := dialogue.NewResponder(analyzer, behaviors, machine, log)

	e := NewEngagement(
		store,
		textnorm.New(nil, log),
		detection.New(config.DetectionConfig{}, analyzer, log),
		intel.NewExtractor(client, log),
		machine,
		responder,
		nil,
		nil,
		nil,
		telemetry.New(),
		log,
	)
	return e, store
}

func turnReq(sessionID, text string) *models.TurnRequest {
	return &models.TurnRequest{
		SessionID: sessionID,
		Message:   models.TurnMessage{Text: text},
	}
}

func TestHandleTurn_BankFraudEscalatesAndExtracts(t *testing.T) {
	e, store := newTestEngagement()
	ctx := context.Background()

	resp, err := e.HandleTurn(ctx, turnReq("fraud-1",
		"This is Officer Sharma from SBI, your account will be blocked, share your OTP immediately"))
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.True(t, resp.ScamDetected)
	assert.NotEmpty(t, resp.Reply)
	assert.NotEmpty(t, resp.RedFlags)
	assert.False(t, resp.ConversationEnded)
	assert.Equal(t, 2, resp.TotalMessagesExchanged)

	resp, err = e.HandleTurn(ctx, turnReq("fraud-1",
		"Pay Rs.5000 to fraud@paytm or call 9876543210 right now"))
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)
	assert.Contains(t, resp.ExtractedIntelligence.UPIIDs, "fraud@paytm")
	assert.Contains(t, resp.ExtractedIntelligence.PhoneNumbers, "9876543210")
	assert.Equal(t, 4, resp.TotalMessagesExchanged)
	assert.False(t, resp.ConversationEnded)

	sess := store.sessions["fraud-1"]
	require.NotNil(t, sess)
	assert.True(t, sess.ScamDetected)
	assert.NotEqual(t, models.StateInit, sess.State)
}

func TestHandleTurn_BenignStaysBelowThreshold(t *testing.T) {
	e, store := newTestEngagement()

	resp, err := e.HandleTurn(context.Background(),
		turnReq("benign-1", "hello, are we still meeting for lunch tomorrow?"))
	require.NoError(t, err)

	assert.Equal(t, "ignored", resp.Status)
	assert.Equal(t, "Okay", resp.Reply)
	assert.False(t, resp.ScamDetected)
	assert.False(t, resp.ConversationEnded)
	assert.Empty(t, resp.ExtractedIntelligence.UPIIDs)

	sess := store.sessions["benign-1"]
	require.NotNil(t, sess)
	assert.False(t, sess.ScamDetected)
	assert.Equal(t, 2, sess.Messages)
}

func TestHandleTurn_TerminatesExactlyOnce(t *testing.T) {
	e, store := newTestEngagement()
	archiver := &countingArchiver{}
	e.archiver = archiver
	ctx := context.Background()

	// A session at the message ceiling closes on the next turn no matter
	// what else is happening.
	sess := models.NewSession("closing")
	sess.ScamDetected = true
	sess.Messages = 50
	store.sessions["closing"] = sess

	resp, err := e.HandleTurn(ctx, turnReq("closing", "send the otp now or face arrest"))
	require.NoError(t, err)
	assert.True(t, resp.ConversationEnded)
	assert.Equal(t, 1, archiver.calls)
	assert.Equal(t, "message_ceiling_reached", sess.EndedReason)

	// Turns after termination get a goodbye and fire nothing again.
	resp, err = e.HandleTurn(ctx, turnReq("closing", "hello? are you there? send it now"))
	require.NoError(t, err)
	assert.True(t, resp.ConversationEnded)
	assert.Contains(t, resp.Reply, "Goodbye")
	assert.Equal(t, 1, archiver.calls)
}

func TestHandleTurn_SeedsCallerHistory(t *testing.T) {
	e, store := newTestEngagement()
	ctx := context.Background()

	seeded, err := e.HandleTurn(ctx, &models.TurnRequest{
		SessionID: "seeded",
		Message:   models.TurnMessage{Text: "please verify your account details"},
		ConversationHistory: []models.TurnMessage{
			{Sender: "scammer", Text: "there is a problem with your account"},
			{Sender: "user", Text: "Which account?"},
			{Sender: "scammer", Text: "share your details so I can fix it"},
		},
	})
	require.NoError(t, err)

	sess := store.sessions["seeded"]
	require.NotNil(t, sess)
	counterpart := sess.CounterpartMessages()
	require.NotEmpty(t, counterpart)
	assert.Equal(t, "there is a problem with your account", counterpart[0].Text)
	// Three seeded messages plus the live exchange.
	assert.Equal(t, 5, sess.Messages)

	// The seeded counterpart messages feed the history-escalation signal,
	// so the same text scores higher than on a truly fresh session.
	fresh, err := e.HandleTurn(ctx, turnReq("fresh", "please verify your account details"))
	require.NoError(t, err)
	assert.Greater(t, seeded.ConfidenceLevel, fresh.ConfidenceLevel)

	// Stored sessions never take history from the payload.
	again, err := e.HandleTurn(ctx, &models.TurnRequest{
		SessionID: "seeded",
		Message:   models.TurnMessage{Text: "are you doing the needful?"},
		ConversationHistory: []models.TurnMessage{
			{Sender: "scammer", Text: "this must not be appended"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, again.TotalMessagesExchanged)
	for _, m := range store.sessions["seeded"].History {
		assert.NotEqual(t, "this must not be appended", m.Text)
	}
}

func TestHandleTurn_EmptyMessageRejected(t *testing.T) {
	e, _ := newTestEngagement()

	_, err := e.HandleTurn(context.Background(), turnReq("any", "   "))
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestCountArtifacts(t *testing.T) {
	in := models.NewIntel()
	assert.Zero(t, countArtifacts(in))

	in.UPIIDs = []string{"a@paytm", "b@ybl"}
	in.PhoneNumbers = []string{"9876543210"}
	in.AdditionalIntel["aliases"] = []string{"Officer Verma"}
	assert.Equal(t, 4, countArtifacts(in))
}

func TestAgentNotes(t *testing.T) {
	t.Run("summarizes the haul and the conversion tempo", func(t *testing.T) {
		s := models.NewSession("notes")
		s.Intel.UPIIDs = []string{"a@paytm", "b@ybl"}
		s.Messages = 6

		notes := agentNotes(s, nil)
		assert.Contains(t, notes, "Requested payment to 2 UPI ID(s)")
		assert.Contains(t, notes, "Counterpart attempted quick conversion")
		assert.True(t, len(notes) > 0 && notes[len(notes)-1] == '.')
	})

	t.Run("long conversations read as trust building", func(t *testing.T) {
		s := models.NewSession("long")
		s.Messages = 20

		assert.Contains(t, agentNotes(s, nil), "Extended conversation to build trust")
	})

	t.Run("tactics and scam type from the analysis", func(t *testing.T) {
		s := models.NewSession("tactics")
		s.ScamType = models.NarrativeBankImpersonation
		result := &models.DetectionResult{
			Analysis: &models.MessageAnalysis{
				SocialEngineering: models.SocialEngineeringResult{
					Tactics: []models.Tactic{models.TacticFear, models.TacticUrgency},
				},
			},
		}

		notes := agentNotes(s, result)
		assert.Contains(t, notes, "Counterpart applied fear, urgency pressure")
		assert.Contains(t, notes, "bank impersonation playbook")
	})

	t.Run("fallback note when nothing was observed", func(t *testing.T) {
		s := models.NewSession("empty")
		assert.Equal(t,
			"Suspicious messaging patterns detected with potential scam indicators.",
			agentNotes(s, nil))
	})
}

func TestBuildResponse(t *testing.T) {
	e := &Engagement{}
	s := models.NewSession("resp")

	resp := e.buildResponse(s, nil, "ignored", "Okay")

	require.NotNil(t, resp)
	assert.Equal(t, "resp", resp.SessionID)
	assert.Equal(t, "ignored", resp.Status)
	assert.Equal(t, "Okay", resp.Reply)
	assert.NotNil(t, resp.RedFlags)
	assert.Empty(t, resp.RedFlags)
	assert.InDelta(t, 0.5, resp.ConfidenceLevel, 0.001)
	assert.False(t, resp.ConversationEnded)
	assert.NotNil(t, resp.ExtractedIntelligence)
}

func TestLockSessionSerializesTurns(t *testing.T) {
	e := &Engagement{}

	const workers = 32
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := e.lockSession("same-session")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
	assert.Empty(t, e.locks)
}
