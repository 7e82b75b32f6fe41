package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
)

func newTestMachine() *Machine {
	return NewMachine(config.DialogueConfig{})
}

func sessionInState(state models.ConversationState, messages int) *models.Session {
	s := models.NewSession("machine-test")
	s.State = state
	s.Messages = messages
	return s
}

func addCounterpart(s *models.Session, texts ...string) {
	for _, text := range texts {
		s.History = append(s.History,
			models.Message{Sender: models.SenderCounterpart, Text: text},
			models.Message{Sender: models.SenderAgent, Text: "let me see"},
		)
	}
}

func TestMachineTransitions(t *testing.T) {
	m := newTestMachine()

	t.Run("init always moves to probing", func(t *testing.T) {
		s := sessionInState(models.StateInit, 2)
		assert.Equal(t, models.StateProbeReason, m.NextState(s, "hello madam"))
	})

	t.Run("payment talk routes to the payment probe", func(t *testing.T) {
		s := sessionInState(models.StateProbeReason, 4)
		assert.Equal(t, models.StateProbePayment,
			m.NextState(s, "you must transfer the fine to our account"))
	})

	t.Run("link talk routes to the link probe", func(t *testing.T) {
		s := sessionInState(models.StateProbeReason, 4)
		assert.Equal(t, models.StateProbeLink,
			m.NextState(s, "click the verification link I shared"))
	})

	t.Run("link probe hands off to payment probe", func(t *testing.T) {
		s := sessionInState(models.StateProbeLink, 6)
		assert.Equal(t, models.StateProbePayment,
			m.NextState(s, "first send the money, then the site will unlock"))
	})

	t.Run("payment probe confirms once the handle is banked", func(t *testing.T) {
		s := sessionInState(models.StateProbePayment, 8)
		s.StateTurnCount = 2
		s.Intel.UPIIDs = []string{"fraud@paytm"}
		assert.Equal(t, models.StateConfirmDetails, m.NextState(s, "did it go through?"))
	})

	t.Run("stall escalates after its turn budget", func(t *testing.T) {
		s := sessionInState(models.StateStall, 10)
		s.StateTurnCount = 1
		assert.Equal(t, models.StateEscalate, m.NextState(s, "why the delay?"))
	})

	t.Run("close is terminal", func(t *testing.T) {
		s := sessionInState(models.StateClose, 20)
		assert.Equal(t, models.StateClose, m.NextState(s, "wait, come back"))
	})
}

func TestMachineCeiling(t *testing.T) {
	m := newTestMachine()

	s := sessionInState(models.StateProbePayment, 50)
	assert.Equal(t, models.StateClose, m.NextState(s, "hello?"))
	assert.Equal(t, "message_ceiling_reached", m.CloseReason(s))
}

func TestMachineSoftClose(t *testing.T) {
	m := newTestMachine()

	t.Run("never closes below minimum engagement", func(t *testing.T) {
		s := sessionInState(models.StateEscalate, 4)
		addCounterpart(s, "ok", "hm")

		assert.Equal(t, models.StateEscalate, m.NextState(s, "k"))
	})

	t.Run("counterpart disengagement closes", func(t *testing.T) {
		s := sessionInState(models.StateEscalate, 6)
		addCounterpart(s, "send me the payment details for the processing fee", "ok", "hm")

		assert.Equal(t, models.StateClose, m.NextState(s, "k"))
		assert.Equal(t, "counterpart_disengaged", m.CloseReason(s))
	})

	t.Run("engaged counterpart keeps the escalation going", func(t *testing.T) {
		s := sessionInState(models.StateEscalate, 6)
		addCounterpart(s,
			"sir you have to understand this is very serious, your account is at risk",
			"I already explained the whole process, why are you not cooperating with me")

		assert.Equal(t, models.StateEscalate, m.NextState(s, "please explain once more, I am noting everything down"))
	})
}
