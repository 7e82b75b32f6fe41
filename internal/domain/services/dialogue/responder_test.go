package dialogue

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/pkg/logger"
)

func newTestResponder() *Responder {
	log := logger.NewDefault()
	client := ai.NewClient(config.LLMConfig{}, log)
	analyzer := ai.NewAnalyzer(config.LLMConfig{}, client, nil, log)
	behaviors := NewBehaviors(rand.New(rand.NewSource(3)))
	machine := NewMachine(config.DialogueConfig{})
	return NewResponder(analyzer, behaviors, machine, log)
}

func TestInterpolate(t *testing.T) {
	claims := personaClaims{}

	t.Run("entity from the counterpart's message", func(t *testing.T) {
		out := interpolate("What is the toll-free number for {entity}?",
			models.NewIntel(), "I am calling from SBI about your account", claims)
		assert.Equal(t, "What is the toll-free number for State Bank?", out)
	})

	t.Run("amount and recipient from context", func(t *testing.T) {
		in := models.NewIntel()
		in.UPIIDs = []string{"fraud@paytm"}

		out := interpolate("So I send {amount} to {recipient}?",
			in, "pay Rs. 5000 right now", claims)
		assert.Equal(t, "So I send Rs.5000 to fraud@paytm?", out)
	})

	t.Run("caller name when one was given", func(t *testing.T) {
		out := interpolate("Thank you {name}.",
			models.NewIntel(), "this is Officer Sharma from the cyber cell", claims)
		assert.Equal(t, "Thank you Sharma.", out)
	})

	t.Run("person follows earlier persona claims", func(t *testing.T) {
		history := []models.Message{
			{Sender: models.SenderAgent, Text: "My daughter usually helps me with the phone"},
		}
		withClaims := extractPersonaClaims(history)

		out := interpolate("{person} wants to check first.",
			models.NewIntel(), "hurry up", withClaims)
		assert.Equal(t, "my daughter wants to check first.", out)
	})

	t.Run("safe defaults when nothing is known", func(t *testing.T) {
		out := interpolate("I will send {amount} to {recipient}, {name}.",
			models.NewIntel(), "just do it", claims)
		assert.Equal(t, "I will send that amount to that account, your name.", out)
	})
}

func TestInferAskedField(t *testing.T) {
	cases := map[string]string{
		"Okay, what is the UPI ID I should send the money to?":                     models.FieldUPIIDs,
		"What is the full bank account number and the IFSC code?":                  models.FieldBankAccounts,
		"Can you email me the link instead? What is your official email address?":  models.FieldEmails,
		"What phone number can I call back on to verify this?":                     models.FieldPhoneNumbers,
		"What is your full name please?":                                           models.FieldNames,
		"What is the policy number or order number related to my case?":            models.FieldPolicyNumbers,
		"Okay okay, let's just solve this problem first":                           "",
	}
	for reply, want := range cases {
		assert.Equal(t, want, InferAskedField(reply), "reply: %s", reply)
	}
}

func TestPickTemplate(t *testing.T) {
	responses := Config(models.StateProbePayment).Responses

	t.Run("targets a missing field", func(t *testing.T) {
		got := pickTemplate(responses, []string{models.FieldUPIIDs}, 0)
		assert.Contains(t, strings.ToLower(got), "upi")
	})

	t.Run("rotates through matches by turn", func(t *testing.T) {
		first := pickTemplate(responses, []string{models.FieldUPIIDs}, 0)
		second := pickTemplate(responses, []string{models.FieldUPIIDs}, 1)
		assert.NotEqual(t, first, second)
	})

	t.Run("falls back to turn-indexed template", func(t *testing.T) {
		assert.Equal(t, responses[1], pickTemplate(responses, nil, 1))
		assert.Equal(t, responses[len(responses)-1], pickTemplate(responses, nil, 99))
	})
}

func TestResponderExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("template reply advances the state", func(t *testing.T) {
		r := newTestResponder()
		s := models.NewSession("exec")
		s.Messages = 2

		reply, next, meta := r.Execute(ctx, s, "hello, I am calling from your bank about a problem")

		require.NotEmpty(t, reply)
		assert.Equal(t, models.StateProbeReason, next)
		assert.Equal(t, models.StateProbeReason, meta.State)
		// The template's question is tracked so it is not asked twice.
		assert.Len(t, s.AskedFields, 1)
	})

	t.Run("accusation triggers a defense instead of a probe", func(t *testing.T) {
		r := newTestResponder()
		s := models.NewSession("accused")
		s.Messages = 4

		reply, next, meta := r.Execute(ctx, s, "are you a bot?")

		require.NotEmpty(t, reply)
		assert.NotEmpty(t, meta.DefenseUsed)
		assert.Contains(t, defensePools[meta.DefenseUsed], reply)
		assert.Equal(t, models.StateProbeReason, next)
		assert.Empty(t, s.AskedFields)
	})

	t.Run("repeated demands get acknowledged", func(t *testing.T) {
		r := newTestResponder()
		s := models.NewSession("repeat")
		text := "send the processing fee to this account"
		s.MessageHashes[HashMessage(text)] = 2

		reply, _, _ := r.Execute(ctx, s, text)

		acked := strings.Contains(reply, "I noted it down") ||
			strings.Contains(reply, "you said the same thing before also")
		assert.True(t, acked, "no repetition acknowledgement in: %q", reply)
	})
}
