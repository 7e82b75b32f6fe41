package dialogue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"baitlab/internal/domain/models"
)

func TestHashMessage(t *testing.T) {
	h := HashMessage("send the money")
	assert.Len(t, h, 8)
	assert.Equal(t, h, HashMessage("send the money"))
	assert.NotEqual(t, h, HashMessage("send the money!"))
}

func TestTacticCategories(t *testing.T) {
	cats := tacticCategories("click the link and pay immediately")
	assert.Contains(t, cats, "payment_demand")
	assert.Contains(t, cats, "link_push")
	assert.Contains(t, cats, "urgency_threat")

	assert.Contains(t, tacticCategories("share your OTP with me"), "credential_request")
	assert.Contains(t, tacticCategories("I am a bank officer"), "authority_pressure")
	assert.Empty(t, tacticCategories("hello, good morning"))
}

func TestDetectPersistence(t *testing.T) {
	t.Run("exact repeat via hash table", func(t *testing.T) {
		s := models.NewSession("repeat")
		text := "transfer the fee to continue"
		s.MessageHashes[HashMessage(text)] = 2

		p := DetectPersistence(s, text)
		assert.True(t, p.ExactRepeat)
		assert.Equal(t, 2, p.RepeatCount)
		assert.True(t, p.Detected())
	})

	t.Run("first occurrence is not a repeat", func(t *testing.T) {
		s := models.NewSession("first")
		text := "transfer the fee to continue"
		s.MessageHashes[HashMessage(text)] = 1

		p := DetectPersistence(s, text)
		assert.False(t, p.ExactRepeat)
	})

	t.Run("semantic repeat across recent messages", func(t *testing.T) {
		s := models.NewSession("semantic")
		s.History = append(s.History,
			models.Message{Sender: models.SenderCounterpart, Text: "you must pay the fee first"},
			models.Message{Sender: models.SenderAgent, Text: "which fee?"},
		)

		p := DetectPersistence(s, "transfer the amount to this account")
		assert.True(t, p.SemanticRepeat)
		assert.Equal(t, "payment_demand", p.Category)
	})

	t.Run("varied pressure is not persistence", func(t *testing.T) {
		s := models.NewSession("varied")
		s.History = append(s.History,
			models.Message{Sender: models.SenderCounterpart, Text: "hello, I am calling about your electricity bill"},
			models.Message{Sender: models.SenderAgent, Text: "oh no, which bill?"},
		)

		p := DetectPersistence(s, "the meter reading was wrong last month")
		assert.False(t, p.Detected())
	})
}

func TestAckRepetition(t *testing.T) {
	b := NewBehaviors(rand.New(rand.NewSource(7)))

	assert.NotEmpty(t, b.ackRepetition(Persistence{Category: "payment_demand"}))
	assert.NotEmpty(t, b.ackRepetition(Persistence{Category: "link_push"}))
	// Unknown categories fall back to the generic pool.
	assert.NotEmpty(t, b.ackRepetition(Persistence{Category: "something_else"}))
}
