package dialogue

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"baitlab/internal/domain/models"
)

func TestBehaviorsApply(t *testing.T) {
	b := NewBehaviors(rand.New(rand.NewSource(1)))

	t.Run("base reply always survives decoration", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			decorated, meta := b.Apply("what is the helpline for that?", models.StateEscalate, i)
			assert.Contains(t, decorated, "helpline")
			assert.Equal(t, i, meta.Turn)
			assert.Equal(t, models.StateEscalate, meta.State)
		}
	})

	t.Run("delay stays within the simulated typing window", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			_, meta := b.Apply("okay", models.StateInit, i)
			if meta.DelaySeconds > 0 {
				assert.GreaterOrEqual(t, meta.DelaySeconds, 2)
				assert.LessOrEqual(t, meta.DelaySeconds, 8)
			}
		}
	})

	t.Run("typos only land on present words", func(t *testing.T) {
		typos := []string{"acount", "payement", "thi s", "realy"}
		for i := 0; i < 300; i++ {
			decorated, meta := b.Apply("which account should the payment go to?", models.StateProbePayment, i)
			if meta.HasTypo {
				found := false
				for _, typo := range typos {
					if strings.Contains(strings.ToLower(decorated), typo) {
						found = true
						break
					}
				}
				assert.True(t, found, "typo flagged but no misspelling present: %q", decorated)
			}
		}
	})
}

func TestDefend(t *testing.T) {
	b := NewBehaviors(rand.New(rand.NewSource(2)))

	cases := []struct {
		name       string
		turnCount  int
		strategies []string
	}{
		{"early turns act confused", 2, []string{"confusion", "clarifying"}},
		{"mid turns joke and redirect", 7, []string{"humor", "redirect", "clarifying"}},
		{"late turns blame the phone", 12, []string{"technical", "redirect", "confusion"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				reply, strategy := b.Defend(tc.turnCount)
				assert.Contains(t, tc.strategies, strategy)
				assert.Contains(t, defensePools[strategy], reply)
			}
		})
	}
}

func TestDetectAccusation(t *testing.T) {
	cases := []struct {
		text    string
		accused bool
		kind    AccusationType
	}{
		{"are you a bot?", true, AccusationDirectBot},
		{"you sound like a bot honestly", true, AccusationDirectBot},
		{"is this a real person I am talking to?", true, AccusationRealQuestion},
		{"these look like automated replies", true, AccusationAutomated},
		{"stop sending the same copy paste answers", true, AccusationCopyPaste},
		{"I think you are chatgpt", true, AccusationAI},
		{"hello sir, please cooperate", false, ""},
		{"send the payment before tonight", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			accused, kind := DetectAccusation(tc.text)
			assert.Equal(t, tc.accused, accused)
			assert.Equal(t, tc.kind, kind)
		})
	}
}
