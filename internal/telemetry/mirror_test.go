package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterPairs(t *testing.T) {
	m := New()
	m.IncRequests()
	m.IncRequests()
	m.IncScamsDetected()
	m.AddIntelItems(5)

	pairs := counterPairs(Snapshot{}, m.Snapshot())
	assert.Len(t, pairs, 11)
	assert.Equal(t, [2]int64{0, 2}, pairs["requests"])
	assert.Equal(t, [2]int64{0, 1}, pairs["scams_detected"])
	assert.Equal(t, [2]int64{0, 5}, pairs["intel_items"])
	assert.Equal(t, [2]int64{0, 0}, pairs["errors"])

	// A second window only carries the delta.
	prev := m.Snapshot()
	m.IncRequests()
	pairs = counterPairs(prev, m.Snapshot())
	assert.Equal(t, [2]int64{2, 3}, pairs["requests"])
	assert.Equal(t, [2]int64{1, 1}, pairs["scams_detected"])
}
