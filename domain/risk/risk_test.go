package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBoundariesBelongToHigherTier(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, TierHigh, th.Classify(0.75))
	assert.Equal(t, TierHigh, th.Classify(0.9))
	assert.Equal(t, TierMedium, th.Classify(0.5))
	assert.Equal(t, TierMedium, th.Classify(0.74))
	assert.Equal(t, TierLow, th.Classify(0.49))
	assert.Equal(t, TierLow, th.Classify(0.0))
}

func TestCounts(t *testing.T) {
	th := DefaultThresholds()
	counts := th.Counts([]float64{0.8, 0.8, 0.6, 0.1})

	assert.Equal(t, 2, counts[TierHigh])
	assert.Equal(t, 1, counts[TierMedium])
	assert.Equal(t, 1, counts[TierLow])
}

func TestCountsAllHigh(t *testing.T) {
	th := DefaultThresholds()
	scores := []float64{0.8, 0.8, 0.8, 0.8}
	counts := th.Counts(scores)

	assert.Equal(t, len(scores), counts[TierHigh])
	assert.Equal(t, 0, counts[TierMedium])
	assert.Equal(t, 0, counts[TierLow])
}
