package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Run("the numeric score wins over the severity text", func(t *testing.T) {
		assert.Equal(t, LevelCritical, Classify(9.8, "LOW"))
		assert.Equal(t, LevelHigh, Classify(7.0, ""))
		assert.Equal(t, LevelMedium, Classify(4.0, "critical"))
		assert.Equal(t, LevelLow, Classify(0.1, ""))
	})

	t.Run("falls back to the severity text when no score is present", func(t *testing.T) {
		assert.Equal(t, LevelCritical, Classify(0, "CRITICAL"))
		assert.Equal(t, LevelHigh, Classify(0, "High"))
		assert.Equal(t, LevelMedium, Classify(0, "moderate"))
		assert.Equal(t, LevelLow, Classify(0, " low "))
		assert.Equal(t, LevelUnknown, Classify(0, ""))
		assert.Equal(t, LevelNone, Classify(0, "informational"))
	})
}

func TestMax(t *testing.T) {
	assert.Equal(t, LevelCritical, Max(LevelCritical, LevelLow))
	assert.Equal(t, LevelCritical, Max(LevelLow, LevelCritical))
	assert.Equal(t, LevelNone, Max(LevelNone, LevelUnknown))
	// ties keep the first value
	assert.Equal(t, LevelHigh, Max(LevelHigh, LevelHigh))
}

func TestRank(t *testing.T) {
	assert.Less(t, Rank(LevelUnknown), Rank(LevelNone))
	assert.Less(t, Rank(LevelNone), Rank(LevelLow))
	assert.Less(t, Rank(LevelLow), Rank(LevelMedium))
	assert.Less(t, Rank(LevelMedium), Rank(LevelHigh))
	assert.Less(t, Rank(LevelHigh), Rank(LevelCritical))
	// an unrecognized level sorts lowest
	assert.Equal(t, Rank(LevelUnknown), Rank(Level("bogus")))
}

func TestScoreFromVector(t *testing.T) {
	assert.InDelta(t, 9.8, ScoreFromVector("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"), 0.01)
	assert.InDelta(t, 0, ScoreFromVector(""), 0.01)
	assert.InDelta(t, 0, ScoreFromVector("not a vector"), 0.01)
}
