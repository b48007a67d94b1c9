package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexiconSentimentScorer(t *testing.T) {
	scorer := NewLexiconSentimentScorer()

	t.Run("empty text is fully neutral", func(t *testing.T) {
		scores := scorer.ScoreSentiment("")
		assert.Equal(t, SentimentScores{Neutral: 1}, scores)
	})

	t.Run("text without lexicon hits is neutral", func(t *testing.T) {
		scores := scorer.ScoreSentiment("see you at lunch tomorrow")
		assert.Zero(t, scores.Compound)
		assert.Zero(t, scores.Positive)
		assert.Zero(t, scores.Negative)
		assert.Equal(t, 1.0, scores.Neutral)
	})

	t.Run("positive hits push the compound up", func(t *testing.T) {
		scores := scorer.ScoreSentiment("good great")
		assert.InDelta(t, 2.0/math.Sqrt(19), scores.Compound, 1e-9)
		assert.Equal(t, 1.0, scores.Positive)
		assert.Zero(t, scores.Negative)
		assert.Zero(t, scores.Neutral)
	})

	t.Run("punctuation is trimmed before lookup", func(t *testing.T) {
		scores := scorer.ScoreSentiment("This is a scam! Urgent warning.")
		// scam, urgent and warning hit out of six tokens
		assert.Equal(t, 0.5, scores.Negative)
		assert.Equal(t, 0.5, scores.Neutral)
		assert.InDelta(t, -3.0/math.Sqrt(24), scores.Compound, 1e-9)
	})

	t.Run("compound stays within its bounds", func(t *testing.T) {
		scores := scorer.ScoreSentiment("scam fraud terrible awful bad warning urgent")
		assert.Less(t, scores.Compound, 0.0)
		assert.GreaterOrEqual(t, scores.Compound, -1.0)
	})
}
