package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fraudguard-lab/pkg/logger"
)

func newTestProfiler(t *testing.T, withSentiment bool) *TextProfiler {
	t.Helper()
	patterns := NewPatternLibrary(logger.NewNop())
	var sentiment SentimentScorer
	if withSentiment {
		sentiment = NewLexiconSentimentScorer()
	}
	return NewTextProfiler(patterns, sentiment, logger.NewNop())
}

func TestTextProfiler_Profile(t *testing.T) {
	profiler := newTestProfiler(t, false)

	t.Run("empty text yields an empty vector", func(t *testing.T) {
		assert.Empty(t, profiler.Profile(""))
	})

	t.Run("fraud vocabulary counts", func(t *testing.T) {
		f := profiler.Profile("URGENT: Your account will be suspended! Verify your password now to avoid penalty.")

		// urgent+now, suspended+penalty, password
		assert.Equal(t, 2.0, f["urgency_indicators"])
		assert.Equal(t, 2.0, f["financial_pressure"])
		assert.Equal(t, 1.0, f["personal_info_requests"])
		assert.Equal(t, 1.0, f["action_verb_count"]) // verify
		assert.Zero(t, f["authority_indicators"])
		assert.Zero(t, f["reward_indicators"])
		assert.Equal(t, 5.0, f["total_fraud_indicators"])
		assert.Equal(t, 1.0, f["exclamation_count"])
		assert.Zero(t, f["question_count"])
	})

	t.Run("url counting flags shorteners", func(t *testing.T) {
		f := profiler.Profile("Click https://bit.ly/x2 or https://example.com")
		assert.Equal(t, 2.0, f["url_count"])
		assert.Equal(t, 1.0, f["suspicious_url_count"])
	})

	t.Run("repeated word tracking ignores short words", func(t *testing.T) {
		f := profiler.Profile("win win win it it now")
		assert.Equal(t, 3.0, f["most_repeated_word_count"])
	})

	t.Run("entity mentions sum across categories", func(t *testing.T) {
		f := profiler.Profile("Your account at Chase Bank is locked")
		assert.Equal(t, 1.0, f["organization_mentions"])
		assert.Zero(t, f["government_mentions"])
		assert.Equal(t, 1.0, f["financial_institution_mentions"])
		assert.Equal(t, 1.0, f["personal_name_mentions"])
		assert.Equal(t, 3.0, f["total_entity_mentions"])
	})

	t.Run("readability stays within bounds", func(t *testing.T) {
		f := profiler.Profile("This is a perfectly ordinary sentence about nothing in particular. It continues calmly.")
		assert.GreaterOrEqual(t, f["readability_score"], 0.0)
		assert.LessOrEqual(t, f["readability_score"], 100.0)
		assert.LessOrEqual(t, f["complexity_score"], 100.0)
		assert.GreaterOrEqual(t, f["caps_ratio"], 0.0)
		assert.Less(t, f["caps_ratio"], 1.0)
	})

	t.Run("basic statistics", func(t *testing.T) {
		f := profiler.Profile("one two three")
		assert.Equal(t, 13.0, f["text_length"])
		assert.Equal(t, 3.0, f["word_count"])
		assert.Equal(t, 1.0, f["unique_words_ratio"])
	})
}

func TestTextProfiler_Sentiment(t *testing.T) {
	t.Run("omitted when no scorer is wired", func(t *testing.T) {
		profiler := newTestProfiler(t, false)
		assert.False(t, profiler.HasSentiment())

		f := profiler.Profile("this is a scam warning")
		_, ok := f["sentiment_compound"]
		assert.False(t, ok)
	})

	t.Run("emitted when a scorer is wired", func(t *testing.T) {
		profiler := newTestProfiler(t, true)
		assert.True(t, profiler.HasSentiment())

		f := profiler.Profile("this is a scam warning")
		assert.Less(t, f["sentiment_compound"], 0.0)
		assert.Greater(t, f["sentiment_negative"], 0.0)
	})
}
