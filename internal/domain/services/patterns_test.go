package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

func TestPatternLibrary_CountPresent(t *testing.T) {
	lib := NewPatternLibrary(logger.NewNop())
	scope := models.ChannelEmail.String()

	t.Run("counts each vocabulary entry at most once", func(t *testing.T) {
		assert.Equal(t, 1, lib.CountPresent("urgent urgent urgent", scope, ConceptUrgency))
	})

	t.Run("counts distinct entries", func(t *testing.T) {
		// urgent, immediate and now are three separate urgency entries
		assert.Equal(t, 3, lib.CountPresent("urgent and immediate action needed right now", scope, ConceptUrgency))
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		assert.Equal(t, 1, lib.CountPresent("URGENT", scope, ConceptUrgency))
	})

	t.Run("empty text counts zero", func(t *testing.T) {
		assert.Equal(t, 0, lib.CountPresent("", scope, ConceptUrgency))
	})

	t.Run("unknown scope or concept counts zero", func(t *testing.T) {
		assert.Equal(t, 0, lib.CountPresent("urgent", "no_such_scope", ConceptUrgency))
		assert.Equal(t, 0, lib.CountPresent("urgent", scope, "no_such_concept"))
	})
}

func TestPatternLibrary_AnyPresent(t *testing.T) {
	lib := NewPatternLibrary(logger.NewNop())
	scope := models.ChannelEmail.String()

	assert.True(t, lib.AnyPresent("please verify your account", scope, ConceptFinancial))
	assert.False(t, lib.AnyPresent("see you at lunch", scope, ConceptFinancial))
}

func TestPatternLibrary_Regexes(t *testing.T) {
	lib := NewPatternLibrary(logger.NewNop())

	t.Run("counts phone numbers", func(t *testing.T) {
		count := lib.CountRegex("call 555-123-4567 or 555.987.6543", ScopeText, PatternPhone)
		assert.Equal(t, 2, count)
	})

	t.Run("matches IP-hosted URLs", func(t *testing.T) {
		scope := models.ChannelWebpage.String()
		assert.True(t, lib.MatchRegex("http://192.168.0.1/login", scope, PatternIPHost))
		assert.False(t, lib.MatchRegex("https://example.com/login", scope, PatternIPHost))
	})

	t.Run("finds all URLs", func(t *testing.T) {
		urls := lib.FindAll("see https://a.example and http://b.example now", ScopeText, PatternURL)
		assert.Len(t, urls, 2)
		assert.Equal(t, "https://a.example", urls[0])
	})

	t.Run("counts currency amounts", func(t *testing.T) {
		assert.Equal(t, 2, lib.CountRegex("pay $5,000 or $99.99 today", ScopeText, PatternCurrency))
	})

	t.Run("empty text never matches", func(t *testing.T) {
		assert.Equal(t, 0, lib.CountRegex("", ScopeText, PatternURL))
		assert.False(t, lib.MatchRegex("", ScopeText, PatternURL))
		assert.Nil(t, lib.FindAll("", ScopeText, PatternURL))
	})
}

func TestPatternLibrary_Vocabulary(t *testing.T) {
	lib := NewPatternLibrary(logger.NewNop())
	scope := models.ChannelEmail.String()

	t.Run("vocab size matches entry count", func(t *testing.T) {
		assert.Equal(t, 7, lib.VocabSize(scope, ConceptUrgency))
		assert.Equal(t, 0, lib.VocabSize(scope, "no_such_concept"))
	})

	t.Run("returns a copy callers can mutate", func(t *testing.T) {
		first := lib.Vocabulary(scope, ConceptUrgency)
		first[0] = "mutated"

		second := lib.Vocabulary(scope, ConceptUrgency)
		assert.Equal(t, "urgent", second[0])
	})

	t.Run("unknown concept yields nil", func(t *testing.T) {
		assert.Nil(t, lib.Vocabulary(scope, "no_such_concept"))
	})
}
