package services

import (
	"math"
	"strings"
)

// SentimentScores carries polarity proportions plus the normalized
// compound value in [-1, 1].
type SentimentScores struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// SentimentScorer scores the emotional polarity of a text. The profiler
// treats the scorer as optional; when none is wired, sentiment features
// are omitted from extraction output entirely.
type SentimentScorer interface {
	ScoreSentiment(text string) SentimentScores
}

// LexiconSentimentScorer is a small word-list polarity scorer. Token hits
// against the positive and negative lexicons are folded into a compound
// value via x/sqrt(x²+15), the usual intensity normalization.
type LexiconSentimentScorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewLexiconSentimentScorer builds the scorer with the built-in lexicons
func NewLexiconSentimentScorer() *LexiconSentimentScorer {
	positive := []string{"good", "great", "excellent", "amazing", "wonderful"}
	negative := []string{"bad", "terrible", "awful", "scam", "fraud", "urgent", "warning"}

	s := &LexiconSentimentScorer{
		positive: make(map[string]struct{}, len(positive)),
		negative: make(map[string]struct{}, len(negative)),
	}
	for _, w := range positive {
		s.positive[w] = struct{}{}
	}
	for _, w := range negative {
		s.negative[w] = struct{}{}
	}
	return s
}

// ScoreSentiment tokenizes on whitespace and scores lexicon hits
func (s *LexiconSentimentScorer) ScoreSentiment(text string) SentimentScores {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return SentimentScores{Neutral: 1}
	}

	posHits, negHits := 0, 0
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:\"'()")
		if _, ok := s.positive[tok]; ok {
			posHits++
		}
		if _, ok := s.negative[tok]; ok {
			negHits++
		}
	}

	total := float64(len(tokens))
	diff := float64(posHits - negHits)

	return SentimentScores{
		Compound: diff / math.Sqrt(diff*diff+15),
		Positive: float64(posHits) / total,
		Negative: float64(negHits) / total,
		Neutral:  float64(len(tokens)-posHits-negHits) / total,
	}
}
