package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

var syllableRuns = regexp.MustCompile(`[aeiouy]+`)

// TextProfiler computes the shared NLP feature block used by the text
// channels and the standalone NLP endpoints: basic statistics, fraud
// vocabulary counts, pattern counts, coarse entity counts and
// readability metrics. Sentiment fields appear only when a scorer is
// wired.
type TextProfiler struct {
	patterns   *PatternLibrary
	sentiment  SentimentScorer
	shorteners []string
	log        *logger.Logger
}

// NewTextProfiler creates a profiler. sentiment may be nil.
func NewTextProfiler(patterns *PatternLibrary, sentiment SentimentScorer, log *logger.Logger) *TextProfiler {
	return &TextProfiler{
		patterns:   patterns,
		sentiment:  sentiment,
		shorteners: patterns.Vocabulary(ScopeText, ConceptShorteners),
		log:        log.WithComponent("text-profiler"),
	}
}

// HasSentiment reports whether sentiment features will be emitted
func (t *TextProfiler) HasSentiment() bool {
	return t.sentiment != nil
}

// Profile computes the full NLP block. Empty input yields an empty
// vector; every non-empty input yields the complete key set.
func (t *TextProfiler) Profile(text string) models.FeatureVector {
	features := models.FeatureVector{}
	if text == "" {
		return features
	}

	words := strings.Fields(text)
	lower := strings.ToLower(text)
	lowerWords := strings.Fields(lower)

	avgWordLength := 0.0
	if len(words) > 0 {
		totalLen := 0
		for _, w := range words {
			totalLen += utf8.RuneCountInString(w)
		}
		avgWordLength = float64(totalLen) / float64(len(words))
	}

	// Basic text statistics
	features["text_length"] = float64(utf8.RuneCountInString(text))
	features["word_count"] = float64(len(words))
	features["avg_word_length"] = avgWordLength
	features["sentence_count"] = float64(len(strings.Split(text, ".")))
	features["paragraph_count"] = float64(len(strings.Split(text, "\n\n")))
	features["unique_words_ratio"] = distinctRatio(lowerWords, len(words))

	t.addFraudPatterns(features, text, lower)

	if t.sentiment != nil {
		scores := t.sentiment.ScoreSentiment(text)
		features["sentiment_compound"] = scores.Compound
		features["sentiment_positive"] = scores.Positive
		features["sentiment_negative"] = scores.Negative
		features["sentiment_neutral"] = scores.Neutral
	}

	t.addAdvancedPatterns(features, text, lowerWords)
	t.addEntityMentions(features, text)
	t.addReadability(features, text, words, avgWordLength)

	return features
}

// addFraudPatterns counts the fraud-associated vocabulary concepts
func (t *TextProfiler) addFraudPatterns(features models.FeatureVector, text, lower string) {
	urgency := float64(t.patterns.CountPresent(text, ScopeText, ConceptUrgency))
	authority := float64(t.patterns.CountPresent(text, ScopeText, ConceptAuthority))
	pressure := float64(t.patterns.CountPresent(text, ScopeText, ConceptFinancialPressure))
	reward := float64(t.patterns.CountPresent(text, ScopeText, ConceptReward))
	personal := float64(t.patterns.CountPresent(text, ScopeText, ConceptPersonalInfo))
	emotional := float64(t.patterns.CountPresent(text, ScopeText, ConceptEmotional))

	features["urgency_indicators"] = urgency
	features["authority_indicators"] = authority
	features["financial_pressure"] = pressure
	features["reward_indicators"] = reward
	features["personal_info_requests"] = personal
	features["action_verb_count"] = float64(t.patterns.CountPresent(text, ScopeText, ConceptActionVerbs))
	features["emotional_manipulation"] = emotional
	features["grammar_errors"] = float64(t.patterns.CountRegex(text, ScopeText, PatternGrammarSlang))
	features["caps_ratio"] = capsRatio(text)
	features["total_fraud_indicators"] = urgency + authority + pressure + reward + personal + emotional
}

// addAdvancedPatterns counts structural text patterns
func (t *TextProfiler) addAdvancedPatterns(features models.FeatureVector, text string, lowerWords []string) {
	urls := t.patterns.FindAll(text, ScopeText, PatternURL)
	suspicious := 0
	for _, u := range urls {
		for _, domain := range t.shorteners {
			if strings.Contains(u, domain) {
				suspicious++
				break
			}
		}
	}

	features["url_count"] = float64(len(urls))
	features["suspicious_url_count"] = float64(suspicious)
	features["phone_patterns"] = float64(t.patterns.CountRegex(text, ScopeText, PatternPhone))
	features["email_patterns"] = float64(t.patterns.CountRegex(text, ScopeText, PatternEmail))
	features["currency_patterns"] = float64(t.patterns.CountRegex(text, ScopeText, PatternCurrency))
	features["time_pressure_indicators"] = float64(t.patterns.CountRegex(text, ScopeText, PatternTimePressure))
	features["exclamation_count"] = float64(strings.Count(text, "!"))
	features["question_count"] = float64(strings.Count(text, "?"))
	features["most_repeated_word_count"] = mostRepeated(lowerWords)
	features["text_complexity"] = distinctRatio(lowerWords, len(lowerWords))
}

// addEntityMentions counts coarse named-entity patterns
func (t *TextProfiler) addEntityMentions(features models.FeatureVector, text string) {
	orgs := float64(t.patterns.CountRegex(text, ScopeText, PatternOrgEntity))
	gov := float64(t.patterns.CountRegex(text, ScopeText, PatternGovEntity))
	fin := float64(t.patterns.CountRegex(text, ScopeText, PatternFinEntity))
	names := float64(t.patterns.CountRegex(text, ScopeText, PatternPersonEntity))

	features["organization_mentions"] = orgs
	features["government_mentions"] = gov
	features["financial_institution_mentions"] = fin
	features["personal_name_mentions"] = names
	features["total_entity_mentions"] = orgs + gov + fin + names
}

// addReadability computes the Flesch-style readability approximation
func (t *TextProfiler) addReadability(features models.FeatureVector, text string, words []string, avgWordLength float64) {
	sentences := strings.Split(text, ".")
	if len(words) == 0 || len(sentences) == 0 {
		features["avg_sentence_length"] = 0
		features["readability_score"] = 0
		features["complexity_score"] = 0
		features["long_word_ratio"] = 0
		return
	}

	avgSentenceLength := float64(len(words)) / float64(len(sentences))

	syllables := 0
	for _, w := range words {
		syllables += len(syllableRuns.FindAllString(strings.ToLower(w), -1))
	}
	readability := 206.835 - 1.015*avgSentenceLength - 84.6*(float64(syllables)/float64(len(words)))

	longWords := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) > 6 {
			longWords++
		}
	}
	complexity := (float64(longWords)/float64(len(words)))*100 + (avgSentenceLength/20)*100

	features["avg_sentence_length"] = avgSentenceLength
	features["avg_word_length"] = avgWordLength
	features["readability_score"] = clamp(readability, 0, 100)
	features["complexity_score"] = min(complexity, 100)
	features["long_word_ratio"] = float64(longWords) / float64(len(words))
}

// distinctRatio is distinct words over total, guarding the denominator
func distinctRatio(words []string, total int) float64 {
	if total < 1 {
		total = 1
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w] = struct{}{}
	}
	return float64(len(seen)) / float64(total)
}

// mostRepeated is the highest frequency among words longer than 2 runes
func mostRepeated(words []string) float64 {
	freq := make(map[string]int)
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			freq[w]++
		}
	}
	most := 0
	for _, c := range freq {
		if c > most {
			most = c
		}
	}
	return float64(most)
}

// capsRatio is uppercase runes over all runes
func capsRatio(text string) float64 {
	total := 0
	upper := 0
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(upper) / float64(total)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
