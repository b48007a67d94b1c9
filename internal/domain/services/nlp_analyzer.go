package services

import (
	"math"
	"sort"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

// NLPAnalyzer presents the text profiler's flat feature vector as a
// categorized report with derived risk axes.
type NLPAnalyzer struct {
	profiler *TextProfiler
	log      *logger.Logger
}

// NewNLPAnalyzer creates the NLP analysis service
func NewNLPAnalyzer(profiler *TextProfiler, log *logger.Logger) *NLPAnalyzer {
	return &NLPAnalyzer{
		profiler: profiler,
		log:      log.WithComponent("nlp-analyzer"),
	}
}

// Analyze profiles one text and categorizes the result
func (a *NLPAnalyzer) Analyze(text string) models.NLPAnalysis {
	f := a.profiler.Profile(text)

	analysis := models.NLPAnalysis{
		TextStatistics: models.NLPTextStatistics{
			TextLength:       int(f["text_length"]),
			WordCount:        int(f["word_count"]),
			SentenceCount:    int(f["sentence_count"]),
			AvgWordLength:    roundTo(f["avg_word_length"], 2),
			UniqueWordsRatio: roundTo(f["unique_words_ratio"], 3),
		},
		FraudIndicators: models.NLPFraudIndicators{
			UrgencyIndicators:     int(f["urgency_indicators"]),
			AuthorityIndicators:   int(f["authority_indicators"]),
			FinancialPressure:     int(f["financial_pressure"]),
			RewardIndicators:      int(f["reward_indicators"]),
			PersonalInfoRequests:  int(f["personal_info_requests"]),
			EmotionalManipulation: int(f["emotional_manipulation"]),
			TotalFraudIndicators:  int(f["total_fraud_indicators"]),
		},
		LinguisticPatterns: models.NLPLinguisticPatterns{
			ActionVerbCount:  int(f["action_verb_count"]),
			GrammarErrors:    int(f["grammar_errors"]),
			CapsRatio:        roundTo(f["caps_ratio"], 3),
			ExclamationCount: int(f["exclamation_count"]),
			QuestionCount:    int(f["question_count"]),
		},
		EntityRecognition: models.NLPEntityRecognition{
			OrganizationMentions:         int(f["organization_mentions"]),
			GovernmentMentions:           int(f["government_mentions"]),
			FinancialInstitutionMentions: int(f["financial_institution_mentions"]),
			PersonalNameMentions:         int(f["personal_name_mentions"]),
			TotalEntityMentions:          int(f["total_entity_mentions"]),
		},
		ReadabilityMetrics: models.NLPReadabilityMetrics{
			AvgSentenceLength: roundTo(f["avg_sentence_length"], 2),
			ReadabilityScore:  roundTo(f["readability_score"], 2),
			ComplexityScore:   roundTo(f["complexity_score"], 2),
			LongWordRatio:     roundTo(f["long_word_ratio"], 3),
		},
		SentimentAnalysis: models.NLPSentimentAnalysis{
			Compound: roundTo(f["sentiment_compound"], 3),
			Positive: roundTo(f["sentiment_positive"], 3),
			Negative: roundTo(f["sentiment_negative"], 3),
			Neutral:  roundTo(f["sentiment_neutral"], 3),
		},
		TextPatterns: models.NLPTextPatterns{
			URLCount:               int(f["url_count"]),
			SuspiciousURLCount:     int(f["suspicious_url_count"]),
			PhonePatterns:          int(f["phone_patterns"]),
			EmailPatterns:          int(f["email_patterns"]),
			CurrencyPatterns:       int(f["currency_patterns"]),
			TimePressureIndicators: int(f["time_pressure_indicators"]),
		},
		RiskAssessment: models.NLPRiskAssessment{
			FraudRiskScore: math.Min(100, f["total_fraud_indicators"]*10),
			UrgencyRisk:    math.Min(100, f["urgency_indicators"]*20),
			AuthorityRisk:  math.Min(100, f["authority_indicators"]*15),
			EmotionalRisk:  math.Min(100, f["emotional_manipulation"]*12),
			OverallNLPRisk: math.Min(100, f["total_fraud_indicators"]*8),
		},
	}
	analysis.RiskLevel = nlpRiskLevel(analysis.RiskAssessment.OverallNLPRisk)

	return analysis
}

// Compare profiles each text and ranks them by risk, highest first.
// Text ids are 1-based positions in the input, assigned before
// sorting.
func (a *NLPAnalyzer) Compare(texts []string) []models.NLPComparison {
	comparisons := make([]models.NLPComparison, len(texts))
	for i, text := range texts {
		f := a.profiler.Profile(text)
		comparisons[i] = models.NLPComparison{
			TextID:          i + 1,
			TextPreview:     Preview(text, 100),
			FraudIndicators: int(f["total_fraud_indicators"]),
			UrgencyScore:    int(f["urgency_indicators"]),
			Sentiment:       roundTo(f["sentiment_compound"], 3),
			Readability:     roundTo(f["readability_score"], 2),
			Complexity:      roundTo(f["complexity_score"], 2),
			RiskScore:       math.Min(100, f["total_fraud_indicators"]*10),
		}
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].RiskScore > comparisons[j].RiskScore
	})
	return comparisons
}

// nlpRiskLevel maps the 0-100 NLP risk onto threat levels. Unlike the
// risk-score bands, these bounds are inclusive.
func nlpRiskLevel(risk float64) models.ThreatLevel {
	switch {
	case risk >= 80:
		return models.ThreatLevelCritical
	case risk >= 60:
		return models.ThreatLevelHigh
	case risk >= 40:
		return models.ThreatLevelMedium
	case risk >= 20:
		return models.ThreatLevelLow
	default:
		return models.ThreatLevelSafe
	}
}

// Preview truncates text to limit runes for response payloads
func Preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// roundTo rounds to places decimal digits for presentation
func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
