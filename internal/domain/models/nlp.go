package models

// NLPAnalysis is the categorized NLP profile of one text
type NLPAnalysis struct {
	TextStatistics     NLPTextStatistics     `json:"text_statistics"`
	FraudIndicators    NLPFraudIndicators    `json:"fraud_indicators"`
	LinguisticPatterns NLPLinguisticPatterns `json:"linguistic_patterns"`
	EntityRecognition  NLPEntityRecognition  `json:"entity_recognition"`
	ReadabilityMetrics NLPReadabilityMetrics `json:"readability_metrics"`
	SentimentAnalysis  NLPSentimentAnalysis  `json:"sentiment_analysis"`
	TextPatterns       NLPTextPatterns       `json:"text_patterns"`
	RiskAssessment     NLPRiskAssessment     `json:"risk_assessment"`
	RiskLevel          ThreatLevel           `json:"risk_level"`
}

type NLPTextStatistics struct {
	TextLength       int     `json:"text_length"`
	WordCount        int     `json:"word_count"`
	SentenceCount    int     `json:"sentence_count"`
	AvgWordLength    float64 `json:"avg_word_length"`
	UniqueWordsRatio float64 `json:"unique_words_ratio"`
}

type NLPFraudIndicators struct {
	UrgencyIndicators     int `json:"urgency_indicators"`
	AuthorityIndicators   int `json:"authority_indicators"`
	FinancialPressure     int `json:"financial_pressure"`
	RewardIndicators      int `json:"reward_indicators"`
	PersonalInfoRequests  int `json:"personal_info_requests"`
	EmotionalManipulation int `json:"emotional_manipulation"`
	TotalFraudIndicators  int `json:"total_fraud_indicators"`
}

type NLPLinguisticPatterns struct {
	ActionVerbCount  int     `json:"action_verb_count"`
	GrammarErrors    int     `json:"grammar_errors"`
	CapsRatio        float64 `json:"caps_ratio"`
	ExclamationCount int     `json:"exclamation_count"`
	QuestionCount    int     `json:"question_count"`
}

type NLPEntityRecognition struct {
	OrganizationMentions         int `json:"organization_mentions"`
	GovernmentMentions           int `json:"government_mentions"`
	FinancialInstitutionMentions int `json:"financial_institution_mentions"`
	PersonalNameMentions         int `json:"personal_name_mentions"`
	TotalEntityMentions          int `json:"total_entity_mentions"`
}

type NLPReadabilityMetrics struct {
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	ReadabilityScore  float64 `json:"readability_score"`
	ComplexityScore   float64 `json:"complexity_score"`
	LongWordRatio     float64 `json:"long_word_ratio"`
}

type NLPSentimentAnalysis struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

type NLPTextPatterns struct {
	URLCount               int `json:"url_count"`
	SuspiciousURLCount     int `json:"suspicious_url_count"`
	PhonePatterns          int `json:"phone_patterns"`
	EmailPatterns          int `json:"email_patterns"`
	CurrencyPatterns       int `json:"currency_patterns"`
	TimePressureIndicators int `json:"time_pressure_indicators"`
}

// NLPRiskAssessment scales the indicator counts onto 0-100 risk axes
type NLPRiskAssessment struct {
	FraudRiskScore float64 `json:"fraud_risk_score"`
	UrgencyRisk    float64 `json:"urgency_risk"`
	AuthorityRisk  float64 `json:"authority_risk"`
	EmotionalRisk  float64 `json:"emotional_risk"`
	OverallNLPRisk float64 `json:"overall_nlp_risk"`
}

// NLPComparison ranks one text within a multi-text comparison
type NLPComparison struct {
	TextID          int     `json:"text_id"`
	TextPreview     string  `json:"text_preview"`
	FraudIndicators int     `json:"fraud_indicators"`
	UrgencyScore    int     `json:"urgency_score"`
	Sentiment       float64 `json:"sentiment"`
	Readability     float64 `json:"readability"`
	Complexity      float64 `json:"complexity"`
	RiskScore       float64 `json:"risk_score"`
}
