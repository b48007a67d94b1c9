package services

import (
	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

// RuleScorer is the always-available scoring strategy: a fixed weighted
// sum of indicator features per channel, clamped to [0, 1]. It backs the
// learned models both as a fallback and as the only strategy for
// channels that have no classifier.
type RuleScorer struct {
	log *logger.Logger
}

// NewRuleScorer creates the rule-based scorer
func NewRuleScorer(log *logger.Logger) *RuleScorer {
	return &RuleScorer{log: log.WithComponent("rule-scorer")}
}

// Score computes the rule-based risk for one extracted feature vector.
// Channels without a rule table score a neutral 0.5.
func (s *RuleScorer) Score(features models.FeatureVector, channel models.Channel) float64 {
	switch channel {
	case models.ChannelEmail:
		return s.scoreEmail(features)
	case models.ChannelTransaction:
		return s.scoreTransaction(features)
	case models.ChannelSocialMedia:
		return s.scoreSocial(features)
	case models.ChannelWebpage:
		return s.scoreWebpage(features)
	case models.ChannelMessaging:
		return s.scoreMessaging(features)
	case models.ChannelVoiceCall:
		return s.scoreVoiceCall(features)
	case models.ChannelUserBehavior:
		return s.scoreUserBehavior(features)
	}
	return 0.5
}

func (s *RuleScorer) scoreEmail(f models.FeatureVector) float64 {
	risk := 0.0
	risk += f["urgency_score"] * 0.25
	risk += f["financial_terms"] * 0.2
	risk += f["threat_indicators"] * 0.3
	risk += f["has_links"] * 0.15
	risk += f["sender_domain_suspicious"] * 0.35
	risk += f["subject_suspicious"] * 0.25
	if compound, ok := f["sentiment_compound"]; ok && compound < -0.3 {
		risk += 0.2
	}
	return clamp(risk, 0, 1)
}

func (s *RuleScorer) scoreTransaction(f models.FeatureVector) float64 {
	risk := 0.0
	if amount := f["amount"]; amount > 10000 {
		risk += 0.4
	} else if amount < 0 {
		risk += 0.5
	}
	if f["is_foreign"] > 0 {
		risk += 0.3
	}
	if f["location_distance"] > 1000 {
		risk += 0.35
	}
	if f["is_weekend"] > 0 {
		risk += 0.15
	}
	if hour := f["hour_of_day"]; hour < 6 || hour > 22 {
		risk += 0.2
	}
	return clamp(risk, 0, 1)
}

func (s *RuleScorer) scoreSocial(f models.FeatureVector) float64 {
	risk := 0.0
	if f["follower_count"] < 10 {
		risk += 0.4
	}
	if f["is_verified"] == 0 {
		risk += 0.3
	}
	risk += f["suspicious_link_count"] * 0.25
	risk += f["hashtag_count"] * 0.1
	if f["engagement_rate"] < 0.01 {
		risk += 0.2
	}
	return clamp(risk, 0, 1)
}

func (s *RuleScorer) scoreWebpage(f models.FeatureVector) float64 {
	risk := 0.0
	risk += f["is_shortened"] * 0.3
	risk += f["phishing_keywords"] * 0.3
	risk += f["suspicious_tld"] * 0.2
	risk += f["has_ip"] * 0.2
	risk += f["form_count"] * 0.1
	return clamp(risk, 0, 1)
}

func (s *RuleScorer) scoreMessaging(f models.FeatureVector) float64 {
	risk := 0.0
	if f["sender_unknown"] > 0 {
		risk += 0.3
	}
	risk += f["urgent_requests"] * 0.15
	risk += f["suspicious_link_count"] * 0.2
	if f["time_suspicious"] > 0 {
		risk += 0.2
	}
	if f["content_suspicious"] > 0 {
		risk += 0.15
	}
	return clamp(risk, 0, 1)
}

func (s *RuleScorer) scoreVoiceCall(f models.FeatureVector) float64 {
	risk := 0.0
	if f["caller_suspicious"] > 0 {
		risk += 0.3
	}
	risk += f["suspicious_requests"] * 0.15
	risk += f["emotional_manipulation"] * 0.1
	risk += f["urgent_requests"] * 0.15
	if f["call_duration_suspicious"] > 0 {
		risk += 0.2
	}
	return clamp(risk, 0, 1)
}

func (s *RuleScorer) scoreUserBehavior(f models.FeatureVector) float64 {
	risk := 0.0
	if f["unusual_time"] > 0 || f["new_device"] > 0 {
		risk += 0.3
	}
	if f["suspicious_actions"] > 5 {
		risk += 0.25
	}
	if f["unusual_pattern"] > 0 {
		risk += 0.2
	}
	if f["session_duration"] > 3600 {
		risk += 0.25
	}
	return clamp(risk, 0, 1)
}
