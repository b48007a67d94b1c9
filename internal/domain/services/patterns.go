package services

import (
	"regexp"
	"strings"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

// Pattern scopes. Channel scopes reuse the channel name; ScopeText holds
// the vocabularies shared by the NLP profiler across channels.
const ScopeText = "text"

// Vocabulary concepts. Counting is presence-based: each vocabulary entry
// contributes at most once no matter how often it repeats in the text.
const (
	ConceptUrgency            = "urgency"
	ConceptFinancial          = "financial"
	ConceptThreat             = "threat"
	ConceptSenderSuspicious   = "sender_suspicious"
	ConceptSubjectSuspicious  = "subject_suspicious"
	ConceptShorteners         = "shorteners"
	ConceptPhishingURL        = "phishing_url"
	ConceptSuspiciousTLD      = "suspicious_tld"
	ConceptAuthority          = "authority"
	ConceptFinancialPressure  = "financial_pressure"
	ConceptReward             = "reward"
	ConceptPersonalInfo       = "personal_info"
	ConceptActionVerbs        = "action_verbs"
	ConceptEmotional          = "emotional"
	ConceptSuspiciousRequests = "suspicious_requests"
	ConceptUrgentRequests     = "urgent_requests"
)

// Regex concepts. Patterns run against the raw (uncased) text; the entity
// patterns rely on capitalization and must not be lowercased away.
const (
	PatternIPHost       = "ip_host"
	PatternURL          = "url"
	PatternPhone        = "phone"
	PatternEmail        = "email"
	PatternCurrency     = "currency"
	PatternTimePressure = "time_pressure"
	PatternGrammarSlang = "grammar_slang"
	PatternOrgEntity    = "org_entity"
	PatternGovEntity    = "gov_entity"
	PatternFinEntity    = "fin_entity"
	PatternPersonEntity = "person_entity"
)

// PatternLibrary holds the static per-scope vocabularies and compiled
// regexes the extractors and the NLP profiler share. It is immutable
// after construction and safe for concurrent use.
type PatternLibrary struct {
	vocab map[string]map[string][]string
	regex map[string]map[string]*regexp.Regexp
	log   *logger.Logger
}

// NewPatternLibrary builds the library with the built-in pattern set
func NewPatternLibrary(log *logger.Logger) *PatternLibrary {
	lib := &PatternLibrary{
		vocab: defaultVocabularies(),
		regex: defaultRegexes(),
		log:   log.WithComponent("pattern-library"),
	}

	concepts := 0
	for _, scope := range lib.vocab {
		concepts += len(scope)
	}
	for _, scope := range lib.regex {
		concepts += len(scope)
	}
	lib.log.Debug().Int("concepts", concepts).Msg("pattern library loaded")

	return lib
}

// CountPresent returns how many distinct vocabulary entries of the
// concept occur in text. Unknown scopes or concepts count zero.
func (p *PatternLibrary) CountPresent(text, scope, concept string) int {
	words := p.vocab[scope][concept]
	if len(words) == 0 || text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	count := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			count++
		}
	}
	return count
}

// AnyPresent reports whether at least one vocabulary entry occurs in text
func (p *PatternLibrary) AnyPresent(text, scope, concept string) bool {
	return p.CountPresent(text, scope, concept) > 0
}

// CountRegex returns the number of matches of the concept's pattern
func (p *PatternLibrary) CountRegex(text, scope, concept string) int {
	re := p.regex[scope][concept]
	if re == nil || text == "" {
		return 0
	}
	return len(re.FindAllString(text, -1))
}

// MatchRegex reports whether the concept's pattern matches at all
func (p *PatternLibrary) MatchRegex(text, scope, concept string) bool {
	re := p.regex[scope][concept]
	if re == nil || text == "" {
		return false
	}
	return re.MatchString(text)
}

// FindAll returns every match of the concept's pattern in text
func (p *PatternLibrary) FindAll(text, scope, concept string) []string {
	re := p.regex[scope][concept]
	if re == nil || text == "" {
		return nil
	}
	return re.FindAllString(text, -1)
}

// VocabSize returns the entry count of a concept, used as a normalizing
// denominator by extractors.
func (p *PatternLibrary) VocabSize(scope, concept string) int {
	return len(p.vocab[scope][concept])
}

// Vocabulary returns a copy of a concept's entries
func (p *PatternLibrary) Vocabulary(scope, concept string) []string {
	words := p.vocab[scope][concept]
	if len(words) == 0 {
		return nil
	}
	out := make([]string, len(words))
	copy(out, words)
	return out
}

func defaultVocabularies() map[string]map[string][]string {
	return map[string]map[string][]string{
		models.ChannelEmail.String(): {
			ConceptUrgency:           {"urgent", "immediate", "now", "quick", "fast", "hurry", "asap"},
			ConceptFinancial:         {"account", "password", "verify", "confirm", "secure", "bank", "credit", "payment"},
			ConceptThreat:            {"suspended", "blocked", "terminated", "legal", "police", "court", "action"},
			ConceptSenderSuspicious:  {"noreply", "support", "security", "verify", "fake"},
			ConceptSubjectSuspicious: {"urgent", "verify", "suspended", "account", "action"},
		},
		models.ChannelSocialMedia.String(): {
			ConceptShorteners: {"bit.ly", "tinyurl", "goo.gl", "is.gd", "t.co"},
		},
		models.ChannelWebpage.String(): {
			ConceptShorteners:    {"bit.ly", "tinyurl", "goo.gl", "is.gd", "t.co", "shorturl"},
			ConceptPhishingURL:   {"login", "signin", "verify", "secure", "bank", "account", "update", "confirm"},
			ConceptSuspiciousTLD: {".tk", ".ml", ".ga", ".cf", ".gq"},
		},
		models.ChannelMessaging.String(): {
			ConceptShorteners: {"bit.ly", "tinyurl", "goo.gl", "is.gd", "t.co"},
		},
		models.ChannelVoiceCall.String(): {
			ConceptSuspiciousRequests: {"verify", "confirm", "account", "password", "urgent"},
			ConceptEmotional:          {"family", "emergency", "help", "urgent", "crisis"},
			ConceptUrgentRequests:     {"now", "immediate", "urgent", "quick", "fast"},
		},
		ScopeText: {
			ConceptUrgency:           {"urgent", "immediate", "now", "quick", "fast", "hurry", "deadline", "expire", "limited time"},
			ConceptAuthority:         {"police", "government", "court", "legal", "official", "federal", "irs", "tax"},
			ConceptFinancialPressure: {"owe", "debt", "payment", "overdue", "penalty", "fine", "suspended", "blocked"},
			ConceptReward:            {"prize", "winner", "selected", "exclusive", "limited", "offer", "free", "bonus", "gift"},
			ConceptPersonalInfo:      {"ssn", "social security", "credit card", "bank account", "password", "pin", "dob", "birth date"},
			ConceptActionVerbs:       {"verify", "confirm", "update", "validate", "secure", "protect", "restore", "reactivate"},
			ConceptEmotional:         {"family", "emergency", "help", "crisis", "danger", "threat", "consequences"},
			ConceptShorteners:        {"bit.ly", "tinyurl", "goo.gl", "is.gd", "t.co", "shorturl"},
		},
	}
}

func defaultRegexes() map[string]map[string]*regexp.Regexp {
	return map[string]map[string]*regexp.Regexp{
		models.ChannelWebpage.String(): {
			PatternIPHost: regexp.MustCompile(`https?://\d+\.\d+\.\d+\.\d+`),
		},
		models.ChannelMessaging.String(): {
			PatternURL:            regexp.MustCompile(`https?://[^\s<>"]+`),
			ConceptUrgentRequests: regexp.MustCompile(`(?i)\b(help|urgent|emergency|money|transfer)\b`),
		},
		ScopeText: {
			PatternURL:          regexp.MustCompile(`https?://[^\s<>"]+`),
			PatternPhone:        regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
			PatternEmail:        regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
			PatternCurrency:     regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?`),
			PatternTimePressure: regexp.MustCompile(`(?i)\b(within|before|until|by|deadline|expires?)\b`),
			PatternGrammarSlang: regexp.MustCompile(`(?i)\b(ur|u r|u|r|y)\b`),
			PatternOrgEntity:    regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Inc|Corp|LLC|Ltd|Company|Bank|Banking|Financial|Insurance)\b`),
			PatternGovEntity:    regexp.MustCompile(`\b(?:IRS|FBI|CIA|NSA|Federal|Government|Department|Agency)\b`),
			PatternFinEntity:    regexp.MustCompile(`\b(?:Bank|Credit|Union|Savings|Trust|Investment|Securities|Trading)\b`),
			PatternPersonEntity: regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`),
		},
	}
}
