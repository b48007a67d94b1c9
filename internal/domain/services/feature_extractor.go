package services

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"fraudguard-lab/internal/domain/models"
	"fraudguard-lab/pkg/logger"
)

var (
	formTag      = regexp.MustCompile(`<form`)
	scriptTag    = regexp.MustCompile(`<script`)
	scriptSrc    = regexp.MustCompile(`<script[^>]*src=["']([^"']*)`)
	externalHref = regexp.MustCompile(`href=["'](http|https)://`)
)

// Extraction is the result of feature extraction for one record: the
// numeric feature vector plus the raw text the learned text classifiers
// consume.
type Extraction struct {
	Features models.FeatureVector
	Text     string
}

// FeatureExtractor turns loosely structured records into fixed-key
// numeric feature vectors, one extractor per channel. Extraction is pure:
// equal records yield equal vectors, missing fields become defaults, and
// well-formed records never fail.
type FeatureExtractor struct {
	patterns *PatternLibrary
	profiler *TextProfiler
	log      *logger.Logger
}

// NewFeatureExtractor creates the extractor service
func NewFeatureExtractor(patterns *PatternLibrary, profiler *TextProfiler, log *logger.Logger) *FeatureExtractor {
	return &FeatureExtractor{
		patterns: patterns,
		profiler: profiler,
		log:      log.WithComponent("feature-extractor"),
	}
}

// Extract dispatches to the channel's extractor. Unknown channels yield
// an empty vector rather than an error.
func (e *FeatureExtractor) Extract(record models.Record, channel models.Channel) Extraction {
	switch channel {
	case models.ChannelEmail:
		return e.extractEmail(record)
	case models.ChannelTransaction:
		return e.extractTransaction(record)
	case models.ChannelSocialMedia:
		return e.extractSocial(record)
	case models.ChannelWebpage:
		return e.extractWebpage(record)
	case models.ChannelMessaging:
		return e.extractMessaging(record)
	case models.ChannelVoiceCall:
		return e.extractVoiceCall(record)
	case models.ChannelUserBehavior:
		return e.extractUserBehavior(record)
	}
	return Extraction{Features: models.FeatureVector{}}
}

func (e *FeatureExtractor) extractEmail(record models.Record) Extraction {
	content := record.String("content", "")
	sender := record.String("sender", "")
	subject := record.String("subject", "")

	scope := models.ChannelEmail.String()
	lower := strings.ToLower(content)

	features := models.FeatureVector{
		"text_length":     float64(utf8.RuneCountInString(content)),
		"word_count":      float64(len(strings.Fields(content))),
		"avg_word_length": avgWordLength(content),
		"has_links":       boolFeature(strings.Contains(lower, "http")),
		"has_attachments": boolFeature(strings.Contains(lower, "attachment")),
	}

	// Urgency is normalized by vocabulary size; the other concept counts
	// stay raw.
	urgencyVocab := e.patterns.VocabSize(scope, ConceptUrgency)
	if urgencyVocab > 0 {
		features["urgency_score"] = float64(e.patterns.CountPresent(content, scope, ConceptUrgency)) / float64(urgencyVocab)
	} else {
		features["urgency_score"] = 0
	}
	features["financial_terms"] = float64(e.patterns.CountPresent(content, scope, ConceptFinancial))
	features["threat_indicators"] = float64(e.patterns.CountPresent(content, scope, ConceptThreat))
	features["sender_domain_suspicious"] = boolFeature(e.patterns.AnyPresent(sender, scope, ConceptSenderSuspicious))
	features["subject_suspicious"] = boolFeature(e.patterns.AnyPresent(subject, scope, ConceptSubjectSuspicious))

	features.Merge(e.profiler.Profile(content), "")
	if subject != "" {
		features.Merge(e.profiler.Profile(subject), "subject_")
	}
	if sender != "" {
		features.Merge(e.profiler.Profile(sender), "sender_")
	}

	return Extraction{Features: features, Text: content}
}

func (e *FeatureExtractor) extractTransaction(record models.Record) Extraction {
	amount := record.Float("amount", 0)
	location := record.Map("location")
	timestamp := record.String("timestamp", "")

	amountLog := 0.0
	if amount+1 > 0 {
		amountLog = math.Log(amount + 1)
	}

	features := models.FeatureVector{
		"amount":            amount,
		"amount_log":        amountLog,
		"is_high_value":     boolFeature(amount > 10000),
		"is_negative":       boolFeature(amount < 0),
		"location_distance": location.Float("distance_from_home", 0),
		"is_foreign":        boolFeature(location.String("country", "US") != "US"),
		"hour_of_day":       float64(extractHour(timestamp)),
		"day_of_week":       float64(extractDayOfWeek(timestamp)),
		"is_weekend":        boolFeature(isWeekend(timestamp)),
		"is_holiday":        boolFeature(isHoliday(timestamp)),
	}

	return Extraction{Features: features}
}

func (e *FeatureExtractor) extractSocial(record models.Record) Extraction {
	content := record.String("content", "")
	profile := record.Map("profile")
	links := record.Strings("links")

	scope := models.ChannelSocialMedia.String()

	suspicious := 0
	for _, link := range links {
		if e.patterns.AnyPresent(link, scope, ConceptShorteners) {
			suspicious++
		}
	}

	followerLogInput := profile.Float("followers", 1)
	if followerLogInput < 1 {
		followerLogInput = 1
	}

	features := models.FeatureVector{
		"content_length":        float64(utf8.RuneCountInString(content)),
		"hashtag_count":         float64(strings.Count(content, "#")),
		"mention_count":         float64(strings.Count(content, "@")),
		"link_count":            float64(len(links)),
		"suspicious_link_count": float64(suspicious),
		"follower_count":        profile.Float("followers", 0),
		"follower_log":          math.Log(followerLogInput),
		"is_verified":           boolFeature(profile.Bool("verified", false)),
		"account_age_days":      profile.Float("account_age_days", 0),
		"engagement_rate":       engagementRate(profile),
	}

	features.Merge(e.profiler.Profile(content), "")

	profileText := strings.TrimSpace(profile.String("name", "") + " " + profile.String("bio", "") + " " + profile.String("location", ""))
	if profileText != "" {
		features.Merge(e.profiler.Profile(profileText), "profile_")
	}

	return Extraction{Features: features, Text: content}
}

func (e *FeatureExtractor) extractWebpage(record models.Record) Extraction {
	url := record.String("url", "")
	content := record.String("content", "")

	scope := models.ChannelWebpage.String()

	suspiciousTLD := false
	for _, tld := range e.patterns.Vocabulary(scope, ConceptSuspiciousTLD) {
		if strings.HasSuffix(url, tld) {
			suspiciousTLD = true
			break
		}
	}

	features := models.FeatureVector{
		"url_length":              float64(utf8.RuneCountInString(url)),
		"has_https":               boolFeature(strings.HasPrefix(url, "https://")),
		"has_ip":                  boolFeature(e.patterns.MatchRegex(url, scope, PatternIPHost)),
		"num_subdomains":          float64(strings.Count(url, ".") - 1),
		"is_shortened":            boolFeature(e.patterns.AnyPresent(url, scope, ConceptShorteners)),
		"phishing_keywords":       boolFeature(e.patterns.AnyPresent(url, scope, ConceptPhishingURL)),
		"suspicious_tld":          boolFeature(suspiciousTLD),
		"content_length":          float64(utf8.RuneCountInString(content)),
		"form_count":              float64(len(formTag.FindAllString(content, -1))),
		"external_link_count":     float64(len(externalHref.FindAllString(content, -1))),
		"script_count":            float64(len(scriptTag.FindAllString(content, -1))),
		"suspicious_script_count": float64(countSuspiciousScripts(content)),
	}

	features.Merge(e.profiler.Profile(content), "")

	return Extraction{Features: features, Text: strings.TrimSpace(url + " " + content)}
}

func (e *FeatureExtractor) extractMessaging(record models.Record) Extraction {
	content := record.String("content", "")
	sender := record.Map("sender")
	links := record.Strings("links")
	timestamp := record.String("timestamp", "")

	scope := models.ChannelMessaging.String()

	suspicious := 0
	for _, link := range links {
		if e.patterns.AnyPresent(link, scope, ConceptShorteners) {
			suspicious++
		}
	}

	length := utf8.RuneCountInString(content)
	hour, hourKnown := parseHour(timestamp)

	features := models.FeatureVector{
		"content_length":        float64(length),
		"urgent_requests":       float64(e.patterns.CountRegex(content, scope, ConceptUrgentRequests)),
		"link_count":            float64(len(links)),
		"suspicious_link_count": float64(suspicious),
		"sender_unknown":        boolFeature(!sender.Bool("verified", false) || sender.Int("mutual_contacts", 0) == 0),
		"time_suspicious":       boolFeature(hourKnown && (hour < 6 || hour > 23)),
		"content_suspicious":    boolFeature(length < 10 || length > 1000),
	}

	features.Merge(e.profiler.Profile(content), "")

	return Extraction{Features: features, Text: content}
}

func (e *FeatureExtractor) extractVoiceCall(record models.Record) Extraction {
	transcript := record.String("transcript", "")
	caller := record.String("caller_id", "")
	duration := record.Float("duration_seconds", 0)

	scope := models.ChannelVoiceCall.String()

	features := models.FeatureVector{
		"transcript_length":        float64(utf8.RuneCountInString(transcript)),
		"suspicious_requests":      float64(e.patterns.CountPresent(transcript, scope, ConceptSuspiciousRequests)),
		"emotional_manipulation":   float64(e.patterns.CountPresent(transcript, scope, ConceptEmotional)),
		"urgent_requests":          float64(e.patterns.CountPresent(transcript, scope, ConceptUrgentRequests)),
		"caller_suspicious":        boolFeature(strings.HasPrefix(caller, "+1") && len(caller) > 15),
		"call_duration_suspicious": boolFeature(duration > 600),
		"duration_seconds":         duration,
	}

	features.Merge(e.profiler.Profile(transcript), "")

	return Extraction{Features: features, Text: transcript}
}

func (e *FeatureExtractor) extractUserBehavior(record models.Record) Extraction {
	login := record.Map("login_patterns")
	activity := record.Map("account_activity")
	interaction := record.Map("interaction_patterns")

	features := models.FeatureVector{
		"unusual_time":       boolFeature(login.Bool("unusual_time", false)),
		"new_device":         boolFeature(login.Bool("new_device", false)),
		"new_location":       boolFeature(login.Bool("new_location", false)),
		"suspicious_actions": activity.Float("suspicious_actions", 0),
		"failed_logins":      activity.Float("failed_logins", 0),
		"unusual_pattern":    boolFeature(interaction.Bool("unusual_pattern", false)),
		"session_duration":   activity.Float("session_duration", 0),
		"page_views":         activity.Float("page_views", 0),
	}

	return Extraction{Features: features}
}

// countSuspiciousScripts counts script tags whose src does not point at a
// trusted https origin.
func countSuspiciousScripts(content string) int {
	count := 0
	for _, m := range scriptSrc.FindAllStringSubmatch(content, -1) {
		src := m[1]
		if !strings.HasPrefix(src, "https://trusted") && !strings.HasPrefix(src, "http://trusted") {
			count++
		}
	}
	return count
}

// engagementRate is (likes + comments) / followers. A profile without a
// followers field counts as a single follower; an explicit zero yields
// zero engagement.
func engagementRate(profile models.Record) float64 {
	followers := profile.Float("followers", 1)
	if followers <= 0 {
		return 0
	}
	return (profile.Float("likes", 0) + profile.Float("comments", 0)) / followers
}

// avgWordLength is the mean rune length of whitespace-separated words
func avgWordLength(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	return float64(total) / float64(len(words))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseHour extracts the hour of day; ok is false when the timestamp is
// empty or unparseable.
func parseHour(timestamp string) (int, bool) {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return 0, false
	}
	return t.Hour(), true
}

func parseTimestamp(timestamp string) (time.Time, bool) {
	if timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// extractHour defaults to midday when the timestamp is unusable
func extractHour(timestamp string) int {
	if h, ok := parseHour(timestamp); ok {
		return h
	}
	return 12
}

// extractDayOfWeek returns Monday=0..Sunday=6, defaulting to Monday
func extractDayOfWeek(timestamp string) int {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return 0
	}
	return (int(t.Weekday()) + 6) % 7
}

func isWeekend(timestamp string) bool {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return false
	}
	return (int(t.Weekday())+6)%7 >= 5
}

// isHoliday uses a fixed short table: Christmas, Boxing Day, New Year
func isHoliday(timestamp string) bool {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return false
	}
	return (t.Month() == time.December && (t.Day() == 25 || t.Day() == 26)) ||
		(t.Month() == time.January && t.Day() == 1)
}
