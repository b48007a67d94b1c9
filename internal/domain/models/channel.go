package models

import "strings"

// Channel identifies the kind of record being analyzed
type Channel string

const (
	ChannelEmail        Channel = "email"
	ChannelWebpage      Channel = "webpage"
	ChannelSocialMedia  Channel = "social_media"
	ChannelTransaction  Channel = "transaction"
	ChannelMessaging    Channel = "messaging"
	ChannelVoiceCall    Channel = "voice_call"
	ChannelUserBehavior Channel = "user_behavior"
)

// AllChannels lists every channel the platform analyzes, in display order
func AllChannels() []Channel {
	return []Channel{
		ChannelEmail,
		ChannelWebpage,
		ChannelSocialMedia,
		ChannelTransaction,
		ChannelMessaging,
		ChannelVoiceCall,
		ChannelUserBehavior,
	}
}

// IsValid reports whether c is a known channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelWebpage, ChannelSocialMedia, ChannelTransaction,
		ChannelMessaging, ChannelVoiceCall, ChannelUserBehavior:
		return true
	}
	return false
}

func (c Channel) String() string {
	return string(c)
}

// DisplayName capitalizes each underscore-separated word, keeping the
// underscores: social_media becomes Social_Media.
func (c Channel) DisplayName() string {
	parts := strings.Split(string(c), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "_")
}

// ThreatLevel is the discretized risk classification
type ThreatLevel string

const (
	ThreatLevelCritical ThreatLevel = "CRITICAL"
	ThreatLevelHigh     ThreatLevel = "HIGH"
	ThreatLevelMedium   ThreatLevel = "MEDIUM"
	ThreatLevelLow      ThreatLevel = "LOW"
	ThreatLevelSafe     ThreatLevel = "SAFE"
)

// IsAlertable reports whether the level counts toward high-risk statistics
func (t ThreatLevel) IsAlertable() bool {
	return t == ThreatLevelCritical || t == ThreatLevelHigh
}

func (t ThreatLevel) String() string {
	return string(t)
}
