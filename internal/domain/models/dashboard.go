package models

// TrendPoint is one hourly bucket of average risk, computed from the
// alert history. Hours without alerts report zero risk.
type TrendPoint struct {
	Time            string  `json:"time"`
	EmailRisk       float64 `json:"email_risk"`
	WebRisk         float64 `json:"web_risk"`
	SocialRisk      float64 `json:"social_risk"`
	TransactionRisk float64 `json:"transaction_risk"`
	CombinedRisk    float64 `json:"combined_risk"`
}

// ChannelCount is one slice of the per-channel alert distribution
type ChannelCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}
