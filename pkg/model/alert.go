package model

// NetworkAlert is the wire message pushed by the alert feed.
type NetworkAlert struct {
	SrcIP     string `json:"srcIp"`
	DstIP     string `json:"dstIp"`
	Timestamp string `json:"timestamp"` // opaque, display only
	RiskLevel int    `json:"riskLevel"` // 0-10 expected, not enforced
	Reason    string `json:"reason"`
}

// IsGreeting reports whether the alert is the feed's hello message,
// which carries unspecified addresses on both ends.
func (a NetworkAlert) IsGreeting() bool {
	return a.SrcIP == "0.0.0.0" && a.DstIP == "0.0.0.0"
}

func (a NetworkAlert) Status() RiskStatus {
	return StatusForRisk(a.RiskLevel)
}
