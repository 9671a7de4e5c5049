package model

type RiskStatus string

const (
	StatusSafe    RiskStatus = "safe"
	StatusWarning RiskStatus = "warning"
	StatusDanger  RiskStatus = "danger"
)

// StatusForRisk buckets a 0-10 risk level: above 6 is danger, above 3 is
// warning, anything else is safe.
func StatusForRisk(level int) RiskStatus {
	switch {
	case level > 6:
		return StatusDanger
	case level > 3:
		return StatusWarning
	default:
		return StatusSafe
	}
}
