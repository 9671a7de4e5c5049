package model

// IPEntry is one row of the network activity table.
type IPEntry struct {
	ID        string
	IP        string
	Device    string
	Timestamp string
	RiskLevel int
	Status    RiskStatus
}

type AppPermission struct {
	ID                 string
	App                string
	PackageName        string
	Permissions        []string
	HarmfulPermissions []string
}

func (p AppPermission) HighRisk() bool {
	return len(p.HarmfulPermissions) > 0
}

// USBDevice holds lower-case hex vendor and product ids.
type USBDevice struct {
	VendorID    string
	ProductID   string
	ProductName string
}

func (d USBDevice) DisplayName() string {
	if d.ProductName == "" {
		return "Unknown Device"
	}
	return d.ProductName
}

type Stats struct {
	DevicesConnected int
	IPScanned        int
	AlertsDetected   int
}

// BannerKind mirrors the severity of the active alert banner. The zero value
// means no banner is shown.
type BannerKind string

const (
	BannerNone    BannerKind = ""
	BannerSuccess BannerKind = "success"
	BannerWarning BannerKind = "warning"
	BannerError   BannerKind = "error"
)

type Banner struct {
	Kind    BannerKind
	Title   string
	Message string
}
