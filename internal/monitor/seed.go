package monitor

import "github.com/cybersentry/sentry/pkg/model"

// seedRows is the activity shown as soon as monitoring starts.
var seedRows = []model.IPEntry{
	{ID: "1", IP: "192.168.1.101", Device: "Desktop PC", Timestamp: "2023-04-24 10:15:22", RiskLevel: 1, Status: model.StatusSafe},
	{ID: "2", IP: "192.168.1.105", Device: "Android Phone", Timestamp: "2023-04-24 10:14:55", RiskLevel: 2, Status: model.StatusSafe},
	{ID: "3", IP: "45.33.49.201", Device: "Unknown", Timestamp: "2023-04-24 10:14:30", RiskLevel: 7, Status: model.StatusDanger},
	{ID: "4", IP: "192.168.1.110", Device: "Smart TV", Timestamp: "2023-04-24 10:13:15", RiskLevel: 1, Status: model.StatusSafe},
	{ID: "5", IP: "192.168.1.115", Device: "Tablet", Timestamp: "2023-04-24 10:12:08", RiskLevel: 4, Status: model.StatusWarning},
}

var seedPermissions = []model.AppPermission{
	{
		ID: "1", App: "Messaging App", PackageName: "com.messages",
		Permissions:        []string{"READ_CONTACTS", "INTERNET"},
		HarmfulPermissions: []string{"SEND_SMS", "READ_CALL_LOG"},
	},
	{
		ID: "2", App: "Camera App", PackageName: "com.camera",
		Permissions: []string{"CAMERA", "STORAGE"},
	},
	{
		ID: "3", App: "Suspicious Game", PackageName: "com.game.suspicious",
		Permissions:        []string{"INTERNET", "STORAGE"},
		HarmfulPermissions: []string{"READ_SMS", "CAMERA", "LOCATION"},
	},
	{
		ID: "4", App: "Weather App", PackageName: "com.weather.forecast",
		Permissions: []string{"INTERNET", "LOCATION"},
	},
}

const (
	seedDevices = 4
	seedScanned = 5
	seedAlerts  = 2
)

// usbCatalogue is what a simulated scan can find. Ids are lower-case hex
// without leading zeros.
var usbCatalogue = []model.USBDevice{
	{VendorID: "18d1", ProductID: "4ee7", ProductName: "Pixel 7"},
	{VendorID: "4e8", ProductID: "6860", ProductName: "Galaxy S21"},
	{VendorID: "781", ProductID: "5581", ProductName: "Ultra USB 3.0"},
	{VendorID: "46d", ProductID: "c52b", ProductName: "Unifying Receiver"},
	{VendorID: "1a86", ProductID: "7523"},
}
