package monitor

import (
	"strings"

	"github.com/cybersentry/sentry/pkg/model"
)

var usbAccessError = model.Notification{
	Title:       "USB Access Error",
	Description: "Could not access USB device. Make sure you have the necessary permissions.",
	Severity:    model.SeverityDestructive,
}

// AttachUSB adds a device to the list. Ids are normalised to lower-case hex
// so detach can match them.
func (s *Session) AttachUSB(d model.USBDevice) model.Notification {
	d.VendorID = normaliseID(d.VendorID)
	d.ProductID = normaliseID(d.ProductID)
	s.usb = append(s.usb, d)
	return model.Notification{
		Title:       "USB Device Detected",
		Description: "New device connected: " + d.DisplayName(),
		Severity:    model.SeverityInfo,
	}
}

// DetachUSB removes every device with the given vendor and product id and
// reports whether any was removed.
func (s *Session) DetachUSB(vendorID, productID string) bool {
	vendorID, productID = normaliseID(vendorID), normaliseID(productID)
	kept := s.usb[:0]
	for _, d := range s.usb {
		if d.VendorID != vendorID || d.ProductID != productID {
			kept = append(kept, d)
		}
	}
	removed := len(kept) != len(s.usb)
	s.usb = kept
	return removed
}

// ScanUSB simulates a device request: it attaches a catalogue device that is
// not yet listed, or fails when every one is already attached.
func (s *Session) ScanUSB() (model.USBDevice, model.Notification, bool) {
	var free []model.USBDevice
	for _, c := range usbCatalogue {
		if !s.hasUSB(c) {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return model.USBDevice{}, usbAccessError, false
	}
	d := free[s.opts.Rand.IntN(len(free))]
	return d, s.AttachUSB(d), true
}

func (s *Session) hasUSB(d model.USBDevice) bool {
	for _, u := range s.usb {
		if u.VendorID == d.VendorID && u.ProductID == d.ProductID {
			return true
		}
	}
	return false
}

func normaliseID(id string) string {
	id = strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(id, "0x"), "0X"))
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" && id != "" {
		return "0"
	}
	return trimmed
}
