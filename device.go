package goGate

import "github.com/mileusna/useragent"

// DeviceClass is a coarse client device classification.
type DeviceClass uint8

const (
	// DeviceUnknown means the user agent was absent or unrecognized.
	DeviceUnknown DeviceClass = iota
	DeviceDesktop
	DeviceMobile
	DeviceTablet
)

func (d DeviceClass) String() string {
	switch d {
	case DeviceDesktop:
		return "desktop"
	case DeviceMobile:
		return "mobile"
	case DeviceTablet:
		return "tablet"
	default:
		return "unknown"
	}
}

// IsDesktop reports whether d is subject to desktop rules. Unknown devices
// count as desktop.
func (d DeviceClass) IsDesktop() bool {
	return d == DeviceDesktop || d == DeviceUnknown
}

// ParseDeviceClass maps a class name back to a DeviceClass.
func ParseDeviceClass(s string) DeviceClass {
	switch s {
	case "desktop":
		return DeviceDesktop
	case "mobile":
		return DeviceMobile
	case "tablet":
		return DeviceTablet
	default:
		return DeviceUnknown
	}
}

// ClassifyUserAgent derives a DeviceClass from a User-Agent header value.
func ClassifyUserAgent(ua string) DeviceClass {
	if ua == "" {
		return DeviceUnknown
	}
	parsed := useragent.Parse(ua)
	switch {
	case parsed.Tablet:
		return DeviceTablet
	case parsed.Mobile:
		return DeviceMobile
	case parsed.Desktop:
		return DeviceDesktop
	default:
		return DeviceUnknown
	}
}
