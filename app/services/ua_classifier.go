// Package services provides user agent classification, geolocation, and token management services
package services

import (
	"strings"

	"github.com/dynalinks/dynalinks/utils"
	"github.com/mileusna/useragent"
)

// Platform values assigned by the classifier. Mobile is the catch-all for
// mobile devices that are neither iOS nor Android; everything non-mobile,
// tablets included, classifies as desktop.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
	PlatformMobile  = "mobile"
	PlatformDesktop = "desktop"
)

// Device type values assigned by the classifier
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	DeviceOther   = "other"
)

// ClientInfo is the classification result for a single request
type ClientInfo struct {
	Platform   string
	DeviceType string
	Browser    string
	OS         string
	IsBot      bool
}

// UAClassifier classifies incoming requests by their User-Agent header
type UAClassifier interface {
	Classify(userAgent string) ClientInfo
}

type uaClassifier struct{}

// NewUAClassifier creates a new user agent classifier
func NewUAClassifier() UAClassifier {
	return &uaClassifier{}
}

// Classify parses the raw User-Agent value and derives platform, device type,
// browser, and OS. An empty or unrecognized value classifies as other/other.
func (s *uaClassifier) Classify(userAgent string) ClientInfo {
	if strings.TrimSpace(userAgent) == "" {
		return ClientInfo{
			Platform:   PlatformDesktop,
			DeviceType: DeviceOther,
			Browser:    "",
			OS:         "",
		}
	}

	parsed := useragent.Parse(userAgent)

	info := ClientInfo{
		Platform:   derivePlatform(userAgent, parsed),
		DeviceType: deriveDeviceType(parsed),
		Browser:    utils.Truncate(joinNameVersion(parsed.Name, parsed.Version), utils.MaxBrowserOSLength),
		OS:         utils.Truncate(joinNameVersion(parsed.OS, parsed.OSVersion), utils.MaxBrowserOSLength),
		IsBot:      parsed.Bot,
	}

	return info
}

// derivePlatform maps the user agent to a redirect platform. Only mobile
// devices are eligible for an app platform; the raw substring check covers
// WebViews and in-app browsers that mangle their product token.
func derivePlatform(raw string, parsed useragent.UserAgent) string {
	if !parsed.Mobile {
		return PlatformDesktop
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ipod"):
		return PlatformIOS
	case strings.Contains(lower, "android"):
		return PlatformAndroid
	}

	return PlatformMobile
}

func deriveDeviceType(parsed useragent.UserAgent) string {
	switch {
	case parsed.Bot:
		return DeviceBot
	case parsed.Tablet:
		return DeviceTablet
	case parsed.Mobile:
		return DeviceMobile
	case parsed.Desktop:
		return DeviceDesktop
	default:
		return DeviceOther
	}
}

func joinNameVersion(name, version string) string {
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)

	if name == "" {
		return ""
	}
	if version == "" {
		return name
	}
	return name + " " + version
}
