package services

import (
	"strings"
	"testing"

	"github.com/dynalinks/dynalinks/utils"
	"github.com/stretchr/testify/assert"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"
	uaBot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	uaLumia   = "Mozilla/5.0 (compatible; MSIE 10.0; Windows Phone 8.0; Trident/6.0; IEMobile/10.0; ARM; Touch; NOKIA; Lumia 920)"
)

func TestClassifyPlatform(t *testing.T) {
	classifier := NewUAClassifier()

	tests := []struct {
		name      string
		userAgent string
		platform  string
	}{
		{"IPhone", uaIPhone, PlatformIOS},
		{"IPadTabletIsDesktop", uaIPad, PlatformDesktop},
		{"Android", uaAndroid, PlatformAndroid},
		{"Windows", uaWindows, PlatformDesktop},
		{"Mac", uaMac, PlatformDesktop},
		{"WindowsPhoneIsGenericMobile", uaLumia, PlatformMobile},
		{"Empty", "", PlatformDesktop},
		{"Garbage", "not a real user agent", PlatformDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := classifier.Classify(tt.userAgent)
			assert.Equal(t, tt.platform, info.Platform)
		})
	}
}

func TestClassifyDeviceType(t *testing.T) {
	classifier := NewUAClassifier()

	assert.Equal(t, DeviceMobile, classifier.Classify(uaIPhone).DeviceType)
	assert.Equal(t, DeviceTablet, classifier.Classify(uaIPad).DeviceType)
	assert.Equal(t, DeviceDesktop, classifier.Classify(uaWindows).DeviceType)
	assert.Equal(t, DeviceBot, classifier.Classify(uaBot).DeviceType)
	assert.Equal(t, DeviceOther, classifier.Classify("").DeviceType)
}

func TestClassifyBrowserAndOS(t *testing.T) {
	classifier := NewUAClassifier()

	info := classifier.Classify(uaAndroid)
	assert.Contains(t, info.Browser, "Chrome")
	assert.Contains(t, info.OS, "Android")
	assert.False(t, info.IsBot)

	info = classifier.Classify(uaBot)
	assert.True(t, info.IsBot)
}

func TestClassifyBoundsFieldLengths(t *testing.T) {
	classifier := NewUAClassifier()

	// Pathological UA with an oversized product token
	ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) " + strings.Repeat("X", 300) + "/1.0"
	info := classifier.Classify(ua)

	assert.LessOrEqual(t, len(info.Browser), utils.MaxBrowserOSLength)
	assert.LessOrEqual(t, len(info.OS), utils.MaxBrowserOSLength)
	assert.Equal(t, PlatformIOS, info.Platform)
}

func TestClassifyWebViewFallsBackToRawToken(t *testing.T) {
	classifier := NewUAClassifier()

	// In-app browsers often mangle the product token but keep the device string
	ua := "SomeApp/3.2 (iPhone; like Mac OS X) CustomWebView"
	info := classifier.Classify(ua)
	assert.Equal(t, PlatformIOS, info.Platform)
}
