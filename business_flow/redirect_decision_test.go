package businessflow

import (
	"strings"
	"testing"
	"time"

	"github.com/dynalinks/dynalinks/app/services"
	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLink() *CachedLink {
	return &CachedLink{
		ID:          1,
		ShortCode:   "abc1234",
		FallbackURL: "https://example.com/landing",
		IsActive:    true,
	}
}

func iosClient() services.ClientInfo {
	return services.ClientInfo{Platform: services.PlatformIOS, DeviceType: services.DeviceMobile}
}

func androidClient() services.ClientInfo {
	return services.ClientInfo{Platform: services.PlatformAndroid, DeviceType: services.DeviceMobile}
}

func desktopClient() services.ClientInfo {
	return services.ClientInfo{Platform: services.PlatformDesktop, DeviceType: services.DeviceDesktop}
}

func TestDecideRedirect(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("NilLinkIsNotFound", func(t *testing.T) {
		decision := DecideRedirect(nil, desktopClient(), now)
		assert.Equal(t, ActionNotFound, decision.Action)
	})

	t.Run("InactiveLinkIsNotFound", func(t *testing.T) {
		link := testLink()
		link.IsActive = false
		decision := DecideRedirect(link, desktopClient(), now)
		assert.Equal(t, ActionNotFound, decision.Action)
	})

	t.Run("ExpiredLinkIsGone", func(t *testing.T) {
		link := testLink()
		expiry := now.Add(-time.Minute)
		link.ExpiresAt = &expiry
		decision := DecideRedirect(link, desktopClient(), now)
		assert.Equal(t, ActionGone, decision.Action)
	})

	t.Run("ExpiryBoundaryIsGone", func(t *testing.T) {
		link := testLink()
		expiry := now
		link.ExpiresAt = &expiry
		decision := DecideRedirect(link, desktopClient(), now)
		assert.Equal(t, ActionGone, decision.Action)
	})

	t.Run("FutureExpiryResolves", func(t *testing.T) {
		link := testLink()
		expiry := now.Add(time.Minute)
		link.ExpiresAt = &expiry
		decision := DecideRedirect(link, desktopClient(), now)
		assert.Equal(t, ActionDirectRedirect, decision.Action)
	})

	t.Run("IOSGetsInterstitialWithBothDeepLinks", func(t *testing.T) {
		link := testLink()
		link.IOSURL = utils.ToPtr("https://apps.apple.com/app/id1")
		link.AndroidURL = utils.ToPtr("https://play.google.com/store/apps/details?id=x")
		decision := DecideRedirect(link, iosClient(), now)
		require.Equal(t, ActionInterstitial, decision.Action)
		require.NotNil(t, decision.Interstitial)
		assert.Equal(t, "https://apps.apple.com/app/id1", decision.Interstitial.IOSDeepLink)
		assert.Equal(t, "https://play.google.com/store/apps/details?id=x", decision.Interstitial.AndroidDeepLink)
		assert.Equal(t, "https://example.com/landing", decision.Interstitial.FallbackURL)
		assert.Equal(t, services.PlatformIOS, decision.Type)
		assert.Equal(t, "html-redirect-for-ios", decision.TargetURL)
	})

	t.Run("IOSWithoutDeepLinkStillGetsInterstitial", func(t *testing.T) {
		link := testLink()
		link.AndroidURL = utils.ToPtr("https://play.google.com/store/apps/details?id=x")
		decision := DecideRedirect(link, iosClient(), now)
		require.Equal(t, ActionInterstitial, decision.Action)
		require.NotNil(t, decision.Interstitial)
		assert.Empty(t, decision.Interstitial.IOSDeepLink)
		assert.Equal(t, "https://example.com/landing", decision.Interstitial.FallbackURL)
	})

	t.Run("AndroidGetsInterstitial", func(t *testing.T) {
		link := testLink()
		link.AndroidURL = utils.ToPtr("https://play.google.com/store/apps/details?id=x")
		decision := DecideRedirect(link, androidClient(), now)
		require.Equal(t, ActionInterstitial, decision.Action)
		assert.Equal(t, "https://play.google.com/store/apps/details?id=x", decision.Interstitial.AndroidDeepLink)
		assert.Equal(t, services.PlatformAndroid, decision.Type)
		assert.Equal(t, "html-redirect-for-android", decision.TargetURL)
	})

	t.Run("DesktopPrefersDesktopURL", func(t *testing.T) {
		link := testLink()
		link.DesktopURL = utils.ToPtr("https://example.com/desktop")
		decision := DecideRedirect(link, desktopClient(), now)
		assert.Equal(t, ActionDirectRedirect, decision.Action)
		assert.Equal(t, "https://example.com/desktop", decision.TargetURL)
		assert.Equal(t, RedirectTypeDesktop, decision.Type)
	})

	t.Run("DesktopWithoutDesktopURLFallsBack", func(t *testing.T) {
		link := testLink()
		decision := DecideRedirect(link, desktopClient(), now)
		assert.Equal(t, ActionDirectRedirect, decision.Action)
		assert.Equal(t, "https://example.com/landing", decision.TargetURL)
		assert.Equal(t, RedirectTypeFallback, decision.Type)
	})

	t.Run("GenericMobileFallsBack", func(t *testing.T) {
		link := testLink()
		link.IOSURL = utils.ToPtr("https://apps.apple.com/app/id1")
		decision := DecideRedirect(link, services.ClientInfo{Platform: services.PlatformMobile}, now)
		assert.Equal(t, ActionDirectRedirect, decision.Action)
		assert.Equal(t, "https://example.com/landing", decision.TargetURL)
		assert.Equal(t, RedirectTypeFallback, decision.Type)
	})

	t.Run("InterstitialPrefersSocialMetadata", func(t *testing.T) {
		link := testLink()
		link.IOSURL = utils.ToPtr("https://apps.apple.com/app/id1")
		link.Title = utils.ToPtr("Plain Title")
		link.SocialTitle = utils.ToPtr("Social Title")
		link.Description = utils.ToPtr("Plain Description")
		decision := DecideRedirect(link, iosClient(), now)
		require.NotNil(t, decision.Interstitial)
		assert.Equal(t, "Social Title", decision.Interstitial.Title)
		assert.Equal(t, "Plain Description", decision.Interstitial.Description)
	})

	t.Run("CustomParametersAppendedToTargets", func(t *testing.T) {
		link := testLink()
		link.IOSURL = utils.ToPtr("https://apps.apple.com/app/id1")
		link.CustomParameters = models.CustomParams{"utm_source": "newsletter"}
		decision := DecideRedirect(link, iosClient(), now)
		require.NotNil(t, decision.Interstitial)
		assert.Contains(t, decision.Interstitial.IOSDeepLink, "utm_source=newsletter")
		assert.Contains(t, decision.Interstitial.FallbackURL, "utm_source=newsletter")
	})
}

func TestBuildRedirectURL(t *testing.T) {
	t.Run("NoParamsReturnsBase", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page", nil)
		assert.Equal(t, "https://example.com/page", url)
	})

	t.Run("AppendsParams", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page", models.CustomParams{"ref": "qr"})
		assert.Equal(t, "https://example.com/page?ref=qr", url)
	})

	t.Run("KeysAppendedInSortedOrder", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page", models.CustomParams{
			"zeta":  "1",
			"alpha": "2",
			"mid":   "3",
		})
		assert.Equal(t, "https://example.com/page?alpha=2&mid=3&zeta=1", url)
	})

	t.Run("ExistingKeysNotOverwritten", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page?ref=original", models.CustomParams{
			"ref":   "override",
			"extra": "yes",
		})
		assert.Contains(t, url, "ref=original")
		assert.Contains(t, url, "extra=yes")
		assert.NotContains(t, url, "ref=override")
	})

	t.Run("NilValuesSkipped", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page", models.CustomParams{
			"src":  nil,
			"kept": "yes",
		})
		assert.Equal(t, "https://example.com/page?kept=yes", url)
	})

	t.Run("OnlyNilValuesReturnsBase", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page", models.CustomParams{"src": nil})
		assert.Equal(t, "https://example.com/page", url)
	})

	t.Run("NonStringValuesFormatted", func(t *testing.T) {
		url := BuildRedirectURL("https://example.com/page", models.CustomParams{"count": float64(5)})
		assert.Equal(t, "https://example.com/page?count=5", url)
	})

	t.Run("UnparseableBaseReturnedVerbatim", func(t *testing.T) {
		base := "https://example.com/%zz"
		url := BuildRedirectURL(base, models.CustomParams{"a": "b"})
		assert.Equal(t, base, url)
	})
}

func TestRenderInterstitial(t *testing.T) {
	data := &InterstitialData{
		IOSDeepLink:     "myapp://open?id=1",
		AndroidDeepLink: "https://play.google.com/store/apps/details?id=x",
		FallbackURL:     "https://example.com/landing",
		Title:           "My App",
		Description:     "Open in the app",
		ImageURL:        "https://example.com/og.png",
	}

	html, err := RenderInterstitial(data)
	require.NoError(t, err)

	// URLs inside the script block are JS-escaped, so match on stable fragments
	assert.Contains(t, html, "myapp:")
	assert.Contains(t, html, "play.google.com")
	assert.Contains(t, html, "userAgent")
	assert.Contains(t, html, "https://example.com/landing")
	assert.Contains(t, html, "My App")
	assert.Contains(t, html, "og:image")
	assert.Contains(t, html, "visibilitychange")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(html), "<!DOCTYPE html>"))
}

func TestRenderInterstitialWithoutDeepLinks(t *testing.T) {
	data := &InterstitialData{
		FallbackURL: "https://example.com/landing",
	}

	html, err := RenderInterstitial(data)
	require.NoError(t, err)

	// Empty deep links render as empty strings so the script goes straight
	// to the fallback
	assert.Contains(t, html, "if (!deepLink)")
	assert.Contains(t, html, "https://example.com/landing")
}

func TestRenderInterstitialEscapesMetadata(t *testing.T) {
	data := &InterstitialData{
		IOSDeepLink: "myapp://open",
		FallbackURL: "https://example.com",
		Title:       `<script>alert("x")</script>`,
	}

	html, err := RenderInterstitial(data)
	require.NoError(t, err)
	assert.NotContains(t, html, `<script>alert("x")</script>`)
}
