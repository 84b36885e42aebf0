package businessflow

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/dynalinks/dynalinks/app/services"
	"github.com/dynalinks/dynalinks/models"
)

// RedirectAction is the outcome of a redirect decision
type RedirectAction string

const (
	ActionDirectRedirect RedirectAction = "direct"
	ActionInterstitial   RedirectAction = "interstitial"
	ActionGone           RedirectAction = "gone"
	ActionNotFound       RedirectAction = "not_found"
)

// Redirect type tags recorded with each click. Server-side redirects record
// which URL source won; interstitial responses record the client platform.
const (
	RedirectTypeDesktop  = "desktop"
	RedirectTypeFallback = "fallback"
)

// htmlRedirectPlaceholder marks interstitial clicks whose final destination is
// chosen client-side and therefore unknown to the server.
func htmlRedirectPlaceholder(platform string) string {
	return "html-redirect-for-" + platform
}

// InterstitialData carries everything the interstitial page needs. Both deep
// links ride along because the page re-checks the user agent in script and
// picks its own; an empty link means the script goes straight to the fallback.
type InterstitialData struct {
	IOSDeepLink     string
	AndroidDeepLink string
	FallbackURL     string
	Title           string
	Description     string
	ImageURL        string
}

// RedirectDecision is the resolved outcome for one redirect request
type RedirectDecision struct {
	Action       RedirectAction
	Type         string
	TargetURL    string
	Interstitial *InterstitialData
}

// DecideRedirect maps a resolved link and a classified client to a redirect
// outcome. The function is pure; callers supply the current time.
//
// iOS and Android clients always get the interstitial page, even when the
// matching deep link is absent, so the final hop is decided in the browser.
// Every other platform gets a server-side 302.
func DecideRedirect(link *CachedLink, client services.ClientInfo, now time.Time) RedirectDecision {
	if link == nil || !link.IsActive {
		return RedirectDecision{Action: ActionNotFound}
	}

	if link.ExpiresAt != nil && !now.Before(*link.ExpiresAt) {
		return RedirectDecision{Action: ActionGone}
	}

	switch client.Platform {
	case services.PlatformIOS, services.PlatformAndroid:
		return interstitialDecision(link, client.Platform)
	case services.PlatformDesktop:
		if link.DesktopURL != nil && *link.DesktopURL != "" {
			return RedirectDecision{
				Action:    ActionDirectRedirect,
				Type:      RedirectTypeDesktop,
				TargetURL: BuildRedirectURL(*link.DesktopURL, link.CustomParameters),
			}
		}
	}

	return RedirectDecision{
		Action:    ActionDirectRedirect,
		Type:      RedirectTypeFallback,
		TargetURL: BuildRedirectURL(link.FallbackURL, link.CustomParameters),
	}
}

func interstitialDecision(link *CachedLink, platform string) RedirectDecision {
	data := &InterstitialData{
		FallbackURL: BuildRedirectURL(link.FallbackURL, link.CustomParameters),
	}

	if link.IOSURL != nil && *link.IOSURL != "" {
		data.IOSDeepLink = BuildRedirectURL(*link.IOSURL, link.CustomParameters)
	}
	if link.AndroidURL != nil && *link.AndroidURL != "" {
		data.AndroidDeepLink = BuildRedirectURL(*link.AndroidURL, link.CustomParameters)
	}

	if link.SocialTitle != nil && *link.SocialTitle != "" {
		data.Title = *link.SocialTitle
	} else if link.Title != nil {
		data.Title = *link.Title
	}
	if link.SocialDescription != nil && *link.SocialDescription != "" {
		data.Description = *link.SocialDescription
	} else if link.Description != nil {
		data.Description = *link.Description
	}
	if link.SocialImageURL != nil && *link.SocialImageURL != "" {
		data.ImageURL = *link.SocialImageURL
	} else if link.ImageURL != nil {
		data.ImageURL = *link.ImageURL
	}

	return RedirectDecision{
		Action:       ActionInterstitial,
		Type:         platform,
		TargetURL:    htmlRedirectPlaceholder(platform),
		Interstitial: data,
	}
}

// BuildRedirectURL appends custom parameters to a destination URL, keeping any
// query parameters already present. Existing keys are not overwritten, null
// values are skipped, and keys are appended in sorted order so the output is
// deterministic.
func BuildRedirectURL(base string, params models.CustomParams) string {
	if len(params) == 0 {
		return base
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return base
	}

	query := parsed.Query()

	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == nil || query.Has(key) {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return base
	}
	sort.Strings(keys)

	for _, key := range keys {
		query.Set(key, fmt.Sprint(params[key]))
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}
