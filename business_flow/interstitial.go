package businessflow

import (
	"bytes"
	"html/template"
)

// deepLinkDelayMS is how long the interstitial waits for the native app to
// claim the deep link before following the web fallback.
const deepLinkDelayMS = 1500

var interstitialTemplate = template.Must(template.New("interstitial").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}}{{else}}Redirecting...{{end}}</title>
{{if .Title}}<meta property="og:title" content="{{.Title}}">{{end}}
{{if .Description}}<meta property="og:description" content="{{.Description}}">{{end}}
{{if .ImageURL}}<meta property="og:image" content="{{.ImageURL}}">{{end}}
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; background: #f5f5f5; }
.card { text-align: center; padding: 2rem; }
.spinner { width: 40px; height: 40px; margin: 0 auto 1rem; border: 4px solid #ddd; border-top-color: #4285f4; border-radius: 50%; animation: spin 1s linear infinite; }
@keyframes spin { to { transform: rotate(360deg); } }
a { color: #4285f4; }
</style>
</head>
<body>
<div class="card">
<div class="spinner"></div>
<p>Opening app...</p>
<p><a href="{{.FallbackURL}}">Continue in browser</a></p>
</div>
<script>
(function() {
	var ua = navigator.userAgent || navigator.vendor || window.opera;
	var fallback = {{.FallbackURL}};
	var deepLink;

	if (/iPad|iPhone|iPod/.test(ua) && !window.MSStream) {
		deepLink = {{.IOSDeepLink}};
	} else if (/android/i.test(ua)) {
		deepLink = {{.AndroidDeepLink}};
	} else {
		window.location.href = fallback;
		return;
	}

	if (!deepLink) {
		window.location.href = fallback;
		return;
	}

	window.location.href = deepLink;

	var timer = setTimeout(function() {
		window.location.href = fallback;
	}, {{.DelayMS}});

	function onVisibilityChange() {
		if (document.hidden || document.webkitHidden) {
			clearTimeout(timer);
		}
	}
	document.addEventListener("visibilitychange", onVisibilityChange, false);
	document.addEventListener("webkitvisibilitychange", onVisibilityChange, false);
})();
</script>
</body>
</html>
`))

// RenderInterstitial renders the deep-link interstitial page. The script
// re-checks the user agent, attempts the matching deep link, and navigates to
// the fallback after a delay unless the page was hidden, which means the
// native app took over. With no deep link for the platform it goes straight
// to the fallback.
func RenderInterstitial(data *InterstitialData) (string, error) {
	var buf bytes.Buffer
	err := interstitialTemplate.Execute(&buf, struct {
		*InterstitialData
		DelayMS int
	}{
		InterstitialData: data,
		DelayMS:          deepLinkDelayMS,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
