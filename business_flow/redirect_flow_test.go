package businessflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dynalinks/dynalinks/app/services"
	"github.com/dynalinks/dynalinks/config"
	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUAIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	testUADesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// captureRecorder records invocations instead of persisting clicks
type captureRecorder struct {
	mu        sync.Mutex
	clients   []services.ClientInfo
	decisions []RedirectDecision
	metadata  []*ClientMetadata
}

func (c *captureRecorder) Record(link *CachedLink, client services.ClientInfo, metadata *ClientMetadata, decision RedirectDecision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = append(c.clients, client)
	c.decisions = append(c.decisions, decision)
	c.metadata = append(c.metadata, metadata)
}

func (c *captureRecorder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.decisions)
}

func newRedirectFixture(t *testing.T) (*fakeLinkRepo, *captureRecorder, RedirectFlow) {
	t.Helper()

	repo := newFakeLinkRepo()
	recorder := &captureRecorder{}
	flow := NewRedirectFlow(
		repo,
		services.NewUAClassifier(),
		recorder,
		nil,
		config.LinksConfig{ShortDomain: "https://dyna.link", EnableAnalytics: true, AnalyticsTimeout: time.Second},
		&config.CacheConfig{LinkTTL: time.Hour},
	)
	return repo, recorder, flow
}

func saveRedirectLink(t *testing.T, repo *fakeLinkRepo, mutate func(*models.DynamicLink)) *models.DynamicLink {
	t.Helper()

	link := &models.DynamicLink{
		ID:          1,
		ShortCode:   "abc1234",
		FallbackURL: "https://example.com/landing",
		IOSURL:      utils.ToPtr("https://apps.apple.com/app/id1"),
		IsActive:    utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}
	if mutate != nil {
		mutate(link)
	}
	require.NoError(t, repo.Save(context.Background(), link))
	return link
}

func TestRedirectFlowResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownCodeIsNotFound", func(t *testing.T) {
		_, _, flow := newRedirectFixture(t)
		_, err := flow.Resolve(ctx, "missing", NewClientMetadata("203.0.113.7", testUADesktop))
		require.Error(t, err)
		assert.True(t, IsLinkNotFound(err))
	})

	t.Run("InactiveCodeIsNotFound", func(t *testing.T) {
		repo, recorder, flow := newRedirectFixture(t)
		saveRedirectLink(t, repo, func(l *models.DynamicLink) {
			l.IsActive = utils.ToPtr(false)
		})

		_, err := flow.Resolve(ctx, "abc1234", NewClientMetadata("203.0.113.7", testUADesktop))
		require.Error(t, err)
		assert.True(t, IsLinkNotFound(err))
		assert.Zero(t, recorder.count())
	})

	t.Run("ExpiredCodeIsExpired", func(t *testing.T) {
		repo, recorder, flow := newRedirectFixture(t)
		saveRedirectLink(t, repo, func(l *models.DynamicLink) {
			l.ExpiresAt = utils.ToPtr(utils.UTCNow().Add(-time.Hour))
		})

		_, err := flow.Resolve(ctx, "abc1234", NewClientMetadata("203.0.113.7", testUADesktop))
		require.Error(t, err)
		assert.True(t, IsLinkExpired(err))
		assert.Zero(t, recorder.count())
	})

	t.Run("DesktopGetsDirectRedirect", func(t *testing.T) {
		repo, recorder, flow := newRedirectFixture(t)
		saveRedirectLink(t, repo, nil)

		result, err := flow.Resolve(ctx, "abc1234", NewClientMetadata("203.0.113.7", testUADesktop))
		require.NoError(t, err)
		assert.Equal(t, ActionDirectRedirect, result.Decision.Action)
		assert.Equal(t, "https://example.com/landing", result.Decision.TargetURL)
		assert.Equal(t, RedirectTypeFallback, result.Decision.Type)
		assert.Equal(t, services.PlatformDesktop, result.Platform)
		assert.Empty(t, result.HTML)
		assert.Equal(t, 1, recorder.count())
	})

	t.Run("IPhoneGetsInterstitial", func(t *testing.T) {
		repo, recorder, flow := newRedirectFixture(t)
		saveRedirectLink(t, repo, nil)

		result, err := flow.Resolve(ctx, "abc1234", NewClientMetadata("203.0.113.7", testUAIPhone))
		require.NoError(t, err)
		assert.Equal(t, ActionInterstitial, result.Decision.Action)
		assert.Equal(t, services.PlatformIOS, result.Platform)
		assert.NotEmpty(t, result.HTML)
		assert.Contains(t, result.HTML, "https://example.com/landing")

		require.Equal(t, 1, recorder.count())
		assert.Equal(t, services.PlatformIOS, recorder.clients[0].Platform)
		assert.Equal(t, ActionInterstitial, recorder.decisions[0].Action)
		assert.Equal(t, services.PlatformIOS, recorder.decisions[0].Type)
		assert.Equal(t, "html-redirect-for-ios", recorder.decisions[0].TargetURL)
	})

	t.Run("AnalyticsDisabledSkipsRecorder", func(t *testing.T) {
		repo := newFakeLinkRepo()
		recorder := &captureRecorder{}
		flow := NewRedirectFlow(
			repo,
			services.NewUAClassifier(),
			recorder,
			nil,
			config.LinksConfig{ShortDomain: "https://dyna.link", EnableAnalytics: false},
			&config.CacheConfig{LinkTTL: time.Hour},
		)
		saveRedirectLink(t, repo, nil)

		_, err := flow.Resolve(ctx, "abc1234", NewClientMetadata("203.0.113.7", testUADesktop))
		require.NoError(t, err)
		assert.Zero(t, recorder.count())
	})
}
