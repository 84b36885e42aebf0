package businessflow

import (
	"context"

	"github.com/dynalinks/dynalinks/app/services"
	"github.com/dynalinks/dynalinks/config"
	"github.com/dynalinks/dynalinks/repository"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/redis/go-redis/v9"
)

// RedirectResult is the outcome handed to the HTTP layer
type RedirectResult struct {
	Decision RedirectDecision
	Platform string
	HTML     string
}

// RedirectFlow resolves short codes and produces redirect outcomes
type RedirectFlow interface {
	Resolve(ctx context.Context, shortCode string, metadata *ClientMetadata) (*RedirectResult, error)
}

// RedirectFlowImpl implements RedirectFlow
type RedirectFlowImpl struct {
	linkRepo    repository.DynamicLinkRepository
	classifier  services.UAClassifier
	recorder    AnalyticsRecorder
	linksConfig config.LinksConfig
	cacheConfig *config.CacheConfig
	rc          *redis.Client
}

// NewRedirectFlow creates a new redirect flow instance
func NewRedirectFlow(
	linkRepo repository.DynamicLinkRepository,
	classifier services.UAClassifier,
	recorder AnalyticsRecorder,
	rc *redis.Client,
	linksConfig config.LinksConfig,
	cacheConfig *config.CacheConfig,
) RedirectFlow {
	return &RedirectFlowImpl{
		linkRepo:    linkRepo,
		classifier:  classifier,
		recorder:    recorder,
		linksConfig: linksConfig,
		cacheConfig: cacheConfig,
		rc:          rc,
	}
}

// Resolve looks up the link, decides the redirect, and records the click.
// Lookups are cache-aside: a cache miss reads the database and warms the
// cache, so repeat hits on a hot code never touch Postgres.
func (s *RedirectFlowImpl) Resolve(ctx context.Context, shortCode string, metadata *ClientMetadata) (*RedirectResult, error) {
	snapshot := cachedLink(ctx, s.rc, shortCode)
	if snapshot == nil {
		// Inactive links are filtered at the store so they never warm the cache
		link, err := s.linkRepo.ActiveByShortCode(ctx, shortCode)
		if err != nil {
			return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
		}
		if link == nil {
			return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
		}

		snapshot = NewCachedLink(link)
		cacheLink(ctx, s.rc, snapshot, s.cacheConfig.LinkTTL)
	}

	client := s.classifier.Classify(metadata.UserAgent)
	decision := DecideRedirect(snapshot, client, utils.UTCNow())

	switch decision.Action {
	case ActionNotFound:
		return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	case ActionGone:
		return nil, NewBusinessError("LINK_EXPIRED", "Link has expired", ErrLinkExpired)
	}

	if s.linksConfig.EnableAnalytics {
		s.recorder.Record(snapshot, client, metadata, decision)
	}

	result := &RedirectResult{Decision: decision, Platform: client.Platform}

	if decision.Action == ActionInterstitial {
		html, err := RenderInterstitial(decision.Interstitial)
		if err != nil {
			return nil, NewBusinessError("INTERSTITIAL_RENDER_FAILED", "Failed to render interstitial page", err)
		}
		result.HTML = html
	}

	return result, nil
}
