package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/redis/go-redis/v9"
)

// CachedLink is the snapshot stored in Redis for hot-path resolution. It
// carries everything the redirect decision needs so a cache hit never touches
// the database.
type CachedLink struct {
	ID                uint                `json:"id"`
	ShortCode         string              `json:"short_code"`
	IOSURL            *string             `json:"ios_url,omitempty"`
	AndroidURL        *string             `json:"android_url,omitempty"`
	DesktopURL        *string             `json:"desktop_url,omitempty"`
	FallbackURL       string              `json:"fallback_url"`
	Title             *string             `json:"title,omitempty"`
	Description       *string             `json:"description,omitempty"`
	ImageURL          *string             `json:"image_url,omitempty"`
	SocialTitle       *string             `json:"social_title,omitempty"`
	SocialDescription *string             `json:"social_description,omitempty"`
	SocialImageURL    *string             `json:"social_image_url,omitempty"`
	IsActive          bool                `json:"is_active"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	CustomParameters  models.CustomParams `json:"custom_parameters,omitempty"`
}

// NewCachedLink builds a cache snapshot from a link model
func NewCachedLink(link *models.DynamicLink) *CachedLink {
	return &CachedLink{
		ID:                link.ID,
		ShortCode:         link.ShortCode,
		IOSURL:            link.IOSURL,
		AndroidURL:        link.AndroidURL,
		DesktopURL:        link.DesktopURL,
		FallbackURL:       link.FallbackURL,
		Title:             link.Title,
		Description:       link.Description,
		ImageURL:          link.ImageURL,
		SocialTitle:       link.SocialTitle,
		SocialDescription: link.SocialDescription,
		SocialImageURL:    link.SocialImageURL,
		IsActive:          utils.IsTrue(link.IsActive),
		ExpiresAt:         link.ExpiresAt,
		CustomParameters:  link.CustomParameters,
	}
}

// cacheLink stores a link snapshot. Cache failures are swallowed; the
// database remains the source of truth.
func cacheLink(ctx context.Context, rc *redis.Client, link *CachedLink, ttl time.Duration) {
	if rc == nil {
		return
	}

	bytes, err := json.Marshal(link)
	if err != nil {
		return
	}

	_ = rc.Set(ctx, utils.LinkCacheKey(link.ShortCode), bytes, ttl).Err()
}

// cachedLink reads a link snapshot from the cache. A corrupt entry is deleted
// so the next lookup falls through to the database.
func cachedLink(ctx context.Context, rc *redis.Client, shortCode string) *CachedLink {
	if rc == nil {
		return nil
	}

	bytes, err := rc.Get(ctx, utils.LinkCacheKey(shortCode)).Bytes()
	if err != nil || len(bytes) == 0 {
		return nil
	}

	var link CachedLink
	if err := json.Unmarshal(bytes, &link); err != nil {
		_ = rc.Del(ctx, utils.LinkCacheKey(shortCode)).Err()
		return nil
	}

	return &link
}

// invalidateLink drops the cached snapshot after a write
func invalidateLink(ctx context.Context, rc *redis.Client, shortCode string) {
	if rc == nil {
		return
	}
	_ = rc.Del(ctx, utils.LinkCacheKey(shortCode)).Err()
}
