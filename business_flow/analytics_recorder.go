package businessflow

import (
	"context"
	"log"
	"time"

	"github.com/dynalinks/dynalinks/app/services"
	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/repository"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/redis/go-redis/v9"
)

// AnalyticsRecorder persists click events off the redirect hot path
type AnalyticsRecorder interface {
	Record(link *CachedLink, client services.ClientInfo, metadata *ClientMetadata, decision RedirectDecision)
}

// AnalyticsRecorderImpl implements AnalyticsRecorder
type AnalyticsRecorderImpl struct {
	clickRepo repository.LinkClickRepository
	geoIP     services.GeoIPService
	rc        *redis.Client
	timeout   time.Duration
}

// NewAnalyticsRecorder creates a new analytics recorder
func NewAnalyticsRecorder(
	clickRepo repository.LinkClickRepository,
	geoIP services.GeoIPService,
	rc *redis.Client,
	timeout time.Duration,
) AnalyticsRecorder {
	return &AnalyticsRecorderImpl{
		clickRepo: clickRepo,
		geoIP:     geoIP,
		rc:        rc,
		timeout:   timeout,
	}
}

// Record writes the click event in a detached goroutine so the redirect
// response never waits on analytics. Failures are logged and dropped; a lost
// click must not break a redirect.
func (r *AnalyticsRecorderImpl) Record(link *CachedLink, client services.ClientInfo, metadata *ClientMetadata, decision RedirectDecision) {
	click := r.buildClick(link, client, metadata, decision)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.clickRepo.Save(ctx, click); err != nil {
			log.Printf("failed to record click for %s: %v", link.ShortCode, err)
			return
		}

		if r.rc != nil {
			if err := r.rc.Incr(ctx, utils.ClickCounterKey(link.ShortCode)).Err(); err != nil {
				log.Printf("failed to increment click counter for %s: %v", link.ShortCode, err)
			}
		}
	}()
}

func (r *AnalyticsRecorderImpl) buildClick(link *CachedLink, client services.ClientInfo, metadata *ClientMetadata, decision RedirectDecision) *models.LinkClick {
	click := &models.LinkClick{
		LinkID:       link.ID,
		ShortCode:    link.ShortCode,
		IPHash:       utils.HashIPAddress(metadata.IPAddress),
		UserAgent:    utils.Truncate(metadata.UserAgent, utils.MaxUserAgentLength),
		Platform:     client.Platform,
		DeviceType:   client.DeviceType,
		Browser:      client.Browser,
		OS:           client.OS,
		RedirectedTo: decision.TargetURL,
		RedirectType: decision.Type,
		CreatedAt:    utils.UTCNow(),
	}

	if metadata.Referer != "" {
		click.Referer = utils.ToPtr(utils.Truncate(metadata.Referer, utils.MaxUserAgentLength))
	}

	if r.geoIP != nil {
		geo := r.geoIP.Lookup(metadata.IPAddress)
		click.Country = geo.Country
		click.Region = geo.Region
		click.City = geo.City
	}

	return click
}
