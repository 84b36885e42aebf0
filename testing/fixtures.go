// Package testing provides test utilities and database setup for testing the redirect service
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestLink creates an active dynamic link with a random short code
func (tf *TestFixtures) CreateTestLink() (*models.DynamicLink, error) {
	code := fmt.Sprintf("t%06d", rand.Intn(1000000))

	link := &models.DynamicLink{
		UUID:        uuid.New(),
		ShortCode:   code,
		FallbackURL: "https://example.com/landing",
		IOSURL:      utils.ToPtr("https://apps.apple.com/app/id123456"),
		AndroidURL:  utils.ToPtr("https://play.google.com/store/apps/details?id=com.example"),
		Title:       utils.ToPtr("Test Link"),
		IsActive:    utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create test link: %w", err)
	}

	return link, nil
}

// CreateExpiredLink creates a link whose expiry is already in the past
func (tf *TestFixtures) CreateExpiredLink() (*models.DynamicLink, error) {
	link, err := tf.CreateTestLink()
	if err != nil {
		return nil, err
	}

	expiry := utils.UTCNow().Add(-time.Hour)
	if err := tf.DB.DB.Model(link).Update("expires_at", expiry).Error; err != nil {
		return nil, fmt.Errorf("failed to expire test link: %w", err)
	}
	link.ExpiresAt = &expiry

	return link, nil
}

// CreateInactiveLink creates a soft-deleted link
func (tf *TestFixtures) CreateInactiveLink() (*models.DynamicLink, error) {
	link, err := tf.CreateTestLink()
	if err != nil {
		return nil, err
	}

	if err := tf.DB.DB.Model(link).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate test link: %w", err)
	}
	link.IsActive = utils.ToPtr(false)

	return link, nil
}

// CreateTestClick records a click against the given link
func (tf *TestFixtures) CreateTestClick(link *models.DynamicLink, platform, country string, createdAt time.Time) (*models.LinkClick, error) {
	click := &models.LinkClick{
		LinkID:       link.ID,
		ShortCode:    link.ShortCode,
		IPHash:       utils.HashIPAddress(fmt.Sprintf("10.0.0.%d", rand.Intn(255))),
		UserAgent:    "Mozilla/5.0 (test)",
		Platform:     platform,
		DeviceType:   "mobile",
		Browser:      "Safari 17.0",
		OS:           "iOS 17.0",
		RedirectedTo: link.FallbackURL,
		RedirectType: "fallback",
		CreatedAt:    createdAt,
	}
	if platform == "ios" || platform == "android" {
		click.RedirectedTo = "html-redirect-for-" + platform
		click.RedirectType = platform
	}
	if country != "" {
		click.Country = utils.ToPtr(country)
	}

	if err := tf.DB.DB.Create(click).Error; err != nil {
		return nil, fmt.Errorf("failed to create test click: %w", err)
	}

	return click, nil
}
