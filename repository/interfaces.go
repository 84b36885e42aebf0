// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/dynalinks/dynalinks/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// DynamicLinkRepository defines operations for dynamic links
type DynamicLinkRepository interface {
	Repository[models.DynamicLink, models.DynamicLinkFilter]
	// ByShortCode reads a link regardless of status (management endpoints).
	ByShortCode(ctx context.Context, shortCode string) (*models.DynamicLink, error)
	// ActiveByShortCode reads only active links (redirect resolution).
	ActiveByShortCode(ctx context.Context, shortCode string) (*models.DynamicLink, error)
	CodeExists(ctx context.Context, shortCode string) (bool, error)
	UpdateFields(ctx context.Context, shortCode string, fields map[string]any) (*models.DynamicLink, error)
	SoftDelete(ctx context.Context, shortCode string) (*uint, error)
	ListLinks(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.DynamicLink, error)
}

// BucketCount is one row of a grouped click aggregate (platform, country,
// date bucket or referrer, depending on the query)
type BucketCount struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

// LinkClickRepository defines operations for click events and aggregates
type LinkClickRepository interface {
	Repository[models.LinkClick, models.LinkClickFilter]
	CountByShortCode(ctx context.Context, shortCode string, since time.Time) (int64, error)
	CountDistinctIPs(ctx context.Context, shortCode string, since time.Time) (int64, error)
	CountByPlatform(ctx context.Context, shortCode string, since time.Time) ([]BucketCount, error)
	CountByCountry(ctx context.Context, shortCode string, since time.Time, limit int) ([]BucketCount, error)
	CountByDate(ctx context.Context, shortCode string, since time.Time) ([]BucketCount, error)
	TopReferrers(ctx context.Context, shortCode string, since time.Time, limit int) ([]BucketCount, error)
	ListByShortCode(ctx context.Context, shortCode string, since time.Time, orderBy string) ([]*models.LinkClick, error)
}
