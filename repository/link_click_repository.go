package repository

import (
	"context"
	"time"

	"github.com/dynalinks/dynalinks/models"
	"gorm.io/gorm"
)

// LinkClickRepositoryImpl implements LinkClickRepository
type LinkClickRepositoryImpl struct {
	*BaseRepository[models.LinkClick, models.LinkClickFilter]
}

func NewLinkClickRepository(db *gorm.DB) LinkClickRepository {
	return &LinkClickRepositoryImpl{BaseRepository: NewBaseRepository[models.LinkClick, models.LinkClickFilter](db)}
}

func (r *LinkClickRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkClickFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if f.ShortCode != nil {
		db = db.Where("short_code = ?", *f.ShortCode)
	}
	if f.Platform != nil {
		db = db.Where("platform = ?", *f.Platform)
	}
	if f.Country != nil {
		db = db.Where("country = ?", *f.Country)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *LinkClickRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkClickFilter, orderBy string, limit, offset int) ([]*models.LinkClick, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkClick{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.LinkClick
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkClickRepositoryImpl) Count(ctx context.Context, filter models.LinkClickFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.LinkClick{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkClickRepositoryImpl) Exists(ctx context.Context, filter models.LinkClickFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *LinkClickRepositoryImpl) CountByShortCode(ctx context.Context, shortCode string, since time.Time) (int64, error) {
	return r.Count(ctx, models.LinkClickFilter{ShortCode: &shortCode, CreatedAfter: &since})
}

func (r *LinkClickRepositoryImpl) CountDistinctIPs(ctx context.Context, shortCode string, since time.Time) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.LinkClick{}).
		Where("short_code = ? AND created_at >= ?", shortCode, since).
		Distinct("ip_hash").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkClickRepositoryImpl) CountByPlatform(ctx context.Context, shortCode string, since time.Time) ([]BucketCount, error) {
	db := r.getDB(ctx)
	var rows []BucketCount
	err := db.Model(&models.LinkClick{}).
		Select("platform AS key, COUNT(*) AS count").
		Where("short_code = ? AND created_at >= ? AND platform <> ''", shortCode, since).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkClickRepositoryImpl) CountByCountry(ctx context.Context, shortCode string, since time.Time, limit int) ([]BucketCount, error) {
	db := r.getDB(ctx)
	var rows []BucketCount
	err := db.Model(&models.LinkClick{}).
		Select("country AS key, COUNT(*) AS count").
		Where("short_code = ? AND created_at >= ? AND country IS NOT NULL", shortCode, since).
		Group("country").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkClickRepositoryImpl) CountByDate(ctx context.Context, shortCode string, since time.Time) ([]BucketCount, error) {
	db := r.getDB(ctx)
	var rows []BucketCount
	err := db.Model(&models.LinkClick{}).
		Select("TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS key, COUNT(*) AS count").
		Where("short_code = ? AND created_at >= ?", shortCode, since).
		Group("DATE(created_at)").
		Order("key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkClickRepositoryImpl) TopReferrers(ctx context.Context, shortCode string, since time.Time, limit int) ([]BucketCount, error) {
	db := r.getDB(ctx)
	var rows []BucketCount
	err := db.Model(&models.LinkClick{}).
		Select("referer AS key, COUNT(*) AS count").
		Where("short_code = ? AND created_at >= ? AND referer IS NOT NULL", shortCode, since).
		Group("referer").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkClickRepositoryImpl) ListByShortCode(ctx context.Context, shortCode string, since time.Time, orderBy string) ([]*models.LinkClick, error) {
	return r.ByFilter(ctx, models.LinkClickFilter{ShortCode: &shortCode, CreatedAfter: &since}, orderBy, 0, 0)
}
