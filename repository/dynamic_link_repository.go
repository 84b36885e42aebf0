package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/utils"
	"gorm.io/gorm"
)

// DynamicLinkRepositoryImpl implements DynamicLinkRepository
type DynamicLinkRepositoryImpl struct {
	*BaseRepository[models.DynamicLink, models.DynamicLinkFilter]
}

func NewDynamicLinkRepository(db *gorm.DB) DynamicLinkRepository {
	return &DynamicLinkRepositoryImpl{BaseRepository: NewBaseRepository[models.DynamicLink, models.DynamicLinkFilter](db)}
}

// IsUniqueViolation reports whether err came from the short-code (or uuid)
// uniqueness constraint. The constraint is the authoritative guard against
// concurrent inserts of the same code.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "SQLSTATE 23505")
}

func (r *DynamicLinkRepositoryImpl) applyFilter(db *gorm.DB, f models.DynamicLinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.ShortCode != nil {
		db = db.Where("short_code = ?", *f.ShortCode)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *DynamicLinkRepositoryImpl) ByFilter(ctx context.Context, filter models.DynamicLinkFilter, orderBy string, limit, offset int) ([]*models.DynamicLink, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DynamicLink{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.DynamicLink
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DynamicLinkRepositoryImpl) Count(ctx context.Context, filter models.DynamicLinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.DynamicLink{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DynamicLinkRepositoryImpl) Exists(ctx context.Context, filter models.DynamicLinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *DynamicLinkRepositoryImpl) ByShortCode(ctx context.Context, shortCode string) (*models.DynamicLink, error) {
	filter := models.DynamicLinkFilter{ShortCode: &shortCode}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *DynamicLinkRepositoryImpl) ActiveByShortCode(ctx context.Context, shortCode string) (*models.DynamicLink, error) {
	filter := models.DynamicLinkFilter{ShortCode: &shortCode, IsActive: utils.ToPtr(true)}
	rows, err := r.ByFilter(ctx, filter, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// CodeExists checks occupancy of a short code including soft-deleted rows,
// so deactivated codes are never reissued.
func (r *DynamicLinkRepositoryImpl) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	return r.Exists(ctx, models.DynamicLinkFilter{ShortCode: &shortCode})
}

func (r *DynamicLinkRepositoryImpl) UpdateFields(ctx context.Context, shortCode string, fields map[string]any) (*models.DynamicLink, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	fields["updated_at"] = utils.UTCNow()
	res := db.Model(&models.DynamicLink{}).Where("short_code = ?", shortCode).Updates(fields)
	if res.Error != nil {
		err = res.Error
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var row models.DynamicLink
	if err = db.Where("short_code = ?", shortCode).Last(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *DynamicLinkRepositoryImpl) SoftDelete(ctx context.Context, shortCode string) (*uint, error) {
	row, err := r.UpdateFields(ctx, shortCode, map[string]any{"is_active": false})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return &row.ID, nil
}

func (r *DynamicLinkRepositoryImpl) ListLinks(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.DynamicLink, error) {
	filter := models.DynamicLinkFilter{}
	if activeOnly {
		filter.IsActive = utils.ToPtr(true)
	}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}
