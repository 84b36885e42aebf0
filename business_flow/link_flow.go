package businessflow

import (
	"context"

	"github.com/dynalinks/dynalinks/app/dto"
	"github.com/dynalinks/dynalinks/config"
	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/repository"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// LinkFlow defines the interface for dynamic link management operations
type LinkFlow interface {
	CreateLink(ctx context.Context, req *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.DynamicLinkDTO, error)
	GetLink(ctx context.Context, shortCode string) (*dto.DynamicLinkDTO, error)
	UpdateLink(ctx context.Context, shortCode string, req *dto.UpdateLinkRequest, metadata *ClientMetadata) (*dto.DynamicLinkDTO, error)
	DeleteLink(ctx context.Context, shortCode string, metadata *ClientMetadata) error
	ListLinks(ctx context.Context, req *dto.ListLinksRequest) (*dto.ListLinksResponse, error)
}

// LinkFlowImpl implements LinkFlow
type LinkFlowImpl struct {
	linkRepo    repository.DynamicLinkRepository
	codeGen     ShortCodeGenerator
	linksConfig config.LinksConfig
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewLinkFlow creates a new link flow instance
func NewLinkFlow(
	linkRepo repository.DynamicLinkRepository,
	codeGen ShortCodeGenerator,
	db *gorm.DB,
	rc *redis.Client,
	linksConfig config.LinksConfig,
	cacheConfig *config.CacheConfig,
) LinkFlow {
	return &LinkFlowImpl{
		linkRepo:    linkRepo,
		codeGen:     codeGen,
		linksConfig: linksConfig,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// CreateLink handles the complete link creation process
func (s *LinkFlowImpl) CreateLink(ctx context.Context, req *dto.CreateLinkRequest, metadata *ClientMetadata) (*dto.DynamicLinkDTO, error) {
	if req.ExpiresAt != nil && utils.IsExpired(*req.ExpiresAt) {
		return nil, NewBusinessError("EXPIRY_IN_PAST", "Expiration time must be in the future", ErrExpiryInPast)
	}

	var shortCode string
	if req.CustomCode != nil {
		if err := s.codeGen.ValidateCustomCode(ctx, *req.CustomCode); err != nil {
			if IsCustomCodeInvalid(err) {
				return nil, NewBusinessError("CUSTOM_CODE_INVALID", "Custom code must be 3 to 10 alphanumeric characters", err)
			}
			if IsCustomCodeTaken(err) {
				return nil, NewBusinessError("CUSTOM_CODE_TAKEN", "Custom code is already taken", err)
			}
			return nil, NewBusinessError("CUSTOM_CODE_VALIDATION_FAILED", "Failed to validate custom code", err)
		}
		shortCode = *req.CustomCode
	} else {
		generated, err := s.codeGen.Generate(ctx)
		if err != nil {
			if IsCodeGenerationExhausted(err) {
				return nil, NewBusinessError("CODE_GENERATION_EXHAUSTED", "Unable to generate a unique short code", err)
			}
			return nil, NewBusinessError("CODE_GENERATION_FAILED", "Failed to generate short code", err)
		}
		shortCode = generated
	}

	link := &models.DynamicLink{
		ShortCode:         shortCode,
		IOSURL:            req.IOSURL,
		AndroidURL:        req.AndroidURL,
		DesktopURL:        req.DesktopURL,
		FallbackURL:       req.FallbackURL,
		Title:             req.Title,
		Description:       req.Description,
		ImageURL:          req.ImageURL,
		SocialTitle:       req.SocialTitle,
		SocialDescription: req.SocialDescription,
		SocialImageURL:    req.SocialImageURL,
		IsActive:          utils.ToPtr(true),
		ExpiresAt:         req.ExpiresAt,
		CustomParameters:  req.CustomParameters,
		CreatedAt:         utils.UTCNow(),
		UpdatedAt:         utils.UTCNow(),
	}

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.linkRepo.Save(txCtx, link)
	})
	if err != nil {
		// The unique constraint is authoritative; a concurrent insert with the
		// same code surfaces here even after the availability check passed.
		if repository.IsUniqueViolation(err) {
			if req.CustomCode != nil {
				return nil, NewBusinessError("CUSTOM_CODE_TAKEN", "Custom code is already taken", ErrCustomCodeTaken)
			}
			return nil, NewBusinessError("SHORT_CODE_CONFLICT", "Short code already exists", ErrShortCodeConflict)
		}
		return nil, NewBusinessError("LINK_CREATION_FAILED", "Link creation failed", err)
	}

	cacheLink(ctx, s.rc, NewCachedLink(link), s.cacheConfig.LinkTTL)

	result := ToDynamicLinkDTO(*link, s.linksConfig.ShortDomain)
	return &result, nil
}

// GetLink returns a single link by short code, soft-deleted ones included
func (s *LinkFlowImpl) GetLink(ctx context.Context, shortCode string) (*dto.DynamicLinkDTO, error) {
	link, err := s.linkRepo.ByShortCode(ctx, shortCode)
	if err != nil {
		return nil, NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
	}
	if link == nil {
		return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}

	result := ToDynamicLinkDTO(*link, s.linksConfig.ShortDomain)
	return &result, nil
}

// UpdateLink applies a partial update to a link and refreshes the cache
func (s *LinkFlowImpl) UpdateLink(ctx context.Context, shortCode string, req *dto.UpdateLinkRequest, metadata *ClientMetadata) (*dto.DynamicLinkDTO, error) {
	fields := updateFields(req)
	if len(fields) == 0 {
		return nil, NewBusinessError("NO_FIELDS_TO_UPDATE", "At least one field must be provided for update", ErrNoFieldsToUpdate)
	}

	if req.ExpiresAt != nil && utils.IsExpired(*req.ExpiresAt) {
		return nil, NewBusinessError("EXPIRY_IN_PAST", "Expiration time must be in the future", ErrExpiryInPast)
	}

	var updated *models.DynamicLink
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		updated, err = s.linkRepo.UpdateFields(txCtx, shortCode, fields)
		return err
	})
	if err != nil {
		return nil, NewBusinessError("LINK_UPDATE_FAILED", "Link update failed", err)
	}
	if updated == nil {
		return nil, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}

	invalidateLink(ctx, s.rc, shortCode)

	result := ToDynamicLinkDTO(*updated, s.linksConfig.ShortDomain)
	return &result, nil
}

// DeleteLink deactivates a link. The row is kept so the short code stays
// occupied and analytics remain queryable.
func (s *LinkFlowImpl) DeleteLink(ctx context.Context, shortCode string, metadata *ClientMetadata) error {
	var deletedID *uint
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		deletedID, err = s.linkRepo.SoftDelete(txCtx, shortCode)
		return err
	})
	if err != nil {
		return NewBusinessError("LINK_DELETE_FAILED", "Link deletion failed", err)
	}
	if deletedID == nil {
		return NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}

	invalidateLink(ctx, s.rc, shortCode)

	return nil
}

// ListLinks returns a page of links ordered by creation time, newest first
func (s *LinkFlowImpl) ListLinks(ctx context.Context, req *dto.ListLinksRequest) (*dto.ListLinksResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}

	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	offset := (page - 1) * pageSize

	links, err := s.linkRepo.ListLinks(ctx, req.ActiveOnly, pageSize, offset)
	if err != nil {
		return nil, NewBusinessError("LINK_LIST_FAILED", "Failed to list links", err)
	}

	filter := models.DynamicLinkFilter{}
	if req.ActiveOnly {
		filter.IsActive = utils.ToPtr(true)
	}
	total, err := s.linkRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LINK_LIST_FAILED", "Failed to count links", err)
	}

	items := make([]dto.DynamicLinkDTO, 0, len(links))
	for _, link := range links {
		items = append(items, ToDynamicLinkDTO(*link, s.linksConfig.ShortDomain))
	}

	return &dto.ListLinksResponse{
		Links: items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// updateFields maps set request fields to their column updates
func updateFields(req *dto.UpdateLinkRequest) map[string]any {
	fields := make(map[string]any)

	if req.FallbackURL != nil {
		fields["fallback_url"] = *req.FallbackURL
	}
	if req.IOSURL != nil {
		fields["ios_url"] = req.IOSURL
	}
	if req.AndroidURL != nil {
		fields["android_url"] = req.AndroidURL
	}
	if req.DesktopURL != nil {
		fields["desktop_url"] = req.DesktopURL
	}
	if req.Title != nil {
		fields["title"] = req.Title
	}
	if req.Description != nil {
		fields["description"] = req.Description
	}
	if req.ImageURL != nil {
		fields["image_url"] = req.ImageURL
	}
	if req.SocialTitle != nil {
		fields["social_title"] = req.SocialTitle
	}
	if req.SocialDescription != nil {
		fields["social_description"] = req.SocialDescription
	}
	if req.SocialImageURL != nil {
		fields["social_image_url"] = req.SocialImageURL
	}
	if req.ExpiresAt != nil {
		fields["expires_at"] = req.ExpiresAt
	}
	if req.CustomParameters != nil {
		fields["custom_parameters"] = req.CustomParameters
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	return fields
}
