package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dynalinks/dynalinks/app/dto"
	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/repository"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/xuri/excelize/v2"
)

const (
	topCountriesLimit = 10
	topReferrersLimit = 10
	maxAnalyticsDays  = 365
)

// AnalyticsFlow defines the interface for click reporting operations
type AnalyticsFlow interface {
	GetAnalytics(ctx context.Context, shortCode string, days int) (*dto.LinkAnalyticsDTO, error)
	ListClicks(ctx context.Context, shortCode string, days, page, pageSize int) (*dto.ListClicksResponse, error)
	ExportClicksExcel(ctx context.Context, shortCode string, days int) (string, []byte, error)
}

// AnalyticsFlowImpl implements AnalyticsFlow
type AnalyticsFlowImpl struct {
	linkRepo  repository.DynamicLinkRepository
	clickRepo repository.LinkClickRepository
}

// NewAnalyticsFlow creates a new analytics flow instance
func NewAnalyticsFlow(linkRepo repository.DynamicLinkRepository, clickRepo repository.LinkClickRepository) AnalyticsFlow {
	return &AnalyticsFlowImpl{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
	}
}

// GetAnalytics builds the aggregated click report for one link over the last
// N days. The link itself must exist; soft-deleted links keep their history.
func (s *AnalyticsFlowImpl) GetAnalytics(ctx context.Context, shortCode string, days int) (*dto.LinkAnalyticsDTO, error) {
	days, since, err := s.resolveRange(ctx, shortCode, days)
	if err != nil {
		return nil, err
	}

	total, err := s.clickRepo.CountByShortCode(ctx, shortCode, since)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to count clicks", err)
	}

	unique, err := s.clickRepo.CountDistinctIPs(ctx, shortCode, since)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to count unique visitors", err)
	}

	byPlatform, err := s.clickRepo.CountByPlatform(ctx, shortCode, since)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to aggregate clicks by platform", err)
	}

	byCountry, err := s.clickRepo.CountByCountry(ctx, shortCode, since, topCountriesLimit)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to aggregate clicks by country", err)
	}

	byDate, err := s.clickRepo.CountByDate(ctx, shortCode, since)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to aggregate clicks by date", err)
	}

	referrers, err := s.clickRepo.TopReferrers(ctx, shortCode, since, topReferrersLimit)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to aggregate top referrers", err)
	}

	platforms := make(map[string]int64, len(byPlatform))
	for _, bucket := range byPlatform {
		platforms[bucket.Key] = bucket.Count
	}

	return &dto.LinkAnalyticsDTO{
		ShortCode:        shortCode,
		Days:             days,
		TotalClicks:      total,
		UniqueClicks:     unique,
		ClicksByPlatform: platforms,
		ClicksByCountry:  toCountDTOs(byCountry),
		ClicksByDate:     toCountDTOs(byDate),
		TopReferrers:     toCountDTOs(referrers),
	}, nil
}

// ListClicks returns a page of raw click events, newest first
func (s *AnalyticsFlowImpl) ListClicks(ctx context.Context, shortCode string, days, page, pageSize int) (*dto.ListClicksResponse, error) {
	_, since, err := s.resolveRange(ctx, shortCode, days)
	if err != nil {
		return nil, err
	}

	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 50
	}
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	filter := models.LinkClickFilter{
		ShortCode:    &shortCode,
		CreatedAfter: &since,
	}

	clicks, err := s.clickRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to list clicks", err)
	}

	total, err := s.clickRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to count clicks", err)
	}

	items := make([]dto.ClickDTO, 0, len(clicks))
	for _, click := range clicks {
		items = append(items, toClickDTO(click))
	}

	return &dto.ListClicksResponse{
		Clicks: items,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// ExportClicksExcel renders all clicks in the range as an Excel workbook
func (s *AnalyticsFlowImpl) ExportClicksExcel(ctx context.Context, shortCode string, days int) (string, []byte, error) {
	days, since, err := s.resolveRange(ctx, shortCode, days)
	if err != nil {
		return "", nil, err
	}

	clicks, err := s.clickRepo.ListByShortCode(ctx, shortCode, since, "created_at ASC")
	if err != nil {
		return "", nil, NewBusinessError("ANALYTICS_QUERY_FAILED", "Failed to list clicks", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"id", "short_code", "platform", "device_type", "browser", "os", "country", "region", "city", "referer", "redirected_to", "redirect_type", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, click := range clicks {
		record := []string{
			strconv.FormatUint(uint64(click.ID), 10),
			click.ShortCode,
			click.Platform,
			click.DeviceType,
			click.Browser,
			click.OS,
			deref(click.Country),
			deref(click.Region),
			deref(click.City),
			deref(click.Referer),
			click.RedirectedTo,
			click.RedirectType,
			click.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("clicks_%s_last_%d_days.xlsx", shortCode, days)
	return filename, buf.Bytes(), nil
}

// resolveRange validates the day range, checks the link exists, and returns
// the normalized range plus its starting instant.
func (s *AnalyticsFlowImpl) resolveRange(ctx context.Context, shortCode string, days int) (int, time.Time, error) {
	if days == 0 {
		days = utils.DefaultAnalyticsDays
	}
	if days < 1 || days > maxAnalyticsDays {
		return 0, time.Time{}, NewBusinessError("INVALID_ANALYTICS_RANGE", "Analytics range must be between 1 and 365 days", ErrInvalidAnalyticsRange)
	}

	link, err := s.linkRepo.ByShortCode(ctx, shortCode)
	if err != nil {
		return 0, time.Time{}, NewBusinessError("LINK_LOOKUP_FAILED", "Failed to lookup link", err)
	}
	if link == nil {
		return 0, time.Time{}, NewBusinessError("LINK_NOT_FOUND", "Link not found", ErrLinkNotFound)
	}

	since := utils.UTCNow().AddDate(0, 0, -days)
	return days, since, nil
}

func toCountDTOs(buckets []repository.BucketCount) []dto.CountDTO {
	items := make([]dto.CountDTO, 0, len(buckets))
	for _, bucket := range buckets {
		items = append(items, dto.CountDTO{Key: bucket.Key, Count: bucket.Count})
	}
	return items
}

func toClickDTO(click *models.LinkClick) dto.ClickDTO {
	return dto.ClickDTO{
		ID:           click.ID,
		ShortCode:    click.ShortCode,
		Platform:     click.Platform,
		DeviceType:   click.DeviceType,
		Browser:      click.Browser,
		OS:           click.OS,
		Country:      click.Country,
		Region:       click.Region,
		City:         click.City,
		Referer:      click.Referer,
		RedirectedTo: click.RedirectedTo,
		RedirectType: click.RedirectType,
		CreatedAt:    click.CreatedAt.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
