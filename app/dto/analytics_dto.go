package dto

// CountDTO is a single bucket in a ranked or dated aggregate
type CountDTO struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// LinkAnalyticsDTO is the aggregated click report for one link
type LinkAnalyticsDTO struct {
	ShortCode        string           `json:"short_code"`
	Days             int              `json:"days"`
	TotalClicks      int64            `json:"total_clicks"`
	UniqueClicks     int64            `json:"unique_clicks"`
	ClicksByPlatform map[string]int64 `json:"clicks_by_platform"`
	ClicksByCountry  []CountDTO       `json:"clicks_by_country"`
	ClicksByDate     []CountDTO       `json:"clicks_by_date"`
	TopReferrers     []CountDTO       `json:"top_referrers"`
}

// ClickDTO is the API representation of a recorded click
type ClickDTO struct {
	ID           uint    `json:"id"`
	ShortCode    string  `json:"short_code"`
	Platform     string  `json:"platform"`
	DeviceType   string  `json:"device_type"`
	Browser      string  `json:"browser,omitempty"`
	OS           string  `json:"os,omitempty"`
	Country      *string `json:"country,omitempty"`
	Region       *string `json:"region,omitempty"`
	City         *string `json:"city,omitempty"`
	Referer      *string `json:"referer,omitempty"`
	RedirectedTo string  `json:"redirected_to"`
	RedirectType string  `json:"redirect_type"`
	CreatedAt    string  `json:"created_at"`
}

// ListClicksResponse represents a paginated list of raw clicks
type ListClicksResponse struct {
	Clicks     []ClickDTO    `json:"clicks"`
	Pagination PaginationDTO `json:"pagination"`
}
