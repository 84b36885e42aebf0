package models

import "time"

// LinkClick represents a single resolved redirect on a dynamic link.
// IPHash carries a salted digest of the client IP; the raw address is never
// stored. Rows are written once and never mutated.
type LinkClick struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	LinkID    uint   `gorm:"not null;index:idx_link_clicks_link_id" json:"link_id"`
	ShortCode string `gorm:"size:10;not null;index:idx_link_clicks_short_code" json:"short_code"`

	IPHash    string  `gorm:"size:64;not null;index:idx_link_clicks_ip_hash" json:"ip_hash"`
	UserAgent string  `gorm:"size:500" json:"user_agent"`
	Referer   *string `gorm:"size:500" json:"referer,omitempty"`

	Platform   string `gorm:"size:20;index:idx_link_clicks_platform" json:"platform"`
	DeviceType string `gorm:"size:20" json:"device_type"`
	Browser    string `gorm:"size:100" json:"browser"`
	OS         string `gorm:"size:100" json:"os"`

	Country *string `gorm:"size:10;index:idx_link_clicks_country" json:"country,omitempty"`
	Region  *string `gorm:"size:100" json:"region,omitempty"`
	City    *string `gorm:"size:100" json:"city,omitempty"`

	RedirectedTo string `gorm:"type:text" json:"redirected_to"`
	RedirectType string `gorm:"size:20" json:"redirect_type"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_link_clicks_created_at" json:"created_at"`
}

// TableName returns the table name for LinkClick
func (LinkClick) TableName() string { return "link_clicks" }

// LinkClickFilter provides filter fields for repository queries
type LinkClickFilter struct {
	ID            *uint
	LinkID        *uint
	ShortCode     *string
	Platform      *string
	Country       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
