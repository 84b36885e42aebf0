package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomParams holds optional key/value pairs appended as query parameters on
// server-side redirects. Stored as JSONB.
type CustomParams map[string]any

func (p CustomParams) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *CustomParams) Scan(value any) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CustomParams", value)
	}

	return json.Unmarshal(bytes, p)
}

// DynamicLink represents a short code mapped to platform-specific destinations.
// FallbackURL is the only required destination; soft-deleted rows keep their
// short code occupied so codes are never reissued.
type DynamicLink struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_dynamic_links_uuid" json:"uuid"`
	ShortCode string    `gorm:"size:10;not null;uniqueIndex:uk_dynamic_links_short_code" json:"short_code"`

	IOSURL      *string `gorm:"type:text" json:"ios_url,omitempty"`
	AndroidURL  *string `gorm:"type:text" json:"android_url,omitempty"`
	DesktopURL  *string `gorm:"type:text" json:"desktop_url,omitempty"`
	FallbackURL string  `gorm:"type:text;not null" json:"fallback_url"`

	Title             *string `gorm:"size:255" json:"title,omitempty"`
	Description       *string `gorm:"type:text" json:"description,omitempty"`
	ImageURL          *string `gorm:"type:text" json:"image_url,omitempty"`
	SocialTitle       *string `gorm:"size:255" json:"social_title,omitempty"`
	SocialDescription *string `gorm:"type:text" json:"social_description,omitempty"`
	SocialImageURL    *string `gorm:"type:text" json:"social_image_url,omitempty"`

	IsActive         *bool        `gorm:"not null;default:true;index:idx_dynamic_links_is_active" json:"is_active"`
	ExpiresAt        *time.Time   `gorm:"index:idx_dynamic_links_expires_at" json:"expires_at,omitempty"`
	CustomParameters CustomParams `gorm:"type:jsonb" json:"custom_parameters,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_dynamic_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for DynamicLink
func (DynamicLink) TableName() string { return "dynamic_links" }

// BeforeCreate is called before creating a new record
func (l *DynamicLink) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == uuid.Nil {
		l.UUID = uuid.New()
	}
	return nil
}

// DynamicLinkFilter provides filter fields for repository queries
type DynamicLinkFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ShortCode     *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
