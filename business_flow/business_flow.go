// Package businessflow contains the business logic for the application.
package businessflow

import (
	"strings"
	"time"

	"github.com/dynalinks/dynalinks/app/dto"
	"github.com/dynalinks/dynalinks/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for click recording and audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Referer   string `json:"referer,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetReferer sets the referer header value
func (cm *ClientMetadata) SetReferer(referer string) {
	cm.Referer = referer
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToDynamicLinkDTO converts a link model to DynamicLinkDTO for API responses.
// shortDomain is prefixed to the short code to build the public short URL.
func ToDynamicLinkDTO(link models.DynamicLink, shortDomain string) dto.DynamicLinkDTO {
	d := dto.DynamicLinkDTO{
		ID:                link.ID,
		UUID:              link.UUID.String(),
		ShortCode:         link.ShortCode,
		ShortURL:          BuildShortURL(shortDomain, link.ShortCode),
		Title:             link.Title,
		Description:       link.Description,
		ImageURL:          link.ImageURL,
		SocialTitle:       link.SocialTitle,
		SocialDescription: link.SocialDescription,
		SocialImageURL:    link.SocialImageURL,
		IOSURL:            link.IOSURL,
		AndroidURL:        link.AndroidURL,
		DesktopURL:        link.DesktopURL,
		FallbackURL:       link.FallbackURL,
		CustomParameters:  link.CustomParameters,
		IsActive:          link.IsActive != nil && *link.IsActive,
		CreatedAt:         link.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         link.UpdatedAt.Format(time.RFC3339),
	}

	if link.ExpiresAt != nil {
		expiresAt := link.ExpiresAt.Format(time.RFC3339)
		d.ExpiresAt = &expiresAt
	}

	return d
}

// BuildShortURL joins the configured short domain with a short code
func BuildShortURL(shortDomain, shortCode string) string {
	return strings.TrimRight(shortDomain, "/") + "/" + shortCode
}
