package dto

import (
	"time"

	"github.com/dynalinks/dynalinks/models"
)

// CreateLinkRequest represents the request to create a dynamic link
type CreateLinkRequest struct {
	FallbackURL       string              `json:"fallback_url" validate:"required,url"`
	IOSURL            *string             `json:"ios_url,omitempty" validate:"omitempty,url"`
	AndroidURL        *string             `json:"android_url,omitempty" validate:"omitempty,url"`
	DesktopURL        *string             `json:"desktop_url,omitempty" validate:"omitempty,url"`
	Title             *string             `json:"title,omitempty" validate:"omitempty,max=255"`
	Description       *string             `json:"description,omitempty" validate:"omitempty,max=1000"`
	ImageURL          *string             `json:"image_url,omitempty" validate:"omitempty,url"`
	SocialTitle       *string             `json:"social_title,omitempty" validate:"omitempty,max=255"`
	SocialDescription *string             `json:"social_description,omitempty" validate:"omitempty,max=1000"`
	SocialImageURL    *string             `json:"social_image_url,omitempty" validate:"omitempty,url"`
	CustomCode        *string             `json:"custom_code,omitempty" validate:"omitempty,min=3,max=10,alphanum"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	CustomParameters  models.CustomParams `json:"custom_parameters,omitempty"`
}

// UpdateLinkRequest represents a partial update of a dynamic link.
// At least one field must be set.
type UpdateLinkRequest struct {
	FallbackURL       *string             `json:"fallback_url,omitempty" validate:"omitempty,url"`
	IOSURL            *string             `json:"ios_url,omitempty" validate:"omitempty,url"`
	AndroidURL        *string             `json:"android_url,omitempty" validate:"omitempty,url"`
	DesktopURL        *string             `json:"desktop_url,omitempty" validate:"omitempty,url"`
	Title             *string             `json:"title,omitempty" validate:"omitempty,max=255"`
	Description       *string             `json:"description,omitempty" validate:"omitempty,max=1000"`
	ImageURL          *string             `json:"image_url,omitempty" validate:"omitempty,url"`
	SocialTitle       *string             `json:"social_title,omitempty" validate:"omitempty,max=255"`
	SocialDescription *string             `json:"social_description,omitempty" validate:"omitempty,max=1000"`
	SocialImageURL    *string             `json:"social_image_url,omitempty" validate:"omitempty,url"`
	ExpiresAt         *time.Time          `json:"expires_at,omitempty"`
	CustomParameters  models.CustomParams `json:"custom_parameters,omitempty"`
	IsActive          *bool               `json:"is_active,omitempty"`
}

// ListLinksRequest represents the query parameters for listing links
type ListLinksRequest struct {
	Page       int  `json:"page" validate:"omitempty,min=1"`
	PageSize   int  `json:"page_size" validate:"omitempty,min=1,max=100"`
	ActiveOnly bool `json:"active_only"`
}

// DynamicLinkDTO is the API representation of a dynamic link
type DynamicLinkDTO struct {
	ID                uint                `json:"id"`
	UUID              string              `json:"uuid"`
	ShortCode         string              `json:"short_code"`
	ShortURL          string              `json:"short_url"`
	Title             *string             `json:"title,omitempty"`
	Description       *string             `json:"description,omitempty"`
	ImageURL          *string             `json:"image_url,omitempty"`
	SocialTitle       *string             `json:"social_title,omitempty"`
	SocialDescription *string             `json:"social_description,omitempty"`
	SocialImageURL    *string             `json:"social_image_url,omitempty"`
	IOSURL            *string             `json:"ios_url,omitempty"`
	AndroidURL        *string             `json:"android_url,omitempty"`
	DesktopURL        *string             `json:"desktop_url,omitempty"`
	FallbackURL       string              `json:"fallback_url"`
	CustomParameters  models.CustomParams `json:"custom_parameters,omitempty"`
	IsActive          bool                `json:"is_active"`
	ExpiresAt         *string             `json:"expires_at,omitempty"`
	CreatedAt         string              `json:"created_at"`
	UpdatedAt         string              `json:"updated_at"`
}

// ListLinksResponse represents a paginated list of links
type ListLinksResponse struct {
	Links      []DynamicLinkDTO `json:"links"`
	Pagination PaginationDTO    `json:"pagination"`
}
