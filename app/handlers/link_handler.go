package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/dynalinks/dynalinks/app/dto"
	businessflow "github.com/dynalinks/dynalinks/business_flow"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// LinkHandlerInterface defines the contract for link management handlers
type LinkHandlerInterface interface {
	CreateLink(c fiber.Ctx) error
	GetLink(c fiber.Ctx) error
	UpdateLink(c fiber.Ctx) error
	DeleteLink(c fiber.Ctx) error
	ListLinks(c fiber.Ctx) error
}

// LinkHandler handles link management HTTP requests
type LinkHandler struct {
	linkFlow  businessflow.LinkFlow
	validator *validator.Validate
}

// NewLinkHandler creates a new link management handler
func NewLinkHandler(linkFlow businessflow.LinkFlow) LinkHandlerInterface {
	return &LinkHandler{
		linkFlow:  linkFlow,
		validator: validator.New(),
	}
}

func (h *LinkHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *LinkHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateLink handles dynamic link creation
func (h *LinkHandler) CreateLink(c fiber.Ctx) error {
	var req dto.CreateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Custom code may also arrive as a query parameter; the body takes precedence
	if req.CustomCode == nil {
		if code := c.Query("custom_code"); code != "" {
			req.CustomCode = &code
		}
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.linkFlow.CreateLink(h.createRequestContext(c, "/api/v1/links"), &req, metadata)
	if err != nil {
		if businessflow.IsCustomCodeInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Custom code must be 3 to 10 alphanumeric characters", "CUSTOM_CODE_INVALID", nil)
		}
		if businessflow.IsCustomCodeTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Custom code is already taken", "CUSTOM_CODE_TAKEN", nil)
		}
		if businessflow.IsExpiryInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Expiration time must be in the future", "EXPIRY_IN_PAST", nil)
		}
		if businessflow.IsShortCodeConflict(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Short code already exists", "SHORT_CODE_CONFLICT", nil)
		}
		if businessflow.IsCodeGenerationExhausted(err) {
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Unable to generate a unique short code", "CODE_GENERATION_EXHAUSTED", nil)
		}

		log.Println("Link creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link creation failed", "LINK_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Link created successfully", result)
}

// GetLink returns a single link by short code
func (h *LinkHandler) GetLink(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "INVALID_REQUEST", nil)
	}

	result, err := h.linkFlow.GetLink(h.createRequestContext(c, "/api/v1/links/"+shortCode), shortCode)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}

		log.Println("Link lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link lookup failed", "LINK_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link retrieved successfully", result)
}

// UpdateLink applies a partial update to a link
func (h *LinkHandler) UpdateLink(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateLinkRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.linkFlow.UpdateLink(h.createRequestContext(c, "/api/v1/links/"+shortCode), shortCode, &req, metadata)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsNoFieldsToUpdate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided for update", "NO_FIELDS_TO_UPDATE", nil)
		}
		if businessflow.IsExpiryInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Expiration time must be in the future", "EXPIRY_IN_PAST", nil)
		}

		log.Println("Link update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link update failed", "LINK_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link updated successfully", result)
}

// DeleteLink deactivates a link
func (h *LinkHandler) DeleteLink(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	err := h.linkFlow.DeleteLink(h.createRequestContext(c, "/api/v1/links/"+shortCode), shortCode, metadata)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}

		log.Println("Link deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link deletion failed", "LINK_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Link deleted successfully", nil)
}

// ListLinks returns a page of links
func (h *LinkHandler) ListLinks(c fiber.Ctx) error {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page parameter", "INVALID_PAGINATION", nil)
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "20"))
	if err != nil || pageSize < 1 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page_size parameter", "INVALID_PAGINATION", nil)
	}

	req := dto.ListLinksRequest{
		Page:       page,
		PageSize:   pageSize,
		ActiveOnly: c.Query("active_only") == "true",
	}

	result, err := h.linkFlow.ListLinks(h.createRequestContext(c, "/api/v1/links"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Link listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Link listing failed", "LINK_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Links retrieved successfully", result)
}

func (h *LinkHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *LinkHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
