package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/dynalinks/dynalinks/app/dto"
	businessflow "github.com/dynalinks/dynalinks/business_flow"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/gofiber/fiber/v3"
)

// AnalyticsHandlerInterface defines the contract for analytics handlers
type AnalyticsHandlerInterface interface {
	GetAnalytics(c fiber.Ctx) error
	ListClicks(c fiber.Ctx) error
	ExportClicks(c fiber.Ctx) error
}

// AnalyticsHandler handles click reporting HTTP requests
type AnalyticsHandler struct {
	analyticsFlow businessflow.AnalyticsFlow
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsFlow businessflow.AnalyticsFlow) AnalyticsHandlerInterface {
	return &AnalyticsHandler{analyticsFlow: analyticsFlow}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetAnalytics returns the aggregated click report for a link
func (h *AnalyticsHandler) GetAnalytics(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "INVALID_REQUEST", nil)
	}

	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid days parameter", "INVALID_ANALYTICS_RANGE", nil)
	}

	result, err := h.analyticsFlow.GetAnalytics(h.createRequestContext(c, "/api/v1/links/"+shortCode+"/analytics"), shortCode, days)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidAnalyticsRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Analytics range must be between 1 and 365 days", "INVALID_ANALYTICS_RANGE", nil)
		}

		log.Println("Analytics query failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Analytics query failed", "ANALYTICS_QUERY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Analytics retrieved successfully", result)
}

// ListClicks returns a page of raw click events for a link
func (h *AnalyticsHandler) ListClicks(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "INVALID_REQUEST", nil)
	}

	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid days parameter", "INVALID_ANALYTICS_RANGE", nil)
	}
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page parameter", "INVALID_PAGINATION", nil)
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "50"))
	if err != nil || pageSize < 1 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid page_size parameter", "INVALID_PAGINATION", nil)
	}

	result, err := h.analyticsFlow.ListClicks(h.createRequestContext(c, "/api/v1/links/"+shortCode+"/clicks"), shortCode, days, page, pageSize)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidAnalyticsRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Analytics range must be between 1 and 365 days", "INVALID_ANALYTICS_RANGE", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("Click listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Click listing failed", "ANALYTICS_QUERY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Clicks retrieved successfully", result)
}

// ExportClicks downloads the click history of a link as an Excel workbook
func (h *AnalyticsHandler) ExportClicks(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Short code is required", "INVALID_REQUEST", nil)
	}

	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid days parameter", "INVALID_ANALYTICS_RANGE", nil)
	}

	filename, content, err := h.analyticsFlow.ExportClicksExcel(h.createRequestContext(c, "/api/v1/links/"+shortCode+"/clicks/export"), shortCode, days)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Link not found", "LINK_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidAnalyticsRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Analytics range must be between 1 and 365 days", "INVALID_ANALYTICS_RANGE", nil)
		}

		log.Println("Click export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Click export failed", "EXCEL_WRITE_ERROR", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(content)
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AnalyticsHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
