package handlers

import (
	"context"
	"log"
	"time"

	"github.com/dynalinks/dynalinks/app/middleware"
	businessflow "github.com/dynalinks/dynalinks/business_flow"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/gofiber/fiber/v3"
)

// RedirectHandlerInterface defines the contract for the public redirect endpoint
type RedirectHandlerInterface interface {
	Redirect(c fiber.Ctx) error
}

// RedirectHandler handles public short link resolution
type RedirectHandler struct {
	redirectFlow businessflow.RedirectFlow
}

// NewRedirectHandler creates a new redirect handler
func NewRedirectHandler(redirectFlow businessflow.RedirectFlow) RedirectHandlerInterface {
	return &RedirectHandler{redirectFlow: redirectFlow}
}

// Redirect resolves a short code and either redirects the client or serves
// the deep-link interstitial page.
func (h *RedirectHandler) Redirect(c fiber.Ctx) error {
	shortCode := c.Params("short_code")
	if shortCode == "" {
		return c.Status(fiber.StatusBadRequest).SendString("invalid short link")
	}

	metadata := businessflow.NewClientMetadata(clientIP(c.Get("X-Forwarded-For"), c.Get("X-Real-IP"), c.IP()), c.Get("User-Agent"))
	metadata.SetReferer(c.Get("Referer"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.redirectFlow.Resolve(h.createRequestContext(c, "/"+shortCode), shortCode, metadata)
	if err != nil {
		if businessflow.IsLinkNotFound(err) {
			return c.Status(fiber.StatusNotFound).SendString("not found")
		}
		if businessflow.IsLinkExpired(err) {
			return c.Status(fiber.StatusGone).SendString("link expired")
		}
		log.Println("Redirect failed", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	middleware.ObserveRedirect(string(result.Decision.Action), result.Platform)

	if result.Decision.Action == businessflow.ActionInterstitial {
		c.Set("Content-Type", fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(fiber.StatusOK).SendString(result.HTML)
	}

	c.Redirect().Status(fiber.StatusFound).To(result.Decision.TargetURL)
	return nil
}

func (h *RedirectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 10*time.Second)
}

func (h *RedirectHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
