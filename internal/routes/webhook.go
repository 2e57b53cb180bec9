package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/custody_gateway/internal/wallet"
)

// RegisterWebhookRoutes wires the custodian callback. It is authenticated by
// the token signature, not by API key.
func RegisterWebhookRoutes(r fiber.Router, h *wallet.Handler, limiter fiber.Handler) {
	r.Post("/webhooks/custody", limiter, h.Webhook)
}
