package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/custody_gateway/internal/wallet"
)

// RegisterWalletRoutes wires the operator-facing gateway endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idempotent fiber.Handler) {
	r.Get("/settings", h.Settings)
	r.Put("/settings", h.Configure)
	r.Post("/addresses", h.CreateAddress)
	r.Post("/transactions", idempotent, h.CreateTransaction)
	r.Get("/balance", h.Balance)
	r.Get("/events", h.Events)
}
