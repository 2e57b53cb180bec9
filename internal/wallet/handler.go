package wallet

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/custody_gateway/internal/events"
	"github.com/congo-pay/custody_gateway/internal/notification"
	"github.com/congo-pay/custody_gateway/internal/webhook"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
)

// Handler exposes the gateway over HTTP.
type Handler struct {
	gateway  *Gateway
	store    events.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(gateway *Gateway, store events.Store, notifier notification.Notifier, logger *slog.Logger) *Handler {
	if store == nil {
		store = events.NewMemoryStore()
	}
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(logger)
	}
	return &Handler{gateway: gateway, store: store, notifier: notifier, logger: logger}
}

type settingsResponse struct {
	Configured bool      `json:"configured"`
	Features   Features  `json:"features"`
	Settings   *Settings `json:"settings,omitempty"`
}

// Settings reports the active configuration.
func (h *Handler) Settings(c *fiber.Ctx) error {
	resp := settingsResponse{Features: h.gateway.Features()}
	if s, ok := h.gateway.Settings(); ok {
		resp.Configured = true
		resp.Settings = &s
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Configure replaces the gateway settings with the request body.
func (h *Handler) Configure(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	settings, err := SettingsFromMap(body)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.gateway.Configure(settings); err != nil {
		var missing *MissingSettingError
		if errors.As(err, &missing) {
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return h.Settings(c)
}

type createAddressRequest struct {
	Options map[string]any `json:"options"`
}

// CreateAddress issues a new deposit address.
func (h *Handler) CreateAddress(c *fiber.Ctx) error {
	var req createAddressRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	result, err := h.gateway.CreateAddress(c.UserContext(), req.Options)
	if err != nil {
		return gatewayError(err)
	}
	return c.Status(http.StatusCreated).JSON(result)
}

type createTransactionRequest struct {
	ToAddress string          `json:"to_address"`
	Amount    decimal.Decimal `json:"amount"`
	Options   map[string]any  `json:"options"`
}

// CreateTransaction submits a withdrawal to the custodian.
func (h *Handler) CreateTransaction(c *fiber.Ctx) error {
	var req createTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ToAddress == "" {
		return fiber.NewError(http.StatusBadRequest, "to_address is required")
	}
	if !req.Amount.IsPositive() {
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	}
	tx, err := h.gateway.CreateTransaction(c.UserContext(), &OutboundTransaction{
		ToAddress: req.ToAddress,
		Amount:    req.Amount,
		Options:   req.Options,
	})
	if err != nil {
		return gatewayError(err)
	}
	return c.Status(http.StatusCreated).JSON(tx)
}

// Balance returns the custodian balance for the configured currency.
func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.gateway.LoadBalance(c.UserContext())
	if err != nil {
		return gatewayError(err)
	}
	currency := ""
	if s, ok := h.gateway.Settings(); ok {
		currency = s.Currency.ID
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"currency_id": currency,
		"balance":     balance,
	})
}

// Webhook accepts a signed custodian notification, records it and announces
// events not seen before.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	txs, err := h.gateway.HandleWebhook(c.Body())
	if err != nil {
		if errors.Is(err, webhook.ErrPublicKey) {
			h.logger.Error("webhook verification key unavailable", slog.Any("error", err))
			return fiber.NewError(http.StatusServiceUnavailable, "webhook verification unavailable")
		}
		if webhook.IsVerificationError(err) {
			return fiber.NewError(http.StatusUnauthorized, "invalid webhook signature")
		}
		return gatewayError(err)
	}

	ctx := c.UserContext()
	for _, tx := range txs {
		event := eventFromTransaction(tx)
		fresh, err := h.store.Save(ctx, event)
		if err != nil {
			h.logger.Error("record custody event", slog.String("hash", tx.Hash), slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "failed to record event")
		}
		if !fresh {
			h.logger.Debug("duplicate custody event", slog.String("key", event.Key()))
			continue
		}
		if err := h.notifier.Send(ctx, messageFromTransaction(tx)); err != nil {
			h.logger.Warn("notify custody event", slog.String("hash", tx.Hash), slog.Any("error", err))
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"events": txs})
}

// Events lists recently recorded notifications.
func (h *Handler) Events(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultEventsLimit)
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}
	recent, err := h.store.Recent(c.UserContext(), limit)
	if err != nil {
		h.logger.Error("list custody events", slog.Any("error", err))
		return fiber.NewError(http.StatusInternalServerError, "failed to list events")
	}
	if recent == nil {
		recent = []events.Event{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"events": recent})
}

func gatewayError(err error) error {
	var missing *MissingSettingError
	var client *ClientError
	switch {
	case errors.As(err, &missing):
		return fiber.NewError(http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &client):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}

func eventFromTransaction(tx Transaction) events.Event {
	return events.Event{
		Kind:               tx.Kind,
		CurrencyID:         tx.CurrencyID,
		Amount:             tx.Amount,
		Hash:               tx.Hash,
		DestinationAddress: tx.DestinationAddress,
		OutputIndex:        tx.OutputIndex,
		Status:             tx.Status,
		TransactionID:      tx.Metadata.TransactionID,
	}
}

func messageFromTransaction(tx Transaction) notification.Message {
	kind := notification.KindDeposit
	if tx.Kind == KindWithdrawal {
		kind = notification.KindWithdrawal
	}
	return notification.Message{
		Kind:          kind,
		Destination:   tx.DestinationAddress,
		CurrencyID:    tx.CurrencyID,
		Amount:        tx.Amount.String(),
		Status:        tx.Status,
		TransactionID: tx.Metadata.TransactionID,
	}
}
