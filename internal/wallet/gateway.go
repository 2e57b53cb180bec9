package wallet

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/congo-pay/custody_gateway/internal/custody"
	"github.com/congo-pay/custody_gateway/internal/webhook"
)

const (
	pathAddressNew     = "/address/new"
	pathTxSend         = "/tx/send"
	pathAddressBalance = "/address/balance"
)

// Wallet is the capability set the host platform drives.
type Wallet interface {
	Configure(settings Settings) error
	CreateAddress(ctx context.Context, options map[string]any) (AddressResult, error)
	CreateTransaction(ctx context.Context, tx *OutboundTransaction) (*OutboundTransaction, error)
	LoadBalance(ctx context.Context) (decimal.Decimal, error)
	HandleWebhook(body []byte) ([]Transaction, error)
}

// Caller is the subset of custody.Client the gateway depends on.
type Caller interface {
	Call(ctx context.Context, method, path string, body any) (custody.Response, error)
}

// ClientFactory builds a Caller bound to the custodian endpoint.
type ClientFactory func(serviceURI string) Caller

type walletConfig struct {
	serviceURI      string
	walletAddress   string
	currencyID      string
	baseFactor      decimal.Decimal
	currencyOptions map[string]any
}

// Gateway implements Wallet against the custodial REST service.
type Gateway struct {
	mu       sync.Mutex
	features Features
	cfg      *walletConfig
	client   Caller

	newClient ClientFactory
	authToken string
	keys      webhook.PublicKeyProvider
	verifier  *webhook.Verifier
	unit      AmountUnit
	logger    *slog.Logger
}

var _ Wallet = (*Gateway)(nil)

// Option customises a Gateway.
type Option func(*Gateway)

// WithKeyProvider sets where the webhook verification key comes from.
func WithKeyProvider(keys webhook.PublicKeyProvider) Option {
	return func(g *Gateway) { g.keys = keys }
}

// WithAmountUnit declares the denomination of webhook amounts.
func WithAmountUnit(unit AmountUnit) Option {
	return func(g *Gateway) { g.unit = unit }
}

// WithClientFactory replaces how the custody client is built.
func WithClientFactory(f ClientFactory) Option {
	return func(g *Gateway) { g.newClient = f }
}

// WithAuthToken is forwarded to the default custody client.
func WithAuthToken(token string) Option {
	return func(g *Gateway) { g.authToken = token }
}

// WithLogger sets the gateway logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway builds an unconfigured gateway.
func NewGateway(features Features, opts ...Option) *Gateway {
	g := &Gateway{
		features: features,
		unit:     UnitDisplay,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.newClient == nil {
		g.newClient = func(uri string) Caller {
			return custody.NewClient(uri, custody.WithLogger(g.logger), custody.WithAuthToken(g.authToken))
		}
	}
	g.verifier = webhook.NewVerifier(g.keys)
	g.logger = g.logger.With("module", "wallet_gateway")
	return g
}

// Features returns the active feature flags.
func (g *Gateway) Features() Features {
	return g.features
}

// Configured reports whether Configure has succeeded.
func (g *Gateway) Configured() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg != nil
}

// Settings returns the active settings, or false when unconfigured.
func (g *Gateway) Settings() (Settings, bool) {
	cfg, err := g.snapshot()
	if err != nil {
		return Settings{}, false
	}
	options := make(map[string]any, len(cfg.currencyOptions))
	for k, v := range cfg.currencyOptions {
		options[k] = v
	}
	return Settings{
		Wallet: &WalletSettings{URI: cfg.serviceURI, Address: cfg.walletAddress},
		Currency: &CurrencySettings{
			ID:         cfg.currencyID,
			BaseFactor: cfg.baseFactor,
			Options:    options,
		},
	}, true
}

// Configure replaces all settings and drops the cached client.
func (g *Gateway) Configure(settings Settings) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.client = nil
	g.cfg = nil

	if settings.Wallet == nil {
		return &MissingSettingError{Key: "wallet"}
	}
	if settings.Currency == nil {
		return &MissingSettingError{Key: "currency"}
	}

	options := make(map[string]any, len(settings.Currency.Options))
	for k, v := range settings.Currency.Options {
		options[k] = v
	}
	g.cfg = &walletConfig{
		serviceURI:      settings.Wallet.URI,
		walletAddress:   settings.Wallet.Address,
		currencyID:      settings.Currency.ID,
		baseFactor:      settings.Currency.BaseFactor,
		currencyOptions: options,
	}
	g.logger.Info("wallet configured",
		slog.String("currency", g.cfg.currencyID),
		slog.String("uri", g.cfg.serviceURI),
	)
	return nil
}

// session returns a snapshot of the config together with a client, building
// the client on first use.
func (g *Gateway) session() (walletConfig, Caller, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cfg == nil {
		return walletConfig{}, nil, &MissingSettingError{Key: "wallet"}
	}
	if g.cfg.currencyID == "" {
		return walletConfig{}, nil, &MissingSettingError{Key: "currency.id"}
	}
	if g.client == nil {
		if g.cfg.serviceURI == "" {
			return walletConfig{}, nil, &MissingSettingError{Key: "wallet.uri"}
		}
		g.client = g.newClient(g.cfg.serviceURI)
	}
	return *g.cfg, g.client, nil
}

// CreateAddress asks the custodian for a new deposit address.
func (g *Gateway) CreateAddress(ctx context.Context, _ map[string]any) (AddressResult, error) {
	cfg, client, err := g.session()
	if err != nil {
		return AddressResult{}, err
	}

	resp, err := client.Call(ctx, http.MethodPost, pathAddressNew, map[string]any{
		"currency_id": cfg.currencyID,
	})
	if err != nil {
		return AddressResult{}, clientError(err)
	}

	address, ok := resp.Fields()["address"].(string)
	if !ok || address == "" {
		return AddressResult{}, clientError(errAddressMissing)
	}
	details := make(map[string]any, len(resp.Fields()))
	for k, v := range resp.Fields() {
		if k != "address" {
			details[k] = v
		}
	}
	return AddressResult{Address: address, Details: details}, nil
}

// CreateTransaction submits tx to the custodian. On success tx.Options is
// replaced by the custodian's options and tx itself is returned.
func (g *Gateway) CreateTransaction(ctx context.Context, tx *OutboundTransaction) (*OutboundTransaction, error) {
	if tx == nil {
		return nil, clientError(errTransactionRequired)
	}
	cfg, client, err := g.session()
	if err != nil {
		return nil, err
	}

	resp, err := client.Call(ctx, http.MethodPost, pathTxSend, map[string]any{
		"currency_id": cfg.currencyID,
		"to":          tx.ToAddress,
		"amount":      tx.Amount,
		"options":     tx.Options,
	})
	if err != nil {
		return nil, clientError(err)
	}

	switch options := resp.Fields()["options"].(type) {
	case map[string]any:
		tx.Options = options
	case nil:
		tx.Options = nil
	default:
		return nil, clientError(errOptionsInvalid)
	}
	return tx, nil
}

// LoadBalance returns the custodian's balance for the configured currency.
func (g *Gateway) LoadBalance(ctx context.Context) (decimal.Decimal, error) {
	cfg, client, err := g.session()
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := client.Call(ctx, http.MethodPost, pathAddressBalance, compact(map[string]any{
		"currency_id": cfg.currencyID,
	}))
	if err != nil {
		return decimal.Zero, clientError(err)
	}

	field := resp.Get("balance")
	var text string
	switch field.Type {
	case gjson.Number:
		text = field.Raw
	case gjson.String:
		text = field.Str
	default:
		return decimal.Zero, clientError(errBalanceMissing)
	}
	balance, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, clientError(err)
	}
	return balance, nil
}

// HandleWebhook verifies a signed notification body and returns the
// transactions it describes.
func (g *Gateway) HandleWebhook(body []byte) ([]Transaction, error) {
	cfg, err := g.snapshot()
	if err != nil {
		return nil, err
	}

	claims, err := g.verifier.Verify(body)
	if err != nil {
		g.logger.Warn("webhook rejected", slog.Any("error", err))
		return nil, clientError(err)
	}

	txs, err := Normalizer{Unit: g.unit, BaseFactor: cfg.baseFactor}.Normalize(claims)
	if err != nil {
		return nil, clientError(err)
	}
	for _, tx := range txs {
		g.logger.Info("webhook accepted",
			slog.String("kind", tx.Kind),
			slog.String("currency", tx.CurrencyID),
			slog.String("hash", tx.Hash),
			slog.String("status", tx.Status),
			slog.String("tid", tx.Metadata.TransactionID),
		)
	}
	return txs, nil
}

// snapshot is session without building a client.
func (g *Gateway) snapshot() (walletConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg == nil {
		return walletConfig{}, &MissingSettingError{Key: "wallet"}
	}
	return *g.cfg, nil
}

// compact drops nil and empty string values.
func compact(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}
