package events

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a custodian notification as recorded by the host.
type Event struct {
	ID                 string          `json:"id"`
	Kind               string          `json:"kind"`
	CurrencyID         string          `json:"currency_id"`
	Amount             decimal.Decimal `json:"amount"`
	Hash               string          `json:"hash"`
	DestinationAddress string          `json:"to_address"`
	OutputIndex        int             `json:"txout"`
	Status             string          `json:"status"`
	TransactionID      string          `json:"tid"`
	ReceivedAt         time.Time       `json:"received_at"`
}

// Key identifies a delivery. The custodian re-sends the same notification on
// retries and sends a new one for every state change.
func (e Event) Key() string {
	return strings.Join([]string{e.CurrencyID, e.Hash, e.DestinationAddress, e.Status, e.TransactionID}, "|")
}

// Store records received events.
type Store interface {
	// Save records e and reports whether it had not been seen before.
	Save(ctx context.Context, e Event) (bool, error)
	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
}
