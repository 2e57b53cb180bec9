package wallet

import "github.com/shopspring/decimal"

const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
)

// Transaction is the canonical, custodian-independent form of a deposit or
// withdrawal notification.
type Transaction struct {
	CurrencyID         string              `json:"currency_id"`
	Amount             decimal.Decimal     `json:"amount"`
	Hash               string              `json:"hash"`
	DestinationAddress string              `json:"to_address"`
	OutputIndex        int                 `json:"txout"`
	Status             string              `json:"status"`
	Kind               string              `json:"kind"`
	Metadata           TransactionMetadata `json:"options"`
}

// TransactionMetadata carries custodian references.
type TransactionMetadata struct {
	TransactionID string `json:"tid"`
}

// OutboundTransaction is a send request. CreateTransaction mutates Options
// in place with what the custodian returned.
type OutboundTransaction struct {
	ToAddress string          `json:"to_address"`
	Amount    decimal.Decimal `json:"amount"`
	Options   map[string]any  `json:"options"`
}

// AddressResult is a freshly issued deposit address. Details holds every
// other field of the custodian response.
type AddressResult struct {
	Address string         `json:"address"`
	Details map[string]any `json:"details"`
}
