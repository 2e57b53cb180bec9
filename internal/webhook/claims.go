package webhook

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// Claims is the verified payload of a custodian notification.
type Claims struct {
	Currency       string          `json:"currency"`
	Amount         decimal.Decimal `json:"amount"`
	BlockchainTxID string          `json:"blockchain_txid"`
	// RID is set for withdrawals; it names the recipient.
	RID *string `json:"rid,omitempty"`
	// Address is set for deposits.
	Address *string    `json:"address,omitempty"`
	State   string     `json:"state"`
	TID     Identifier `json:"tid"`

	jwt.RegisteredClaims
}

// Identifier accepts either a JSON string or number.
type Identifier string

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identifier) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = Identifier(n.String())
	return nil
}
