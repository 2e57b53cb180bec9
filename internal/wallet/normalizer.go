package wallet

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/custody_gateway/internal/webhook"
)

// AmountUnit says how notification amounts are denominated.
type AmountUnit string

const (
	// UnitDisplay passes amounts through unchanged.
	UnitDisplay AmountUnit = "display"
	// UnitBase divides amounts by the currency base factor.
	UnitBase AmountUnit = "base"
)

// ParseAmountUnit accepts "display", "base" or "" (display).
func ParseAmountUnit(s string) (AmountUnit, error) {
	switch AmountUnit(s) {
	case "", UnitDisplay:
		return UnitDisplay, nil
	case UnitBase:
		return UnitBase, nil
	default:
		return "", fmt.Errorf("unknown amount unit %q", s)
	}
}

// ConvertFromBaseUnit turns a smallest-unit amount into display units.
func ConvertFromBaseUnit(value, baseFactor decimal.Decimal) (decimal.Decimal, error) {
	if !baseFactor.IsPositive() {
		return decimal.Zero, errors.New("base factor must be positive")
	}
	return value.Div(baseFactor), nil
}

// Normalizer maps verified claims to canonical transactions.
type Normalizer struct {
	Unit       AmountUnit
	BaseFactor decimal.Decimal
}

// Normalize classifies the notification and returns it as a one element
// slice. A recipient identifier marks a withdrawal; otherwise it is a deposit
// to Address. Claims carrying neither are rejected.
func (n Normalizer) Normalize(c webhook.Claims) ([]Transaction, error) {
	amount := c.Amount
	if n.Unit == UnitBase {
		converted, err := ConvertFromBaseUnit(c.Amount, n.BaseFactor)
		if err != nil {
			return nil, err
		}
		amount = converted
	}

	tx := Transaction{
		CurrencyID:  c.Currency,
		Amount:      amount,
		Hash:        c.BlockchainTxID,
		OutputIndex: 0,
		Status:      c.State,
		Metadata:    TransactionMetadata{TransactionID: string(c.TID)},
	}
	switch {
	case c.RID != nil:
		tx.Kind = KindWithdrawal
		tx.DestinationAddress = *c.RID
	case c.Address != nil:
		tx.Kind = KindDeposit
		tx.DestinationAddress = *c.Address
	default:
		return nil, errDestinationMissing
	}
	return []Transaction{tx}, nil
}
