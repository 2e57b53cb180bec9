package wallet

import (
	"errors"
	"fmt"
)

// MissingSettingError reports a required configuration key that was not
// provided. It is never retried or swallowed.
type MissingSettingError struct {
	Key string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("missing setting %q", e.Key)
}

// ClientError is the single error kind returned for any failure talking to
// the custodian or trusting its notifications.
type ClientError struct {
	Err error
}

func (e *ClientError) Error() string {
	return "wallet client error: " + e.Err.Error()
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

var (
	errAddressMissing      = errors.New("address field missing from response")
	errBalanceMissing      = errors.New("balance field missing from response")
	errOptionsInvalid      = errors.New("options field is not an object")
	errDestinationMissing  = errors.New("notification has neither rid nor address")
	errTransactionRequired = errors.New("transaction is required")
)

func clientError(err error) error {
	return &ClientError{Err: err}
}
