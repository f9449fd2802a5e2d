package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds indicates a buy order whose cost exceeds the available cash balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInsufficientHoldings indicates a sell order for more units than are currently held.
var ErrInsufficientHoldings = errors.New("insufficient holdings")

// ErrInvalidInput indicates malformed order input (empty symbol, non-positive price or quantity).
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// InsufficientFundsError carries the context a caller needs to render a
// user-facing rejection message. It wraps ErrInsufficientFunds so callers
// can keep matching with errors.Is.
type InsufficientFundsError struct {
	Symbol        string
	RequiredCash  decimal.Decimal
	AvailableCash decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds to buy %s: need %s, have %s",
		e.Symbol, e.RequiredCash.String(), e.AvailableCash.String())
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// InsufficientHoldingsError carries the context of a rejected sell. A sell of
// a symbol that was never held reports Held as zero.
type InsufficientHoldingsError struct {
	Symbol    string
	Requested decimal.Decimal
	Held      decimal.Decimal
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings of %s: requested %s, held %s",
		e.Symbol, e.Requested.String(), e.Held.String())
}

func (e *InsufficientHoldingsError) Unwrap() error { return ErrInsufficientHoldings }
