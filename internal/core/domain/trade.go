package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide indicates whether a trade bought or sold the symbol.
type TradeSide string

const (
	Buy  TradeSide = "BUY"
	Sell TradeSide = "SELL"
)

// Trade is a single executed paper order. Trades are immutable once created
// and are only ever appended to the front of the account's trade list.
type Trade struct {
	TradeID    string          `json:"tradeID"` // Primary key (UUID)
	Side       TradeSide       `json:"side"`
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`    // Execution price, positive
	Quantity   decimal.Decimal `json:"quantity"` // Positive; fractional lots allowed
	Notional   decimal.Decimal `json:"notional"` // Price × Quantity
	ExecutedAt time.Time       `json:"executedAt"`
}
