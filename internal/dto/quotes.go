package dto

import "github.com/shopspring/decimal"

// ReplaceQuotesRequest replaces the whole quote board in one call.
type ReplaceQuotesRequest struct {
	Prices map[string]decimal.Decimal `json:"prices" binding:"required"`
}

// QuotesResponse returns the current quote board.
type QuotesResponse struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}
