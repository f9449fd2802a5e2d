package dto

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/papertradehq/paper_trading_app/internal/core/domain"
)

// OrderRequest defines the data needed to place a buy or sell order.
// dgt0 is a custom binding rule: the decimal must be strictly positive.
type OrderRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required,dgt0"`
	Quantity decimal.Decimal `json:"quantity" binding:"required,dgt0"`
}

// RefreshValuationRequest carries an optional price snapshot for a valuation
// refresh. When Prices is empty the current quote board is used instead.
type RefreshValuationRequest struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

// TradeResponse defines the data returned for an executed trade.
type TradeResponse struct {
	TradeID    string           `json:"tradeID"`
	Side       domain.TradeSide `json:"side"`
	Symbol     string           `json:"symbol"`
	Price      decimal.Decimal  `json:"price"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Notional   decimal.Decimal  `json:"notional"`
	ExecutedAt time.Time        `json:"executedAt"`
}

// HoldingResponse is one open position in the portfolio view.
type HoldingResponse struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
}

// PortfolioResponse is the full raw portfolio view. Formatting is the caller's job.
type PortfolioResponse struct {
	InitialBalance    decimal.Decimal   `json:"initialBalance"`
	CashBalance       decimal.Decimal   `json:"cashBalance"`
	Holdings          []HoldingResponse `json:"holdings"`
	PortfolioValue    decimal.Decimal   `json:"portfolioValue"`
	NetWorth          decimal.Decimal   `json:"netWorth"`
	AllTimePnL        decimal.Decimal   `json:"allTimePnL"`
	AllTimePnLPercent decimal.Decimal   `json:"allTimePnLPercent"`
	TradeCount        int               `json:"tradeCount"`
	LastUpdatedAt     time.Time         `json:"lastUpdatedAt"`
}

// ValuationResponse is the result of a valuation refresh.
type ValuationResponse struct {
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
	NetWorth       decimal.Decimal `json:"netWorth"`
	AsOf           time.Time       `json:"asOf"`
}

// NetWorthPointResponse is one day of the net-worth series.
type NetWorthPointResponse struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// UnrealizedPnLResponse is the unrealized P&L of one holding at a given price.
type UnrealizedPnLResponse struct {
	Symbol        string          `json:"symbol"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	UnrealizedPnL decimal.Decimal `json:"unrealizedPnL"`
}

// ListTradesParams defines query parameters for listing trades.
type ListTradesParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListTradesResponse wraps the most-recent-first page of trades.
type ListTradesResponse struct {
	Trades []TradeResponse `json:"trades"`
}

// ToTradeResponse converts a domain.Trade to a TradeResponse DTO
func ToTradeResponse(t *domain.Trade) TradeResponse {
	return TradeResponse{
		TradeID:    t.TradeID,
		Side:       t.Side,
		Symbol:     t.Symbol,
		Price:      t.Price,
		Quantity:   t.Quantity,
		Notional:   t.Notional,
		ExecutedAt: t.ExecutedAt,
	}
}

// ToListTradesResponse converts a slice of domain.Trade to the list DTO
func ToListTradesResponse(trades []domain.Trade) ListTradesResponse {
	res := make([]TradeResponse, len(trades))
	for i := range trades {
		res[i] = ToTradeResponse(&trades[i])
	}
	return ListTradesResponse{Trades: res}
}

// ToPortfolioResponse converts an account snapshot to the portfolio view.
// Holdings are sorted by symbol for stable output.
func ToPortfolioResponse(acc domain.Account) PortfolioResponse {
	holdings := make([]HoldingResponse, 0, len(acc.Holdings))
	for symbol, h := range acc.Holdings {
		holdings = append(holdings, HoldingResponse{
			Symbol:      symbol,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
		})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return PortfolioResponse{
		InitialBalance:    acc.InitialBalance,
		CashBalance:       acc.CashBalance,
		Holdings:          holdings,
		PortfolioValue:    acc.PortfolioValue,
		NetWorth:          acc.TotalNetWorth(),
		AllTimePnL:        acc.AllTimePnL(),
		AllTimePnLPercent: acc.AllTimePnLPercent(),
		TradeCount:        len(acc.Trades),
		LastUpdatedAt:     acc.LastUpdatedAt,
	}
}

// ToValuationResponse converts a domain.Valuation to its DTO
func ToValuationResponse(v domain.Valuation) ValuationResponse {
	return ValuationResponse{
		PortfolioValue: v.PortfolioValue,
		NetWorth:       v.NetWorth,
		AsOf:           v.AsOf,
	}
}

// ToNetWorthHistoryResponse converts the net-worth series to DTOs
func ToNetWorthHistoryResponse(history []domain.NetWorthPoint) []NetWorthPointResponse {
	res := make([]NetWorthPointResponse, len(history))
	for i, p := range history {
		res[i] = NetWorthPointResponse{Date: p.Date, Value: p.Value}
	}
	return res
}
