package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/papertradehq/paper_trading_app/internal/apperrors"
	portssvc "github.com/papertradehq/paper_trading_app/internal/core/ports/services"
	"github.com/papertradehq/paper_trading_app/internal/dto"
	"github.com/papertradehq/paper_trading_app/internal/middleware"
)

// ledgerHandler handles HTTP requests against the paper-trading account.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	quoteService  portssvc.QuoteSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ls portssvc.LedgerSvcFacade, qs portssvc.QuoteSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
		quoteService:  qs,
	}
}

// registerLedgerRoutes registers routes related to the ledger.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade, qs portssvc.QuoteSvcFacade) {
	h := newLedgerHandler(ls, qs)

	orders := rg.Group("/orders")
	{
		orders.POST("/buy", h.buy)
		orders.POST("/sell", h.sell)
	}

	portfolio := rg.Group("/portfolio")
	{
		portfolio.GET("", h.getPortfolio)
		portfolio.POST("/refresh", h.refreshValuation)
		portfolio.POST("/reset", h.reset)
	}

	rg.GET("/trades", h.listTrades)
	rg.GET("/networth/history", h.getNetWorthHistory)
	rg.GET("/holdings/:symbol/pnl", h.getUnrealizedPnL)
}

// rejectOrder maps a rejected order to the right status code with enough
// context for the caller to render a user-facing message.
func rejectOrder(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var fundsErr *apperrors.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		logger.Warn("Order rejected", slog.String("reason", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"symbol":    fundsErr.Symbol,
			"required":  fundsErr.RequiredCash,
			"available": fundsErr.AvailableCash,
		})
		return
	}

	var holdingsErr *apperrors.InsufficientHoldingsError
	if errors.As(err, &holdingsErr) {
		logger.Warn("Order rejected", slog.String("reason", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"symbol":    holdingsErr.Symbol,
			"requested": holdingsErr.Requested,
			"held":      holdingsErr.Held,
		})
		return
	}

	if errors.Is(err, apperrors.ErrInvalidInput) {
		logger.Warn("Invalid order input", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Error("Failed to execute order", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute order"})
}

// buy godoc
// @Summary Place a buy order
// @Description Buys the given quantity of a symbol at the given price, debiting cash
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.OrderRequest true "Order details"
// @Success 201 {object} dto.TradeResponse
// @Failure 400 {object} map[string]string "Invalid request format or input"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /orders/buy [post]
func (h *ledgerHandler) buy(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for buy order", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trade, err := h.ledgerService.Buy(c.Request.Context(), req.Symbol, req.Price, req.Quantity)
	if err != nil {
		rejectOrder(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTradeResponse(trade))
}

// sell godoc
// @Summary Place a sell order
// @Description Sells the given quantity of a held symbol at the given price, crediting cash
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.OrderRequest true "Order details"
// @Success 201 {object} dto.TradeResponse
// @Failure 400 {object} map[string]string "Invalid request format or input"
// @Failure 422 {object} map[string]string "Insufficient holdings"
// @Router /orders/sell [post]
func (h *ledgerHandler) sell(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for sell order", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	trade, err := h.ledgerService.Sell(c.Request.Context(), req.Symbol, req.Price, req.Quantity)
	if err != nil {
		rejectOrder(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTradeResponse(trade))
}

// getPortfolio godoc
// @Summary Get the portfolio
// @Description Returns cash, holdings with average cost, portfolio value, net worth and all-time P&L
// @Tags portfolio
// @Produce json
// @Success 200 {object} dto.PortfolioResponse
// @Router /portfolio [get]
func (h *ledgerHandler) getPortfolio(c *gin.Context) {
	account := h.ledgerService.Portfolio(c.Request.Context())
	c.JSON(http.StatusOK, dto.ToPortfolioResponse(account))
}

// refreshValuation godoc
// @Summary Refresh the portfolio valuation
// @Description Revalues holdings against the supplied price snapshot, or the quote board when no prices are given
// @Tags portfolio
// @Accept json
// @Produce json
// @Param snapshot body dto.RefreshValuationRequest false "Price snapshot"
// @Success 200 {object} dto.ValuationResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /portfolio/refresh [post]
func (h *ledgerHandler) refreshValuation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RefreshValuationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for valuation refresh", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	prices := req.Prices
	if len(prices) == 0 {
		prices = h.quoteService.Snapshot(c.Request.Context())
	}

	valuation := h.ledgerService.RefreshValuation(c.Request.Context(), prices)
	c.JSON(http.StatusOK, dto.ToValuationResponse(valuation))
}

// reset godoc
// @Summary Reset the account
// @Description Restores the account to its freshly-created state at the initial balance
// @Tags portfolio
// @Produce json
// @Success 204 "Account reset"
// @Router /portfolio/reset [post]
func (h *ledgerHandler) reset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err := h.ledgerService.Reset(c.Request.Context()); err != nil {
		logger.Error("Failed to reset account", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset account"})
		return
	}
	c.Status(http.StatusNoContent)
}

// listTrades godoc
// @Summary List trades
// @Description Returns the trade history, most recent first
// @Tags trades
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListTradesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Router /trades [get]
func (h *ledgerHandler) listTrades(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTradesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for trade listing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	trades := h.ledgerService.ListTrades(c.Request.Context(), params.Limit, params.Offset)
	c.JSON(http.StatusOK, dto.ToListTradesResponse(trades))
}

// getNetWorthHistory godoc
// @Summary Get the net-worth history
// @Description Returns the daily net-worth series in chronological order
// @Tags portfolio
// @Produce json
// @Success 200 {array} dto.NetWorthPointResponse
// @Router /networth/history [get]
func (h *ledgerHandler) getNetWorthHistory(c *gin.Context) {
	history := h.ledgerService.NetWorthHistory(c.Request.Context())
	c.JSON(http.StatusOK, dto.ToNetWorthHistoryResponse(history))
}

// getUnrealizedPnL godoc
// @Summary Get unrealized P&L for one holding
// @Description Computes (currentPrice - averageCost) × quantity for a held symbol
// @Tags portfolio
// @Produce json
// @Param symbol path string true "Symbol"
// @Param price query string true "Current price"
// @Success 200 {object} dto.UnrealizedPnLResponse
// @Failure 400 {object} map[string]string "Invalid price"
// @Failure 404 {object} map[string]string "Symbol not held"
// @Router /holdings/{symbol}/pnl [get]
func (h *ledgerHandler) getUnrealizedPnL(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	symbol := c.Param("symbol")

	price, err := decimal.NewFromString(c.Query("price"))
	if err != nil {
		logger.Warn("Invalid price for unrealized P&L", slog.String("price", c.Query("price")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price: " + err.Error()})
		return
	}

	pnl, err := h.ledgerService.UnrealizedPnL(c.Request.Context(), symbol, price)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to compute unrealized P&L", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute unrealized P&L"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.UnrealizedPnLResponse{
		Symbol:        symbol,
		CurrentPrice:  price,
		UnrealizedPnL: pnl,
	})
}
