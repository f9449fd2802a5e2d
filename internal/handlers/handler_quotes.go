package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/papertradehq/paper_trading_app/internal/core/ports/services"
	"github.com/papertradehq/paper_trading_app/internal/dto"
	"github.com/papertradehq/paper_trading_app/internal/middleware"
)

// quotesHandler handles HTTP requests against the quote board.
type quotesHandler struct {
	quoteService portssvc.QuoteSvcFacade
}

// registerQuoteRoutes registers routes related to quotes.
func registerQuoteRoutes(rg *gin.RouterGroup, qs portssvc.QuoteSvcFacade) {
	h := &quotesHandler{quoteService: qs}

	quotes := rg.Group("/quotes")
	{
		quotes.PUT("", h.replaceQuotes)
		quotes.GET("", h.getQuotes)
	}
}

// replaceQuotes godoc
// @Summary Replace the quote board
// @Description Swaps the entire symbol-to-price snapshot used by parameterless valuation refreshes
// @Tags quotes
// @Accept json
// @Produce json
// @Param quotes body dto.ReplaceQuotesRequest true "Price snapshot"
// @Success 200 {object} dto.QuotesResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /quotes [put]
func (h *quotesHandler) replaceQuotes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReplaceQuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for quote replacement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	h.quoteService.Replace(c.Request.Context(), req.Prices)
	c.JSON(http.StatusOK, dto.QuotesResponse{Prices: h.quoteService.Snapshot(c.Request.Context())})
}

// getQuotes godoc
// @Summary Get the quote board
// @Description Returns the current symbol-to-price snapshot
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuotesResponse
// @Router /quotes [get]
func (h *quotesHandler) getQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, dto.QuotesResponse{Prices: h.quoteService.Snapshot(c.Request.Context())})
}
