package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/papertradehq/paper_trading_app/internal/apperrors"
	"github.com/papertradehq/paper_trading_app/internal/core/domain"
	portssvc "github.com/papertradehq/paper_trading_app/internal/core/ports/services"
	"github.com/papertradehq/paper_trading_app/internal/core/services"
)

// MockLedgerRepository is a mock type for the LedgerRepository interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockLedgerRepository) LoadAccount(ctx context.Context) (*domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.LedgerSvcFacade
	now      time.Time
}

const initialBalance = 10_000_000

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.mockRepo.On("LoadAccount", mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil)
	suite.now = time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

	svc, err := services.NewLedgerService(
		context.Background(),
		suite.mockRepo,
		decimal.NewFromInt(initialBalance),
		services.WithClock(func() time.Time { return suite.now }),
	)
	suite.Require().NoError(err)
	suite.service = svc
}

func (suite *LedgerServiceTestSuite) buyNHAI() *domain.Trade {
	trade, err := suite.service.Buy(context.Background(), "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(100))
	suite.Require().NoError(err)
	return trade
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestBuy_Success() {
	ctx := context.Background()

	trade := suite.buyNHAI()

	suite.Equal(domain.Buy, trade.Side)
	suite.Equal("NHAI", trade.Symbol)
	suite.True(trade.Notional.Equal(decimal.NewFromInt(100_000)))
	suite.NotEmpty(trade.TradeID)
	suite.Equal(suite.now, trade.ExecutedAt)

	account := suite.service.Portfolio(ctx)
	suite.True(account.CashBalance.Equal(decimal.NewFromInt(9_900_000)))
	suite.Require().Contains(account.Holdings, "NHAI")
	suite.True(account.Holdings["NHAI"].Quantity.Equal(decimal.NewFromInt(100)))
	suite.True(account.Holdings["NHAI"].AverageCost.Equal(decimal.NewFromInt(1000)))
	suite.Len(account.Trades, 1)
}

func (suite *LedgerServiceTestSuite) TestSell_FullPosition() {
	ctx := context.Background()
	suite.buyNHAI()

	trade, err := suite.service.Sell(ctx, "NHAI", decimal.NewFromInt(1100), decimal.NewFromInt(100))
	suite.Require().NoError(err)
	suite.Equal(domain.Sell, trade.Side)
	suite.True(trade.Notional.Equal(decimal.NewFromInt(110_000)))

	account := suite.service.Portfolio(ctx)
	suite.True(account.CashBalance.Equal(decimal.NewFromInt(10_010_000)))
	suite.NotContains(account.Holdings, "NHAI")
	suite.Len(account.Trades, 2)
	// Most recent first
	suite.Equal(domain.Sell, account.Trades[0].Side)
	suite.Equal(domain.Buy, account.Trades[1].Side)

	pnl, pct := suite.service.AllTimePnL(ctx)
	suite.True(pnl.Equal(decimal.NewFromInt(10_000)))
	suite.True(pct.Equal(decimal.NewFromFloat(0.1)))
}

func (suite *LedgerServiceTestSuite) TestSell_PartialPosition() {
	ctx := context.Background()
	suite.buyNHAI()

	_, err := suite.service.Sell(ctx, "NHAI", decimal.NewFromInt(1100), decimal.NewFromInt(40))
	suite.Require().NoError(err)

	account := suite.service.Portfolio(ctx)
	suite.Require().Contains(account.Holdings, "NHAI")
	suite.True(account.Holdings["NHAI"].Quantity.Equal(decimal.NewFromInt(60)))
	// Average cost unchanged by a sell
	suite.True(account.Holdings["NHAI"].AverageCost.Equal(decimal.NewFromInt(1000)))
}

func (suite *LedgerServiceTestSuite) TestSell_InsufficientHoldings() {
	ctx := context.Background()
	suite.buyNHAI()
	before := suite.service.Portfolio(ctx)

	_, err := suite.service.Sell(ctx, "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(200))
	suite.Require().ErrorIs(err, apperrors.ErrInsufficientHoldings)

	var holdingsErr *apperrors.InsufficientHoldingsError
	suite.Require().ErrorAs(err, &holdingsErr)
	suite.Equal("NHAI", holdingsErr.Symbol)
	suite.True(holdingsErr.Requested.Equal(decimal.NewFromInt(200)))
	suite.True(holdingsErr.Held.Equal(decimal.NewFromInt(100)))

	suite.assertAccountUnchanged(before, suite.service.Portfolio(ctx))
}

func (suite *LedgerServiceTestSuite) TestSell_SymbolNeverHeld() {
	ctx := context.Background()
	before := suite.service.Portfolio(ctx)

	_, err := suite.service.Sell(ctx, "XYZ", decimal.NewFromInt(10), decimal.NewFromInt(1))
	suite.Require().ErrorIs(err, apperrors.ErrInsufficientHoldings)

	var holdingsErr *apperrors.InsufficientHoldingsError
	suite.Require().ErrorAs(err, &holdingsErr)
	suite.True(holdingsErr.Held.IsZero())

	suite.assertAccountUnchanged(before, suite.service.Portfolio(ctx))
}

func (suite *LedgerServiceTestSuite) TestBuy_InsufficientFunds() {
	ctx := context.Background()
	suite.buyNHAI() // cash now 9,900,000
	before := suite.service.Portfolio(ctx)

	// Cost 100,000,000 exceeds the remaining cash
	_, err := suite.service.Buy(ctx, "XYZ", decimal.NewFromInt(100), decimal.NewFromInt(1_000_000))
	suite.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)

	var fundsErr *apperrors.InsufficientFundsError
	suite.Require().ErrorAs(err, &fundsErr)
	suite.Equal("XYZ", fundsErr.Symbol)
	suite.True(fundsErr.RequiredCash.Equal(decimal.NewFromInt(100_000_000)))
	suite.True(fundsErr.AvailableCash.Equal(decimal.NewFromInt(9_900_000)))

	suite.assertAccountUnchanged(before, suite.service.Portfolio(ctx))
}

func (suite *LedgerServiceTestSuite) TestOrders_InvalidInput() {
	ctx := context.Background()
	before := suite.service.Portfolio(ctx)

	cases := []struct {
		name     string
		symbol   string
		price    decimal.Decimal
		quantity decimal.Decimal
	}{
		{"empty symbol", "  ", decimal.NewFromInt(10), decimal.NewFromInt(1)},
		{"zero price", "NHAI", decimal.Zero, decimal.NewFromInt(1)},
		{"negative price", "NHAI", decimal.NewFromInt(-10), decimal.NewFromInt(1)},
		{"zero quantity", "NHAI", decimal.NewFromInt(10), decimal.Zero},
		{"negative quantity", "NHAI", decimal.NewFromInt(10), decimal.NewFromInt(-1)},
	}

	for _, tc := range cases {
		_, err := suite.service.Buy(ctx, tc.symbol, tc.price, tc.quantity)
		suite.ErrorIs(err, apperrors.ErrInvalidInput, tc.name)
		_, err = suite.service.Sell(ctx, tc.symbol, tc.price, tc.quantity)
		suite.ErrorIs(err, apperrors.ErrInvalidInput, tc.name)
	}

	suite.assertAccountUnchanged(before, suite.service.Portfolio(ctx))
}

func (suite *LedgerServiceTestSuite) TestConservation_BuyThenSellSamePrice() {
	ctx := context.Background()
	before := suite.service.Portfolio(ctx)

	_, err := suite.service.Buy(ctx, "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(100))
	suite.Require().NoError(err)
	_, err = suite.service.Sell(ctx, "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(100))
	suite.Require().NoError(err)

	account := suite.service.Portfolio(ctx)
	suite.True(account.CashBalance.Equal(before.CashBalance))
	suite.NotContains(account.Holdings, "NHAI")
	suite.Len(account.Trades, 2)
}

func (suite *LedgerServiceTestSuite) TestRefreshValuation_SameDayOverwrites() {
	ctx := context.Background()
	suite.buyNHAI() // cash 9,900,000, holdings NHAI=100

	prices := map[string]decimal.Decimal{"NHAI": decimal.NewFromInt(1050)}

	v1 := suite.service.RefreshValuation(ctx, prices)
	suite.True(v1.PortfolioValue.Equal(decimal.NewFromInt(105_000)))
	suite.True(v1.NetWorth.Equal(decimal.NewFromInt(10_005_000)))

	// A second refresh on the same calendar day updates in place
	suite.now = suite.now.Add(3 * time.Hour)
	v2 := suite.service.RefreshValuation(ctx, prices)
	suite.True(v2.PortfolioValue.Equal(decimal.NewFromInt(105_000)))

	history := suite.service.NetWorthHistory(ctx)
	suite.Require().Len(history, 1)
	suite.Equal("2025-06-02", history[0].Date)
	suite.True(history[0].Value.Equal(decimal.NewFromInt(10_005_000)))
}

func (suite *LedgerServiceTestSuite) TestRefreshValuation_NewDayAppends() {
	ctx := context.Background()
	suite.buyNHAI()
	prices := map[string]decimal.Decimal{"NHAI": decimal.NewFromInt(1050)}

	suite.service.RefreshValuation(ctx, prices)
	suite.now = suite.now.Add(24 * time.Hour)
	suite.service.RefreshValuation(ctx, map[string]decimal.Decimal{"NHAI": decimal.NewFromInt(1100)})

	history := suite.service.NetWorthHistory(ctx)
	suite.Require().Len(history, 2)
	suite.Equal("2025-06-02", history[0].Date)
	suite.Equal("2025-06-03", history[1].Date)
	suite.True(history[1].Value.Equal(decimal.NewFromInt(10_010_000)))
}

func (suite *LedgerServiceTestSuite) TestRefreshValuation_MissingSymbolOmitted() {
	ctx := context.Background()
	suite.buyNHAI()
	_, err := suite.service.Buy(ctx, "IRFC", decimal.NewFromInt(50), decimal.NewFromInt(10))
	suite.Require().NoError(err)

	// IRFC has no quote in the snapshot and contributes nothing
	v := suite.service.RefreshValuation(ctx, map[string]decimal.Decimal{"NHAI": decimal.NewFromInt(1000)})
	suite.True(v.PortfolioValue.Equal(decimal.NewFromInt(100_000)))

	suite.True(suite.service.TotalNetWorth(ctx).Equal(v.NetWorth))
}

func (suite *LedgerServiceTestSuite) TestAverageCost_WeightedAcrossBuys() {
	ctx := context.Background()

	_, err := suite.service.Buy(ctx, "PFC", decimal.NewFromInt(100), decimal.NewFromInt(10))
	suite.Require().NoError(err)
	_, err = suite.service.Buy(ctx, "PFC", decimal.NewFromInt(200), decimal.NewFromInt(10))
	suite.Require().NoError(err)

	account := suite.service.Portfolio(ctx)
	suite.True(account.Holdings["PFC"].AverageCost.Equal(decimal.NewFromInt(150)))

	// Selling part of the position keeps the average cost
	_, err = suite.service.Sell(ctx, "PFC", decimal.NewFromInt(180), decimal.NewFromInt(5))
	suite.Require().NoError(err)

	pnl, err := suite.service.UnrealizedPnL(ctx, "PFC", decimal.NewFromInt(180))
	suite.Require().NoError(err)
	suite.True(pnl.Equal(decimal.NewFromInt(450))) // (180-150) × 15
}

func (suite *LedgerServiceTestSuite) TestUnrealizedPnL_UnknownHolding() {
	_, err := suite.service.UnrealizedPnL(context.Background(), "GHOST", decimal.NewFromInt(10))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestReset_RestoresFreshState() {
	ctx := context.Background()
	suite.buyNHAI()
	suite.service.RefreshValuation(ctx, map[string]decimal.Decimal{"NHAI": decimal.NewFromInt(1050)})

	suite.Require().NoError(suite.service.Reset(ctx))

	account := suite.service.Portfolio(ctx)
	suite.True(account.InitialBalance.Equal(decimal.NewFromInt(initialBalance)))
	suite.True(account.CashBalance.Equal(decimal.NewFromInt(initialBalance)))
	suite.Empty(account.Holdings)
	suite.Empty(account.Trades)
	suite.Empty(account.NetWorthHistory)
	suite.True(account.PortfolioValue.IsZero())
}

func (suite *LedgerServiceTestSuite) TestListTrades_Pagination() {
	ctx := context.Background()
	for _, symbol := range []string{"NHAI", "IRFC", "PFC"} {
		_, err := suite.service.Buy(ctx, symbol, decimal.NewFromInt(10), decimal.NewFromInt(1))
		suite.Require().NoError(err)
	}

	page := suite.service.ListTrades(ctx, 2, 0)
	suite.Require().Len(page, 2)
	suite.Equal("PFC", page[0].Symbol) // most recent first
	suite.Equal("IRFC", page[1].Symbol)

	page = suite.service.ListTrades(ctx, 2, 2)
	suite.Require().Len(page, 1)
	suite.Equal("NHAI", page[0].Symbol)

	suite.Empty(suite.service.ListTrades(ctx, 2, 5))
}

func (suite *LedgerServiceTestSuite) TestPersistence_CalledOnEveryMutation() {
	ctx := context.Background()
	suite.buyNHAI()
	_, err := suite.service.Sell(ctx, "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(50))
	suite.Require().NoError(err)
	suite.service.RefreshValuation(ctx, nil)
	suite.Require().NoError(suite.service.Reset(ctx))

	suite.mockRepo.AssertNumberOfCalls(suite.T(), "SaveAccount", 4)
}

func (suite *LedgerServiceTestSuite) TestConcurrentBuys_PreserveInvariants() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = suite.service.Buy(ctx, "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(100))
			_, _ = suite.service.Sell(ctx, "NHAI", decimal.NewFromInt(1000), decimal.NewFromInt(100))
		}()
	}
	wg.Wait()

	account := suite.service.Portfolio(ctx)
	suite.False(account.CashBalance.IsNegative())
	for symbol, holding := range account.Holdings {
		suite.True(holding.Quantity.IsPositive(), "holding %s must be positive", symbol)
	}
	// Every accepted order produced exactly one trade; cash plus position
	// value at cost equals the initial balance since all fills were at 1000.
	held := decimal.Zero
	if h, ok := account.Holdings["NHAI"]; ok {
		held = h.Quantity
	}
	total := account.CashBalance.Add(held.Mul(decimal.NewFromInt(1000)))
	suite.True(total.Equal(decimal.NewFromInt(initialBalance)))
}

// assertAccountUnchanged verifies rejection atomicity: cash, holdings, trade
// count and history must all match their pre-call values.
func (suite *LedgerServiceTestSuite) assertAccountUnchanged(before, after domain.Account) {
	suite.True(after.CashBalance.Equal(before.CashBalance))
	suite.Equal(len(before.Holdings), len(after.Holdings))
	for symbol, h := range before.Holdings {
		suite.Require().Contains(after.Holdings, symbol)
		suite.True(after.Holdings[symbol].Quantity.Equal(h.Quantity))
		suite.True(after.Holdings[symbol].AverageCost.Equal(h.AverageCost))
	}
	suite.Equal(len(before.Trades), len(after.Trades))
	suite.Equal(len(before.NetWorthHistory), len(after.NetWorthHistory))
	suite.Equal(before.LastUpdatedAt, after.LastUpdatedAt)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// --- Restore path ---

func TestNewLedgerService_RestoresStoredAccount(t *testing.T) {
	stored := domain.NewAccount(decimal.NewFromInt(500_000))
	stored.CashBalance = decimal.NewFromInt(400_000)
	stored.Holdings["NHAI"] = domain.Holding{
		Quantity:    decimal.NewFromInt(100),
		AverageCost: decimal.NewFromInt(1000),
	}
	stored.PortfolioValue = decimal.NewFromInt(105_000)

	mockRepo := new(MockLedgerRepository)
	mockRepo.On("LoadAccount", mock.Anything).Return(&stored, nil)
	mockRepo.On("SaveAccount", mock.Anything, mock.AnythingOfType("domain.Account")).Return(nil)

	svc, err := services.NewLedgerService(context.Background(), mockRepo, decimal.NewFromInt(10_000_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	account := svc.Portfolio(ctx)
	if !account.InitialBalance.Equal(decimal.NewFromInt(500_000)) {
		t.Errorf("initial balance not restored: got %s", account.InitialBalance)
	}
	if !svc.TotalNetWorth(ctx).Equal(decimal.NewFromInt(505_000)) {
		t.Errorf("net worth not restored: got %s", svc.TotalNetWorth(ctx))
	}

	// Restored accounts behave identically for subsequent operations
	if _, err := svc.Sell(ctx, "NHAI", decimal.NewFromInt(1100), decimal.NewFromInt(100)); err != nil {
		t.Fatalf("sell against restored holding failed: %v", err)
	}
}
