package zerodha

import (
	"context"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// Client defines the Kite Connect operations exposed as tools.
// Every order mutation targets the regular variety.
type Client interface {
	// PlaceOrder places a new order and returns the broker order id
	PlaceOrder(ctx context.Context, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)

	// ModifyOrder changes the fields set in params on a pending order
	ModifyOrder(ctx context.Context, orderID string, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)

	// CancelOrder cancels a pending order
	CancelOrder(ctx context.Context, orderID string) (kiteconnect.OrderResponse, error)

	GetPositions(ctx context.Context) (kiteconnect.Positions, error)
	GetHoldings(ctx context.Context) (kiteconnect.Holdings, error)
	GetMargins(ctx context.Context) (kiteconnect.AllMargins, error)

	// GetQuote returns full quotes keyed by "EXCHANGE:TRADINGSYMBOL"
	GetQuote(ctx context.Context, instruments ...string) (kiteconnect.Quote, error)

	// GetLTP returns last traded prices keyed by "EXCHANGE:TRADINGSYMBOL"
	GetLTP(ctx context.Context, instruments ...string) (kiteconnect.QuoteLTP, error)

	// GetHistoricalData returns candles for an instrument token between from and to
	GetHistoricalData(ctx context.Context, instrumentToken int, interval string, from, to time.Time) ([]kiteconnect.HistoricalData, error)

	// GetInstruments returns the instrument dump, for one exchange when exchange is set
	GetInstruments(ctx context.Context, exchange string) (kiteconnect.Instruments, error)

	GetOrders(ctx context.Context) (kiteconnect.Orders, error)
	GetTrades(ctx context.Context) (kiteconnect.Trades, error)
	GetOrderHistory(ctx context.Context, orderID string) ([]kiteconnect.Order, error)
	GetProfile(ctx context.Context) (kiteconnect.UserProfile, error)
}
