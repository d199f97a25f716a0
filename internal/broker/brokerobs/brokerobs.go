package brokerobs

import (
	"context"
	"strings"
	"time"

	"kite-mcp/internal/broker/zerodha"
	"kite-mcp/internal/logger"
	"kite-mcp/internal/trace"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"go.opentelemetry.io/otel/attribute"
)

// observableBroker wraps a Kite client with logging and tracing
type observableBroker struct {
	broker zerodha.Client
}

// Compile-time interface check
var _ zerodha.Client = (*observableBroker)(nil)

// Wrap wraps a client with observability middleware
func Wrap(broker zerodha.Client) zerodha.Client {
	return &observableBroker{
		broker: broker,
	}
}

// observe runs one upstream call inside a span named broker.<op>
func observe[T any](ctx context.Context, op string, fn func(context.Context) (T, error), fields ...any) (T, error) {
	ctx, span := trace.StartSpan(ctx, "broker."+op)
	defer span.End()

	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			if v, ok := fields[i+1].(string); ok {
				span.SetAttributes(attribute.String(key, v))
			}
		}
	}

	start := time.Now()
	logger.DebugSkip(ctx, 2, "Calling Kite API", append([]any{"op", op}, fields...)...)

	result, err := fn(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 2, "Kite API call failed", err,
			append([]any{"op", op, "duration_ms", time.Since(start).Milliseconds()}, fields...)...)
		return result, err
	}

	logger.DebugSkip(ctx, 2, "Kite API call succeeded", "op", op, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// PlaceOrder places an order with observability
func (ob *observableBroker) PlaceOrder(ctx context.Context, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
	resp, err := observe(ctx, "PlaceOrder", func(ctx context.Context) (kiteconnect.OrderResponse, error) {
		return ob.broker.PlaceOrder(ctx, params)
	},
		"exchange", params.Exchange,
		"tradingsymbol", params.Tradingsymbol,
		"side", params.TransactionType,
		"order_type", params.OrderType,
	)
	if err == nil {
		logger.InfoSkip(ctx, 1, "Order placed successfully",
			"tradingsymbol", params.Tradingsymbol,
			"qty", params.Quantity,
			"order_id", resp.OrderID,
		)
	}
	return resp, err
}

// ModifyOrder modifies an order with observability
func (ob *observableBroker) ModifyOrder(ctx context.Context, orderID string, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
	resp, err := observe(ctx, "ModifyOrder", func(ctx context.Context) (kiteconnect.OrderResponse, error) {
		return ob.broker.ModifyOrder(ctx, orderID, params)
	}, "order_id", orderID)
	if err == nil {
		logger.InfoSkip(ctx, 1, "Order modified successfully", "order_id", resp.OrderID)
	}
	return resp, err
}

// CancelOrder cancels an order with observability
func (ob *observableBroker) CancelOrder(ctx context.Context, orderID string) (kiteconnect.OrderResponse, error) {
	resp, err := observe(ctx, "CancelOrder", func(ctx context.Context) (kiteconnect.OrderResponse, error) {
		return ob.broker.CancelOrder(ctx, orderID)
	}, "order_id", orderID)
	if err == nil {
		logger.InfoSkip(ctx, 1, "Order cancelled successfully", "order_id", resp.OrderID)
	}
	return resp, err
}

func (ob *observableBroker) GetPositions(ctx context.Context) (kiteconnect.Positions, error) {
	return observe(ctx, "GetPositions", ob.broker.GetPositions)
}

func (ob *observableBroker) GetHoldings(ctx context.Context) (kiteconnect.Holdings, error) {
	return observe(ctx, "GetHoldings", ob.broker.GetHoldings)
}

func (ob *observableBroker) GetMargins(ctx context.Context) (kiteconnect.AllMargins, error) {
	return observe(ctx, "GetMargins", ob.broker.GetMargins)
}

func (ob *observableBroker) GetQuote(ctx context.Context, instruments ...string) (kiteconnect.Quote, error) {
	return observe(ctx, "GetQuote", func(ctx context.Context) (kiteconnect.Quote, error) {
		return ob.broker.GetQuote(ctx, instruments...)
	}, "instruments", strings.Join(instruments, ","))
}

func (ob *observableBroker) GetLTP(ctx context.Context, instruments ...string) (kiteconnect.QuoteLTP, error) {
	return observe(ctx, "GetLTP", func(ctx context.Context) (kiteconnect.QuoteLTP, error) {
		return ob.broker.GetLTP(ctx, instruments...)
	}, "instruments", strings.Join(instruments, ","))
}

func (ob *observableBroker) GetHistoricalData(ctx context.Context, instrumentToken int, interval string, from, to time.Time) ([]kiteconnect.HistoricalData, error) {
	return observe(ctx, "GetHistoricalData", func(ctx context.Context) ([]kiteconnect.HistoricalData, error) {
		return ob.broker.GetHistoricalData(ctx, instrumentToken, interval, from, to)
	},
		"interval", interval,
		"from", from.Format(time.RFC3339),
		"to", to.Format(time.RFC3339),
	)
}

func (ob *observableBroker) GetInstruments(ctx context.Context, exchange string) (kiteconnect.Instruments, error) {
	return observe(ctx, "GetInstruments", func(ctx context.Context) (kiteconnect.Instruments, error) {
		return ob.broker.GetInstruments(ctx, exchange)
	}, "exchange", exchange)
}

func (ob *observableBroker) GetOrders(ctx context.Context) (kiteconnect.Orders, error) {
	return observe(ctx, "GetOrders", ob.broker.GetOrders)
}

func (ob *observableBroker) GetTrades(ctx context.Context) (kiteconnect.Trades, error) {
	return observe(ctx, "GetTrades", ob.broker.GetTrades)
}

func (ob *observableBroker) GetOrderHistory(ctx context.Context, orderID string) ([]kiteconnect.Order, error) {
	return observe(ctx, "GetOrderHistory", func(ctx context.Context) ([]kiteconnect.Order, error) {
		return ob.broker.GetOrderHistory(ctx, orderID)
	}, "order_id", orderID)
}

func (ob *observableBroker) GetProfile(ctx context.Context) (kiteconnect.UserProfile, error) {
	return observe(ctx, "GetProfile", ob.broker.GetProfile)
}
