package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kite-mcp/internal/broker/zerodha"
	"kite-mcp/internal/logger"
	"kite-mcp/internal/trace"

	"github.com/mark3labs/mcp-go/mcp"
)

// instrumentsLimit caps get_instruments payloads; the full dump runs to tens of thousands of rows
const instrumentsLimit = 100

var (
	ErrNotInitialized = errors.New("Kite Connect not initialized. Check API credentials.")
	ErrUnknownTool    = errors.New("Unknown tool")
)

// handler returns the text payload of a successful call
type handler func(ctx context.Context, args map[string]any) (string, error)

// Dispatcher routes tool calls to the Kite client
type Dispatcher struct {
	client   zerodha.Client
	now      func() time.Time
	loc      *time.Location
	handlers map[string]handler
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithClock overrides the wall clock used by get_market_status
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithLocation sets the timezone market status is evaluated in
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

// New creates a dispatcher. A nil client is allowed: every call then
// reports ErrNotInitialized.
func New(client zerodha.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client: client,
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.handlers = map[string]handler{
		PlaceOrder:        d.placeOrder,
		ModifyOrder:       d.modifyOrder,
		CancelOrder:       d.cancelOrder,
		GetPositions:      d.getPositions,
		GetHoldings:       d.getHoldings,
		GetMargins:        d.getMargins,
		GetQuote:          d.getQuote,
		GetHistoricalData: d.getHistoricalData,
		GetInstruments:    d.getInstruments,
		GetOrders:         d.getOrders,
		GetTrades:         d.getTrades,
		GetOrderHistory:   d.getOrderHistory,
		GetProfile:        d.getProfile,
		GetLTP:            d.getLTP,
		GetMarketStatus:   d.getMarketStatus,
	}

	return d
}

// Invoke runs the named tool and always returns a single-text result.
// Failures are reported as "Error: <message>" text, never as a protocol fault.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	ctx, span := trace.StartSpan(ctx, "tool."+name)
	defer span.End()

	start := time.Now()
	text, err := d.call(ctx, name, args)
	if err != nil {
		logger.ErrorWithErr(ctx, "Error executing tool", err, "tool", name)
		text = "Error: " + err.Error()
	}
	logger.Tool(ctx, name, err == nil, time.Since(start).Milliseconds())

	return mcp.NewToolResultText(text)
}

func (d *Dispatcher) call(ctx context.Context, name string, args map[string]any) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error in %s: %v", name, r)
		}
	}()

	if d.client == nil {
		return "", ErrNotInitialized
	}

	h, ok := d.handlers[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	return h(ctx, args)
}

func jsonText(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(b), nil
}

func (d *Dispatcher) placeOrder(ctx context.Context, args map[string]any) (string, error) {
	var p PlaceOrderParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	resp, err := d.client.PlaceOrder(ctx, p.orderParams())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Order placed successfully. Order ID: %s", resp.OrderID), nil
}

func (d *Dispatcher) modifyOrder(ctx context.Context, args map[string]any) (string, error) {
	var p ModifyOrderParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	resp, err := d.client.ModifyOrder(ctx, p.OrderID, p.orderParams())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Order modified successfully. Order ID: %s", resp.OrderID), nil
}

func (d *Dispatcher) cancelOrder(ctx context.Context, args map[string]any) (string, error) {
	var p OrderIDParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	resp, err := d.client.CancelOrder(ctx, p.OrderID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Order cancelled successfully. Order ID: %s", resp.OrderID), nil
}

func (d *Dispatcher) getPositions(ctx context.Context, _ map[string]any) (string, error) {
	positions, err := d.client.GetPositions(ctx)
	if err != nil {
		return "", err
	}
	return jsonText(positions)
}

func (d *Dispatcher) getHoldings(ctx context.Context, _ map[string]any) (string, error) {
	holdings, err := d.client.GetHoldings(ctx)
	if err != nil {
		return "", err
	}
	return jsonText(holdings)
}

func (d *Dispatcher) getMargins(ctx context.Context, _ map[string]any) (string, error) {
	margins, err := d.client.GetMargins(ctx)
	if err != nil {
		return "", err
	}
	return jsonText(margins)
}

func (d *Dispatcher) getQuote(ctx context.Context, args map[string]any) (string, error) {
	var p QuoteParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	quotes, err := d.client.GetQuote(ctx, p.instrument())
	if err != nil {
		return "", err
	}
	return jsonText(quotes)
}

func (d *Dispatcher) getHistoricalData(ctx context.Context, args map[string]any) (string, error) {
	p := HistoricalParams{loc: d.loc}
	if err := decode(args, &p); err != nil {
		return "", err
	}
	candles, err := d.client.GetHistoricalData(ctx, p.token, p.Interval, p.from, p.to)
	if err != nil {
		return "", err
	}
	return jsonText(candles)
}

func (d *Dispatcher) getInstruments(ctx context.Context, args map[string]any) (string, error) {
	var p InstrumentsParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	instruments, err := d.client.GetInstruments(ctx, p.Exchange)
	if err != nil {
		return "", err
	}
	return jsonText(instrumentRows(instruments, instrumentsLimit))
}

func (d *Dispatcher) getOrders(ctx context.Context, _ map[string]any) (string, error) {
	orders, err := d.client.GetOrders(ctx)
	if err != nil {
		return "", err
	}
	return jsonText(orders)
}

func (d *Dispatcher) getTrades(ctx context.Context, _ map[string]any) (string, error) {
	trades, err := d.client.GetTrades(ctx)
	if err != nil {
		return "", err
	}
	return jsonText(trades)
}

func (d *Dispatcher) getOrderHistory(ctx context.Context, args map[string]any) (string, error) {
	var p OrderIDParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	history, err := d.client.GetOrderHistory(ctx, p.OrderID)
	if err != nil {
		return "", err
	}
	return jsonText(history)
}

func (d *Dispatcher) getProfile(ctx context.Context, _ map[string]any) (string, error) {
	profile, err := d.client.GetProfile(ctx)
	if err != nil {
		return "", err
	}
	return jsonText(profile)
}

func (d *Dispatcher) getLTP(ctx context.Context, args map[string]any) (string, error) {
	var p LTPParams
	if err := decode(args, &p); err != nil {
		return "", err
	}
	ltp, err := d.client.GetLTP(ctx, p.Instruments...)
	if err != nil {
		return "", err
	}
	return jsonText(ltp)
}

func (d *Dispatcher) getMarketStatus(_ context.Context, _ map[string]any) (string, error) {
	return jsonText(MarketStatus(d.now().In(d.loc)))
}
