package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names
const (
	PlaceOrder        = "place_order"
	ModifyOrder       = "modify_order"
	CancelOrder       = "cancel_order"
	GetPositions      = "get_positions"
	GetHoldings       = "get_holdings"
	GetMargins        = "get_margins"
	GetQuote          = "get_quote"
	GetHistoricalData = "get_historical_data"
	GetInstruments    = "get_instruments"
	GetOrders         = "get_orders"
	GetTrades         = "get_trades"
	GetOrderHistory   = "get_order_history"
	GetProfile        = "get_profile"
	GetLTP            = "get_ltp"
	GetMarketStatus   = "get_market_status"
)

var (
	transactionTypes = []string{"BUY", "SELL"}
	orderTypes       = []string{"MARKET", "LIMIT", "SL", "SL-M"}
	products         = []string{"CNC", "MIS", "NRML"}
	intervals        = []string{"minute", "3minute", "5minute", "10minute", "15minute", "30minute", "60minute", "day"}
)

// Tools returns the fixed tool list advertised on discovery, in dispatch order.
// Each schema matches the parameters its handler decodes in params.go.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(PlaceOrder,
			mcp.WithDescription("Place a new order in the market"),
			mcp.WithString("exchange",
				mcp.Required(),
				mcp.Description("Trading exchange (NSE, BSE, NFO, CDS, MCX)"),
			),
			mcp.WithString("tradingsymbol",
				mcp.Required(),
				mcp.Description("Trading symbol"),
			),
			mcp.WithString("transaction_type",
				mcp.Required(),
				mcp.Enum(transactionTypes...),
			),
			mcp.WithNumber("quantity",
				mcp.Required(),
				mcp.Min(1),
				mcp.Description("Number of shares/lots"),
			),
			mcp.WithString("order_type",
				mcp.Required(),
				mcp.Enum(orderTypes...),
			),
			mcp.WithString("product",
				mcp.Required(),
				mcp.Enum(products...),
			),
			mcp.WithNumber("price",
				mcp.Description("Price for LIMIT orders"),
			),
			mcp.WithNumber("trigger_price",
				mcp.Description("Trigger price for SL orders"),
			),
		),
		mcp.NewTool(ModifyOrder,
			mcp.WithDescription("Modify an existing pending order"),
			mcp.WithString("order_id", mcp.Required()),
			mcp.WithNumber("quantity", mcp.Min(1)),
			mcp.WithNumber("price"),
			mcp.WithString("order_type", mcp.Enum(orderTypes...)),
			mcp.WithNumber("trigger_price"),
		),
		mcp.NewTool(CancelOrder,
			mcp.WithDescription("Cancel a pending order"),
			mcp.WithString("order_id", mcp.Required()),
		),
		mcp.NewTool(GetPositions,
			mcp.WithDescription("Get all open positions"),
		),
		mcp.NewTool(GetHoldings,
			mcp.WithDescription("Get long-term holdings"),
		),
		mcp.NewTool(GetMargins,
			mcp.WithDescription("Get account margins and funds"),
		),
		mcp.NewTool(GetQuote,
			mcp.WithDescription("Get real-time market quotes"),
			mcp.WithString("exchange", mcp.Required()),
			mcp.WithString("tradingsymbol", mcp.Required()),
		),
		mcp.NewTool(GetHistoricalData,
			mcp.WithDescription("Get historical candlestick data"),
			mcp.WithString("instrument_token", mcp.Required()),
			mcp.WithString("from_date",
				mcp.Required(),
				mcp.Description("Start date, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS"),
			),
			mcp.WithString("to_date",
				mcp.Required(),
				mcp.Description("End date, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS"),
			),
			mcp.WithString("interval",
				mcp.Required(),
				mcp.Enum(intervals...),
			),
		),
		mcp.NewTool(GetInstruments,
			mcp.WithDescription("Get list of tradeable instruments (first 100)"),
			mcp.WithString("exchange"),
		),
		mcp.NewTool(GetOrders,
			mcp.WithDescription("Get all orders for the day"),
		),
		mcp.NewTool(GetTrades,
			mcp.WithDescription("Get all executed trades"),
		),
		mcp.NewTool(GetOrderHistory,
			mcp.WithDescription("Get order history"),
			mcp.WithString("order_id", mcp.Required()),
		),
		mcp.NewTool(GetProfile,
			mcp.WithDescription("Get user profile"),
		),
		mcp.NewTool(GetLTP,
			mcp.WithDescription("Get last traded price"),
			mcp.WithArray("instruments",
				mcp.Required(),
				mcp.WithStringItems(),
				mcp.Description("Instruments as EXCHANGE:TRADINGSYMBOL, e.g. NSE:INFY"),
			),
		),
		mcp.NewTool(GetMarketStatus,
			mcp.WithDescription("Check market status"),
		),
	}
}
