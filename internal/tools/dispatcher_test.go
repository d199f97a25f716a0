package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected a result, got nil")
	}
	if len(result.Content) != 1 {
		t.Fatalf("Expected exactly one content block, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	if result.IsError {
		t.Error("Expected IsError to stay false; failures are signalled by the text prefix")
	}
	return text.Text
}

func placeOrderArgs() map[string]any {
	return map[string]any{
		"exchange":         "NSE",
		"tradingsymbol":    "INFY",
		"transaction_type": "BUY",
		"quantity":         float64(1),
		"order_type":       "MARKET",
		"product":          "CNC",
	}
}

func TestInvoke_PlaceOrder(t *testing.T) {
	var got kiteconnect.OrderParams
	stub := &stubClient{
		placeOrderFn: func(p kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
			got = p
			return kiteconnect.OrderResponse{OrderID: "123"}, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), PlaceOrder, placeOrderArgs()))

	if text != "Order placed successfully. Order ID: 123" {
		t.Errorf("Expected confirmation text, got %q", text)
	}
	if got.Exchange != "NSE" || got.Tradingsymbol != "INFY" || got.TransactionType != "BUY" {
		t.Errorf("Unexpected order params: %+v", got)
	}
	if got.Quantity != 1 || got.OrderType != "MARKET" || got.Product != "CNC" {
		t.Errorf("Unexpected order params: %+v", got)
	}
	if got.Price != 0 || got.TriggerPrice != 0 {
		t.Errorf("Expected price and trigger_price to default to 0, got %v and %v", got.Price, got.TriggerPrice)
	}
}

func TestInvoke_PlaceOrderWithPrices(t *testing.T) {
	var got kiteconnect.OrderParams
	stub := &stubClient{
		placeOrderFn: func(p kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
			got = p
			return kiteconnect.OrderResponse{OrderID: "124"}, nil
		},
	}

	args := placeOrderArgs()
	args["order_type"] = "SL"
	args["price"] = 1500.5
	args["trigger_price"] = 1499.0

	resultText(t, New(stub).Invoke(context.Background(), PlaceOrder, args))

	if got.Price != 1500.5 {
		t.Errorf("Expected price 1500.5, got %v", got.Price)
	}
	if got.TriggerPrice != 1499.0 {
		t.Errorf("Expected trigger price 1499, got %v", got.TriggerPrice)
	}
}

func TestInvoke_PlaceOrderValidation(t *testing.T) {
	cases := map[string]func(map[string]any){
		"missing tradingsymbol": func(a map[string]any) { delete(a, "tradingsymbol") },
		"bad side":              func(a map[string]any) { a["transaction_type"] = "HOLD" },
		"bad order type":        func(a map[string]any) { a["order_type"] = "STOP" },
		"bad product":           func(a map[string]any) { a["product"] = "MTF" },
		"zero quantity":         func(a map[string]any) { a["quantity"] = float64(0) },
		"fractional quantity":   func(a map[string]any) { a["quantity"] = 1.5 },
		"string quantity":       func(a map[string]any) { a["quantity"] = "ten" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubClient{}
			args := placeOrderArgs()
			mutate(args)

			text := resultText(t, New(stub).Invoke(context.Background(), PlaceOrder, args))

			if !strings.HasPrefix(text, "Error: ") {
				t.Errorf("Expected error text, got %q", text)
			}
			if stub.calls != 0 {
				t.Errorf("Expected no upstream call for malformed input, got %d", stub.calls)
			}
		})
	}
}

func TestInvoke_ModifyOrderSendsOnlyProvidedFields(t *testing.T) {
	var gotID string
	var got kiteconnect.OrderParams
	stub := &stubClient{
		modifyOrderFn: func(id string, p kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
			gotID, got = id, p
			return kiteconnect.OrderResponse{OrderID: id}, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), ModifyOrder, map[string]any{
		"order_id": "151220000000000",
		"price":    101.25,
	}))

	if text != "Order modified successfully. Order ID: 151220000000000" {
		t.Errorf("Unexpected text: %q", text)
	}
	if gotID != "151220000000000" {
		t.Errorf("Expected order id to be forwarded, got %q", gotID)
	}
	if got.Price != 101.25 {
		t.Errorf("Expected price 101.25, got %v", got.Price)
	}
	if got.Quantity != 0 || got.OrderType != "" || got.TriggerPrice != 0 {
		t.Errorf("Expected unset fields to stay empty, got %+v", got)
	}
}

func TestInvoke_ModifyOrderRequiresOrderID(t *testing.T) {
	stub := &stubClient{}
	text := resultText(t, New(stub).Invoke(context.Background(), ModifyOrder, map[string]any{"quantity": float64(5)}))

	if !strings.Contains(text, "order_id") {
		t.Errorf("Expected error naming order_id, got %q", text)
	}
	if stub.calls != 0 {
		t.Errorf("Expected no upstream call, got %d", stub.calls)
	}
}

func TestInvoke_CancelOrder(t *testing.T) {
	stub := &stubClient{
		cancelOrderFn: func(id string) (kiteconnect.OrderResponse, error) {
			return kiteconnect.OrderResponse{OrderID: id}, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), CancelOrder, map[string]any{"order_id": "42"}))
	if text != "Order cancelled successfully. Order ID: 42" {
		t.Errorf("Unexpected text: %q", text)
	}
}

func TestInvoke_GetInstrumentsTruncates(t *testing.T) {
	var gotExchange string
	stub := &stubClient{
		instrumentsFn: func(exchange string) (kiteconnect.Instruments, error) {
			gotExchange = exchange
			out := make(kiteconnect.Instruments, 150)
			for i := range out {
				out[i].InstrumentToken = i + 1
				out[i].Tradingsymbol = fmt.Sprintf("SYM%d", i)
			}
			return out, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), GetInstruments, map[string]any{"exchange": "NSE"}))

	var got []map[string]any
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("Expected JSON array, got %q: %v", text, err)
	}
	if len(got) != 100 {
		t.Fatalf("Expected 100 instruments, got %d", len(got))
	}
	for i, inst := range got {
		if inst["instrument_token"] != float64(i+1) {
			t.Fatalf("Expected original order preserved at %d, got token %v", i, inst["instrument_token"])
		}
	}
	if gotExchange != "NSE" {
		t.Errorf("Expected exchange NSE, got %q", gotExchange)
	}
}

func TestInvoke_GetInstrumentsUsesKiteKeys(t *testing.T) {
	expiry, err := time.Parse("2006-01-02", "2024-01-25")
	if err != nil {
		t.Fatal(err)
	}
	stub := &stubClient{
		instrumentsFn: func(string) (kiteconnect.Instruments, error) {
			out := kiteconnect.Instruments{
				{InstrumentToken: 408065, Tradingsymbol: "INFY", Exchange: "NSE", InstrumentType: "EQ"},
				{InstrumentToken: 13238786, Tradingsymbol: "NIFTY24JANFUT", Exchange: "NFO", InstrumentType: "FUT"},
			}
			out[1].Expiry.Time = expiry
			return out, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), GetInstruments, nil))

	var got []map[string]any
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("Expected JSON array, got %q: %v", text, err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 instruments, got %d", len(got))
	}
	for _, key := range []string{"instrument_token", "exchange_token", "tradingsymbol", "name", "last_price",
		"expiry", "strike", "tick_size", "lot_size", "instrument_type", "segment", "exchange"} {
		if _, ok := got[0][key]; !ok {
			t.Errorf("Expected key %q in %v", key, got[0])
		}
	}
	if _, ok := got[0]["InstrumentToken"]; ok {
		t.Error("Expected Kite key names, got Go field names")
	}
	if got[0]["instrument_token"] != float64(408065) || got[0]["tradingsymbol"] != "INFY" {
		t.Errorf("Unexpected equity row %v", got[0])
	}
	if got[0]["expiry"] != "" {
		t.Errorf("Expected empty expiry for equity, got %v", got[0]["expiry"])
	}
	if got[1]["expiry"] != "2024-01-25" {
		t.Errorf("Expected expiry 2024-01-25, got %v", got[1]["expiry"])
	}
}

func TestInvoke_GetInstrumentsWithoutExchange(t *testing.T) {
	called := false
	stub := &stubClient{
		instrumentsFn: func(exchange string) (kiteconnect.Instruments, error) {
			called = true
			if exchange != "" {
				t.Errorf("Expected empty exchange, got %q", exchange)
			}
			return kiteconnect.Instruments{{Tradingsymbol: "INFY"}}, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), GetInstruments, nil))
	if !called {
		t.Fatal("Expected GetInstruments to be called")
	}
	if !strings.Contains(text, "INFY") {
		t.Errorf("Expected instrument in payload, got %q", text)
	}
}

func TestInvoke_GetQuoteBuildsInstrumentKey(t *testing.T) {
	var got []string
	stub := &stubClient{
		quoteFn: func(instruments ...string) (kiteconnect.Quote, error) {
			got = instruments
			return kiteconnect.Quote{}, nil
		},
	}

	resultText(t, New(stub).Invoke(context.Background(), GetQuote, map[string]any{
		"exchange":      "NSE",
		"tradingsymbol": "INFY",
	}))

	if len(got) != 1 || got[0] != "NSE:INFY" {
		t.Errorf("Expected [NSE:INFY], got %v", got)
	}
}

func TestInvoke_GetLTP(t *testing.T) {
	var got []string
	stub := &stubClient{
		ltpFn: func(instruments ...string) (kiteconnect.QuoteLTP, error) {
			got = instruments
			return kiteconnect.QuoteLTP{}, nil
		},
	}

	resultText(t, New(stub).Invoke(context.Background(), GetLTP, map[string]any{
		"instruments": []any{"NSE:INFY", "BSE:SENSEX"},
	}))

	if len(got) != 2 || got[0] != "NSE:INFY" || got[1] != "BSE:SENSEX" {
		t.Errorf("Expected both instruments forwarded, got %v", got)
	}
}

func TestInvoke_GetLTPRequiresInstruments(t *testing.T) {
	stub := &stubClient{}
	text := resultText(t, New(stub).Invoke(context.Background(), GetLTP, map[string]any{"instruments": []any{}}))

	if !strings.HasPrefix(text, "Error: ") || !strings.Contains(text, "instruments") {
		t.Errorf("Expected error naming instruments, got %q", text)
	}
	if stub.calls != 0 {
		t.Errorf("Expected no upstream call, got %d", stub.calls)
	}
}

func TestInvoke_GetHistoricalData(t *testing.T) {
	var gotToken int
	var gotInterval string
	var gotFrom, gotTo time.Time
	stub := &stubClient{
		historicalFn: func(token int, interval string, from, to time.Time) ([]kiteconnect.HistoricalData, error) {
			gotToken, gotInterval, gotFrom, gotTo = token, interval, from, to
			return []kiteconnect.HistoricalData{{Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}}, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), GetHistoricalData, map[string]any{
		"instrument_token": "408065",
		"from_date":        "2024-01-01",
		"to_date":          "2024-01-31 15:30:00",
		"interval":         "day",
	}))

	if strings.HasPrefix(text, "Error:") {
		t.Fatalf("Unexpected error: %s", text)
	}
	if gotToken != 408065 {
		t.Errorf("Expected token 408065, got %d", gotToken)
	}
	if gotInterval != "day" {
		t.Errorf("Expected interval day, got %q", gotInterval)
	}
	if gotFrom.Year() != 2024 || gotFrom.Month() != time.January || gotFrom.Day() != 1 {
		t.Errorf("Unexpected from date %v", gotFrom)
	}
	if gotTo.Day() != 31 || gotTo.Hour() != 15 || gotTo.Minute() != 30 {
		t.Errorf("Unexpected to date %v", gotTo)
	}
}

func TestInvoke_GetHistoricalDataNumericToken(t *testing.T) {
	var gotToken int
	stub := &stubClient{
		historicalFn: func(token int, _ string, _, _ time.Time) ([]kiteconnect.HistoricalData, error) {
			gotToken = token
			return nil, nil
		},
	}

	resultText(t, New(stub).Invoke(context.Background(), GetHistoricalData, map[string]any{
		"instrument_token": float64(256265),
		"from_date":        "2024-01-01",
		"to_date":          "2024-01-02",
		"interval":         "minute",
	}))

	if gotToken != 256265 {
		t.Errorf("Expected token 256265, got %d", gotToken)
	}
}

func TestInvoke_GetHistoricalDataOffsetConvertedToMarketZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	var gotFrom, gotTo time.Time
	stub := &stubClient{
		historicalFn: func(_ int, _ string, from, to time.Time) ([]kiteconnect.HistoricalData, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}

	resultText(t, New(stub, WithLocation(ist)).Invoke(context.Background(), GetHistoricalData, map[string]any{
		"instrument_token": "408065",
		"from_date":        "2024-01-08T04:30:00Z",
		"to_date":          "2024-01-08 15:30:00",
		"interval":         "minute",
	}))

	if gotFrom.Location() != ist || gotFrom.Hour() != 10 || gotFrom.Minute() != 0 {
		t.Errorf("Expected from 10:00 IST, got %v", gotFrom)
	}
	if gotTo.Location() != ist || gotTo.Hour() != 15 || gotTo.Minute() != 30 {
		t.Errorf("Expected zoneless to_date read as IST wall clock, got %v", gotTo)
	}
}

func TestInvoke_GetHistoricalDataValidation(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"instrument_token": "408065",
			"from_date":        "2024-01-01",
			"to_date":          "2024-01-31",
			"interval":         "day",
		}
	}
	cases := map[string]func(map[string]any){
		"non numeric token": func(a map[string]any) { a["instrument_token"] = "INFY" },
		"bad date":          func(a map[string]any) { a["from_date"] = "01/01/2024" },
		"reversed range":    func(a map[string]any) { a["from_date"], a["to_date"] = "2024-02-01", "2024-01-01" },
		"bad interval":      func(a map[string]any) { a["interval"] = "week" },
		"missing interval":  func(a map[string]any) { delete(a, "interval") },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			stub := &stubClient{}
			args := base()
			mutate(args)

			text := resultText(t, New(stub).Invoke(context.Background(), GetHistoricalData, args))
			if !strings.HasPrefix(text, "Error: ") {
				t.Errorf("Expected error text, got %q", text)
			}
			if stub.calls != 0 {
				t.Errorf("Expected no upstream call, got %d", stub.calls)
			}
		})
	}
}

func TestInvoke_JSONPayloadIsIndented(t *testing.T) {
	stub := &stubClient{
		profileFn: func() (kiteconnect.UserProfile, error) {
			return kiteconnect.UserProfile{UserID: "AB1234", Email: "trader@example.com"}, nil
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), GetProfile, nil))

	if !strings.Contains(text, "\n  \"user_id\": \"AB1234\"") {
		t.Errorf("Expected pretty-printed JSON with user_id, got %q", text)
	}
}

func TestInvoke_ReadToolsReturnJSON(t *testing.T) {
	d := New(&stubClient{})
	for _, name := range []string{GetPositions, GetHoldings, GetMargins, GetOrders, GetTrades, GetProfile} {
		text := resultText(t, d.Invoke(context.Background(), name, nil))
		if !json.Valid([]byte(text)) {
			t.Errorf("%s: expected JSON payload, got %q", name, text)
		}
	}

	text := resultText(t, d.Invoke(context.Background(), GetOrderHistory, map[string]any{"order_id": "1"}))
	if !json.Valid([]byte(text)) {
		t.Errorf("get_order_history: expected JSON payload, got %q", text)
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	text := resultText(t, New(&stubClient{}).Invoke(context.Background(), "get_weather", nil))

	if !strings.HasPrefix(text, "Error:") {
		t.Errorf("Expected Error: prefix, got %q", text)
	}
	if !strings.Contains(text, "Unknown tool") || !strings.Contains(text, "get_weather") {
		t.Errorf("Expected unknown tool message, got %q", text)
	}
}

func TestInvoke_UninitializedClient(t *testing.T) {
	d := New(nil)
	for _, tool := range Tools() {
		text := resultText(t, d.Invoke(context.Background(), tool.Name, nil))
		if text != "Error: "+ErrNotInitialized.Error() {
			t.Errorf("%s: expected not-initialized error, got %q", tool.Name, text)
		}
	}
}

func TestInvoke_UpstreamErrorIsSurfaced(t *testing.T) {
	upstream := errors.New("Incorrect `api_key` or `access_token`.")
	stub := &stubClient{
		holdingsFn: func() (kiteconnect.Holdings, error) {
			return nil, upstream
		},
		placeOrderFn: func(kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
			return kiteconnect.OrderResponse{}, upstream
		},
	}
	d := New(stub)

	for name, args := range map[string]map[string]any{
		GetHoldings: nil,
		PlaceOrder:  placeOrderArgs(),
	} {
		text := resultText(t, d.Invoke(context.Background(), name, args))
		if text != "Error: "+upstream.Error() {
			t.Errorf("%s: expected upstream message, got %q", name, text)
		}
	}
}

func TestInvoke_PanicIsContained(t *testing.T) {
	stub := &stubClient{
		holdingsFn: func() (kiteconnect.Holdings, error) {
			panic("boom")
		},
	}

	text := resultText(t, New(stub).Invoke(context.Background(), GetHoldings, nil))
	if !strings.HasPrefix(text, "Error: ") || !strings.Contains(text, "boom") {
		t.Errorf("Expected contained panic message, got %q", text)
	}
}

func TestInvoke_MarketStatusUsesClock(t *testing.T) {
	monday := time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)
	d := New(&stubClient{}, WithClock(func() time.Time { return monday }), WithLocation(time.UTC))

	text := resultText(t, d.Invoke(context.Background(), GetMarketStatus, nil))

	var st Status
	if err := json.Unmarshal([]byte(text), &st); err != nil {
		t.Fatalf("Expected JSON status, got %q: %v", text, err)
	}
	if st.Status != StatusOpen {
		t.Errorf("Expected OPEN, got %s", st.Status)
	}
	if st.Timestamp != "2024-01-08T10:00:00.000Z" {
		t.Errorf("Unexpected timestamp %q", st.Timestamp)
	}
}
