package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// params is implemented by every per-tool argument struct
type params interface {
	validate() error
}

// decode converts the loosely typed argument bag into dst and validates it
// against the tool's declared schema before any upstream call is made.
func decode(args map[string]any, dst params) error {
	if args == nil {
		args = map[string]any{}
	}

	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	if err := json.NewDecoder(bytes.NewReader(b)).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("invalid parameter %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return fmt.Errorf("invalid arguments: %w", err)
	}

	return dst.validate()
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required parameter: %s", name)
	}
	return nil
}

func oneOf(name, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be one of %s", name, value, strings.Join(allowed, ", "))
	}
	return nil
}

type PlaceOrderParams struct {
	Exchange        string  `json:"exchange"`
	Tradingsymbol   string  `json:"tradingsymbol"`
	TransactionType string  `json:"transaction_type"`
	Quantity        int     `json:"quantity"`
	OrderType       string  `json:"order_type"`
	Product         string  `json:"product"`
	Price           float64 `json:"price"`
	TriggerPrice    float64 `json:"trigger_price"`
}

func (p *PlaceOrderParams) validate() error {
	for _, f := range []struct{ name, value string }{
		{"exchange", p.Exchange},
		{"tradingsymbol", p.Tradingsymbol},
		{"transaction_type", p.TransactionType},
		{"order_type", p.OrderType},
		{"product", p.Product},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("invalid quantity %d: must be a positive integer", p.Quantity)
	}
	if err := oneOf("transaction_type", p.TransactionType, transactionTypes); err != nil {
		return err
	}
	if err := oneOf("order_type", p.OrderType, orderTypes); err != nil {
		return err
	}
	return oneOf("product", p.Product, products)
}

// orderParams maps to the Kite request; zero price and trigger are omitted upstream
func (p *PlaceOrderParams) orderParams() kiteconnect.OrderParams {
	return kiteconnect.OrderParams{
		Exchange:        p.Exchange,
		Tradingsymbol:   p.Tradingsymbol,
		TransactionType: p.TransactionType,
		Quantity:        p.Quantity,
		OrderType:       p.OrderType,
		Product:         p.Product,
		Price:           p.Price,
		TriggerPrice:    p.TriggerPrice,
	}
}

type ModifyOrderParams struct {
	OrderID      string   `json:"order_id"`
	Quantity     *int     `json:"quantity"`
	Price        *float64 `json:"price"`
	OrderType    string   `json:"order_type"`
	TriggerPrice *float64 `json:"trigger_price"`
}

func (p *ModifyOrderParams) validate() error {
	if err := required("order_id", p.OrderID); err != nil {
		return err
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return fmt.Errorf("invalid quantity %d: must be a positive integer", *p.Quantity)
	}
	if p.OrderType != "" {
		return oneOf("order_type", p.OrderType, orderTypes)
	}
	return nil
}

// orderParams carries only the fields the caller supplied
func (p *ModifyOrderParams) orderParams() kiteconnect.OrderParams {
	op := kiteconnect.OrderParams{OrderType: p.OrderType}
	if p.Quantity != nil {
		op.Quantity = *p.Quantity
	}
	if p.Price != nil {
		op.Price = *p.Price
	}
	if p.TriggerPrice != nil {
		op.TriggerPrice = *p.TriggerPrice
	}
	return op
}

// OrderIDParams serves cancel_order and get_order_history
type OrderIDParams struct {
	OrderID string `json:"order_id"`
}

func (p *OrderIDParams) validate() error {
	return required("order_id", p.OrderID)
}

type QuoteParams struct {
	Exchange      string `json:"exchange"`
	Tradingsymbol string `json:"tradingsymbol"`
}

func (p *QuoteParams) validate() error {
	if err := required("exchange", p.Exchange); err != nil {
		return err
	}
	return required("tradingsymbol", p.Tradingsymbol)
}

// instrument returns the Kite quote key, e.g. NSE:INFY
func (p *QuoteParams) instrument() string {
	return p.Exchange + ":" + p.Tradingsymbol
}

// instrumentToken accepts the token as a JSON string or number
type instrumentToken string

func (t *instrumentToken) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = instrumentToken(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid parameter instrument_token: expected string or integer, got %s", string(b))
	}
	*t = instrumentToken(n.String())
	return nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// parseDate reads zoneless input as wall-clock time in loc. Input with an
// offset is converted to loc, since Kite reads the wall clock without a zone.
func parseDate(name, value string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", name, value)
}

type HistoricalParams struct {
	InstrumentToken instrumentToken `json:"instrument_token"`
	FromDate        string          `json:"from_date"`
	ToDate          string          `json:"to_date"`
	Interval        string          `json:"interval"`

	token    int
	from, to time.Time
	// loc is the market timezone dates are resolved in; nil means local
	loc *time.Location
}

func (p *HistoricalParams) validate() error {
	for _, f := range []struct{ name, value string }{
		{"instrument_token", string(p.InstrumentToken)},
		{"from_date", p.FromDate},
		{"to_date", p.ToDate},
		{"interval", p.Interval},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}

	token, err := strconv.Atoi(strings.TrimSpace(string(p.InstrumentToken)))
	if err != nil || token <= 0 {
		return fmt.Errorf("invalid instrument_token %q: must be a positive integer", string(p.InstrumentToken))
	}
	p.token = token

	loc := p.loc
	if loc == nil {
		loc = time.Local
	}
	if p.from, err = parseDate("from_date", p.FromDate, loc); err != nil {
		return err
	}
	if p.to, err = parseDate("to_date", p.ToDate, loc); err != nil {
		return err
	}
	if p.to.Before(p.from) {
		return fmt.Errorf("invalid date range: to_date %s is before from_date %s", p.ToDate, p.FromDate)
	}

	return oneOf("interval", p.Interval, intervals)
}

type InstrumentsParams struct {
	Exchange string `json:"exchange"`
}

func (p *InstrumentsParams) validate() error {
	return nil
}

type LTPParams struct {
	Instruments []string `json:"instruments"`
}

func (p *LTPParams) validate() error {
	if len(p.Instruments) == 0 {
		return errors.New("missing required parameter: instruments")
	}
	for i, inst := range p.Instruments {
		if strings.TrimSpace(inst) == "" {
			return fmt.Errorf("invalid instruments[%d]: empty instrument", i)
		}
	}
	return nil
}
