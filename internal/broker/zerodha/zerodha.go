package zerodha

import (
	"context"
	"errors"
	"net/http"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"golang.org/x/time/rate"
)

const varietyRegular = "regular"

// ErrMissingAPIKey is returned when the client is built without an API key
var ErrMissingAPIKey = errors.New("KITE_API_KEY is required")

// Params is the authenticated session the client is built from
type Params struct {
	APIKey      string
	AccessToken string
	BaseURI     string
	Timeout     time.Duration
	// RequestsPerSecond throttles outgoing calls; zero or negative disables it
	RequestsPerSecond float64
	Debug             bool
}

type Zerodha struct {
	p       Params
	kc      *kiteconnect.Client
	limiter *rate.Limiter
}

var _ Client = (*Zerodha)(nil)

// NewZerodha builds a Kite Connect client. A missing access token leaves the
// session partially initialized: authenticated calls fail upstream.
func NewZerodha(p Params) (*Zerodha, error) {
	if p.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	kc := kiteconnect.New(p.APIKey)
	if p.AccessToken != "" {
		kc.SetAccessToken(p.AccessToken)
	}
	if p.BaseURI != "" {
		kc.SetBaseURI(p.BaseURI)
	}
	if p.Timeout > 0 {
		kc.SetHTTPClient(&http.Client{Timeout: p.Timeout})
	}
	kc.SetDebug(p.Debug)

	z := &Zerodha{p: p, kc: kc}
	if p.RequestsPerSecond > 0 {
		burst := int(p.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		z.limiter = rate.NewLimiter(rate.Limit(p.RequestsPerSecond), burst)
	}

	return z, nil
}

// HasAccessToken reports whether the session can make authenticated calls
func (z *Zerodha) HasAccessToken() bool {
	return z.p.AccessToken != ""
}

// wait blocks until the throttle admits one call or ctx is done
func (z *Zerodha) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if z.limiter == nil {
		return nil
	}
	return z.limiter.Wait(ctx)
}

func (z *Zerodha) PlaceOrder(ctx context.Context, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
	if err := z.wait(ctx); err != nil {
		return kiteconnect.OrderResponse{}, err
	}
	return z.kc.PlaceOrder(varietyRegular, params)
}

func (z *Zerodha) ModifyOrder(ctx context.Context, orderID string, params kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
	if err := z.wait(ctx); err != nil {
		return kiteconnect.OrderResponse{}, err
	}
	return z.kc.ModifyOrder(varietyRegular, orderID, params)
}

func (z *Zerodha) CancelOrder(ctx context.Context, orderID string) (kiteconnect.OrderResponse, error) {
	if err := z.wait(ctx); err != nil {
		return kiteconnect.OrderResponse{}, err
	}
	return z.kc.CancelOrder(varietyRegular, orderID, nil)
}

func (z *Zerodha) GetPositions(ctx context.Context) (kiteconnect.Positions, error) {
	if err := z.wait(ctx); err != nil {
		return kiteconnect.Positions{}, err
	}
	return z.kc.GetPositions()
}

func (z *Zerodha) GetHoldings(ctx context.Context) (kiteconnect.Holdings, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetHoldings()
}

func (z *Zerodha) GetMargins(ctx context.Context) (kiteconnect.AllMargins, error) {
	if err := z.wait(ctx); err != nil {
		return kiteconnect.AllMargins{}, err
	}
	return z.kc.GetUserMargins()
}

func (z *Zerodha) GetQuote(ctx context.Context, instruments ...string) (kiteconnect.Quote, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetQuote(instruments...)
}

func (z *Zerodha) GetLTP(ctx context.Context, instruments ...string) (kiteconnect.QuoteLTP, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetLTP(instruments...)
}

func (z *Zerodha) GetHistoricalData(ctx context.Context, instrumentToken int, interval string, from, to time.Time) ([]kiteconnect.HistoricalData, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetHistoricalData(instrumentToken, interval, from, to, false, false)
}

func (z *Zerodha) GetInstruments(ctx context.Context, exchange string) (kiteconnect.Instruments, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	if exchange == "" {
		return z.kc.GetInstruments()
	}
	return z.kc.GetInstrumentsByExchange(exchange)
}

func (z *Zerodha) GetOrders(ctx context.Context) (kiteconnect.Orders, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetOrders()
}

func (z *Zerodha) GetTrades(ctx context.Context) (kiteconnect.Trades, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetTrades()
}

func (z *Zerodha) GetOrderHistory(ctx context.Context, orderID string) ([]kiteconnect.Order, error) {
	if err := z.wait(ctx); err != nil {
		return nil, err
	}
	return z.kc.GetOrderHistory(orderID)
}

func (z *Zerodha) GetProfile(ctx context.Context) (kiteconnect.UserProfile, error) {
	if err := z.wait(ctx); err != nil {
		return kiteconnect.UserProfile{}, err
	}
	return z.kc.GetUserProfile()
}
