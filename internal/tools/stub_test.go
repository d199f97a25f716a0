package tools

import (
	"context"
	"errors"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

var errNotStubbed = errors.New("not stubbed")

// stubClient implements zerodha.Client with per-method overrides and call capture
type stubClient struct {
	placeOrderFn  func(kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)
	modifyOrderFn func(string, kiteconnect.OrderParams) (kiteconnect.OrderResponse, error)
	cancelOrderFn func(string) (kiteconnect.OrderResponse, error)
	holdingsFn    func() (kiteconnect.Holdings, error)
	quoteFn       func(...string) (kiteconnect.Quote, error)
	ltpFn         func(...string) (kiteconnect.QuoteLTP, error)
	historicalFn  func(int, string, time.Time, time.Time) ([]kiteconnect.HistoricalData, error)
	instrumentsFn func(string) (kiteconnect.Instruments, error)
	profileFn     func() (kiteconnect.UserProfile, error)

	calls int
}

func (s *stubClient) PlaceOrder(_ context.Context, p kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
	s.calls++
	if s.placeOrderFn == nil {
		return kiteconnect.OrderResponse{}, errNotStubbed
	}
	return s.placeOrderFn(p)
}

func (s *stubClient) ModifyOrder(_ context.Context, id string, p kiteconnect.OrderParams) (kiteconnect.OrderResponse, error) {
	s.calls++
	if s.modifyOrderFn == nil {
		return kiteconnect.OrderResponse{}, errNotStubbed
	}
	return s.modifyOrderFn(id, p)
}

func (s *stubClient) CancelOrder(_ context.Context, id string) (kiteconnect.OrderResponse, error) {
	s.calls++
	if s.cancelOrderFn == nil {
		return kiteconnect.OrderResponse{}, errNotStubbed
	}
	return s.cancelOrderFn(id)
}

func (s *stubClient) GetPositions(context.Context) (kiteconnect.Positions, error) {
	s.calls++
	return kiteconnect.Positions{}, nil
}

func (s *stubClient) GetHoldings(context.Context) (kiteconnect.Holdings, error) {
	s.calls++
	if s.holdingsFn == nil {
		return kiteconnect.Holdings{}, nil
	}
	return s.holdingsFn()
}

func (s *stubClient) GetMargins(context.Context) (kiteconnect.AllMargins, error) {
	s.calls++
	return kiteconnect.AllMargins{}, nil
}

func (s *stubClient) GetQuote(_ context.Context, instruments ...string) (kiteconnect.Quote, error) {
	s.calls++
	if s.quoteFn == nil {
		return kiteconnect.Quote{}, nil
	}
	return s.quoteFn(instruments...)
}

func (s *stubClient) GetLTP(_ context.Context, instruments ...string) (kiteconnect.QuoteLTP, error) {
	s.calls++
	if s.ltpFn == nil {
		return kiteconnect.QuoteLTP{}, nil
	}
	return s.ltpFn(instruments...)
}

func (s *stubClient) GetHistoricalData(_ context.Context, token int, interval string, from, to time.Time) ([]kiteconnect.HistoricalData, error) {
	s.calls++
	if s.historicalFn == nil {
		return nil, errNotStubbed
	}
	return s.historicalFn(token, interval, from, to)
}

func (s *stubClient) GetInstruments(_ context.Context, exchange string) (kiteconnect.Instruments, error) {
	s.calls++
	if s.instrumentsFn == nil {
		return kiteconnect.Instruments{}, nil
	}
	return s.instrumentsFn(exchange)
}

func (s *stubClient) GetOrders(context.Context) (kiteconnect.Orders, error) {
	s.calls++
	return kiteconnect.Orders{}, nil
}

func (s *stubClient) GetTrades(context.Context) (kiteconnect.Trades, error) {
	s.calls++
	return kiteconnect.Trades{}, nil
}

func (s *stubClient) GetOrderHistory(context.Context, string) ([]kiteconnect.Order, error) {
	s.calls++
	return []kiteconnect.Order{}, nil
}

func (s *stubClient) GetProfile(context.Context) (kiteconnect.UserProfile, error) {
	s.calls++
	if s.profileFn == nil {
		return kiteconnect.UserProfile{}, nil
	}
	return s.profileFn()
}
