package tools

import (
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

const expiryLayout = "2006-01-02"

// instrument is a get_instruments row keyed like Kite's instrument dump.
// kiteconnect.Instrument only carries csv tags.
type instrument struct {
	InstrumentToken int     `json:"instrument_token"`
	ExchangeToken   int     `json:"exchange_token"`
	Tradingsymbol   string  `json:"tradingsymbol"`
	Name            string  `json:"name"`
	LastPrice       float64 `json:"last_price"`
	Expiry          string  `json:"expiry"`
	Strike          float64 `json:"strike"`
	TickSize        float64 `json:"tick_size"`
	LotSize         float64 `json:"lot_size"`
	InstrumentType  string  `json:"instrument_type"`
	Segment         string  `json:"segment"`
	Exchange        string  `json:"exchange"`
}

// instrumentRows keeps the first limit entries in upstream order.
// Expiry is empty for instruments that never expire.
func instrumentRows(in kiteconnect.Instruments, limit int) []instrument {
	if len(in) > limit {
		in = in[:limit]
	}

	rows := make([]instrument, 0, len(in))
	for _, inst := range in {
		row := instrument{
			InstrumentToken: int(inst.InstrumentToken),
			ExchangeToken:   int(inst.ExchangeToken),
			Tradingsymbol:   inst.Tradingsymbol,
			Name:            inst.Name,
			LastPrice:       float64(inst.LastPrice),
			Strike:          float64(inst.StrikePrice),
			TickSize:        float64(inst.TickSize),
			LotSize:         float64(inst.LotSize),
			InstrumentType:  inst.InstrumentType,
			Segment:         inst.Segment,
			Exchange:        inst.Exchange,
		}
		if !inst.Expiry.IsZero() {
			row.Expiry = inst.Expiry.Format(expiryLayout)
		}
		rows = append(rows, row)
	}
	return rows
}
