package tools

import (
	"time"
)

const (
	StatusOpen    = "OPEN"
	StatusPreOpen = "PRE_OPEN"
	StatusClosed  = "CLOSED"

	// Session bounds as hours*100+minutes
	sessionOpen  = 915
	sessionClose = 1530
)

// Status is the get_market_status payload
type Status struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MarketStatus derives the NSE/BSE equity session state from the wall clock
// alone. Exchange holidays are not known, so a holiday weekday reports the
// regular schedule.
func MarketStatus(now time.Time) Status {
	st := Status{
		Status:    StatusClosed,
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		st.Message = "Markets closed (weekend)"
		return st
	}

	hhmm := now.Hour()*100 + now.Minute()
	switch {
	case hhmm < sessionOpen:
		st.Status = StatusPreOpen
		st.Message = "Pre-market session"
	case hhmm < sessionClose:
		st.Status = StatusOpen
		st.Message = "Indian markets are open"
	default:
		st.Message = "Markets closed for the day"
	}

	return st
}
