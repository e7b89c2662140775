package market

import (
	"math"
	"time"
)

// Candle represents one OHLC bar. Time is the bar's open time in unix seconds.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// OpenTime returns the bar's open time in UTC.
func (c Candle) OpenTime() time.Time {
	return time.Unix(c.Time, 0).UTC()
}

// Consistent reports whether the wicks contain the body. Upstream data is
// not guaranteed to satisfy this, so nothing rejects a candle for it.
func (c Candle) Consistent() bool {
	return c.Low <= math.Min(c.Open, c.Close) && c.High >= math.Max(c.Open, c.Close)
}

// MillisToSeconds converts an exchange open time in milliseconds to whole seconds.
func MillisToSeconds(ms int64) int64 {
	return ms / 1000
}
