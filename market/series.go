package market

import "sort"

// Series is a candle series keyed by time. Candles are kept strictly
// increasing by Time; the newest bar may be replaced any number of times.
type Series struct {
	candles []Candle
}

// NewSeries builds a series from candles in any order. Later duplicates of
// the same time win, matching upsert semantics.
func NewSeries(candles []Candle) *Series {
	s := &Series{candles: make([]Candle, 0, len(candles))}
	for _, c := range candles {
		s.Upsert(c)
	}
	return s
}

// Upsert replaces the candle with the same time or inserts c in order.
// Applying the same candle twice leaves the series as applying it once.
func (s *Series) Upsert(c Candle) {
	n := len(s.candles)

	// fast path: live updates nearly always touch the tail
	if n == 0 || s.candles[n-1].Time < c.Time {
		s.candles = append(s.candles, c)
		return
	}
	if s.candles[n-1].Time == c.Time {
		s.candles[n-1] = c
		return
	}

	i := sort.Search(n, func(i int) bool { return s.candles[i].Time >= c.Time })
	if i < n && s.candles[i].Time == c.Time {
		s.candles[i] = c
		return
	}
	s.candles = append(s.candles, Candle{})
	copy(s.candles[i+1:], s.candles[i:])
	s.candles[i] = c
}

// Reset replaces the whole series.
func (s *Series) Reset(candles []Candle) {
	s.candles = s.candles[:0]
	for _, c := range candles {
		s.Upsert(c)
	}
}

func (s *Series) Len() int {
	return len(s.candles)
}

// Candles returns a copy of the series.
func (s *Series) Candles() []Candle {
	out := make([]Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Last returns the newest candle.
func (s *Series) Last() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Contains reports whether t falls inside the series' time range.
func (s *Series) Contains(t int64) bool {
	if len(s.candles) == 0 {
		return false
	}
	return t >= s.candles[0].Time && t <= s.candles[len(s.candles)-1].Time
}

// Bounds returns the lowest low and highest high across the series.
func (s *Series) Bounds() (low, high float64, ok bool) {
	if len(s.candles) == 0 {
		return 0, 0, false
	}
	low, high = s.candles[0].Low, s.candles[0].High
	for _, c := range s.candles[1:] {
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}
	return low, high, true
}
