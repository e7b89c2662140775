package feed

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/rustyeddy/trendchart/market"
)

/*
kline stream payload, single stream:

{
  "e": "kline",
  "E": 1672515782136,
  "s": "BTCUSDT",
  "k": {
    "t": 1672515780000,   // open time, ms
    "T": 1672515839999,
    "i": "1m",
    "o": "0.0010",
    "c": "0.0020",
    "h": "0.0025",
    "l": "0.0015",
    "x": false,           // is this kline closed?
    ...
  }
}

combined streams wrap the same object as {"stream": "...", "data": {...}}.
*/

// ParseKline extracts the candle from a kline stream message. closed is
// the exchange's "x" flag; only closed bars are final.
func ParseKline(data []byte) (c market.Candle, closed bool, err error) {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return c, false, errors.Wrap(ErrMalformedMessage, err.Error())
	}

	k := v.Get("k")
	if k == nil {
		k = v.Get("data", "k")
	}
	if k == nil || k.Type() != fastjson.TypeObject {
		return c, false, errors.Wrap(ErrMalformedMessage, "no kline object")
	}

	tv, err := field(k, "t")
	if err != nil {
		return c, false, err
	}
	openMs, err := tv.Int64()
	if err != nil {
		return c, false, errors.Wrapf(ErrMalformedMessage, "kline t: %v", err)
	}

	xv, err := field(k, "x")
	if err != nil {
		return c, false, err
	}
	closed, err = xv.Bool()
	if err != nil {
		return c, false, errors.Wrapf(ErrMalformedMessage, "kline x: %v", err)
	}

	c.Time = market.MillisToSeconds(openMs)
	for _, p := range []struct {
		key string
		dst *float64
	}{
		{"o", &c.Open},
		{"h", &c.High},
		{"l", &c.Low},
		{"c", &c.Close},
	} {
		if *p.dst, err = price(k, p.key); err != nil {
			return market.Candle{}, false, err
		}
	}
	return c, closed, nil
}

func field(k *fastjson.Value, key string) (*fastjson.Value, error) {
	f := k.Get(key)
	if f == nil {
		return nil, errors.Wrapf(ErrMalformedMessage, "kline %s missing", key)
	}
	return f, nil
}

// prices arrive as strings to keep exchange precision
func price(k *fastjson.Value, key string) (float64, error) {
	f, err := field(k, key)
	if err != nil {
		return 0, err
	}
	b, err := f.StringBytes()
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedMessage, "kline %s: %v", key, err)
	}
	p, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedMessage, "kline %s: %v", key, err)
	}
	return p, nil
}
