package history

import (
	"context"
	"strconv"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"

	"github.com/rustyeddy/trendchart/market"
)

const (
	DefaultSymbol   = "BTCUSDT"
	DefaultInterval = "1d"
	DefaultLimit    = 365
)

// BinanceFetcher pulls klines from the Binance public REST API. No API key
// is needed for klines.
type BinanceFetcher struct {
	client   *binance.Client
	Symbol   string
	Interval string
	Limit    int
}

// NewBinanceFetcher returns a fetcher for symbol. An empty baseURL keeps
// the client's default endpoint.
func NewBinanceFetcher(baseURL, symbol, interval string, limit int) *BinanceFetcher {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	if interval == "" {
		interval = DefaultInterval
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &BinanceFetcher{
		client:   client,
		Symbol:   symbol,
		Interval: interval,
		Limit:    limit,
	}
}

func (f *BinanceFetcher) Fetch(ctx context.Context) ([]market.Candle, error) {
	klines, err := f.client.NewKlinesService().
		Symbol(f.Symbol).
		Interval(f.Interval).
		Limit(f.Limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(ErrHistoricalFetch, "klines %s %s: %v", f.Symbol, f.Interval, err)
	}

	candles := make([]market.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := toCandle(k)
		if err != nil {
			return nil, errors.Wrapf(ErrHistoricalFetch, "kline at %d: %v", k.OpenTime, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func toCandle(k *binance.Kline) (market.Candle, error) {
	c := market.Candle{Time: market.MillisToSeconds(k.OpenTime)}

	var err error
	if c.Open, err = strconv.ParseFloat(k.Open, 64); err != nil {
		return c, err
	}
	if c.High, err = strconv.ParseFloat(k.High, 64); err != nil {
		return c, err
	}
	if c.Low, err = strconv.ParseFloat(k.Low, 64); err != nil {
		return c, err
	}
	if c.Close, err = strconv.ParseFloat(k.Close, 64); err != nil {
		return c, err
	}
	return c, nil
}
