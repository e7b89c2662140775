// Package history loads the initial candle series, falling back to a
// synthetic random walk when the exchange cannot be reached.
package history

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/trendchart/market"
)

var ErrHistoricalFetch = errors.New("history: historical fetch failed")

const day = int64(24 * time.Hour / time.Second)

// Fetcher returns historical candles, oldest first.
type Fetcher interface {
	Fetch(ctx context.Context) ([]market.Candle, error)
}

type Loader struct {
	// Timeout bounds the fetch; zero means the caller's context alone.
	Timeout time.Duration

	fetcher Fetcher
	bars    int
	now     func() time.Time
	log     logrus.FieldLogger
}

// NewLoader returns a loader that synthesizes bars candles when fetcher
// fails.
func NewLoader(fetcher Fetcher, bars int, log logrus.FieldLogger) *Loader {
	if bars <= 0 {
		bars = DefaultLimit
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{
		fetcher: fetcher,
		bars:    bars,
		now:     time.Now,
		log:     log.WithField("component", "history"),
	}
}

// Load never fails. Fetch errors and empty responses are logged and
// replaced by synthetic data.
func (l *Loader) Load(ctx context.Context) []market.Candle {
	var (
		candles []market.Candle
		err     error
	)
	if l.fetcher == nil {
		err = errors.Wrap(ErrHistoricalFetch, "no fetcher configured")
	} else {
		candles, err = l.fetch(ctx)
	}

	if err == nil && len(candles) == 0 {
		err = errors.Wrap(ErrHistoricalFetch, "empty response")
	}
	if err != nil {
		l.log.WithError(err).Warn("using synthetic history")
		now := l.now()
		return Synthesize(l.bars, now, rand.New(rand.NewSource(now.UnixNano())))
	}

	l.log.WithField("bars", len(candles)).Info("history loaded")
	return market.NewSeries(candles).Candles()
}

func (l *Loader) fetch(ctx context.Context) (candles []market.Candle, err error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			candles, err = nil, errors.Wrapf(ErrHistoricalFetch, "fetcher panic: %v", r)
		}
	}()
	return l.fetcher.Fetch(ctx)
}

// Synthesize generates n daily bars ending before now: a random walk from
// 100 where each open equals the previous close.
func Synthesize(n int, now time.Time, rng *rand.Rand) []market.Candle {
	if n <= 0 {
		return []market.Candle{}
	}

	start := now.Unix() - int64(n)*day
	price := 100.0
	out := make([]market.Candle, 0, n)
	for i := 0; i < n; i++ {
		open := price
		next := open + (rng.Float64()-0.5)*4
		out = append(out, market.Candle{
			Time:  start + int64(i)*day,
			Open:  open,
			High:  math.Max(open, next) + rng.Float64()*2,
			Low:   math.Min(open, next) - rng.Float64()*2,
			Close: next,
		})
		price = next
	}
	return out
}
