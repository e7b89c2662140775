package cli

import (
	"fmt"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/feed"
	"github.com/rustyeddy/trendchart/history"
	"github.com/rustyeddy/trendchart/storage"
)

func (rc *RootConfig) openStore() (storage.Backend, *annotation.Store, error) {
	backend, err := storage.Open(rc.Config.StorageOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return backend, annotation.NewStore(backend, rc.Config.Storage.Key, rc.Log), nil
}

func (rc *RootConfig) newLoader() *history.Loader {
	h := rc.Config.History
	fetcher := history.NewBinanceFetcher(h.BaseURL, rc.Config.Market.Symbol, h.Interval, h.Limit)
	loader := history.NewLoader(fetcher, h.Limit, rc.Log)
	// validated at load
	loader.Timeout, _ = h.ParseTimeout()
	return loader
}

func (rc *RootConfig) newFeed() *feed.Controller {
	delay, _ := rc.Config.Feed.ParseReconnectDelay()
	return feed.New(feed.Options{
		URL:            rc.Config.StreamURL(),
		ReconnectDelay: delay,
		Logger:         rc.Log,
	})
}
