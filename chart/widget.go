// Package chart wires the candle feed, the annotation store and the
// interaction machine to a rendering surface.
package chart

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/interaction"
	"github.com/rustyeddy/trendchart/market"
)

var ErrUnknownTrendline = errors.New("chart: unknown trendline")

// Feed is the live candle source. feed.Controller satisfies it.
type Feed interface {
	OnCandle(fn func(market.Candle))
	Connect(ctx context.Context)
	Disconnect()
}

// History supplies the initial series. history.Loader satisfies it.
type History interface {
	Load(ctx context.Context) []market.Candle
}

type Options struct {
	Adapter RenderAdapter
	Store   *annotation.Store
	Feed    Feed
	History History
	Logger  logrus.FieldLogger
	// NewID overrides trendline id generation.
	NewID func() string
}

// Widget owns one mounted chart. Clicks, user operations and feed
// candles are serialised on one mutex; each runs to completion.
type Widget struct {
	adapter RenderAdapter
	store   *annotation.Store
	feed    Feed
	history History
	newID   func() string
	log     logrus.FieldLogger

	mu         sync.Mutex
	machine    *interaction.Machine
	series     *market.Series
	handles    []LineHandle
	mounted    bool
	subscribed bool
	// generation is bumped by Unmount so a Mount that lost the race can
	// tell its connect was torn down underneath it.
	generation uint64
}

func New(opts Options) (*Widget, error) {
	if opts.Adapter == nil {
		return nil, errors.New("chart: adapter required")
	}
	if opts.Store == nil {
		return nil, errors.New("chart: store required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	w := &Widget{
		adapter: opts.Adapter,
		store:   opts.Store,
		feed:    opts.Feed,
		history: opts.History,
		newID:   opts.NewID,
		log:     opts.Logger.WithField("component", "chart"),
		series:  market.NewSeries(nil),
	}
	w.machine = interaction.New(w.store, w.newID)

	// the store is only touched under w.mu, so redraw runs locked
	w.store.Subscribe(w.redraw)
	if w.feed != nil {
		w.feed.OnCandle(w.onCandle)
	}
	return w, nil
}

// Mount loads history and persisted trendlines, draws them, starts the
// live feed and begins accepting clicks. Mounting twice is a no-op.
func (w *Widget) Mount(ctx context.Context) {
	if w.isMounted() {
		return
	}

	var candles []market.Candle
	if w.history != nil {
		candles = w.history.Load(ctx)
	}

	w.mu.Lock()
	if w.mounted {
		w.mu.Unlock()
		return
	}
	w.mounted = true
	w.series.Reset(candles)
	w.adapter.SetInitialSeries(w.series.Candles())
	lines := w.store.Load(ctx)
	w.adapter.SubscribeClick(w)
	w.subscribed = true
	gen := w.generation
	w.mu.Unlock()

	w.log.WithFields(logrus.Fields{"bars": len(candles), "trendlines": len(lines)}).Info("mounted")

	// outside the lock: the feed calls back into onCandle
	if w.feed != nil {
		w.feed.Connect(ctx)
		if !w.stillMounted(gen) {
			w.feed.Disconnect()
		}
	}
}

func (w *Widget) stillMounted(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted && w.generation == gen
}

// Unmount stops the feed, drops the click subscription and erases every
// drawn line. Safe before Mount and safe to repeat.
func (w *Widget) Unmount() {
	if w.feed != nil {
		w.feed.Disconnect()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	if w.subscribed {
		w.adapter.UnsubscribeClick(w)
		w.subscribed = false
	}
	w.removeLines()
	if w.mounted {
		w.log.Info("unmounted")
	}
	w.mounted = false
	w.machine = interaction.New(w.store, w.newID)
}

func (w *Widget) isMounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mounted
}

// HandleClick turns a surface click into a chart point. Clicks without a
// time, without a point, or off the price scale are ignored.
func (w *Widget) HandleClick(c Click) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.mounted || !c.HasTime || !c.HasPoint {
		return
	}
	price, ok := w.adapter.PriceAtPixelY(c.Y)
	if !ok {
		return
	}
	w.machine.Dispatch(interaction.ChartPoint{Time: c.Time, Price: price, Resolved: true})
}

func (w *Widget) onCandle(c market.Candle) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.mounted {
		return
	}
	w.series.Upsert(c)
	w.adapter.UpdateSeries(c)
}

func (w *Widget) StartDrawing() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setMode(interaction.EnterDrawing{})
}

func (w *Widget) CancelDrawing() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setMode(interaction.CancelDrawing{})
}

// StartDragging arms a drag of one endpoint of the line id; the next
// resolved click moves it there.
func (w *Widget) StartDragging(id string, ep annotation.Endpoint) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.store.Get(id); !ok {
		return errors.Wrap(ErrUnknownTrendline, id)
	}
	w.setMode(interaction.EnterDragging{ID: id, Endpoint: ep})
	return nil
}

// setMode applies a mode event and redraws when the highlighted line
// changes.
func (w *Widget) setMode(ev interaction.Event) {
	before := w.machine.Mode()
	w.machine.Dispatch(ev)
	after := w.machine.Mode()
	if before.Kind == interaction.Dragging || after.Kind == interaction.Dragging {
		w.redraw(w.store.Trendlines())
	}
}

func (w *Widget) DeleteTrendline(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.store.RemoveTrendline(id)
}

func (w *Widget) ClearTrendlines() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.store.ClearTrendlines()
}

func (w *Widget) Trendlines() []annotation.Trendline {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Trendlines()
}

func (w *Widget) Mode() interaction.Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.machine.Mode()
}

func (w *Widget) Candles() []market.Candle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.series.Candles()
}

// redraw replaces every drawn line with lines. The drag target, if any,
// is drawn highlighted.
func (w *Widget) redraw(lines []annotation.Trendline) {
	w.removeLines()
	if !w.mounted {
		return
	}

	mode := w.machine.Mode()
	for _, t := range lines {
		highlighted := mode.Kind == interaction.Dragging && mode.TargetID == t.ID
		w.handles = append(w.handles, w.adapter.AddAnnotationLine(t, highlighted))
	}
}

func (w *Widget) removeLines() {
	for _, h := range w.handles {
		w.adapter.RemoveAnnotationLine(h)
	}
	w.handles = nil
}
