// Package render holds RenderAdapter implementations.
package render

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/chart"
	"github.com/rustyeddy/trendchart/market"
)

// Line is one drawn annotation as the console sees it.
type Line struct {
	Handle      int
	Trendline   annotation.Trendline
	Highlighted bool
}

// Console is a headless surface for terminals and tests. Its price scale
// is the identity over the series' low..high range, so a click's y is the
// price itself.
type Console struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	series   *market.Series
	lines    map[int]Line
	next     int
	handlers []chart.ClickHandler
}

func NewConsole(log logrus.FieldLogger) *Console {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Console{
		log:    log.WithField("component", "console"),
		series: market.NewSeries(nil),
		lines:  make(map[int]Line),
	}
}

func (c *Console) SetInitialSeries(candles []market.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series.Reset(candles)
	c.log.WithField("bars", c.series.Len()).Debug("series set")
}

func (c *Console) UpdateSeries(candle market.Candle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series.Upsert(candle)
	c.log.WithFields(logrus.Fields{
		"time":  candle.OpenTime().Format("2006-01-02 15:04"),
		"close": candle.Close,
	}).Info("bar closed")
}

func (c *Console) AddAnnotationLine(t annotation.Trendline, highlighted bool) chart.LineHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.lines[c.next] = Line{Handle: c.next, Trendline: t, Highlighted: highlighted}
	return c.next
}

func (c *Console) RemoveAnnotationLine(h chart.LineHandle) {
	n, ok := h.(int)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lines, n)
}

func (c *Console) SubscribeClick(h chart.ClickHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

func (c *Console) UnsubscribeClick(h chart.ClickHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, x := range c.handlers {
		if x == h {
			c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
			return
		}
	}
}

func (c *Console) PriceAtPixelY(y float64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	low, high, ok := c.series.Bounds()
	if !ok || y < low || y > high {
		return 0, false
	}
	return y, true
}

// Click delivers a click at (t, y) to every subscriber. A time outside the
// series arrives without a time.
func (c *Console) Click(t int64, y float64) {
	c.mu.Lock()
	click := chart.Click{Time: t, HasTime: c.series.Contains(t), Y: y, HasPoint: true}
	handlers := append([]chart.ClickHandler(nil), c.handlers...)
	c.mu.Unlock()

	// handlers call back into the console
	for _, h := range handlers {
		h.HandleClick(click)
	}
}

// Lines returns the drawn lines in drawing order.
func (c *Console) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

func (c *Console) Candles() []market.Candle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.series.Candles()
}

func (c *Console) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}
