package render

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/chart"
	"github.com/rustyeddy/trendchart/market"
)

type clickRecorder struct {
	clicks []chart.Click
}

func (r *clickRecorder) HandleClick(c chart.Click) {
	r.clicks = append(r.clicks, c)
}

func newConsole(t *testing.T) *Console {
	t.Helper()
	logger, _ := test.NewNullLogger()
	c := NewConsole(logger)
	c.SetInitialSeries([]market.Candle{
		{Time: 100, Open: 10, High: 12, Low: 8, Close: 11},
		{Time: 200, Open: 11, High: 15, Low: 9, Close: 14},
	})
	return c
}

func TestPriceAtPixelY(t *testing.T) {
	c := newConsole(t)

	tests := []struct {
		y     float64
		price float64
		ok    bool
	}{
		{8, 8, true},
		{12.5, 12.5, true},
		{15, 15, true},
		{7.99, 0, false},
		{15.01, 0, false},
	}
	for _, tt := range tests {
		price, ok := c.PriceAtPixelY(tt.y)
		assert.Equal(t, tt.ok, ok, "y=%v", tt.y)
		assert.Equal(t, tt.price, price, "y=%v", tt.y)
	}

	_, ok := NewConsole(nil).PriceAtPixelY(10)
	assert.False(t, ok, "empty series has no price scale")
}

func TestUpdateSeries(t *testing.T) {
	c := newConsole(t)
	c.UpdateSeries(market.Candle{Time: 200, Open: 11, High: 16, Low: 9, Close: 15})
	c.UpdateSeries(market.Candle{Time: 300, Open: 15, High: 17, Low: 14, Close: 16})

	got := c.Candles()
	require.Len(t, got, 3)
	assert.Equal(t, 15.0, got[1].Close)
	assert.Equal(t, int64(300), got[2].Time)
}

func TestLines(t *testing.T) {
	c := newConsole(t)
	a := c.AddAnnotationLine(annotation.Trendline{ID: "a"}, false)
	b := c.AddAnnotationLine(annotation.Trendline{ID: "b"}, true)
	assert.NotEqual(t, a, b)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].Trendline.ID)
	assert.True(t, lines[1].Highlighted)

	c.RemoveAnnotationLine(a)
	c.RemoveAnnotationLine("not a handle")
	lines = c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "b", lines[0].Trendline.ID)
}

func TestClickSubscription(t *testing.T) {
	c := newConsole(t)
	rec := &clickRecorder{}
	c.SubscribeClick(rec)

	c.Click(150, 10)
	c.Click(999, 10)
	require.Len(t, rec.clicks, 2)
	assert.Equal(t, chart.Click{Time: 150, HasTime: true, Y: 10, HasPoint: true}, rec.clicks[0])
	assert.False(t, rec.clicks[1].HasTime)

	c.UnsubscribeClick(rec)
	assert.Zero(t, c.Subscribers())
	c.Click(150, 10)
	assert.Len(t, rec.clicks, 2)
}

func TestWriteTables(t *testing.T) {
	var buf bytes.Buffer
	WriteTrendlines(&buf, []annotation.Trendline{
		{ID: "a", StartTime: 0, StartPrice: 1, EndTime: 86400, EndPrice: 2.5},
	}, "a")
	out := buf.String()
	assert.Contains(t, out, "1970-01-02 00:00")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "*")
	assert.Contains(t, out, "1 lines")

	buf.Reset()
	WriteCandles(&buf, newConsole(t).Candles(), 1)
	out = buf.String()
	assert.Contains(t, out, "14.00")
	assert.NotContains(t, out, "8.00")
}
