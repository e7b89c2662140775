package chart

import (
	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/market"
)

// LineHandle identifies a drawn line to the adapter that drew it.
type LineHandle any

// Click is a raw click from the rendering surface. HasTime is false when
// the click missed the time axis; HasPoint is false when it carried no
// coordinate at all.
type Click struct {
	Time     int64
	HasTime  bool
	Y        float64
	HasPoint bool
}

type ClickHandler interface {
	HandleClick(c Click)
}

// RenderAdapter is everything the widget needs from a chart surface.
type RenderAdapter interface {
	SetInitialSeries(candles []market.Candle)
	// UpdateSeries replaces the bar with the same time or appends it.
	UpdateSeries(c market.Candle)
	AddAnnotationLine(t annotation.Trendline, highlighted bool) LineHandle
	RemoveAnnotationLine(h LineHandle)
	SubscribeClick(h ClickHandler)
	UnsubscribeClick(h ClickHandler)
	// PriceAtPixelY converts a vertical pixel to a price. ok is false
	// outside the price scale.
	PriceAtPixelY(y float64) (price float64, ok bool)
}
