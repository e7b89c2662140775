package interaction

import "github.com/rustyeddy/trendchart/annotation"

// Event is anything Machine.Dispatch accepts.
type Event interface {
	isEvent()
}

type EnterDrawing struct{}

type CancelDrawing struct{}

type EnterDragging struct {
	ID       string
	Endpoint annotation.Endpoint
}

// ChartPoint is a click translated to chart coordinates. Resolved is false
// when the click could not be mapped (outside the plotted range); such
// points are ignored.
type ChartPoint struct {
	Time     int64
	Price    float64
	Resolved bool
}

func (EnterDrawing) isEvent()  {}
func (CancelDrawing) isEvent() {}
func (EnterDragging) isEvent() {}
func (ChartPoint) isEvent()    {}
