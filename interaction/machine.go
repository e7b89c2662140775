// Package interaction turns chart clicks into trendline mutations.
//
// A Machine is in exactly one mode at a time. Drawing captures two points
// and creates a line; dragging captures one point and moves one endpoint
// of an existing line. Entering either mode cancels the other without
// emitting anything.
package interaction

import (
	"fmt"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/pkg/id"
)

type ModeKind int

const (
	Idle ModeKind = iota
	Drawing
	Dragging
)

func (k ModeKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("ModeKind(%d)", int(k))
	}
}

// Point is a resolved chart coordinate.
type Point struct {
	Time  int64
	Price float64
}

// Mode is the current interaction mode. Pending is only set while drawing
// after the first point; TargetID and Endpoint only while dragging.
type Mode struct {
	Kind     ModeKind
	Pending  *Point
	TargetID string
	Endpoint annotation.Endpoint
}

func (m Mode) String() string {
	switch m.Kind {
	case Drawing:
		if m.Pending == nil {
			return "drawing (click start point)"
		}
		return "drawing (click end point)"
	case Dragging:
		return fmt.Sprintf("dragging %s point of %s", m.Endpoint, m.TargetID)
	default:
		return "idle"
	}
}

// Mutator receives the mutations a completed interaction produces.
type Mutator interface {
	AddTrendline(t annotation.Trendline) []annotation.Trendline
	UpdateEndpoint(id string, ep annotation.Endpoint, time int64, price float64) []annotation.Trendline
}

// Machine holds no state besides its mode and the pending start point.
type Machine struct {
	mode  Mode
	store Mutator
	newID func() string
}

// New returns an idle machine. A nil newID uses pkg/id.
func New(store Mutator, newID func() string) *Machine {
	if newID == nil {
		newID = id.New
	}
	return &Machine{store: store, newID: newID}
}

// Mode returns a copy of the current mode.
func (m *Machine) Mode() Mode {
	mode := m.mode
	if mode.Pending != nil {
		p := *mode.Pending
		mode.Pending = &p
	}
	return mode
}

func (m *Machine) EnterDrawing() { m.Dispatch(EnterDrawing{}) }

func (m *Machine) CancelDrawing() { m.Dispatch(CancelDrawing{}) }

func (m *Machine) EnterDragging(id string, ep annotation.Endpoint) {
	m.Dispatch(EnterDragging{ID: id, Endpoint: ep})
}

// HandleChartPoint feeds one resolved click coordinate.
func (m *Machine) HandleChartPoint(time int64, price float64) {
	m.Dispatch(ChartPoint{Time: time, Price: price, Resolved: true})
}

// Dispatch applies one event. It is the only place the mode changes.
func (m *Machine) Dispatch(ev Event) {
	switch e := ev.(type) {
	case EnterDrawing:
		m.mode = Mode{Kind: Drawing}

	case CancelDrawing:
		if m.mode.Kind == Drawing {
			m.mode = Mode{}
		}

	case EnterDragging:
		m.mode = Mode{Kind: Dragging, TargetID: e.ID, Endpoint: e.Endpoint}

	case ChartPoint:
		if !e.Resolved {
			return
		}
		m.point(Point{Time: e.Time, Price: e.Price})
	}
}

func (m *Machine) point(p Point) {
	switch m.mode.Kind {
	case Idle:
		return

	case Drawing:
		if m.mode.Pending == nil {
			m.mode.Pending = &p
			return
		}
		start := *m.mode.Pending
		t := annotation.Trendline{
			ID:         m.newID(),
			StartTime:  start.Time,
			StartPrice: start.Price,
			EndTime:    p.Time,
			EndPrice:   p.Price,
		}
		// idle first so subscribers redrawing on the new set see the final mode
		m.mode = Mode{}
		m.store.AddTrendline(t)

	case Dragging:
		target, ep := m.mode.TargetID, m.mode.Endpoint
		m.mode = Mode{}
		m.store.UpdateEndpoint(target, ep, p.Time, p.Price)
	}
}
