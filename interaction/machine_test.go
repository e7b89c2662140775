package interaction

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/trendchart/annotation"
)

// recorder captures every mutation the machine emits.
type recorder struct {
	added   []annotation.Trendline
	updates []update
}

type update struct {
	id    string
	ep    annotation.Endpoint
	time  int64
	price float64
}

func (r *recorder) AddTrendline(t annotation.Trendline) []annotation.Trendline {
	r.added = append(r.added, t)
	return r.added
}

func (r *recorder) UpdateEndpoint(id string, ep annotation.Endpoint, time int64, price float64) []annotation.Trendline {
	r.updates = append(r.updates, update{id, ep, time, price})
	return r.added
}

func (r *recorder) mutations() int {
	return len(r.added) + len(r.updates)
}

func newMachine() (*Machine, *recorder) {
	rec := &recorder{}
	n := 0
	return New(rec, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}), rec
}

func TestDrawTwoClicks(t *testing.T) {
	m, rec := newMachine()

	m.EnterDrawing()
	m.HandleChartPoint(1000, 50)
	assert.Empty(t, rec.added)
	require.NotNil(t, m.Mode().Pending)
	assert.Equal(t, Point{Time: 1000, Price: 50}, *m.Mode().Pending)

	m.HandleChartPoint(2000, 55)
	require.Len(t, rec.added, 1)
	assert.Equal(t, annotation.Trendline{
		ID: "id-1", StartTime: 1000, StartPrice: 50, EndTime: 2000, EndPrice: 55,
	}, rec.added[0])
	assert.Equal(t, Idle, m.Mode().Kind)
}

func TestDrawEmitsOnEverySecondPoint(t *testing.T) {
	m, rec := newMachine()

	for i := 1; i <= 6; i++ {
		if i%2 == 1 {
			m.EnterDrawing()
		}
		m.HandleChartPoint(int64(i*100), float64(i))
		assert.Equal(t, i/2, len(rec.added), "after point %d", i)
	}
}

func TestDegenerateLineAccepted(t *testing.T) {
	m, rec := newMachine()

	m.EnterDrawing()
	m.HandleChartPoint(1000, 50)
	m.HandleChartPoint(1000, 50)

	require.Len(t, rec.added, 1)
	assert.True(t, rec.added[0].Degenerate())
}

func TestIdleIgnoresPoints(t *testing.T) {
	m, rec := newMachine()
	m.HandleChartPoint(1000, 50)
	assert.Zero(t, rec.mutations())
	assert.Equal(t, Idle, m.Mode().Kind)
}

func TestUnresolvedPointIgnored(t *testing.T) {
	m, rec := newMachine()

	m.EnterDrawing()
	m.Dispatch(ChartPoint{Time: 1000, Price: 50, Resolved: false})
	assert.Nil(t, m.Mode().Pending)

	m.EnterDragging("a", annotation.Start)
	m.Dispatch(ChartPoint{})
	assert.Equal(t, Dragging, m.Mode().Kind)
	assert.Zero(t, rec.mutations())
}

func TestCancelDrawingDiscardsPending(t *testing.T) {
	m, rec := newMachine()

	m.EnterDrawing()
	m.HandleChartPoint(1000, 50)
	m.CancelDrawing()
	assert.Equal(t, Mode{}, m.Mode())

	m.HandleChartPoint(2000, 55)
	assert.Zero(t, rec.mutations())
}

func TestCancelDrawingLeavesDragAlone(t *testing.T) {
	m, _ := newMachine()
	m.EnterDragging("a", annotation.End)
	m.CancelDrawing()
	assert.Equal(t, Dragging, m.Mode().Kind)
}

func TestDragUpdatesEndpoint(t *testing.T) {
	m, rec := newMachine()

	m.EnterDragging("a", annotation.End)
	m.HandleChartPoint(3000, 60)

	require.Len(t, rec.updates, 1)
	assert.Equal(t, update{"a", annotation.End, 3000, 60}, rec.updates[0])
	assert.Equal(t, Idle, m.Mode().Kind)
}

func TestModeExclusivity(t *testing.T) {
	t.Run("enter drawing while dragging", func(t *testing.T) {
		m, rec := newMachine()
		m.EnterDragging("a", annotation.Start)
		m.EnterDrawing()

		assert.Equal(t, Mode{Kind: Drawing}, m.Mode())
		assert.Zero(t, rec.mutations())
	})

	t.Run("enter dragging while drawing", func(t *testing.T) {
		m, rec := newMachine()
		m.EnterDrawing()
		m.HandleChartPoint(1000, 50)
		m.EnterDragging("a", annotation.Start)

		mode := m.Mode()
		assert.Equal(t, Dragging, mode.Kind)
		assert.Nil(t, mode.Pending)
		assert.Zero(t, rec.mutations())

		m.HandleChartPoint(2000, 55)
		assert.Empty(t, rec.added)
		assert.Len(t, rec.updates, 1)
	})
}

func TestModeCopyIsDetached(t *testing.T) {
	m, _ := newMachine()
	m.EnterDrawing()
	m.HandleChartPoint(1000, 50)

	mode := m.Mode()
	mode.Pending.Price = 99
	assert.Equal(t, 50.0, m.Mode().Pending.Price)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "idle", Mode{}.String())
	assert.Equal(t, "drawing (click start point)", Mode{Kind: Drawing}.String())
	assert.Equal(t, "drawing (click end point)", Mode{Kind: Drawing, Pending: &Point{}}.String())
	assert.Equal(t, "dragging end point of x", Mode{Kind: Dragging, TargetID: "x", Endpoint: annotation.End}.String())
}

func TestDefaultIDsAreUnique(t *testing.T) {
	rec := &recorder{}
	m := New(rec, nil)
	for i := 0; i < 50; i++ {
		m.EnterDrawing()
		m.HandleChartPoint(1, 1)
		m.HandleChartPoint(2, 2)
	}

	seen := map[string]bool{}
	for _, l := range rec.added {
		require.False(t, seen[l.ID])
		seen[l.ID] = true
	}
}
