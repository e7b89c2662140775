package annotation

import (
	"fmt"
	"strings"
)

// Trendline is a two-point annotation in chart coordinates. Start and end
// have no required order; a line may point backwards in time.
type Trendline struct {
	ID         string  `json:"id"`
	StartTime  int64   `json:"startTime"`
	StartPrice float64 `json:"startPrice"`
	EndTime    int64   `json:"endTime"`
	EndPrice   float64 `json:"endPrice"`
}

// Endpoint names one end of a trendline.
type Endpoint string

const (
	Start Endpoint = "start"
	End   Endpoint = "end"
)

func ParseEndpoint(s string) (Endpoint, error) {
	switch Endpoint(strings.ToLower(strings.TrimSpace(s))) {
	case Start:
		return Start, nil
	case End:
		return End, nil
	default:
		return "", fmt.Errorf("unknown endpoint %q (want start|end)", s)
	}
}

// Degenerate reports a zero-length or zero-span line. Such lines are valid;
// they just do not draw as much.
func (t Trendline) Degenerate() bool {
	return t.StartTime == t.EndTime
}

// Move returns t with one endpoint relocated. The id never changes.
func (t Trendline) Move(ep Endpoint, time int64, price float64) Trendline {
	switch ep {
	case Start:
		t.StartTime, t.StartPrice = time, price
	case End:
		t.EndTime, t.EndPrice = time, price
	}
	return t
}

// Add returns a new sequence with t appended.
func Add(lines []Trendline, t Trendline) []Trendline {
	out := make([]Trendline, 0, len(lines)+1)
	out = append(out, lines...)
	return append(out, t)
}

// Update returns a new sequence where the line with id has ep moved.
// Lines without a match come back unchanged.
func Update(lines []Trendline, id string, ep Endpoint, time int64, price float64) []Trendline {
	out := make([]Trendline, len(lines))
	for i, t := range lines {
		if t.ID == id {
			t = t.Move(ep, time, price)
		}
		out[i] = t
	}
	return out
}

// Remove returns a new sequence without the line with id.
func Remove(lines []Trendline, id string) []Trendline {
	out := make([]Trendline, 0, len(lines))
	for _, t := range lines {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Clear returns the empty sequence.
func Clear() []Trendline {
	return []Trendline{}
}
