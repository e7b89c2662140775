package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/market"
)

func tableStyle() table.Style {
	style := table.StyleRounded
	style.Format.Header = text.FormatUpper
	style.Format.Footer = text.FormatDefault
	return style
}

// WriteTrendlines prints lines as a table. highlight marks one id, usually
// the current drag target.
func WriteTrendlines(w io.Writer, lines []annotation.Trendline, highlight string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(tableStyle())
	t.AppendHeader(table.Row{"", "id", "start", "start price", "end", "end price"})
	for _, l := range lines {
		mark := ""
		if l.ID == highlight {
			mark = "*"
		}
		t.AppendRow(table.Row{
			mark,
			l.ID,
			market.Candle{Time: l.StartTime}.OpenTime().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", l.StartPrice),
			market.Candle{Time: l.EndTime}.OpenTime().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", l.EndPrice),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d lines", len(lines))})
	t.Render()
}

// WriteCandles prints the last n candles, or all of them when n <= 0.
func WriteCandles(w io.Writer, candles []market.Candle, n int) {
	if n > 0 && len(candles) > n {
		candles = candles[len(candles)-n:]
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(tableStyle())
	t.AppendHeader(table.Row{"time", "open", "high", "low", "close"})
	for _, c := range candles {
		t.AppendRow(table.Row{
			c.OpenTime().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", c.Open),
			fmt.Sprintf("%.2f", c.High),
			fmt.Sprintf("%.2f", c.Low),
			fmt.Sprintf("%.2f", c.Close),
		})
	}
	t.Render()
}
