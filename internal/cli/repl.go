package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/trendchart/annotation"
	"github.com/rustyeddy/trendchart/chart"
	"github.com/rustyeddy/trendchart/interaction"
	"github.com/rustyeddy/trendchart/render"
)

const replHelp = `commands:
  draw                     start a trendline; the next two clicks are its ends
  cancel                   abandon the line being drawn
  click <time> <price>     click the chart (time: unix seconds, 2006-01-02 or RFC3339)
  drag <id> <start|end>    move one end of a line to the next click
  delete <id>              remove a line
  clear                    remove every line
  lines                    list lines (* marks the drag target)
  candles [n]              show the last n bars (default 10)
  mode                     show the interaction mode
  quit                     leave
`

// session drives a mounted widget from text commands.
type session struct {
	widget  *chart.Widget
	console *render.Console
	out     io.Writer
}

// run reads commands until quit, EOF or ctx is done. Command errors are
// printed and the loop continues.
func (s *session) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
		close(lines)
	}()

	fmt.Fprint(s.out, "> ")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			quit, err := s.exec(line)
			if err != nil {
				fmt.Fprintln(s.out, "error:", err)
			}
			if quit {
				return nil
			}
			fmt.Fprint(s.out, "> ")
		}
	}
}

func (s *session) exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		fmt.Fprint(s.out, replHelp)

	case "draw":
		s.widget.StartDrawing()
		fmt.Fprintln(s.out, s.widget.Mode())

	case "cancel":
		s.widget.CancelDrawing()
		fmt.Fprintln(s.out, s.widget.Mode())

	case "click":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: click <time> <price>")
		}
		t, err := parseTime(args[0])
		if err != nil {
			return false, err
		}
		y, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return false, fmt.Errorf("price: %w", err)
		}
		s.console.Click(t, y)
		fmt.Fprintln(s.out, s.widget.Mode())

	case "drag":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: drag <id> <start|end>")
		}
		ep, err := annotation.ParseEndpoint(args[1])
		if err != nil {
			return false, err
		}
		if err := s.widget.StartDragging(args[0], ep); err != nil {
			return false, err
		}
		fmt.Fprintln(s.out, s.widget.Mode())

	case "delete":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: delete <id>")
		}
		s.widget.DeleteTrendline(args[0])

	case "clear":
		s.widget.ClearTrendlines()

	case "lines":
		target := ""
		if m := s.widget.Mode(); m.Kind == interaction.Dragging {
			target = m.TargetID
		}
		render.WriteTrendlines(s.out, s.widget.Trendlines(), target)

	case "candles":
		n := 10
		if len(args) == 1 {
			if n, err = strconv.Atoi(args[0]); err != nil {
				return false, fmt.Errorf("count: %w", err)
			}
		}
		render.WriteCandles(s.out, s.widget.Candles(), n)

	case "mode":
		fmt.Fprintln(s.out, s.widget.Mode())

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return false, nil
}

// parseTime accepts unix seconds, a date or an RFC3339 timestamp.
func parseTime(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("time %q: want unix seconds, 2006-01-02 or RFC3339", s)
}
