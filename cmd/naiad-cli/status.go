package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	humanize "github.com/atuleu/go-humanize"
	"github.com/formicidae-tracker/naiad/pkg/naiadpb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

type StatusCommand struct {
	Messages int `short:"m" long:"messages" description:"number of messages to display" default:"10"`
	Args     struct {
		Node Nodename
	} `positional-args:"yes" required:"yes"`
}

func cellGlyph(c naiadpb.Cell) string {
	g := "?"
	if len(c.Color) > 0 {
		g = strings.ToUpper(c.Color[:1])
	}
	if c.Line {
		g += "|"
	} else {
		g += " "
	}
	if c.Border > 0 {
		return "[" + g + "]"
	}
	return " " + g + " "
}

func printBoard(w io.Writer, st *naiadpb.Status) {
	if st.Columns <= 0 {
		return
	}
	rows := map[int][]naiadpb.Cell{}
	maxRow := 0
	for _, c := range st.Cells {
		rows[c.Row] = append(rows[c.Row], c)
		if c.Row > maxRow {
			maxRow = c.Row
		}
	}
	for r := 0; r <= maxRow; r++ {
		line := make([]string, 0, st.Columns)
		for _, c := range rows[r] {
			line = append(line, fmt.Sprintf("%2d%s", c.Zone, cellGlyph(c)))
		}
		fmt.Fprintln(w, strings.Join(line, " "))
	}
}

func printZones(w io.Writer, zones []naiadpb.ZoneStatus) {
	fmt.Fprintln(w, "┌──────┬─────────────────┬─────────────────┬──────────┬───────────┐")
	format := "│ %4v │ %-15s │ %-15s │ %-8v │ %-9s │\n"
	fmt.Fprintf(w, format, "Zone", "Watering", "Fertilizing", "Humidity", "Scheduled")
	fmt.Fprintln(w, "├──────┼─────────────────┼─────────────────┼──────────┼───────────┤")
	for _, z := range zones {
		scheduled := "✗"
		if z.WateringScheduled {
			scheduled = "✓"
		}
		fmt.Fprintf(w, format, z.ID, z.WateringStatus, z.FertilizingStatus,
			fmt.Sprintf("%d%%", z.LastHumidityValue), scheduled)
	}
	fmt.Fprintln(w, "└──────┴─────────────────┴─────────────────┴──────────┴───────────┘")
}

func printMessages(w io.Writer, messages []naiadpb.Message, count int) {
	if count >= 0 && len(messages) > count {
		messages = messages[len(messages)-count:]
	}
	for _, m := range messages {
		fmt.Fprintf(w, "%-16s %s\n", humanize.Time(m.Time.AsTime()), m.Text)
	}
}

func (c *StatusCommand) Execute(args []string) (err error) {
	ctx, span := otel.Tracer(instrumentationName).Start(context.Background(),
		"naiad-cli/Status")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, "naiad-cli error")
			span.RecordError(err)
		}
		span.End()
	}()

	node, err := GetNode(c.Args.Node)
	if err != nil {
		return err
	}
	st, err := node.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Node %s version %s, running since %s\n\n",
		node.Name, st.Version, humanize.Time(st.Since.AsTime()))
	printBoard(os.Stdout, st)
	fmt.Fprintln(os.Stdout)
	printZones(os.Stdout, st.Zones)
	fmt.Fprintln(os.Stdout)
	printMessages(os.Stdout, st.Messages, c.Messages)
	return nil
}

func init() {
	_, err := parser.AddCommand("status",
		"displays the status of a node",
		"displays the zones, the board and the last messages of a node",
		&StatusCommand{})
	if err != nil {
		panic(err.Error())
	}
}
