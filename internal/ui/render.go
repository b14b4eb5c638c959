package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/nibbabob/portdog/internal/report"
)

// RenderTable writes the human-readable results table: open ports with
// their identifications, followed by a summary counting every state
func RenderTable(w io.Writer, rep *report.Report) {
	open := rep.OpenRecords()

	fmt.Fprintln(w)

	if len(open) == 0 {
		fmt.Fprintln(w, "No open ports found.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

		fmt.Fprintln(tw, "PORT\tSTATE\tSERVICE\tVERSION\tBANNER")

		for _, record := range open {
			fmt.Fprintf(
				tw,
				"%s\t%s\t%s\t%s\t%s\n",
				color.YellowString("%d/tcp", record.Port),
				color.GreenString(record.State),
				color.BlueString(record.Service),
				record.Version,
				oneLine(record.Banner),
			)
		}

		tw.Flush()
	}

	summary := rep.Summarize()

	fmt.Fprintf(
		w,
		"\n%d open, %d closed, %d filtered (%d ports on %s in %s)\n",
		summary.Open,
		summary.Closed,
		summary.Filtered,
		len(rep.Records),
		rep.Target,
		rep.Elapsed.Round(time.Millisecond),
	)
}

// RenderJSON writes the complete result set, every port and state
// included, for machine consumption
func RenderJSON(w io.Writer, rep *report.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rep)
}

// oneLine flattens multi-line banners for table rendering
func oneLine(banner string) string {
	banner = strings.ReplaceAll(banner, "\r", " ")
	banner = strings.ReplaceAll(banner, "\n", " ")

	return strings.TrimSpace(banner)
}
