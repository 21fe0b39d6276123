package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/safegrade/internal/evaluation"
	"github.com/spboyer/safegrade/internal/models"
	"golang.org/x/term"
)

// formatDuration formats a duration in a consistent, human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}

// padRight pads s with spaces to the given display width, counting
// wide runes correctly.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// isTerminal reports whether out is an interactive terminal, which
// decides between carriage-return progress and plain lines.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newProgressPrinter returns a listener that renders run progress.
// Verbose mode prints one line per graded example; otherwise a
// single updating counter is shown on terminals.
func newProgressPrinter(out io.Writer, verbose bool) evaluation.ProgressListener {
	interactive := isTerminal(out)

	return func(event evaluation.ProgressEvent) {
		switch event.EventType {
		case evaluation.EventRunStart:
			fmt.Fprintf(out, "Grading %d examples...\n", event.Total)

		case evaluation.EventExampleComplete:
			if verbose {
				fmt.Fprint(out, formatExampleLine(event))
				return
			}
			if interactive {
				fmt.Fprintf(out, "  %d/%d\r", event.Index+1, event.Total)
			}

		case evaluation.EventRunComplete:
			if !verbose && interactive {
				fmt.Fprint(out, "\033[2K\r")
			}
			fmt.Fprintf(out, "Done in %s.\n", formatDuration(time.Duration(event.DurationMs)*time.Millisecond))
		}
	}
}

func formatExampleLine(event evaluation.ProgressEvent) string {
	icon := "✅"
	switch {
	case event.ErrorMsg != "":
		icon = "💥"
	case !event.Passed:
		icon = "❌"
	}

	line := fmt.Sprintf("%s %s score=%.2f", icon, padRight("["+string(event.QueryType)+"]", 18), event.Score)
	if event.ErrorMsg != "" {
		line += " " + event.ErrorMsg
	}
	return line + "\n"
}

// formatBreakdown renders a per-query-type count table, largest first.
func formatBreakdown(byType map[models.QueryType]int) string {
	type row struct {
		queryType models.QueryType
		count     int
	}

	rows := make([]row, 0, len(byType))
	for qt, count := range byType {
		rows = append(rows, row{qt, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].queryType < rows[j].queryType
	})

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %d\n", padRight(string(r.queryType), 18), r.count))
	}
	return b.String()
}
