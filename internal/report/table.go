// Package report renders aligned plain-text tables for the CLI.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/pgEdge/pgedge-salesdw/internal/db"
	"github.com/pgEdge/pgedge-salesdw/internal/etl"
	"github.com/pgEdge/pgedge-salesdw/internal/warehouse"
)

// Table is a header plus rows of cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with columns padded to their display width, so
// accented names line up.
func (t *Table) Render(w io.Writer) error {
	cols := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i := 0; i < len(row); i++ {
			if width := runewidth.StringWidth(row[i]); width > widths[i] {
				widths[i] = width
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		for j := 0; j < cols; j++ {
			content := ""
			if j < len(row) {
				content = row[j]
			}
			if j > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(content)
			if j < cols-1 {
				sb.WriteString(strings.Repeat(" ", widths[j]-runewidth.StringWidth(content)))
			}
		}
		sb.WriteString("\n")
	}

	if len(t.Header) > 0 {
		writeRow(t.Header)
		sep := make([]string, cols)
		for i, width := range widths {
			sep[i] = strings.Repeat("-", width)
		}
		writeRow(sep)
	}
	for _, row := range t.Rows {
		writeRow(row)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Counts renders warehouse row counts.
func Counts(counts []warehouse.TableCount) *Table {
	t := &Table{Header: []string{"TABLE", "ROWS"}}
	for _, c := range counts {
		t.Append(c.Table, fmt.Sprintf("%d", c.Rows))
	}
	return t
}

// Stages renders the statistics of a pipeline run.
func Stages(stats []*etl.Stats) *Table {
	t := &Table{Header: []string{"STAGE", "EXTRACTED", "INSERTED", "EXISTING", "SKIPPED", "UNRESOLVED", "DURATION"}}
	for _, s := range stats {
		t.Append(s.Stage,
			fmt.Sprintf("%d", s.Extracted),
			fmt.Sprintf("%d", s.Inserted),
			fmt.Sprintf("%d", s.Existing),
			fmt.Sprintf("%d", s.Skipped),
			fmt.Sprintf("%d", s.Unresolved),
			s.Duration.Round(time.Millisecond).String())
	}
	return t
}

// SkipReasons renders skip reasons per stage, omitting stages without skips.
func SkipReasons(stats []*etl.Stats) *Table {
	t := &Table{Header: []string{"STAGE", "REASON", "COUNT"}}
	for _, s := range stats {
		for _, r := range s.ReasonCounts() {
			t.Append(s.Stage, r.Reason, fmt.Sprintf("%d", r.Count))
		}
	}
	return t
}

// Run renders a recorded run.
func Run(records []db.StageRecord) *Table {
	t := &Table{Header: []string{"STAGE", "EXTRACTED", "INSERTED", "EXISTING", "SKIPPED", "UNRESOLVED", "DURATION"}}
	for _, r := range records {
		t.Append(r.Stage,
			fmt.Sprintf("%d", r.Extracted),
			fmt.Sprintf("%d", r.Inserted),
			fmt.Sprintf("%d", r.Existing),
			fmt.Sprintf("%d", r.Skipped),
			fmt.Sprintf("%d", r.Unresolved),
			r.Duration.String())
	}
	return t
}
