package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/agentstation/catalogbridge/pkg/reconcile"
)

// FormatResult writes a run result. JSON and YAML get the full result;
// tables get the totals plus the products that were not updated (all
// products for the wide format).
func FormatResult(w io.Writer, r *reconcile.Result, format Format) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, r)
	default:
		return NewFormatter(format).Format(w, ResultTables(r, format == FormatWide))
	}
}

// ResultTables converts a result into a totals table and, when there is
// anything to list, an outcome table.
func ResultTables(r *reconcile.Result, wide bool) []Data {
	tables := []Data{TotalsTable(r)}

	outcomes := r.NotUpdated()
	if wide {
		outcomes = r.Outcomes
	}
	if len(outcomes) > 0 {
		tables = append(tables, OutcomesTable(outcomes))
	}
	return tables
}

// TotalsTable lists the run counters.
func TotalsTable(r *reconcile.Result) Data {
	return Data{
		Headers:         []string{"Metric", "Count"},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
		Rows:            totalsRows(r),
	}
}

func totalsRows(r *reconcile.Result) [][]string {
	s := r.Stats
	return [][]string{
		{"Products", strconv.Itoa(s.Total)},
		{"Updated", strconv.Itoa(s.Updated)},
		{"Not found in source", strconv.Itoa(s.SkippedNotFound)},
		{"Without product number", strconv.Itoa(s.SkippedNoNumber)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Media created", strconv.Itoa(s.MediaCreated)},
		{"Media reused", strconv.Itoa(s.MediaReused)},
		{"Media failed", strconv.Itoa(s.MediaFailed)},
		{"Categories created", strconv.Itoa(s.CategoriesCreated)},
		{"Duration", r.Metadata.Duration.Round(time.Millisecond).String()},
	}
}

// OutcomesTable lists one row per product outcome.
func OutcomesTable(outcomes []reconcile.Outcome) Data {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, outcomeRow(o))
	}
	return Data{
		Headers:         []string{"#", "Article", "Product ID", "Outcome", "Step", "Media", "Reason"},
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
		Rows:            rows,
	}
}

func outcomeRow(o reconcile.Outcome) []string {
	article := o.ArticleNumber
	if article == "" {
		article = "-"
	}
	return []string{
		strconv.Itoa(o.Index),
		article,
		o.ProductID,
		string(o.Kind),
		o.Step,
		fmt.Sprintf("%d/%d/%d", o.MediaCreated, o.MediaReused, o.MediaFailed),
		o.Reason,
	}
}
