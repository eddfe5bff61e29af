package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/reconcile"
)

// WriteReport writes a markdown report of a run: settings, totals and every
// product that was not updated, with the reason, so it can be re-run by hand.
func WriteReport(w io.Writer, r *reconcile.Result) error {
	doc := md.NewMarkdown(w)

	doc.H1("Catalog migration report")
	doc.PlainText(r.Summary()).LF()
	if r.Interrupted {
		doc.PlainText(md.Bold("The run was interrupted before every product was processed.")).LF()
	}

	doc.H2("Run")
	doc.BulletList(
		fmt.Sprintf("Started: %s", r.Metadata.StartTime.Format(time.RFC3339)),
		fmt.Sprintf("Duration: %s", r.Metadata.Duration.Round(time.Millisecond)),
		fmt.Sprintf("Dry run: %t", r.Metadata.DryRun),
		fmt.Sprintf("Sales channel: `%s`", r.Metadata.SalesChannelID),
		fmt.Sprintf("Media folder: `%s`", r.Metadata.MediaFolderID),
		fmt.Sprintf("Currency: `%s`", r.Metadata.CurrencyID),
		fmt.Sprintf("Language: `%s`", r.Metadata.LanguageID),
	)

	doc.H2("Totals")
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   totalsRows(r),
	})

	doc.H2("Products needing attention")
	notUpdated := r.NotUpdated()
	if len(notUpdated) == 0 {
		doc.PlainText("None. Every product was updated.").LF()
		return doc.Build()
	}

	rows := make([][]string, 0, len(notUpdated))
	for _, o := range notUpdated {
		row := outcomeRow(o)
		for i := range row {
			row[i] = escapeCell(row[i])
		}
		rows = append(rows, row)
	}
	doc.Table(md.TableSet{
		Header: []string{"#", "Article", "Product ID", "Outcome", "Step", "Media", "Reason"},
		Rows:   rows,
	})
	return doc.Build()
}

// WriteReportFile writes the markdown report to path.
func WriteReportFile(path string, r *reconcile.Result) error {
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		return errors.WrapResource("render", "report", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapResource("write", "report", path, err)
	}
	return nil
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
