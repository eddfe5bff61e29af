package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/reconcile"
)

func sampleResult() *reconcile.Result {
	r := &reconcile.Result{
		Metadata: reconcile.ResultMetadata{
			StartTime:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
			Duration:       1500 * time.Millisecond,
			SalesChannelID: "channel-1",
		},
	}
	r.Add(reconcile.Outcome{Index: 1, ArticleNumber: "SW1", ProductID: "p1", Kind: reconcile.OutcomeUpdated, MediaCreated: 2})
	r.Add(reconcile.Outcome{Index: 2, ArticleNumber: "SW2", ProductID: "p2", Kind: reconcile.OutcomeSkippedNotFound})
	r.Add(reconcile.Outcome{
		Index: 3, ArticleNumber: "SW3", ProductID: "p3", Kind: reconcile.OutcomeFailed,
		Step: reconcile.StepPrice, Reason: "no tax | rule", Err: errors.New("no tax"),
	})
	return r
}

func TestFormatResultTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatResult(&buf, sampleResult(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Not found in source")
	assert.Contains(t, out, "SW2")
	assert.Contains(t, out, "SW3")
	assert.NotContains(t, out, "SW1", "updated products only show in wide output")
}

func TestFormatResultWide(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatResult(&buf, sampleResult(), FormatWide))
	assert.Contains(t, buf.String(), "SW1")
}

func TestFormatResultJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatResult(&buf, sampleResult(), FormatJSON))

	var decoded struct {
		Stats struct {
			Total  int `json:"total"`
			Failed int `json:"failed"`
		} `json:"stats"`
		Outcomes []map[string]any `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.Stats.Total)
	assert.Equal(t, 1, decoded.Stats.Failed)
	require.Len(t, decoded.Outcomes, 3)
	assert.Equal(t, "failed", decoded.Outcomes[2]["outcome"])
	assert.NotContains(t, decoded.Outcomes[2], "Err")
}

func TestFormatResultYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatResult(&buf, sampleResult(), FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "updated: 1")
	assert.Contains(t, out, "article_number: SW3")
}

func TestResultTablesSkipEmptyOutcomes(t *testing.T) {
	r := &reconcile.Result{}
	r.Add(reconcile.Outcome{Index: 1, ArticleNumber: "SW1", Kind: reconcile.OutcomeUpdated})

	assert.Len(t, ResultTables(r, false), 1)
	assert.Len(t, ResultTables(r, true), 2)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "# Catalog migration report")
	assert.Contains(t, out, "## Products needing attention")
	assert.Contains(t, out, "Sales channel: `channel-1`")
	assert.Contains(t, out, "no tax")
	assert.Contains(t, out, "skipped_not_found")
	assert.NotContains(t, out, "SW1")
}

func TestWriteReportAllUpdated(t *testing.T) {
	r := &reconcile.Result{}
	r.Add(reconcile.Outcome{Index: 1, ArticleNumber: "SW1", Kind: reconcile.OutcomeUpdated})

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	assert.Contains(t, buf.String(), "None. Every product was updated.")
}

func TestWriteReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, WriteReportFile(path, sampleResult()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "SW3")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.True(t, errors.IsValidationError(err))
}

func TestTableFormatterStruct(t *testing.T) {
	type setup struct {
		SalesChannelID string  `json:"sales_channel_id"`
		TaxRates       int     `json:"tax_rates"`
		Locale         *string `json:"locale,omitempty"`
		Internal       error   `json:"-"`
	}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, setup{SalesChannelID: "abc", TaxRates: 3}))

	out := buf.String()
	assert.Contains(t, out, "Sales Channel Id")
	assert.Contains(t, out, "abc")
	assert.NotContains(t, out, "Internal")
}
