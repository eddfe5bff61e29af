package reconcile

import (
	"fmt"
	"time"
)

// OutcomeKind classifies what happened to one target product.
type OutcomeKind string

// Product outcomes, also used as metric labels.
const (
	OutcomeUpdated         OutcomeKind = "updated"
	OutcomeSkippedNotFound OutcomeKind = "skipped_not_found"
	OutcomeSkippedNoNumber OutcomeKind = "skipped_no_number"
	OutcomeFailed          OutcomeKind = "failed"
)

// Outcome is the record of one product's reconciliation.
type Outcome struct {
	Index         int         `json:"index" yaml:"index"`
	ArticleNumber string      `json:"article_number,omitempty" yaml:"article_number,omitempty"`
	ProductID     string      `json:"product_id" yaml:"product_id"`
	Kind          OutcomeKind `json:"outcome" yaml:"outcome"`

	// Step and Reason are set for failures.
	Step   string `json:"step,omitempty" yaml:"step,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	MediaCreated      int `json:"media_created,omitempty" yaml:"media_created,omitempty"`
	MediaReused       int `json:"media_reused,omitempty" yaml:"media_reused,omitempty"`
	MediaFailed       int `json:"media_failed,omitempty" yaml:"media_failed,omitempty"`
	MediaSkipped      int `json:"media_skipped,omitempty" yaml:"media_skipped,omitempty"`
	CategoriesCreated int `json:"categories_created,omitempty" yaml:"categories_created,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// Result is the outcome of a whole run.
type Result struct {
	Outcomes []Outcome       `json:"outcomes" yaml:"outcomes"`
	Stats    ResultStatistics `json:"stats" yaml:"stats"`
	Metadata ResultMetadata   `json:"metadata" yaml:"metadata"`

	// Interrupted is set when the run stopped early on cancellation.
	Interrupted bool `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
}

// ResultMetadata describes the run itself.
type ResultMetadata struct {
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	DryRun    bool          `json:"dry_run" yaml:"dry_run"`

	SalesChannelID string `json:"sales_channel_id" yaml:"sales_channel_id"`
	MediaFolderID  string `json:"media_folder_id" yaml:"media_folder_id"`
	CurrencyID     string `json:"currency_id" yaml:"currency_id"`
	LanguageID     string `json:"language_id" yaml:"language_id"`
}

// ResultStatistics holds run totals.
type ResultStatistics struct {
	Total             int `json:"total" yaml:"total"`
	Updated           int `json:"updated" yaml:"updated"`
	SkippedNotFound   int `json:"skipped_not_found" yaml:"skipped_not_found"`
	SkippedNoNumber   int `json:"skipped_no_number" yaml:"skipped_no_number"`
	Failed            int `json:"failed" yaml:"failed"`
	MediaCreated      int `json:"media_created" yaml:"media_created"`
	MediaReused       int `json:"media_reused" yaml:"media_reused"`
	MediaFailed       int `json:"media_failed" yaml:"media_failed"`
	CategoriesCreated int `json:"categories_created" yaml:"categories_created"`
}

// Add records an outcome and updates the totals.
func (r *Result) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Stats.Total++
	switch o.Kind {
	case OutcomeUpdated:
		r.Stats.Updated++
	case OutcomeSkippedNotFound:
		r.Stats.SkippedNotFound++
	case OutcomeSkippedNoNumber:
		r.Stats.SkippedNoNumber++
	case OutcomeFailed:
		r.Stats.Failed++
	}
	r.Stats.MediaCreated += o.MediaCreated
	r.Stats.MediaReused += o.MediaReused
	r.Stats.MediaFailed += o.MediaFailed
	r.Stats.CategoriesCreated += o.CategoriesCreated
}

// HasFailures reports whether any product failed.
func (r *Result) HasFailures() bool {
	return r.Stats.Failed > 0
}

// NotUpdated returns every outcome other than a successful update, in run order.
func (r *Result) NotUpdated() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Kind != OutcomeUpdated {
			out = append(out, o)
		}
	}
	return out
}

// Summary returns a one-line human-readable summary.
func (r *Result) Summary() string {
	prefix := "Migration"
	if r.Metadata.DryRun {
		prefix = "Dry run"
	}
	status := "completed"
	if r.Interrupted {
		status = "interrupted"
	}
	return fmt.Sprintf("%s %s: %d products, %d updated, %d not found, %d without number, %d failed (media: %d created, %d reused, %d failed)",
		prefix, status,
		r.Stats.Total, r.Stats.Updated, r.Stats.SkippedNotFound, r.Stats.SkippedNoNumber, r.Stats.Failed,
		r.Stats.MediaCreated, r.Stats.MediaReused, r.Stats.MediaFailed)
}
