// Package report folds transfer summaries into the outcome of a run.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/handiism/bulk-downloader/internal/model"
)

// ErrSomeFailed is returned by Report.Err when at least one download failed.
var ErrSomeFailed = errors.New("some downloads failed")

// Report is the outcome of a run.
type Report struct {
	Total     int
	Succeeded int
	Bytes     int64

	// Failures holds one line per failed summary, in summary order.
	Failures []string
}

// Aggregate builds the report for summaries.
func Aggregate(summaries []model.Summary) Report {
	r := Report{Total: len(summaries)}
	for _, s := range summaries {
		if !s.Failed() {
			r.Succeeded++
			r.Bytes += s.Bytes
			continue
		}
		r.Failures = append(r.Failures, FailureLine(s))
	}
	return r
}

// FailureLine formats a failed summary for the user.
func FailureLine(s model.Summary) string {
	return fmt.Sprintf("Failed to download %s: %v", s.Descriptor, s.Reason)
}

// OK reports whether every download succeeded.
func (r Report) OK() bool {
	return len(r.Failures) == 0
}

// Print writes the failure lines to w.
func (r Report) Print(w io.Writer) error {
	for _, line := range r.Failures {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Err returns ErrSomeFailed unless the run succeeded.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return ErrSomeFailed
}
