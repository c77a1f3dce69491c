package rename

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Outcome classifies what happened to one entry during an apply run.
type Outcome string

const (
	// OutcomeRenamed means the file now carries its new name. Preview runs
	// report it for every entry that a real run would rename.
	OutcomeRenamed Outcome = "renamed"
	// OutcomeSkipped means the file was left untouched on purpose.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the entry could not be completed; Reason explains.
	OutcomeFailed Outcome = "failed"
)

// Result records the outcome for a single entry.
type Result struct {
	Path    string  `json:"path"`
	OldName string  `json:"old_name"`
	NewName string  `json:"new_name"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Report aggregates per-entry results in plan order. Preview and real runs
// produce it through the same code path.
type Report struct {
	Results []Result `json:"results"`
	Renamed int      `json:"renamed"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
}

// Summarize builds a report from ordered results.
func Summarize(results []Result) *Report {
	r := &Report{Results: results}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeRenamed:
			r.Renamed++
		case OutcomeSkipped:
			r.Skipped++
		case OutcomeFailed:
			r.Failed++
		}
	}
	return r
}

// Total returns the number of entries covered by the report.
func (r *Report) Total() int {
	return len(r.Results)
}

// Err returns a non-nil error when any entry failed, so commands can print
// the report and still exit non-zero.
func (r *Report) Err() error {
	if r.Failed > 0 {
		return fmt.Errorf("%d of %d entries failed", r.Failed, r.Total())
	}
	return nil
}

// Table renders the report as a console table with a count footer.
func (r *Report) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Old Name", "New Name", "Outcome", "Reason"})

	for _, res := range r.Results {
		tw.AppendRow(table.Row{res.OldName, res.NewName, string(res.Outcome), res.Reason})
	}

	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d total", r.Total()), "",
		fmt.Sprintf("%d renamed / %d skipped / %d failed", r.Renamed, r.Skipped, r.Failed), "",
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
