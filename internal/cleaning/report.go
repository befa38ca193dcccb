package cleaning

import "fmt"

// NoIssuesEntry is the sentinel report entry appended when a full
// cleaning pass made no changes.
const NoIssuesEntry = "No issues found. Data is clean."

// StepOutcome records whether a pipeline step changed anything, making
// the control flow of the fixed-order pipeline visible to callers and
// tests instead of hiding it behind swallowed failures.
type StepOutcome struct {
	Step    string `json:"step"`
	Applied bool   `json:"applied"`
	Detail  string `json:"detail,omitempty"`
}

// Report is the append-only change log produced by a cleaning run.
// Entries are human-readable and ordered by the step that produced
// them.
type Report struct {
	entries  []string
	outcomes []StepOutcome
}

// Add appends a formatted change-log entry.
func (r *Report) Add(format string, args ...any) {
	r.entries = append(r.entries, fmt.Sprintf(format, args...))
}

// Entries returns the ordered change-log strings.
func (r *Report) Entries() []string {
	return r.entries
}

// Len returns the number of change-log entries.
func (r *Report) Len() int {
	return len(r.entries)
}

// Outcomes returns the per-step outcome values.
func (r *Report) Outcomes() []StepOutcome {
	return r.outcomes
}

// record notes a step outcome without adding a change-log entry.
func (r *Report) record(step string, applied bool, detail string) {
	r.outcomes = append(r.outcomes, StepOutcome{Step: step, Applied: applied, Detail: detail})
}
