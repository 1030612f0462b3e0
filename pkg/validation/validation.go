// Package validation collects findings from each pipeline stage into a
// single report. Errors stop the run; warnings and degraded markers travel
// with the result so callers can see which fallbacks fired.
package validation

import "fmt"

// Level indicates which stage produced the finding.
type Level string

const (
	LevelSchema   Level = "schema"   // configuration checks before the run
	LevelGeometry Level = "geometry" // input repair and normalization
	LevelSpatial  Level = "spatial"  // road, zoning, lot, and network stages
)

// Severity indicates how critical a finding is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Result is a single finding.
type Result struct {
	Level       Level    `json:"level"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Path        string   `json:"path,omitempty"`
	ActualValue any      `json:"actual_value,omitempty"`
	Expected    string   `json:"expected,omitempty"`
}

// Report is the accumulated output of all stages.
type Report struct {
	Valid    bool     `json:"valid"`
	Degraded bool     `json:"degraded"`
	Errors   []Result `json:"errors"`
	Warnings []Result `json:"warnings"`
	Info     []Result `json:"info"`
	Summary  string   `json:"summary"`
}

// NewReport creates an empty valid report.
func NewReport() *Report {
	return &Report{
		Valid:    true,
		Errors:   []Result{},
		Warnings: []Result{},
		Info:     []Result{},
	}
}

// AddError adds an error finding and marks the report invalid.
func (r *Report) AddError(result Result) {
	result.Severity = SeverityError
	r.Errors = append(r.Errors, result)
	r.Valid = false
	r.updateSummary()
}

// AddWarning adds a warning finding.
func (r *Report) AddWarning(result Result) {
	result.Severity = SeverityWarning
	r.Warnings = append(r.Warnings, result)
	r.updateSummary()
}

// AddInfo adds an informational finding.
func (r *Report) AddInfo(result Result) {
	result.Severity = SeverityInfo
	r.Info = append(r.Info, result)
	r.updateSummary()
}

// MarkDegraded records that a stage fell back to a degraded strategy.
// The run is still valid; the flag tells the caller the result is not the
// preferred one.
func (r *Report) MarkDegraded(level Level, reason string) {
	r.Degraded = true
	r.AddWarning(Result{Level: level, Message: reason})
}

// Merge combines another report into this one.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	if !other.Valid {
		r.Valid = false
	}
	if other.Degraded {
		r.Degraded = true
	}
	r.updateSummary()
}

func (r *Report) updateSummary() {
	r.Summary = fmt.Sprintf("%d errors, %d warnings, %d info",
		len(r.Errors), len(r.Warnings), len(r.Info))
}
