package output

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/earth-metabolome-initiative/sql-rules/pkg/lint"
)

// ReportViolation is one rule violation in a check report.
type ReportViolation struct {
	Rule       string `json:"rule"`
	Object     string `json:"object"`
	Message    string `json:"message"`
	Resolution string `json:"resolution,omitempty"`
}

// ReportSkip records a rule that could not be applied to the schema.
type ReportSkip struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Report is the result of checking one schema source. The same shape backs
// the check command's JSON mode and the HTTP API.
type Report struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	Passed      bool              `json:"passed"`
	Violations  []ReportViolation `json:"violations"`
	Skipped     []ReportSkip      `json:"skipped,omitempty"`
}

// NewReport creates an empty passing report for the given source.
func NewReport(source string) *Report {
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Passed:      true,
		Violations:  []ReportViolation{},
	}
}

// Add records one linter finding. Violations fail the report; unapplicable
// rules are listed as skipped and do not. Anything else counts as a
// violation carrying only the raw error message.
func (rep *Report) Add(err error) {
	var violation lint.Violation
	if errors.As(err, &violation) {
		d := violation.Diagnostic()
		rv := ReportViolation{
			Rule:    d.Rule(),
			Object:  d.Object(),
			Message: d.Message(),
		}
		if resolution, ok := d.Resolution(); ok {
			rv.Resolution = resolution
		}
		rep.Violations = append(rep.Violations, rv)
		rep.Passed = false
		return
	}

	var skipped *lint.UnapplicableRule
	if errors.As(err, &skipped) {
		rep.Skipped = append(rep.Skipped, ReportSkip{Rule: skipped.Rule, Message: skipped.Message})
		return
	}

	rep.Violations = append(rep.Violations, ReportViolation{Message: err.Error()})
	rep.Passed = false
}

// AddAll records a batch of linter findings.
func (rep *Report) AddAll(errs []error) {
	for _, err := range errs {
		rep.Add(err)
	}
}

// Catalogue is the JSON payload for rule catalogue listings, shared by the
// rules command and the HTTP API.
type Catalogue struct {
	Rules []lint.RuleInfo `json:"rules"`
	Total int             `json:"total"`
}

// NewCatalogue builds a catalogue payload from a rule list.
func NewCatalogue(ruleSet []lint.Rule) Catalogue {
	infos := make([]lint.RuleInfo, 0, len(ruleSet))
	for _, r := range ruleSet {
		infos = append(infos, lint.GetRuleInfo(r))
	}
	return Catalogue{Rules: infos, Total: len(infos)}
}
