package model

// IssueType classifies a finding. Only error, warning and success are counted.
type IssueType string

const (
	IssueError      IssueType = "error"
	IssueWarning    IssueType = "warning"
	IssueSuccess    IssueType = "success"
	IssueSuggestion IssueType = "suggestion"
)

// Severity of a finding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Issue is one reported finding tied to a file and optional line.
type Issue struct {
	Type        IssueType `json:"type" yaml:"type"`
	Severity    Severity  `json:"severity" yaml:"severity"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	File        string    `json:"file" yaml:"file"`
	Line        *int      `json:"line,omitempty" yaml:"line,omitempty"`
	Code        *string   `json:"code,omitempty" yaml:"code,omitempty"`
	Suggestion  *string   `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// AnalysisResult is the fixed-shape review outcome, either for a whole
// session or for the portion attributed to one file.
type AnalysisResult struct {
	PassedChecks int     `json:"passedChecks"`
	Warnings     int     `json:"warnings"`
	Errors       int     `json:"errors"`
	Issues       []Issue `json:"issues"`
}

// NewAnalysisResult returns an empty result with a non-nil issue list.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{Issues: []Issue{}}
}

// Add counts an issue by type and appends it.
func (r *AnalysisResult) Add(issue Issue) {
	switch issue.Type {
	case IssueError:
		r.Errors++
	case IssueWarning:
		r.Warnings++
	case IssueSuccess:
		r.PassedChecks++
	}
	r.Issues = append(r.Issues, issue)
}

// Merge adds other's counters and issues into r.
func (r *AnalysisResult) Merge(other *AnalysisResult) {
	if other == nil {
		return
	}
	r.PassedChecks += other.PassedChecks
	r.Warnings += other.Warnings
	r.Errors += other.Errors
	r.Issues = append(r.Issues, other.Issues...)
}
