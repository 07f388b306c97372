package analysis

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"codereview/internal/model"
)

// Fixture is a canned review. Issues are attached to the file at FileIndex;
// issues pointing past the uploaded files are dropped. Totals left unset are
// counted from the issues.
type Fixture struct {
	PassedChecks *int           `yaml:"passedChecks"`
	Warnings     *int           `yaml:"warnings"`
	Errors       *int           `yaml:"errors"`
	Issues       []FixtureIssue `yaml:"issues"`
}

// FixtureIssue is an issue template addressed by file position.
type FixtureIssue struct {
	model.Issue `yaml:",inline"`
	FileIndex   int `yaml:"fileIndex"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &fx, nil
}

// Demo is a deterministic provider that never leaves the process.
type Demo struct {
	fixture *Fixture
}

// NewDemo returns a Demo provider. A nil fixture selects the built-in review.
func NewDemo(fx *Fixture) *Demo {
	if fx == nil {
		fx = defaultFixture()
	}
	return &Demo{fixture: fx}
}

func (d *Demo) Name() string { return "demo" }

func (d *Demo) Analyze(ctx context.Context, contents []string, names []string) (*model.AnalysisResult, error) {
	if err := checkInput(contents, names); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := model.NewAnalysisResult()
	for _, tmpl := range d.fixture.Issues {
		if tmpl.FileIndex < 0 || tmpl.FileIndex >= len(names) {
			continue
		}
		issue := tmpl.Issue
		issue.File = names[tmpl.FileIndex]
		res.Add(issue)
	}
	if d.fixture.PassedChecks != nil {
		res.PassedChecks = *d.fixture.PassedChecks
	}
	if d.fixture.Warnings != nil {
		res.Warnings = *d.fixture.Warnings
	}
	if d.fixture.Errors != nil {
		res.Errors = *d.fixture.Errors
	}
	return res, nil
}

func ptr[T any](v T) *T { return &v }

// defaultFixture reproduces the review the demo UI was designed around.
func defaultFixture() *Fixture {
	return &Fixture{
		PassedChecks: ptr(8),
		Warnings:     ptr(2),
		Issues: []FixtureIssue{
			{Issue: model.Issue{
				Type:        model.IssueWarning,
				Severity:    model.SeverityMedium,
				Title:       "Missing error handling",
				Description: "Function does not handle potential errors from async operations",
				Line:        ptr(15),
				Code:        ptr("const result = await apiCall();"),
				Suggestion:  ptr("try { const result = await apiCall(); } catch (error) { console.error(error); }"),
			}},
			{Issue: model.Issue{
				Type:        model.IssueSuggestion,
				Severity:    model.SeverityLow,
				Title:       "Consider using const instead of let",
				Description: "Variable is never reassigned, consider using const for better immutability",
				Line:        ptr(8),
				Code:        ptr("let userName = 'default';"),
				Suggestion:  ptr("const userName = 'default';"),
			}},
			{Issue: model.Issue{
				Type:        model.IssueSuccess,
				Severity:    model.SeverityLow,
				Title:       "Good use of TypeScript interfaces",
				Description: "Proper type definitions improve code maintainability",
			}},
			{FileIndex: 1, Issue: model.Issue{
				Type:        model.IssueError,
				Severity:    model.SeverityHigh,
				Title:       "Unused import statement",
				Description: "Import is declared but never used in the module",
				Line:        ptr(3),
				Code:        ptr("import { unusedFunction } from './utils';"),
				Suggestion:  ptr("Remove the unused import or use the function"),
			}},
		},
	}
}
