package analysis

import (
	"encoding/json"
	"regexp"
	"strings"

	"codereview/internal/model"
)

const systemPrompt = "You are an expert code reviewer. You always answer with a single JSON object and nothing else."

const reviewInstructions = `Analyze the following code files and provide a comprehensive review. Focus on:

1. Code structure and architecture
2. Missing error handling
3. Unused imports or variables
4. Performance optimizations
5. Security vulnerabilities
6. Best practices adherence

Please respond with a JSON object in this exact format:
{
  "passedChecks": number,
  "warnings": number,
  "errors": number,
  "issues": [
    {
      "type": "error|warning|success|suggestion",
      "severity": "low|medium|high|critical",
      "title": "Issue title",
      "description": "Detailed description",
      "file": "filename",
      "line": number (optional),
      "code": "problematic code snippet (optional)",
      "suggestion": "suggested fix (optional)"
    }
  ]
}

Code Files:
`

// BuildPrompt renders the review request for a batch of files.
func BuildPrompt(contents, names []string) string {
	var b strings.Builder
	b.WriteString(reviewInstructions)
	for i := range names {
		b.WriteString("--- File: ")
		b.WriteString(names[i])
		b.WriteString(" ---\n")
		if i < len(contents) {
			b.WriteString(contents[i])
		}
		b.WriteString("\n\n")
	}
	b.WriteString("Please provide a thorough analysis and return only the JSON response.")
	return b.String()
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseResult extracts the review from a model reply. Replies without a
// decodable JSON object become a single "system" error issue.
func ParseResult(text string) *model.AnalysisResult {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return fallbackResult("Analysis Parsing Error", "Failed to parse the analysis result from AI service")
	}
	var res model.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return fallbackResult("Analysis Error", "The AI analysis service encountered an error")
	}
	if res.Issues == nil {
		res.Issues = []model.Issue{}
	}
	return &res
}

func fallbackResult(title, description string) *model.AnalysisResult {
	return &model.AnalysisResult{
		PassedChecks: 0,
		Warnings:     1,
		Errors:       1,
		Issues: []model.Issue{{
			Type:        model.IssueError,
			Severity:    model.SeverityMedium,
			Title:       title,
			Description: description,
			File:        "system",
			Suggestion:  ptr("Please try the analysis again"),
		}},
	}
}
