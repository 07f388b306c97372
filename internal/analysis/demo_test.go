package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codereview/internal/config"
	"codereview/internal/model"
)

func TestDemo_SingleFile(t *testing.T) {
	res, err := NewDemo(nil).Analyze(context.Background(), []string{"let a = 1"}, []string{"a.ts"})
	require.NoError(t, err)

	assert.Equal(t, 8, res.PassedChecks)
	assert.Equal(t, 2, res.Warnings)
	assert.Equal(t, 0, res.Errors)
	require.Len(t, res.Issues, 3)
	for _, is := range res.Issues {
		assert.Equal(t, "a.ts", is.File)
	}
	assert.Equal(t, "Missing error handling", res.Issues[0].Title)
	assert.Equal(t, 15, *res.Issues[0].Line)
	assert.Equal(t, model.IssueSuccess, res.Issues[2].Type)
}

func TestDemo_SecondFileGetsError(t *testing.T) {
	res, err := NewDemo(nil).Analyze(context.Background(), []string{"", ""}, []string{"a.ts", "b.ts"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Errors)
	require.Len(t, res.Issues, 4)
	last := res.Issues[3]
	assert.Equal(t, "b.ts", last.File)
	assert.Equal(t, model.IssueError, last.Type)
	assert.Equal(t, "Unused import statement", last.Title)
}

func TestDemo_Errors(t *testing.T) {
	d := NewDemo(nil)

	_, err := d.Analyze(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = d.Analyze(context.Background(), []string{"x"}, []string{"a.go", "b.go"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Analyze(ctx, []string{"x"}, []string{"a.go"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	data := `
issues:
  - type: error
    severity: critical
    title: SQL injection
    description: query built from user input
    line: 42
    fileIndex: 1
  - type: success
    severity: low
    title: Tests present
    description: ok
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	fx, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fx.Issues, 2)
	assert.Equal(t, 1, fx.Issues[0].FileIndex)

	res, err := NewDemo(fx).Analyze(context.Background(), []string{"", ""}, []string{"a.py", "b.py"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 1, res.PassedChecks)
	assert.Equal(t, 0, res.Warnings)
	assert.Equal(t, "b.py", res.Issues[0].File)
	assert.Equal(t, 42, *res.Issues[0].Line)
	assert.Equal(t, "a.py", res.Issues[1].File)

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	p, err := New(config.AnalysisConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name())

	_, err = New(config.AnalysisConfig{Provider: "openai"})
	assert.Error(t, err)

	p, err = New(config.AnalysisConfig{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = New(config.AnalysisConfig{Provider: "bedrock"})
	assert.EqualError(t, err, "unknown analysis provider: bedrock")
}
