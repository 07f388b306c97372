// Package analysis turns uploaded source files into a structured code review.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"codereview/internal/config"
	"codereview/internal/model"
)

// ErrNoFiles is returned when a provider is asked to review nothing.
var ErrNoFiles = errors.New("no files to analyze")

// Provider reviews a batch of files in one call. contents[i] belongs to names[i].
// The returned issues carry the file name they refer to.
type Provider interface {
	Analyze(ctx context.Context, contents []string, names []string) (*model.AnalysisResult, error)
	Name() string
}

// New creates a provider by name.
func New(cfg config.AnalysisConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "mock", "demo":
		if cfg.FixturePath == "" {
			return NewDemo(nil), nil
		}
		fx, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return NewDemo(fx), nil
	case "openai":
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown analysis provider: %s", cfg.Provider)
	}
}

func checkInput(contents, names []string) error {
	if len(names) == 0 {
		return ErrNoFiles
	}
	if len(contents) != len(names) {
		return fmt.Errorf("got %d contents for %d files", len(contents), len(names))
	}
	return nil
}
