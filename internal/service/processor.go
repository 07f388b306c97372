package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"codereview/internal/analysis"
	"codereview/internal/model"
	"codereview/internal/repository"
	"codereview/internal/storage"
)

// Processor drives one session from pending to a terminal state.
type Processor struct {
	store    repository.Store
	objects  storage.Storage
	provider analysis.Provider

	stageDelay time.Duration
	timeout    time.Duration
	log        logrus.FieldLogger
	metrics    *ProcessorMetrics
	tracer     trace.Tracer
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithStageDelay sets the pause between a file's processing and analyzing
// steps. Zero disables it.
func WithStageDelay(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.stageDelay = d }
}

// WithProviderTimeout bounds the single provider call. Zero means no bound.
func WithProviderTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.timeout = d }
}

func WithLogger(l logrus.FieldLogger) ProcessorOption {
	return func(p *Processor) { p.log = l }
}

func WithMetrics(m *ProcessorMetrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

func WithTracer(t trace.Tracer) ProcessorOption {
	return func(p *Processor) { p.tracer = t }
}

// NewProcessor wires a Processor to its store, object storage and provider.
func NewProcessor(store repository.Store, objects storage.Storage, provider analysis.Provider, opts ...ProcessorOption) *Processor {
	p := &Processor{
		store:    store,
		objects:  objects,
		provider: provider,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer("codereview/internal/service")
	}
	return p
}

// ProcessSession runs the whole pipeline for sessionID. Any failure, panics
// included, marks the session error and is returned; nothing is retried.
func (p *Processor) ProcessSession(ctx context.Context, sessionID string) (err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "Processor.ProcessSession",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("analysis.provider", p.provider.Name()),
		))
	defer func() {
		outcome := OutcomeCompleted
		if err != nil {
			outcome = OutcomeFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		p.metrics.observe(outcome, time.Since(start))
		span.End()
	}()

	log := p.log.WithFields(logrus.Fields{"component": "processor", "session_id": sessionID})
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
			log.WithFields(logrus.Fields{"event": "processor_panic", "stack": string(debug.Stack())}).Error(err.Error())
			p.fail(ctx, sessionID, log)
		}
	}()

	if err = p.run(ctx, sessionID, log); err != nil {
		p.fail(ctx, sessionID, log)
		return err
	}
	log.WithField("event", "session_completed").Info("analysis completed")
	return nil
}

func (p *Processor) run(ctx context.Context, sessionID string, log logrus.FieldLogger) error {
	files, err := p.store.ListFilesBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	if len(files) == 0 {
		return ErrNoFiles
	}

	if _, err := p.store.UpdateSession(ctx, sessionID, repository.SessionStatusUpdate(model.SessionProcessing)); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	contents := make([]string, len(files))
	names := make([]string, len(files))
	for i, f := range files {
		if _, err := p.store.UpdateFile(ctx, f.ID, repository.FileStatusUpdate(model.FileProcessing)); err != nil {
			return fmt.Errorf("file %s: %w", f.FileName, err)
		}
		data, _, err := storage.ReadAll(ctx, p.objects, f.ObjectKey)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.ObjectKey, err)
		}
		contents[i] = string(data)
		names[i] = f.FileName

		if err := sleepCtx(ctx, p.stageDelay); err != nil {
			return err
		}
		if _, err := p.store.UpdateFile(ctx, f.ID, repository.FileStatusUpdate(model.FileAnalyzing)); err != nil {
			return fmt.Errorf("file %s: %w", f.FileName, err)
		}
	}

	log.WithFields(logrus.Fields{"event": "provider_call", "files": len(files)}).Debug("calling analysis provider")
	result, err := p.analyze(ctx, contents, names)
	if err != nil {
		return err
	}

	for i, part := range partition(files, result) {
		u := repository.FileStatusUpdate(model.FileCompleted)
		u.AnalysisResult = part
		if _, err := p.store.UpdateFile(ctx, files[i].ID, u); err != nil {
			return fmt.Errorf("file %s: %w", files[i].FileName, err)
		}
	}

	n := len(files)
	done := model.SessionCompleted
	if _, err := p.store.UpdateSession(ctx, sessionID, repository.SessionUpdate{Status: &done, ProcessedFiles: &n}); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

func (p *Processor) analyze(ctx context.Context, contents, names []string) (*model.AnalysisResult, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	res, err := p.provider.Analyze(ctx, contents, names)
	if err != nil {
		return nil, fmt.Errorf("analysis provider %s: %w", p.provider.Name(), err)
	}
	if res == nil {
		return nil, fmt.Errorf("analysis provider %s: empty result", p.provider.Name())
	}
	return res, nil
}

func (p *Processor) fail(ctx context.Context, sessionID string, log logrus.FieldLogger) {
	_, err := p.store.UpdateSession(context.WithoutCancel(ctx), sessionID, repository.SessionStatusUpdate(model.SessionError))
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		log.WithField("event", "session_missing").Warn("cannot mark unknown session as error")
	default:
		log.WithError(err).WithField("event", "mark_error_failed").Error("failed to mark session as error")
	}
}

// partition splits the aggregate result into one result per file. Issues go
// to the first file with a matching name, or to files[0] when nothing matches.
// Files left without passed checks receive an even share of the aggregate.
func partition(files []model.FileAnalysis, agg *model.AnalysisResult) []*model.AnalysisResult {
	out := make([]*model.AnalysisResult, len(files))
	byName := make(map[string]int, len(files))
	for i, f := range files {
		out[i] = model.NewAnalysisResult()
		if _, ok := byName[f.FileName]; !ok {
			byName[f.FileName] = i
		}
	}

	for _, issue := range agg.Issues {
		i, ok := byName[issue.File]
		if !ok {
			i = 0
		}
		out[i].Add(issue)
	}

	share := agg.PassedChecks / len(files)
	for _, r := range out {
		if r.PassedChecks == 0 {
			r.PassedChecks = share
		}
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
