package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"ahclip/internal/audio"
	"ahclip/internal/catalog"
	"ahclip/internal/logging"
	"ahclip/internal/normalize"
	"ahclip/internal/resolver"
	"ahclip/internal/services"
)

// Recorder persists a finished run.
type Recorder interface {
	Record(ctx context.Context, summary Summary) error
}

// Runner executes extraction batches.
type Runner struct {
	normalizer *normalize.Normalizer
	extractor  *audio.Extractor
	logger     *slog.Logger
	progress   io.Writer
	recorder   Recorder
}

// RunnerOption configures optional Runner behavior.
type RunnerOption func(*Runner)

// WithProgress sets the writer that receives one "<source> -> <output>" line
// per extracted row.
func WithProgress(w io.Writer) RunnerOption {
	return func(r *Runner) {
		if w != nil {
			r.progress = w
		}
	}
}

// WithRecorder stores each finished Summary.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner wires the stage implementations into a Runner.
func NewRunner(n *normalize.Normalizer, e *audio.Extractor, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		normalizer: n,
		extractor:  e,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		progress:   io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.extractor == nil {
		r.extractor = audio.NewExtractor(logger)
	}
	if r.normalizer == nil {
		r.normalizer = normalize.New(normalize.Options{}, logger)
	}
	return r
}

// Run processes every manifest row. The returned error is non-nil only when
// the run could not start (bad options, output directory, lock, or manifest);
// row failures are reported in the Summary.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	opts = opts.withDefaults()
	summary := Summary{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Options: opts,
	}
	if err := opts.Validate(); err != nil {
		return summary, services.Wrap(services.ErrValidation, "pipeline", "options", "", err)
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "create output directory", opts.OutputDir, err)
	}
	lock, err := acquireLock(opts.OutputDir)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := releaseLock(lock); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	rows, err := catalog.Load(opts.ManifestPath, opts.Manifest)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return summary, services.Wrap(marker, "catalog", "load manifest", opts.ManifestPath, err)
	}
	logger.Info("manifest loaded",
		logging.String("manifest", opts.ManifestPath),
		logging.Int("rows", len(rows)),
		logging.Int("workers", opts.Workers),
	)

	summary.Results = r.processRows(ctx, rows, opts)
	summary.Finished = time.Now()

	counts := summary.Counts()
	logger.Info("run complete",
		logging.Int("succeeded", counts.Succeeded),
		logging.Int("skipped", counts.Skipped),
		logging.Int("failed", counts.Failed),
		logging.Duration("elapsed", summary.Elapsed()),
	)

	if r.recorder != nil {
		// The run itself succeeded; a ledger failure is reported but not fatal.
		if err := r.recorder.Record(context.WithoutCancel(ctx), summary); err != nil {
			logging.WarnWithContext(logger, "failed to record run history", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from history"),
			)
		}
	}
	return summary, nil
}

func (r *Runner) processRows(ctx context.Context, rows []catalog.Row, opts Options) []Result {
	results := make([]Result, len(rows))
	sem := make(chan struct{}, opts.Workers)
	var wg sync.WaitGroup

	for i, row := range rows {
		select {
		case <-ctx.Done():
			results[i] = failed(row, ctx.Err())
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, row catalog.Row) {
			defer func() { <-sem; wg.Done() }()
			results[i] = r.processRow(ctx, row, opts)
		}(i, row)
	}

	wg.Wait()
	return results
}

func (r *Runner) processRow(ctx context.Context, row catalog.Row, opts Options) Result {
	ctx = services.WithRow(ctx, row.Line)
	ctx = services.WithSubject(ctx, row.Subject.String())
	logger := logging.WithContext(ctx, r.logger)

	if err := ctx.Err(); err != nil {
		return failed(row, err)
	}

	skip, err := checkRow(row, opts)
	if skip != "" {
		logging.WarnWithContext(logger, skip, "row_skipped")
		return Result{Row: row, Status: StatusSkipped, Reason: skip}
	}
	if err != nil {
		return r.fail(logger, row, err)
	}

	src, err := resolveSource(row, opts)
	if err != nil {
		return r.fail(logger, row, err)
	}

	result := Result{Row: row, Source: src.Path}
	result.Normalized = normalize.CachePath(opts.InputDir, row.Subject)
	result.Output = OutputPath(opts.OutputDir, row.Subject, opts.Duration)

	stageCtx := services.WithStage(ctx, "normalize")
	result.Transcoded, err = r.normalizer.Ensure(stageCtx, src, result.Normalized)
	if err != nil {
		return r.failResult(logger, result, services.Wrap(services.ErrExternalTool, "normalize", "ffmpeg", "", err))
	}

	stageCtx = services.WithStage(ctx, "extract")
	segment, err := r.extractor.Extract(stageCtx, result.Normalized, result.Output, row.Offset, opts.Duration)
	if err != nil {
		return r.failResult(logger, result, classifyExtractError(err))
	}

	result.Status = StatusSuccess
	result.Samples = segment.Samples
	result.SampleRate = segment.SampleRate
	fmt.Fprintf(r.progress, "%s -> %s\n", src.Path, result.Output)
	logger.Info("segment extracted",
		logging.String("source", src.Path),
		logging.String("output", result.Output),
		logging.Int("samples", segment.Samples),
		logging.Bool("transcoded", result.Transcoded),
	)
	return result
}

// checkRow returns a skip reason for rows without an offset, or a validation
// error for rows that cannot be processed.
func checkRow(row catalog.Row, opts Options) (string, error) {
	switch {
	case !row.HasOffset:
		return fmt.Sprintf("%q value is missing for %s %s", opts.Manifest.OffsetColumn, opts.Manifest.SubjectColumn, subjectLabel(row.Subject)), nil
	case row.Subject.IsZero():
		return "", services.Wrap(services.ErrValidation, "catalog", "subject",
			fmt.Sprintf("%s is blank", opts.Manifest.SubjectColumn), nil)
	case row.OffsetErr != nil:
		return "", services.Wrap(services.ErrValidation, "catalog", "offset", "", row.OffsetErr)
	case row.Offset < 0:
		return "", services.Wrap(services.ErrValidation, "catalog", "offset", "",
			fmt.Errorf("%w: %v", audio.ErrInvalidOffset, row.Offset))
	}
	return "", nil
}

func subjectLabel(s catalog.Subject) string {
	if s.IsZero() {
		return "(blank)"
	}
	return s.String()
}

func resolveSource(row catalog.Row, opts Options) (resolver.Source, error) {
	src, err := resolver.Resolve(row.Subject, opts.InputDir, opts.SourceExts)
	if err != nil {
		marker := services.ErrConfiguration
		if errors.Is(err, resolver.ErrNotFound) {
			marker = services.ErrNotFound
		}
		return resolver.Source{}, services.Wrap(marker, "resolve", "source", "", err)
	}
	return src, nil
}

func classifyExtractError(err error) error {
	switch {
	case errors.Is(err, audio.ErrInvalidOffset):
		return services.Wrap(services.ErrValidation, "extract", "offset", "", err)
	case errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrNotFound, "extract", "load normalized audio", "", err)
	case errors.Is(err, audio.ErrInvalidWAV):
		return services.Wrap(services.ErrExternalTool, "extract", "decode normalized audio", "", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return services.Wrap(services.ErrTransient, "extract", "write segment", "", err)
	}
}

func (r *Runner) fail(logger *slog.Logger, row catalog.Row, err error) Result {
	return r.failResult(logger, Result{Row: row}, err)
}

func (r *Runner) failResult(logger *slog.Logger, result Result, err error) Result {
	result.Status = StatusFailed
	result.Err = err
	logging.ErrorWithContext(logger, "row failed", "row_failed",
		logging.String("source", result.Source),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hintFor(err)),
	)
	return result
}

func failed(row catalog.Row, err error) Result {
	return Result{Row: row, Status: StatusFailed, Err: err}
}

func hintFor(err error) string {
	switch services.Kind(err) {
	case "not_found":
		return "check the input directory and Study NNN naming"
	case "validation":
		return "fix the manifest value"
	case "external_tool":
		return "run 'ahclip check' and inspect the ffmpeg output"
	default:
		return "check logs for details"
	}
}
