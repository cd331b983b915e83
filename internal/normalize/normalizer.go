package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ahclip/internal/catalog"
	"ahclip/internal/config"
	"ahclip/internal/fileutil"
	"ahclip/internal/logging"
	"ahclip/internal/resolver"
)

// ErrNormalizationFailed reports that ffmpeg did not produce the cache file.
var ErrNormalizationFailed = errors.New("normalization failed")

const (
	cacheExt      = ".wav"
	partialSuffix = ".partial"
	cacheWidth    = 4
)

type commandRunner func(ctx context.Context, name string, args ...string) error

// Options configures the ffmpeg invocation.
type Options struct {
	FFmpegBinary string
	LogLevel     string
	SampleRate   int
	Channels     int
	// Timeout bounds a single ffmpeg attempt; zero means no limit.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after a failure.
	MaxRetries int
}

// OptionsFromConfig maps configuration onto normalizer options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FFmpegBinary: cfg.FFmpegBinary(),
		LogLevel:     cfg.Transcoder.LogLevel,
		SampleRate:   cfg.Audio.SampleRate,
		Channels:     cfg.Audio.Channels,
		Timeout:      time.Duration(cfg.Transcoder.TimeoutSeconds) * time.Second,
		MaxRetries:   cfg.Transcoder.MaxRetries,
	}
}

// Normalizer transcodes source recordings into the cache format.
type Normalizer struct {
	opts       Options
	logger     *slog.Logger
	run        commandRunner
	newBackOff func() backoff.BackOff

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a Normalizer. Zero-valued options fall back to mono 44100 Hz
// output through "ffmpeg" at the "warning" log level.
func New(opts Options, logger *slog.Logger) *Normalizer {
	if strings.TrimSpace(opts.FFmpegBinary) == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "warning"
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}
	return &Normalizer{
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "normalizer"),
		run:        defaultCommandRunner,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		locks:      make(map[string]*sync.Mutex),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (n *Normalizer) WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) {
	if r == nil {
		r = defaultCommandRunner
	}
	n.run = r
}

// WithBackOff replaces the retry schedule.
func (n *Normalizer) WithBackOff(f func() backoff.BackOff) {
	if f != nil {
		n.newBackOff = f
	}
}

// CachePath returns the normalized cache location for subject:
// {inputDir}/Study NNNN.wav.
func CachePath(inputDir string, subject catalog.Subject) string {
	return filepath.Join(inputDir, resolver.Prefix+subject.Padded(cacheWidth)+cacheExt)
}

// Args returns the ffmpeg arguments that transcode src into dest.
func (n *Normalizer) Args(src, dest string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-loglevel", n.opts.LogLevel,
		"-i", src,
		"-ac", strconv.Itoa(n.opts.Channels),
		"-ar", strconv.Itoa(n.opts.SampleRate),
		dest,
	}
}

// Ensure makes sure dest exists, transcoding src when it does not. The
// returned bool reports whether ffmpeg ran.
func (n *Normalizer) Ensure(ctx context.Context, src resolver.Source, dest string) (bool, error) {
	unlock := n.lock(dest)
	defer unlock()

	exists, err := fileutil.RegularFileExists(dest)
	if err != nil {
		return false, fmt.Errorf("stat cache %s: %w", dest, err)
	}
	logger := logging.WithContext(ctx, n.logger)
	if exists {
		logger.Debug("normalized cache present", logging.String("path", dest))
		return false, nil
	}

	partial := strings.TrimSuffix(dest, filepath.Ext(dest)) + partialSuffix + cacheExt
	defer os.Remove(partial)

	started := time.Now()
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attemptCtx := ctx
		if n.opts.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, n.opts.Timeout)
			defer cancel()
		}
		if err := n.run(attemptCtx, n.opts.FFmpegBinary, n.Args(src.Path, partial)...); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		ok, err := fileutil.RegularFileExists(partial)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("ffmpeg exited cleanly but wrote no output")
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("ffmpeg attempt failed; retrying",
			logging.String("source", src.Path),
			logging.Duration("retry_in", wait),
			logging.Error(err),
			logging.String(logging.FieldEventType, "transcode_retry"),
			logging.String(logging.FieldImpact, "row delayed"),
		)
	}

	var policy backoff.BackOff = backoff.WithMaxRetries(n.newBackOff(), uint64(max(n.opts.MaxRetries, 0)))
	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("%w: %s: %w", ErrNormalizationFailed, filepath.Base(src.Path), err)
	}

	if err := os.Rename(partial, dest); err != nil {
		return false, fmt.Errorf("%w: move %s into place: %w", ErrNormalizationFailed, filepath.Base(dest), err)
	}
	logger.Info("normalized source",
		logging.String("source", src.Path),
		logging.String("cache", dest),
		logging.Duration("elapsed", time.Since(started)),
	)
	return true, nil
}

func (n *Normalizer) lock(key string) func() {
	n.mu.Lock()
	m, ok := n.locks[key]
	if !ok {
		m = &sync.Mutex{}
		n.locks[key] = m
	}
	n.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// defaultCommandRunner executes ffmpeg and folds its output into the error.
func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
