package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ahclip/internal/config"
)

// LogFileName is the file written under logging.log_dir.
const LogFileName = "ahclip.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// OutputPaths lists files to append to. "stdout" and "stderr" name the
	// process streams.
	OutputPaths []string
	// Development adds the caller to every record.
	Development bool
	// Writer, when set, receives output in addition to OutputPaths and
	// replaces the stderr default.
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))
	addSource := opts.Development || level.Level() <= slog.LevelDebug

	var build func(io.Writer, *slog.LevelVar, bool) slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		build = newPrettyHandler
	case "json":
		build = newJSONHandler
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	paths := opts.OutputPaths
	if opts.Writer == nil && len(paths) == 0 {
		paths = []string{"stderr"}
	}
	out, err := openWriters(paths, opts.Writer)
	if err != nil {
		return nil, err
	}
	return slog.New(build(out, level, addSource)), nil
}

// NewFromConfig creates the application logger. Console output goes to
// console (stderr when nil) so stdout stays free for command results, and a
// copy is appended to <log_dir>/ahclip.log when a log directory is set.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, error) {
	if console == nil {
		console = os.Stderr
	}
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Writer: console})
	}

	var paths []string
	if dir := strings.TrimSpace(cfg.Logging.LogDir); dir != "" {
		paths = append(paths, filepath.Join(dir, LogFileName))
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: paths,
		Writer:      console,
	})
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// parseLevel maps a config level name to slog, defaulting to info.
func parseLevel(name string) slog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lvl
	}
	return slog.LevelInfo
}

var streams = map[string]io.Writer{"stdout": os.Stdout, "stderr": os.Stderr}

// openWriters fans out to every distinct path plus extra. Files are opened
// for append and their directories created.
func openWriters(paths []string, extra io.Writer) (io.Writer, error) {
	var sinks []io.Writer
	opened := map[string]bool{}
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" || opened[path] {
			continue
		}
		opened[path] = true
		if stream, ok := streams[path]; ok {
			sinks = append(sinks, stream)
			continue
		}
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, file)
	}
	if extra != nil {
		sinks = append(sinks, extra)
	}
	if len(sinks) == 0 {
		return os.Stderr, nil
	}
	return io.MultiWriter(sinks...), nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// jsonKeys renames slog's top-level keys for the JSON format.
var jsonKeys = map[string]string{
	slog.TimeKey:    "ts",
	slog.LevelKey:   "level",
	slog.MessageKey: "msg",
	slog.SourceKey:  "source",
}

// newJSONHandler emits one object per record keyed ts, level, msg with UTC
// RFC3339 timestamps, lower-case levels and a file:line source.
func newJSONHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	rename := func(groups []string, a slog.Attr) slog.Attr {
		key, ok := jsonKeys[a.Key]
		if len(groups) > 0 || !ok {
			return a
		}
		switch v := a.Value.Any().(type) {
		case time.Time:
			a.Value = slog.StringValue(v.UTC().Format(time.RFC3339))
		case slog.Level:
			a.Value = slog.StringValue(strings.ToLower(v.String()))
		case *slog.Source:
			if v != nil {
				a.Value = slog.StringValue(filepath.Base(v.File) + ":" + strconv.Itoa(v.Line))
			}
		}
		a.Key = key
		return a
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: addSource, ReplaceAttr: rename})
}
