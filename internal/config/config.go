package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig []byte

// ErrSampleExists is returned by WriteSample when the target is already present.
var ErrSampleExists = errors.New("config file already exists")

// Manifest names the spreadsheet columns read for each row.
type Manifest struct {
	SubjectColumn string `toml:"subject_column"`
	OffsetColumn  string `toml:"offset_column"`
	Sheet         string `toml:"sheet"`
}

// Audio is the normalized cache format and the accepted source extensions.
type Audio struct {
	SampleRate       int      `toml:"sample_rate"`
	Channels         int      `toml:"channels"`
	SourceExtensions []string `toml:"source_extensions"`
}

// Transcoder configures the ffmpeg and ffprobe invocations.
type Transcoder struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	LogLevel       string `toml:"log_level"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

type Extraction struct {
	DurationSeconds float64 `toml:"duration_seconds"`
	Workers         int     `toml:"workers"`
}

// History controls the SQLite run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	LogDir string `toml:"log_dir"`
}

// Config is the full ahclip configuration, one field per TOML table.
type Config struct {
	Manifest   Manifest   `toml:"manifest"`
	Audio      Audio      `toml:"audio"`
	Transcoder Transcoder `toml:"transcoder"`
	Extraction Extraction `toml:"extraction"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// Load reads the config at path, or the first existing default candidate
// when path is empty, and returns it normalized and validated together with
// the resolved location and whether a file was found there. Defaults apply
// when no file exists.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// locate resolves an explicit path as-is. Without one it tries the user
// config then ./ahclip.toml, reporting the user path when neither exists.
func locate(path string) (string, bool, error) {
	var candidates []string
	if strings.TrimSpace(path) != "" {
		candidates = []string{path}
	} else {
		candidates = []string{defaultConfigPath, projectConfigName}
	}

	var first string
	for i, candidate := range candidates {
		expanded, err := ExpandPath(candidate)
		if err != nil {
			return "", false, err
		}
		if i == 0 {
			first = expanded
		}
		info, err := os.Stat(expanded)
		switch {
		case err == nil && !info.IsDir():
			return expanded, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return first, false, nil
}

// ExpandPath resolves a leading "~" against the home directory and returns
// a clean absolute path. Empty input stays empty.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// EnsureDirectories creates the log directory and, when history is on, the
// ledger's parent directory.
func (c *Config) EnsureDirectories() error {
	dirs := map[string]string{}
	if dir := strings.TrimSpace(c.Logging.LogDir); dir != "" {
		dirs["log"] = dir
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		dirs["history"] = filepath.Dir(c.History.Path)
	}
	for label, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s directory %q: %w", label, dir, err)
		}
	}
	return nil
}

// WriteSample writes the commented sample config and returns where it went.
// An empty path selects ~/.config/ahclip/config.toml. Without overwrite an existing file
// is left alone and ErrSampleExists is returned.
func WriteSample(path string, overwrite bool) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath
	}
	target, err := ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if !overwrite {
		if _, err := os.Stat(target); err == nil {
			return target, fmt.Errorf("%w at %s", ErrSampleExists, target)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("check config path: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, sampleConfig, 0o644); err != nil {
		return "", fmt.Errorf("write sample config: %w", err)
	}
	return target, nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// FFmpegBinary returns the ffmpeg command to run.
func (c *Config) FFmpegBinary() string {
	if c == nil {
		return defaultFFmpegBinary
	}
	return firstSet(c.Transcoder.FFmpegBinary, defaultFFmpegBinary)
}

// FFprobeBinary returns the ffprobe command to run.
func (c *Config) FFprobeBinary() string {
	if c == nil {
		return defaultFFprobeBinary
	}
	return firstSet(c.Transcoder.FFprobeBinary, defaultFFprobeBinary)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
