package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeManifest()
	c.normalizeAudio()
	c.normalizeTranscoder()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeManifest() {
	c.Manifest.SubjectColumn = strings.TrimSpace(c.Manifest.SubjectColumn)
	if c.Manifest.SubjectColumn == "" {
		c.Manifest.SubjectColumn = defaultSubjectColumn
	}
	c.Manifest.OffsetColumn = strings.TrimSpace(c.Manifest.OffsetColumn)
	if c.Manifest.OffsetColumn == "" {
		c.Manifest.OffsetColumn = defaultOffsetColumn
	}
	c.Manifest.Sheet = strings.TrimSpace(c.Manifest.Sheet)
}

func (c *Config) normalizeAudio() {
	c.Audio.SourceExtensions = NormalizeExtensions(c.Audio.SourceExtensions)
	if len(c.Audio.SourceExtensions) == 0 {
		c.Audio.SourceExtensions = []string{defaultSourceExtension}
	}
}

func (c *Config) normalizeTranscoder() {
	c.Transcoder.FFmpegBinary = strings.TrimSpace(c.Transcoder.FFmpegBinary)
	if c.Transcoder.FFmpegBinary == "" {
		if value, ok := os.LookupEnv("AHCLIP_FFMPEG"); ok && strings.TrimSpace(value) != "" {
			c.Transcoder.FFmpegBinary = strings.TrimSpace(value)
		} else {
			c.Transcoder.FFmpegBinary = defaultFFmpegBinary
		}
	}
	c.Transcoder.FFprobeBinary = strings.TrimSpace(c.Transcoder.FFprobeBinary)
	if c.Transcoder.FFprobeBinary == "" {
		c.Transcoder.FFprobeBinary = defaultFFprobeBinary
	}
	c.Transcoder.LogLevel = strings.ToLower(strings.TrimSpace(c.Transcoder.LogLevel))
	if c.Transcoder.LogLevel == "" {
		c.Transcoder.LogLevel = defaultTranscoderLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.LogDir, err = expandPath(strings.TrimSpace(c.Logging.LogDir)); err != nil {
		return fmt.Errorf("logging.log_dir: %w", err)
	}
	return nil
}

// NormalizeExtensions lower-cases extensions, adds a missing leading dot, and
// drops blanks and duplicates while keeping the original order.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
