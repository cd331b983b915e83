package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateManifest(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateManifest() error {
	if strings.TrimSpace(c.Manifest.SubjectColumn) == "" {
		return errors.New("manifest.subject_column must be set")
	}
	if strings.TrimSpace(c.Manifest.OffsetColumn) == "" {
		return errors.New("manifest.offset_column must be set")
	}
	if strings.EqualFold(c.Manifest.SubjectColumn, c.Manifest.OffsetColumn) {
		return errors.New("manifest.subject_column and manifest.offset_column must differ")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels)
	}
	if len(c.Audio.SourceExtensions) == 0 {
		return errors.New("audio.source_extensions must list at least one extension")
	}
	for _, ext := range c.Audio.SourceExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("audio.source_extensions: invalid extension %q", ext)
		}
		if ext == ".wav" {
			return errors.New("audio.source_extensions must not include .wav (reserved for the normalized cache)")
		}
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	if c.Transcoder.TimeoutSeconds < 0 {
		return errors.New("transcoder.timeout_seconds must be zero or positive")
	}
	if c.Transcoder.MaxRetries < 0 {
		return errors.New("transcoder.max_retries must be zero or positive")
	}
	switch c.Transcoder.LogLevel {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
	default:
		return fmt.Errorf("transcoder.log_level: unsupported value %q", c.Transcoder.LogLevel)
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.DurationSeconds <= 0 {
		return fmt.Errorf("extraction.duration_seconds must be positive, got %v", c.Extraction.DurationSeconds)
	}
	if c.Extraction.Workers < 1 {
		return fmt.Errorf("extraction.workers must be at least 1, got %d", c.Extraction.Workers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
