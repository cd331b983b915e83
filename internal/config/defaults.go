package config

const (
	defaultConfigPath         = "~/.config/ahclip/config.toml"
	projectConfigName         = "ahclip.toml"
	defaultSubjectColumn      = "Study Number"
	defaultOffsetColumn       = "Start ah"
	defaultSampleRate         = 44100
	defaultChannels           = 1
	defaultSourceExtension    = ".m4a"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultTranscoderLogLevel = "warning"
	defaultDurationSeconds    = 3.0
	defaultWorkers            = 1
	defaultHistoryPath        = "~/.local/share/ahclip/history.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Manifest: Manifest{
			SubjectColumn: defaultSubjectColumn,
			OffsetColumn:  defaultOffsetColumn,
		},
		Audio: Audio{
			SampleRate:       defaultSampleRate,
			Channels:         defaultChannels,
			SourceExtensions: []string{defaultSourceExtension},
		},
		Transcoder: Transcoder{
			FFprobeBinary: defaultFFprobeBinary,
			LogLevel:      defaultTranscoderLogLevel,
		},
		Extraction: Extraction{
			DurationSeconds: defaultDurationSeconds,
			Workers:         defaultWorkers,
		},
		History: History{
			Path: defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
