// Package ffprobe wraps the ffprobe CLI and decodes its JSON output into typed
// structs.
//
// The plan command uses it to report the duration and sample format of each
// source recording so windows that run past the end can be flagged before a
// batch is started.
package ffprobe
