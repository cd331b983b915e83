// Package normalize maintains the mono, fixed-rate WAV cache that sits next
// to each source recording.
//
// A cache file is produced by ffmpeg only when it is absent. Existing cache
// files are trusted as-is and never regenerated. ffmpeg writes to a partial
// file that is renamed into place after a successful exit, so an interrupted
// or failed transcode never leaves a cache entry behind.
package normalize
