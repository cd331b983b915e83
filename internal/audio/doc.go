// Package audio decodes normalized WAV files, computes sample windows, and
// writes extracted segments.
//
// Clips are always mono. Multichannel input is downmixed by averaging each
// frame so the extractor sees the same signal regardless of how the cache
// file was produced.
package audio
