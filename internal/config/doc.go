// Package config reads ahclip's TOML configuration.
//
// Load merges a file over Default, trims and canonicalizes values (tilde
// paths, source extensions, the AHCLIP_FFMPEG fallback) and then validates
// the result. Flags applied afterwards by the CLI go through Validate again.
package config
