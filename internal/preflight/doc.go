// Package preflight provides readiness checks for the external binaries and
// filesystem paths an extraction run depends on.
//
// The "check" command prints every result. The root command runs the same
// checks before a batch and refuses to start when a required one fails, so a
// missing ffmpeg is reported once instead of once per row.
package preflight
