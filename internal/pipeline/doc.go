// Package pipeline runs the extraction batch: load the manifest, then for
// every row apply the skip policy, resolve the source, ensure the normalized
// cache, and extract the segment.
//
// Each row's outcome is captured in a Result so one failure never aborts the
// batch. Results are stored by manifest position, which keeps the Summary in
// manifest order regardless of how many workers ran.
package pipeline
