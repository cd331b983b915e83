// Package resolver maps manifest subjects to recordings on disk.
//
// Recordings follow the "Study NNN" convention. The 3-digit zero-padded name
// is tried before the 4-digit one, and each width is tried across the
// configured source extensions in order. The first regular file that exists
// wins.
package resolver
