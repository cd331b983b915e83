// Package history keeps an optional SQLite ledger of extraction runs and the
// outcome of every manifest row they processed.
package history
