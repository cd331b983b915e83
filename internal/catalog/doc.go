// Package catalog reads the annotation manifest into ordered rows.
//
// A manifest is a CSV, TSV, or XLSX table with at least a subject column
// ("Study Number") and an offset column ("Start ah"). Load returns one Row
// per non-empty data line in manifest order. Blank offsets are preserved as
// rows without an offset so the caller can report and skip them; a missing
// column fails the whole load with ErrMissingColumn.
package catalog
