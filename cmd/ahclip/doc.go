// Package main hosts the ahclip CLI entrypoint and command graph.
//
// The root command keeps the original three-argument interface
// (manifest, input directory, output directory) and runs a batch extraction.
// Subcommands cover the dry-run plan, dependency checks, the run ledger, and
// configuration scaffolding. Configuration and logger construction live in
// commandContext so each command only wires internal packages together.
package main
