// Package commands wires the qloft CLI: flag parsing, configuration and
// logger setup, and the import subcommand that drives the pipeline.
package commands
