// Package version exposes build metadata injected at compile time and a
// cobra subcommand to print it.
package version
