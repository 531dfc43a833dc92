// Package progress defines the progress-reporting sink used during
// downloads, with a console bar and a discard implementation for quiet mode.
package progress
