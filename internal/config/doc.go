// Package config defines tool settings used by the updater binary and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the Paper API base URL, the HTTP timeout and the
// server process name used by the install preflight check.
package config
