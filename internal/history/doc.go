// Package history reads the installed server version and build from Paper's
// version_history.json. The file is treated as read-only and malformed
// content degrades to the Unknown sentinel instead of failing.
package history
