package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oshokin/paper-updater/internal/logger"
)

// DefaultFilename is the version history file Paper writes next to the server jar.
const DefaultFilename = "version_history.json"

// Installed identifies what is currently on disk: a release line and a build
// number within it. Both are compared by equality only.
type Installed struct {
	// Version is the release line, e.g. "1.16.5".
	Version string
	// Build is the build number within the version line.
	Build int
}

// Unknown is the sentinel for "no known prior installation".
//
//nolint:gochecknoglobals // Shared sentinel value, compared by equality.
var Unknown = Installed{Version: "0", Build: 0}

// fileFormat mirrors the subset of version_history.json this tool reads.
type fileFormat struct {
	CurrentVersion any `json:"currentVersion"`
}

// DefaultPath returns the conventional history location for a target file:
// a sibling named DefaultFilename.
func DefaultPath(targetPath string) string {
	return filepath.Join(filepath.Dir(targetPath), DefaultFilename)
}

// Load reads the installed version and build from the history file at path.
//
// Only the official format is accepted: a JSON object whose currentVersion
// string looks like "git-Paper-205 (MC: 1.16.5)". Every failure mode (missing
// file, invalid JSON, missing or non-string field, unexpected shape) degrades
// to Unknown after logging a diagnostic; Load never fails.
func Load(ctx context.Context, path string) Installed {
	logger.InfoKV(ctx, "Checking version history file", "path", path)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		logger.WarnKV(ctx, "Unable to read version history file", "path", path, "error", err)
		return Unknown
	}

	var parsed fileFormat
	if err = json.Unmarshal(contents, &parsed); err != nil {
		logger.WarnKV(ctx, "Version history file is not valid JSON", "path", path, "error", err)
		return Unknown
	}

	current, ok := parsed.CurrentVersion.(string)
	if !ok {
		logger.WarnKV(ctx, "Version history has no currentVersion string", "path", path)
		return Unknown
	}

	installed, ok := parseCurrentVersion(current)
	if !ok {
		logger.WarnKV(ctx, "Version history has an unexpected format, official builds only",
			"path", path, "value", current)

		return Unknown
	}

	logger.InfoKV(ctx, "Loaded version history",
		"version", installed.Version, "build", installed.Build)

	return installed
}

// parseCurrentVersion decomposes "git-Paper-205 (MC: 1.16.5)" into its
// build number and version line.
func parseCurrentVersion(s string) (Installed, bool) {
	buildPart, versionPart, found := strings.Cut(s, " ")
	if !found {
		return Unknown, false
	}

	// The build number is the last dash-separated token.
	dashed := strings.Split(buildPart, "-")

	build, err := strconv.Atoi(dashed[len(dashed)-1])
	if err != nil {
		return Unknown, false
	}

	version, ok := strings.CutPrefix(versionPart, "(MC: ")
	if !ok {
		return Unknown, false
	}

	version, ok = strings.CutSuffix(version, ")")
	if !ok || version == "" {
		return Unknown, false
	}

	return Installed{Version: version, Build: build}, true
}
