package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeHistory(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

// TestLoadOfficialFormat parses the official history format.
func TestLoadOfficialFormat(t *testing.T) {
	t.Parallel()

	path := writeHistory(t, `{"currentVersion": "git-Paper-205 (MC: 1.16.5)"}`)

	installed := Load(context.Background(), path)
	require.Equal(t, Installed{Version: "1.16.5", Build: 205}, installed)
}

// TestLoadDegradesToSentinel covers every malformed input the loader must
// tolerate: each one yields Unknown and never an error.
func TestLoadDegradesToSentinel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not JSON":            `definitely not json`,
		"missing field":       `{"oldVersion": "git-Paper-205 (MC: 1.16.5)"}`,
		"non-string field":    `{"currentVersion": 205}`,
		"no space":            `{"currentVersion": "git-Paper-205"}`,
		"non-numeric build":   `{"currentVersion": "git-Paper-abc (MC: 1.16.5)"}`,
		"missing MC prefix":   `{"currentVersion": "git-Paper-205 (1.16.5)"}`,
		"missing parenthesis": `{"currentVersion": "git-Paper-205 (MC: 1.16.5"}`,
		"empty version":       `{"currentVersion": "git-Paper-205 (MC: )"}`,
	}

	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := writeHistory(t, contents)
			require.Equal(t, Unknown, Load(context.Background(), path))
		})
	}
}

// TestLoadMissingFile returns the sentinel when the file does not exist.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.Equal(t, Unknown, Load(context.Background(), path))
}

// TestDefaultPath places the history file next to the target.
func TestDefaultPath(t *testing.T) {
	t.Parallel()

	got := DefaultPath(filepath.Join("srv", "minecraft", "paper.jar"))
	require.Equal(t, filepath.Join("srv", "minecraft", DefaultFilename), got)
}
