package updater

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolve covers the selection rules: empty input takes the default,
// the latest keyword takes the newest candidate, literals must match.
func TestResolve(t *testing.T) {
	t.Parallel()

	candidates := []string{"1.16.5", "1.16.4", "1.15.2"}

	cases := []struct {
		name     string
		input    string
		fallback string
		want     string
		wantErr  bool
	}{
		{name: "empty takes default literal", input: "", fallback: "1.16.4", want: "1.16.4"},
		{name: "empty takes default latest", input: "", fallback: "latest", want: "1.16.5"},
		{name: "latest keyword", input: "latest", fallback: "1.15.2", want: "1.16.5"},
		{name: "literal match", input: "1.15.2", fallback: "latest", want: "1.15.2"},
		{name: "literal not offered", input: "9.9.9", fallback: "latest", wantErr: true},
		{name: "empty default", input: "", fallback: "", wantErr: true},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolve(parseSelection(testCase.input), testCase.fallback, candidates)
			if testCase.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.want, got)
		})
	}
}

// TestResolveNoCandidates rejects latest when there is nothing to select from.
func TestResolveNoCandidates(t *testing.T) {
	t.Parallel()

	_, err := resolve(parseSelection("latest"), "latest", nil)
	require.ErrorIs(t, err, errNoCandidates)
}

// TestPrompterRepromptsOnInvalid rejects an unknown token and accepts the
// corrected one on the next loop.
func TestPrompterRepromptsOnInvalid(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	prompter := NewPrompter(strings.NewReader("bogus\n1.16.4\n"), &out)

	got, err := prompter.SelectFrom("version", []string{"1.16.5", "1.16.4"}, "latest")
	require.NoError(t, err)
	require.Equal(t, "1.16.4", got)
	require.Contains(t, out.String(), "Invalid version selected")
}

// TestPrompterBlankTakesDefault resolves an empty line through the default.
func TestPrompterBlankTakesDefault(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	prompter := NewPrompter(strings.NewReader("\n"), &out)

	got, err := prompter.SelectFrom("build", []string{"205", "204"}, "latest")
	require.NoError(t, err)
	require.Equal(t, "205", got)
}

// TestPrompterInputClosed fails cleanly when input ends before a valid pick.
func TestPrompterInputClosed(t *testing.T) {
	t.Parallel()

	prompter := NewPrompter(strings.NewReader("bogus\n"), &bytes.Buffer{})

	_, err := prompter.SelectFrom("version", []string{"1.16.5"}, "latest")
	require.ErrorIs(t, err, errInputClosed)
}

// TestConfirmInstall proceeds on anything but an explicit no.
func TestConfirmInstall(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"y\n":    true,
		"yes\n":  true,
		"\n":     true,
		"sure\n": true,
		"n\n":    false,
		"No\n":   false,
	}

	for input, want := range cases {
		prompter := NewPrompter(strings.NewReader(input), &bytes.Buffer{})
		require.Equal(t, want, prompter.ConfirmInstall(), "input %q", input)
	}

	// Closed input does not proceed.
	prompter := NewPrompter(strings.NewReader(""), &bytes.Buffer{})
	require.False(t, prompter.ConfirmInstall())
}
