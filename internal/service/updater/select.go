package updater

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// latestKeyword selects the newest candidate, which the API lists first.
const latestKeyword = "latest"

var (
	// errInputClosed is returned when the interactive input ends mid-prompt.
	errInputClosed = errors.New("input closed")
	// errNoCandidates is returned when nothing can be selected from.
	errNoCandidates = errors.New("no candidates available")
	// errNotOffered is returned when a literal token is not among the candidates.
	errNotOffered = errors.New("not among the offered candidates")
	// errEmptyDefault is returned when an empty input falls back to an empty default.
	errEmptyDefault = errors.New("no default value provided")
)

// selectionKind tags how a user token should be resolved.
type selectionKind int

const (
	// selectDefault substitutes the caller-provided default token.
	selectDefault selectionKind = iota
	// selectLatest picks the first, newest candidate.
	selectLatest
	// selectLiteral requires an exact candidate match.
	selectLiteral
)

// selection is a parsed user token: empty input, the latest keyword, or a
// literal value that must match a candidate exactly.
type selection struct {
	kind  selectionKind
	token string
}

// parseSelection classifies raw user input.
func parseSelection(input string) selection {
	input = strings.TrimSpace(input)

	switch input {
	case "":
		return selection{kind: selectDefault}
	case latestKeyword:
		return selection{kind: selectLatest}
	default:
		return selection{kind: selectLiteral, token: input}
	}
}

// resolve turns a selection into a concrete candidate. A default selection
// re-parses the fallback token, so a fallback of "latest" behaves exactly
// like typing it.
func resolve(sel selection, fallback string, candidates []string) (string, error) {
	if sel.kind == selectDefault {
		sel = parseSelection(fallback)
		if sel.kind == selectDefault {
			return "", errEmptyDefault
		}
	}

	switch sel.kind {
	case selectLatest:
		if len(candidates) == 0 {
			return "", errNoCandidates
		}

		return candidates[0], nil
	case selectLiteral:
		if !slices.Contains(candidates, sel.token) {
			return "", fmt.Errorf("%q: %w", sel.token, errNotOffered)
		}

		return sel.token, nil
	default:
		return "", errEmptyDefault
	}
}

// Prompter reads interactive selections and confirmations. Input and output
// are injectable so tests can script a session.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter creates a prompter over the provided streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// SelectFrom lists the candidates and re-prompts until the input resolves to
// one of them. The label names what is being selected ("version", "build").
func (p *Prompter) SelectFrom(label string, candidates []string, fallback string) (string, error) {
	_, _ = fmt.Fprintf(p.out, "\nPlease enter the %s you would like to download.\n", label)
	_, _ = fmt.Fprintln(p.out, "Leave the prompt blank to accept the value in brackets,")
	_, _ = fmt.Fprintf(p.out, "or enter '%s' to select the newest %s.\n", latestKeyword, label)
	_, _ = fmt.Fprintf(p.out, "\nAvailable %ss:\n", label)

	for _, candidate := range candidates {
		_, _ = fmt.Fprintf(p.out, "  > [%s]\n", candidate)
	}

	for {
		_, _ = fmt.Fprintf(p.out, "\nEnter %s [%s]: ", label, fallback)

		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return "", fmt.Errorf("read %s selection: %w", label, err)
			}

			return "", errInputClosed
		}

		value, err := resolve(parseSelection(p.scanner.Text()), fallback, candidates)
		if err != nil {
			_, _ = fmt.Fprintf(p.out, "Invalid %s selected: %v\n", label, err)
			continue
		}

		return value, nil
	}
}

// ConfirmInstall asks for a final go-ahead. Anything but an explicit no
// proceeds.
func (p *Prompter) ConfirmInstall() bool {
	_, _ = fmt.Fprint(p.out, "\nDo you want to continue with the installation? (Y/N): ")

	if !p.scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(p.scanner.Text())) {
	case "n", "no":
		return false
	default:
		return true
	}
}
