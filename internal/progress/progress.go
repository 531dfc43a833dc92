package progress

import (
	"fmt"
	"io"
	"strings"
)

// Reporter receives download progress. It is a side channel only: callers
// succeed or fail the same way whether progress is rendered or discarded.
type Reporter interface {
	// Start announces the total number of bytes expected.
	Start(total int64)
	// Update reports how many bytes have been handled so far.
	Update(current int64)
	// Finish completes the report once the transfer ends.
	Finish()
}

const (
	defaultBarWidth = 60
	filledChar      = "#"
	emptyChar       = "."
)

// Bar renders a single-line console progress bar, redrawn in place.
type Bar struct {
	// out receives the rendered bar; typically os.Stdout.
	out io.Writer
	// prefix is printed before the bar on every redraw.
	prefix string
	// width is the number of bar characters between the brackets.
	width int
	// total is the expected byte count announced by Start.
	total int64
}

// NewBar creates a console bar writing to out with the given prefix.
func NewBar(out io.Writer, prefix string) *Bar {
	return &Bar{
		out:    out,
		prefix: prefix,
		width:  defaultBarWidth,
	}
}

// Start records the expected total.
func (b *Bar) Start(total int64) {
	b.total = total
	b.Update(0)
}

// Update redraws the bar for the current byte count.
func (b *Bar) Update(current int64) {
	filled := b.width
	if b.total > 0 {
		filled = int(int64(b.width) * current / b.total)
	}

	if filled > b.width {
		filled = b.width
	}

	_, _ = fmt.Fprintf(b.out, "\r%s[%s%s] %d/%d",
		b.prefix,
		strings.Repeat(filledChar, filled),
		strings.Repeat(emptyChar, b.width-filled),
		current, b.total)
}

// Finish terminates the in-place line so subsequent output starts fresh.
func (b *Bar) Finish() {
	_, _ = fmt.Fprintln(b.out)
}

// discard is the quiet-mode reporter.
type discard struct{}

func (discard) Start(int64)  {}
func (discard) Update(int64) {}
func (discard) Finish()      {}

// Discard returns a reporter that drops every update, for quiet mode.
//
//nolint:ireturn // The interface is the point here.
func Discard() Reporter {
	return discard{}
}
