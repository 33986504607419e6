// Package progress renders a live generation counter for long searches.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/message"
)

// DefaultEvery is how often a line is printed when the output is not a terminal.
const DefaultEvery = 1000

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bar prints "generation N / total (p%) · rate cand/s". On a terminal the
// line is redrawn in place; otherwise one line is printed every Every
// generations.
type Bar struct {
	Total int
	Every int

	mu        sync.Mutex
	w         io.Writer
	tty       bool
	printer   *message.Printer
	start     time.Time
	evaluated int64
	drawn     bool
}

// New returns a bar for total generations writing to w.
func New(w io.Writer, total int) *Bar {
	return &Bar{
		Total:   total,
		Every:   DefaultEvery,
		w:       w,
		tty:     IsTerminal(w),
		printer: message.NewPrinter(message.MatchLanguage("en")),
		start:   time.Now(),
	}
}

// Update records a finished generation with evaluated candidates.
func (b *Bar) Update(generation, evaluated int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.evaluated += int64(evaluated)
	done := generation + 1

	if b.tty {
		fmt.Fprint(b.w, "\r"+b.line(done))
		b.drawn = true
		return
	}
	if b.Every > 0 && done%b.Every == 0 {
		fmt.Fprintln(b.w, b.line(done))
	}
}

// Finish ends an in-place line so later output starts on a fresh one.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drawn {
		fmt.Fprintln(b.w)
		b.drawn = false
	}
}

func (b *Bar) line(done int) string {
	pct := 0.0
	if b.Total > 0 {
		pct = 100 * float64(done) / float64(b.Total)
	}
	rate := int64(0)
	if secs := time.Since(b.start).Seconds(); secs > 0 {
		rate = int64(float64(b.evaluated) / secs)
	}
	return b.printer.Sprintf("generation %d / %d (%.1f%%) · %d cand/s", done, b.Total, pct, rate)
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgYellow)
)

// Success prints a highlighted line to w.
func Success(w io.Writer, format string, a ...any) {
	printColored(w, successColor, format, a...)
}

// Failure prints a warning-colored line to w.
func Failure(w io.Writer, format string, a ...any) {
	printColored(w, failureColor, format, a...)
}

func printColored(w io.Writer, c *color.Color, format string, a ...any) {
	if !IsTerminal(w) {
		fmt.Fprintf(w, format+"\n", a...)
		return
	}
	c.Fprintf(w, format, a...)
	fmt.Fprintln(w)
}
