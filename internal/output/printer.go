// Package output renders user-facing CLI feedback: colored status lines,
// confirmation prompts, download progress and tables.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Printer writes colored status lines. Informational output goes to out,
// warnings and errors to errOut.
type Printer struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
}

// NewPrinter creates a Printer writing to out and errOut. Nil writers
// default to stdout and stderr.
func NewPrinter(out, errOut io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, errOut: errOut}
}

// SetNoColor disables colored output.
func (p *Printer) SetNoColor(noColor bool) {
	color.NoColor = noColor
}

// SetVerbose enables Debug lines.
func (p *Printer) SetVerbose(verbose bool) {
	p.verbose = verbose
}

// Out returns the informational writer.
func (p *Printer) Out() io.Writer {
	return p.out
}

// ErrOut returns the diagnostic writer.
func (p *Printer) ErrOut() io.Writer {
	return p.errOut
}

// Info prints an informational message in default color.
func (p *Printer) Info(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a warning message in yellow.
func (p *Printer) Warn(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(p.errOut, "Warning: "+format+"\n", args...)
}

// Error prints an error message in red.
func (p *Printer) Error(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(p.errOut, "Error: "+format+"\n", args...)
}

// Success prints a success message in green with checkmark.
func (p *Printer) Success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
}

// Debug prints a message only in verbose mode.
func (p *Printer) Debug(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	color.New(color.FgHiBlack).Fprintf(p.errOut, "[DEBUG] "+format+"\n", args...)
}

// Bold prints a message in bold.
func (p *Printer) Bold(format string, args ...interface{}) {
	color.New(color.Bold).Fprintf(p.out, format+"\n", args...)
}

// Highlight returns s in cyan, for names and versions inside messages.
func Highlight(s string) string {
	return color.CyanString(s)
}
