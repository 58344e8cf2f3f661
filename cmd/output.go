package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/freefilesync/ffsync/pkg/platform/terminal"
)

// statusLineFormat is the format string used to print and wipe status lines:
// 80 columns, padded with spaces on the right (and truncated beyond 80) so a
// carriage-return wipe always clears the prior line's content.
const statusLineFormat = "\r%-80.80s"

// StatusLinePrinter provides printing facilities for dynamically updating
// status lines in the console, used to render synchronization progress and
// statistics as they're updated.
type StatusLinePrinter struct {
	// UseStandardError causes the printer to use standard error for its output
	// instead of standard output (the default).
	UseStandardError bool
	// nonEmpty indicates whether or not the printer has printed any non-empty
	// content to the status line.
	nonEmpty bool
}

// Print prints a message to the status line, overwriting any existing content.
// Messages are truncated or padded to a fixed width so that a subsequent wipe
// fully covers the prior line. Since
// status lines often carry item names read straight from the filesystem
// (themselves possibly synchronized from an untrusted source), any control
// characters they contain are neutralized first so they can't corrupt the
// terminal display.
func (p *StatusLinePrinter) Print(message string) {
	// Determine output stream.
	output := color.Output
	if p.UseStandardError {
		output = color.Error
	}

	// Print the message, prefixed with a carriage return to wipe out the
	// previous line (if any).
	fmt.Fprintf(output, statusLineFormat, terminal.NeutralizeControlCharacters(message))

	// Update our non-empty status. We're always non-empty after printing
	// because we print padding as well.
	p.nonEmpty = true
}

// Clear clears any content on the status line and moves the cursor back to the
// beginning of the line.
func (p *StatusLinePrinter) Clear() {
	// Write over any existing data.
	p.Print("")

	// Determine output stream.
	output := os.Stdout
	if p.UseStandardError {
		output = os.Stderr
	}

	// Wipe out any existing line.
	fmt.Fprint(output, "\r")

	// Update our non-empty status.
	p.nonEmpty = false
}

// BreakIfNonEmpty prints a newline character if the current line is non-empty.
func (p *StatusLinePrinter) BreakIfNonEmpty() {
	// If the status line contents are non-empty, then print a newline and mark
	// ourselves as empty.
	if p.nonEmpty {
		// Determine output stream.
		output := os.Stdout
		if p.UseStandardError {
			output = os.Stderr
		}

		// Print a line break.
		fmt.Fprintln(output)

		// Update our non-empty status.
		p.nonEmpty = false
	}
}
