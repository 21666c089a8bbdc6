package interpreter

import (
	"io"
	"time"
)

// SetSource updates the interpreter's current "active" source context.
// The REPL calls it for every chunk so runtime errors show the right
// filename and caret line.
func (i *Interpreter) SetSource(filename string, source string) {
	i.filename = filename
	i.lines = splitLinesPreserve(source)
}

// SetOutput redirects print statements. Tests use a bytes.Buffer.
func (i *Interpreter) SetOutput(w io.Writer) { i.out = w }

// SetErrorOutput redirects diagnostics written by Interpret.
func (i *Interpreter) SetErrorOutput(w io.Writer) { i.errOut = w }

// SetClock replaces the time source used by the clock native.
func (i *Interpreter) SetClock(now func() time.Time) { i.now = now }
