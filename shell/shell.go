// Package shell renders human-facing console output for keel applications
// and keelctl: aligned status lines, warnings, and errors, colorized when
// the terminal supports it.
package shell

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// ColorMode controls when output gets colorized.
type ColorMode int

const (
	// ColorAuto colorizes only when the target looks like a terminal.
	ColorAuto ColorMode = iota
	// ColorAlways forces color on.
	ColorAlways
	// ColorNever disables color.
	ColorNever
)

// statusWidth right-aligns status labels into a fixed column.
const statusWidth = 12

// Shell writes console output. Methods are safe for concurrent use and
// never interleave lines.
type Shell struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	attr *color.Color
}

// New creates a Shell writing regular output to out and errors to err.
func New(out, err io.Writer, mode ColorMode) *Shell {
	s := &Shell{
		out:  out,
		err:  err,
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		attr: color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{s.ok, s.warn, s.fail, s.attr} {
		switch mode {
		case ColorAlways:
			c.EnableColor()
		case ColorNever:
			c.DisableColor()
		}
	}

	return s
}

// Printf writes a plain formatted line to standard output.
func (s *Shell) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

// StatusOK writes a status line with a green right-aligned label:
//
//	       ready  component "database" initialized
func (s *Shell) StatusOK(label, format string, args ...any) {
	s.status(s.ok, label, format, args...)
}

// StatusWarn writes a status line with a yellow label.
func (s *Shell) StatusWarn(label, format string, args ...any) {
	s.status(s.warn, label, format, args...)
}

// StatusFail writes a status line with a red label.
func (s *Shell) StatusFail(label, format string, args ...any) {
	s.status(s.fail, label, format, args...)
}

func (s *Shell) status(c *color.Color, label, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s  %s\n", c.Sprintf("%*s", statusWidth, label), fmt.Sprintf(format, args...))
}

// Attr writes an indented name/value pair with the name in cyan.
func (s *Shell) Attr(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "  %s %s\n", s.attr.Sprintf("%s:", name), value)
}

// Warn writes a warning line to the error stream.
func (s *Shell) Warn(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.err, "%s %s\n", s.warn.Sprint("warning:"), fmt.Sprintf(format, args...))
}

// Error writes an error line to the error stream.
func (s *Shell) Error(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.err, "%s %s\n", s.fail.Sprint("error:"), fmt.Sprintf(format, args...))
}

var std = New(os.Stdout, os.Stderr, ColorAuto)

// Default returns the process-wide Shell writing to stdout and stderr.
func Default() *Shell {
	return std
}

// SetDefault replaces the process-wide Shell. keelctl calls this when
// --no-color is set.
func SetDefault(s *Shell) {
	if s != nil {
		std = s
	}
}
