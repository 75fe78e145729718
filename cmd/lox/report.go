package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/loxscript/lox"
)

// reportedError wraps an error whose details were already written to stderr.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// reportScriptError writes err to w the way the driver shows script
// failures: each diagnostic with the source line it points at, and runtime
// errors with their call stack.
func reportScriptError(w io.Writer, source string, err error) error {
	renderer := lipgloss.NewRenderer(w)
	messageStyle := renderer.NewStyle().Foreground(errorColor).Bold(true)
	detailStyle := renderer.NewStyle().Foreground(mutedColor)

	var diags lox.Diagnostics
	var runtimeErr *lox.RuntimeError
	switch {
	case errors.As(err, &diags):
		for _, d := range diags {
			writeStyled(w, messageStyle, d.Error())
			writeStyled(w, detailStyle, lox.FormatCodeFrame(source, d.Line))
		}
	case errors.As(err, &runtimeErr):
		writeStyled(w, messageStyle, runtimeErr.Error())
		writeStyled(w, detailStyle, strings.TrimRight(runtimeErr.StackTrace(), "\n"))
		writeStyled(w, detailStyle, lox.FormatCodeFrame(source, runtimeErr.Token.Line))
	default:
		writeStyled(w, messageStyle, err.Error())
	}
	return &reportedError{err: err}
}

// writeStyled renders text line by line so multi-line output is not padded
// to a common width.
func writeStyled(w io.Writer, style lipgloss.Style, text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(w, style.Render(line))
	}
}
