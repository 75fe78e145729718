package lox

import (
	"errors"
	"fmt"
	"strings"
)

// StackFrame names a function on the call stack at the time of a runtime
// error and the line execution had reached inside it.
type StackFrame struct {
	Function string
	Line     int
}

// RuntimeError stops execution. Token is the operator, name or parenthesis
// that triggered it; Frames lists the enclosing calls, innermost first.
type RuntimeError struct {
	Token   Token
	Message string
	Frames  []StackFrame

	// pending is the line reached in the function currently being unwound.
	pending int
}

const (
	runtimeErrorFrameHead = 8
	runtimeErrorFrameTail = 8
)

var (
	errStepQuotaExceeded = errors.New("step quota exceeded")
)

func newRuntimeError(tok Token, format string, args ...any) error {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...), pending: tok.Line}
}

func (re *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", re.Message, re.Token.Line)
}

// Diagnostic converts the error into the driver-facing diagnostic form.
func (re *RuntimeError) Diagnostic() Diagnostic {
	return Diagnostic{Kind: RuntimeDiagnostic, Line: re.Token.Line, Message: re.Message}
}

// StackTrace renders the recorded frames, eliding the middle of very deep
// traces.
func (re *RuntimeError) StackTrace() string {
	var b strings.Builder
	renderFrame := func(frame StackFrame) {
		if frame.Line > 0 {
			fmt.Fprintf(&b, "  at %s (line %d)\n", frame.Function, frame.Line)
		} else {
			fmt.Fprintf(&b, "  at %s\n", frame.Function)
		}
	}

	if len(re.Frames) <= runtimeErrorFrameHead+runtimeErrorFrameTail {
		for _, frame := range re.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range re.Frames[:runtimeErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(re.Frames) - (runtimeErrorFrameHead + runtimeErrorFrameTail)
	fmt.Fprintf(&b, "  ... %d frames omitted ...\n", omitted)
	for _, frame := range re.Frames[len(re.Frames)-runtimeErrorFrameTail:] {
		renderFrame(frame)
	}
	return b.String()
}

// unwindFrame records that err escaped a call to function made on callLine.
func unwindFrame(err error, function string, callLine int) {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return
	}
	re.Frames = append(re.Frames, StackFrame{Function: function, Line: re.pending})
	re.pending = callLine
}

// closeTrace records the top-level frame once err reaches the script.
func closeTrace(err error) {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return
	}
	re.Frames = append(re.Frames, StackFrame{Function: "<script>", Line: re.pending})
}

// step is called once per executed statement and per call. It enforces the
// step quota and notices cancellation of the interpreter's context.
func (interp *Interpreter) step() error {
	interp.steps++
	if interp.quota > 0 && interp.steps > interp.quota {
		return fmt.Errorf("%w (%d)", errStepQuotaExceeded, interp.quota)
	}
	if interp.ctx != nil {
		select {
		case <-interp.ctx.Done():
			return interp.ctx.Err()
		default:
		}
	}
	return nil
}

// IsStepQuotaExceeded reports whether err stopped a run that used up its
// step quota.
func IsStepQuotaExceeded(err error) bool {
	return errors.Is(err, errStepQuotaExceeded)
}
