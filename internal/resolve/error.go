package resolve

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// ErrorHandle is a captured resolution failure: a diagnostic message plus an
// ordered chain of context frames. Frames are held as unevaluated thunks and
// ordered outer to inner, so the most recently attached wrapping context
// renders first and the original cause last. Handles compare by identity:
// two distinct failures are never interchangeable, even if their rendered
// text matches.
type ErrorHandle struct {
	diag   *hcl.Diagnostic // set by Fail
	cause  error           // set by OfResult
	frames []func() string
}

// Fail constructs a failed resolution from a diagnostic. The diagnostic is
// stored opaquely; nothing here parses or rewrites it.
func Fail[T any](d *hcl.Diagnostic) Resolve[T] {
	return Resolve[T]{err: &ErrorHandle{diag: d}}
}

// PushStackFrame attaches a context frame describing an enclosing operation.
// On a successful value it returns m unchanged and never invokes the
// description; on a failure it returns a new failure whose handle prepends
// the thunk unevaluated. Rendering cost is only paid if the failure is
// eventually displayed, however many frames were stacked on the way.
func PushStackFrame[T any](description func() string, m Resolve[T]) Resolve[T] {
	if m.ok {
		return m
	}
	old := m.err
	frames := make([]func() string, 0, len(old.frames)+1)
	frames = append(frames, description)
	frames = append(frames, old.frames...)
	return Resolve[T]{err: &ErrorHandle{diag: old.diag, cause: old.cause, frames: frames}}
}

// message renders the original diagnostic, materializing an OfResult-boxed
// error only now.
func (h *ErrorHandle) message() *hcl.Diagnostic {
	if h.diag != nil {
		return h.diag
	}
	return &hcl.Diagnostic{Severity: hcl.DiagError, Summary: h.cause.Error()}
}

// Diagnostics renders the failure for display: context frames outer to
// inner, then the original message. Frame thunks are invoked here and
// nowhere else.
func (h *ErrorHandle) Diagnostics() hcl.Diagnostics {
	diags := make(hcl.Diagnostics, 0, len(h.frames)+1)
	for _, frame := range h.frames {
		diags = append(diags, &hcl.Diagnostic{Severity: hcl.DiagError, Summary: frame()})
	}
	return append(diags, h.message())
}

// Error implements error with a flat one-line rendering in the same order
// as Diagnostics.
func (h *ErrorHandle) Error() string {
	var b strings.Builder
	for _, frame := range h.frames {
		b.WriteString(frame())
		b.WriteString(": ")
	}
	b.WriteString(h.message().Summary)
	return b.String()
}
