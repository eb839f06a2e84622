// Package diag provides small helpers for constructing and rendering
// user-facing diagnostics. The rest of the system treats a diagnostic as an
// opaque payload; only this package and the final output surface know it is
// an *hcl.Diagnostic underneath.
package diag

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
)

// Carrier is implemented by errors that carry structured diagnostics.
// Rendering code prefers the structured form over the flat Error() string.
type Carrier interface {
	error
	Diagnostics() hcl.Diagnostics
}

// Errorf builds an error-severity diagnostic from a format string.
func Errorf(format string, args ...any) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf(format, args...),
	}
}

// Warnf builds a warning-severity diagnostic from a format string.
func Warnf(format string, args ...any) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  fmt.Sprintf(format, args...),
	}
}

// FromError extracts diagnostics from an error. Errors that implement
// Carrier (or are hcl.Diagnostics themselves) keep their structure; anything
// else becomes a single error diagnostic.
func FromError(err error) hcl.Diagnostics {
	switch e := err.(type) {
	case nil:
		return nil
	case Carrier:
		return e.Diagnostics()
	case hcl.Diagnostics:
		return e
	default:
		return hcl.Diagnostics{Errorf("%s", err.Error())}
	}
}

// Render writes diagnostics in HCL's standard human-readable form.
func Render(w io.Writer, files map[string]*hcl.File, diags hcl.Diagnostics) error {
	return hcl.NewDiagnosticTextWriter(w, files, 100, false).WriteDiagnostics(diags)
}
