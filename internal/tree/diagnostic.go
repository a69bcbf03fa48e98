package tree

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/minerva-studio/aethiumian-ai-sub000/internal/identity"
)

// Severity of a diagnostic.
type Severity uint8

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one problem found while instantiating a document.
type Diagnostic struct {
	Severity Severity
	// Node is the node the problem belongs to, empty for variables.
	Node identity.Identity
	// Subject names the offending field, variable or reference.
	Subject string
	Err     error
}

func (d Diagnostic) Error() string {
	if d.Node.IsEmpty() {
		return fmt.Sprintf("%s: %v", d.Subject, d.Err)
	}
	return fmt.Sprintf("node %s %s: %v", d.Node.Short(), d.Subject, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic is an error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Err aggregates the error-level diagnostics, or returns nil.
func (ds Diagnostics) Err() error {
	var result *multierror.Error
	for _, d := range ds {
		if d.Severity == Error {
			result = multierror.Append(result, d)
		}
	}
	return result.ErrorOrNil()
}
