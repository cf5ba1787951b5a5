package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic codes emitted by the validator, composer, and emitter.
// Codes are stable identifiers: user tooling matches on them.
const (
	CodeMissingAttribute     = "missing_attribute"
	CodeInvalidDirective     = "invalid_directive"
	CodeUnknownProperty      = "unknown_property"
	CodeInvalidStructShape   = "invalid_struct_shape"
	CodeMultipleGenericSlots = "multiple_generic_slots"
	CodeBaseMismatch         = "base_mismatch"
	CodeUnresolvedParent     = "unresolved_parent"
	CodeUnsupportedType      = "unsupported_type"
	CodePathTraversal        = "path_traversal"
	CodeInvalidExtension     = "invalid_extension"
	CodeOutputConflict       = "output_conflict"
	CodeWriteFailed          = "write_failed"
)

// Severity is the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one message about one declaration.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is the stable identifier for this kind of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Declaration names the schema declaration this relates to (if any).
	Declaration string
	// Field names the specific field or attribute involved (if any).
	Field string
}

// String returns a formatted diagnostic line.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Declaration != "" {
		prefix = append(prefix, "["+d.Declaration+"]")
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

// Diagnostics accumulates messages across one validation or generation pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, declaration, field string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity:    SeverityError,
		Code:        code,
		Message:     message,
		Declaration: declaration,
		Field:       field,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, declaration, field string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity:    SeverityWarning,
		Code:        code,
		Message:     message,
		Declaration: declaration,
		Field:       field,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}
