package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/dingf3ng/schema/internal/ast"
)

// Report is the canonical structured error type produced by every pipeline
// phase. It carries both the human-facing diagnostic spec §7 requires and a
// stable JSON encoding for tooling.
type Report struct {
	Schema  string         `json:"schema"` // always SchemaErrorV1
	Code    string         `json:"code"`
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Pos     ast.Pos        `json:"pos"`
	Data    map[string]any `json:"data,omitempty"`
	// Snapshot is the formatted enclosing-environment snapshot attached to
	// VerificationFailure reports (spec §4.3/§7): one non-function binding
	// per line, rendered via the stable value printer in package eval.
	Snapshot string `json:"snapshot,omitempty"`
}

// SchemaErrorV1 is the schema identifier stamped on every Report.
const SchemaErrorV1 = "schema.error/v1"

// Error implements the error interface.
func (r *Report) Error() string {
	return fmt.Sprintf("%s: %s: %s", r.Pos, r.Code, r.Message)
}

// ReportError wraps a *Report so it survives errors.As() unwrapping even
// when composed with fmt.Errorf("...: %w", report).
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Error()
}

// AsReport extracts a *Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if stderrors.As(err, &re) {
		return re.Rep, true
	}
	var r *Report
	if stderrors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func newReport(code string, pos ast.Pos, msg string) *Report {
	info, _ := GetErrorInfo(code)
	return &Report{
		Schema:  SchemaErrorV1,
		Code:    code,
		Kind:    info.Kind,
		Message: msg,
		Pos:     pos,
	}
}

// NewTypeError builds a TypeError report (spec §7).
func NewTypeError(code string, pos ast.Pos, msg string) *Report {
	return newReport(code, pos, msg)
}

// NewNameError builds a NameError report.
func NewNameError(code string, pos ast.Pos, msg string) *Report {
	return newReport(code, pos, msg)
}

// NewIndexError builds an IndexError report.
func NewIndexError(code string, pos ast.Pos, msg string) *Report {
	return newReport(code, pos, msg)
}

// NewRuntimeTypeError builds a RuntimeTypeError report.
func NewRuntimeTypeError(code string, pos ast.Pos, msg string) *Report {
	return newReport(code, pos, msg)
}

// NewInternalError builds an InternalError report.
func NewInternalError(code string, pos ast.Pos, msg string) *Report {
	return newReport(code, pos, msg)
}

// NewVerificationFailure builds a VerificationFailure report carrying the
// formatted environment snapshot spec §4.3 requires.
func NewVerificationFailure(code string, pos ast.Pos, msg, snapshot string) *Report {
	r := newReport(code, pos, msg)
	r.Snapshot = snapshot
	return r
}

// WithData attaches structured context data to the report.
func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

// ToJSON renders the report as deterministic JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
