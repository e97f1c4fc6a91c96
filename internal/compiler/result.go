package compiler

import (
	"encoding/json"
	"errors"

	"github.com/lhaig/quill/internal/codegen"
	"github.com/lhaig/quill/internal/diagnostic"
)

// Result holds the outcome of one compilation: either Output, or a
// Diagnostic together with the underlying error.
type Result struct {
	Output     string
	Diagnostic *diagnostic.Diagnostic
	Err        error // *diagnostic.SyntaxError, *codegen.GenerationError or a finalize error
}

// OK reports whether compilation succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// IsSyntaxError reports whether compilation failed in the front end.
func (r *Result) IsSyntaxError() bool {
	var se *diagnostic.SyntaxError
	return errors.As(r.Err, &se)
}

func failure(file string, err error) *Result {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Message:  err.Error(),
		File:     file,
	}

	var se *diagnostic.SyntaxError
	var ge *codegen.GenerationError
	switch {
	case errors.As(err, &se):
		d.Message = se.Message
		d.Pos = se.Pos
		if se.File != "" {
			d.File = se.File
		}
	case errors.As(err, &ge):
		d.Pos = ge.Pos
	}

	return &Result{Diagnostic: &d, Err: err}
}

type resultJSON struct {
	OK         bool            `json:"ok"`
	Output     *string         `json:"output,omitempty"`
	Diagnostic *diagnosticJSON `json:"diagnostic,omitempty"`
}

type diagnosticJSON struct {
	Message  string       `json:"message"`
	Location locationJSON `json:"location"`
}

type locationJSON struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// MarshalJSON encodes the result as {"ok":true,"output":...} or
// {"ok":false,"diagnostic":{"message":...,"location":{"line":L,"column":C}}}.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.OK() {
		out := r.Output
		return json.Marshal(resultJSON{OK: true, Output: &out})
	}
	msg := r.Err.Error()
	var loc locationJSON
	if r.Diagnostic != nil {
		msg = r.Diagnostic.Message
		loc = locationJSON{Line: r.Diagnostic.Pos.Line, Column: r.Diagnostic.Pos.Column}
	}
	return json.Marshal(resultJSON{
		Diagnostic: &diagnosticJSON{Message: msg, Location: loc},
	})
}
