package diagnostic

import "fmt"

// SyntaxError is returned by the front end when source text does not form
// a valid program. Parsing stops at the first one.
type SyntaxError struct {
	File    string
	Pos     Position
	Message string
}

func (e *SyntaxError) Error() string {
	file := e.File
	if file == "" {
		file = "input"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Pos.Line, e.Pos.Column, e.Message)
}

// Diagnostic converts the error into an error-level Diagnostic.
func (e *SyntaxError) Diagnostic() Diagnostic {
	return Diagnostic{
		Severity: Error,
		Message:  e.Message,
		Pos:      e.Pos,
		File:     e.File,
	}
}

// Syntaxf builds a SyntaxError at pos.
func Syntaxf(file string, pos Position, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{
		File:    file,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}
