package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Severity says whether a diagnostic stops compilation.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Position is a location in a source unit. Offset is the 0-based byte
// offset; Line and Column are 1-based, Column counting bytes.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsValid reports whether the position refers to a real location.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Diagnostic is one error or warning tied to a source position.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      Position
	File     string // optional source unit name
	Rule     string // lint rule that produced the diagnostic, if any
	Hint     string
}

// String renders the diagnostic the way Format does.
func (d Diagnostic) String() string {
	var b strings.Builder
	writeDiagnostic(&b, d, d.File)
	return b.String()
}

// Diagnostics is an ordered collection of diagnostics for one unit.
type Diagnostics struct {
	items []Diagnostic
}

func New() *Diagnostics {
	return &Diagnostics{}
}

// Add appends a prepared diagnostic.
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// Sort orders the collection by source offset, keeping insertion order
// for diagnostics at the same offset.
func (d *Diagnostics) Sort() {
	sort.SliceStable(d.items, func(i, j int) bool {
		return d.items[i].Pos.Offset < d.items[j].Pos.Offset
	})
}

func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

func (d *Diagnostics) Count() int {
	return len(d.items)
}

// Format returns one line per diagnostic, followed by an indented hint
// line when the diagnostic has one:
//
//	error[main.ql:3:10]: expected ')' to close '(' opened at 1:1, got end of input
//	warning[main.ql:5:1]: unused binding 'z' (unused-binding)
//	  hint: prefix the name with '_' to silence this warning
//
// A diagnostic that names its own file is printed with that file instead
// of filename.
func (d *Diagnostics) Format(filename string) string {
	var b strings.Builder
	for i, item := range d.items {
		if i > 0 {
			b.WriteString("\n")
		}
		file := filename
		if item.File != "" {
			file = item.File
		}
		writeDiagnostic(&b, item, file)
	}
	return b.String()
}

func writeDiagnostic(b *strings.Builder, item Diagnostic, file string) {
	if file == "" {
		file = "input"
	}
	fmt.Fprintf(b, "%s[%s:%s]: %s", item.Severity, file, item.Pos, item.Message)
	if item.Rule != "" {
		fmt.Fprintf(b, " (%s)", item.Rule)
	}
	if item.Hint != "" {
		fmt.Fprintf(b, "\n  hint: %s", item.Hint)
	}
}
