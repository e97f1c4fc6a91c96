// Package formatter prints Quill source in canonical layout. Comments are
// not part of the datum tree and are therefore not preserved.
package formatter

import (
	"strings"

	"github.com/lhaig/quill/internal/ast"
)

// MaxWidth is the column limit a list must fit in to stay on one line.
const MaxWidth = 80

// headerItems is the number of operands kept on the first line, after the
// head, when a form has to be broken over several lines.
var headerItems = map[string]int{
	"def":  1,
	"defn": 2,
	"fn":   1,
	"if":   1,
	"let":  1,
	"set!": 1,
}

// Format returns canonical source for the given top-level datums.
func Format(datums []ast.Datum) string {
	f := &formatter{}
	for i, d := range datums {
		if i > 0 {
			f.blankLine()
		}
		f.emitLine(f.layout(d, 0))
	}
	return f.sb.String()
}

type formatter struct {
	sb strings.Builder
}

func (f *formatter) emitLine(s string) {
	f.sb.WriteString(s)
	f.sb.WriteString("\n")
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// layout renders d starting at column col. Lines after the first carry
// their own absolute indentation.
func (f *formatter) layout(d ast.Datum, col int) string {
	flat := ast.Text(d)
	list, ok := d.(*ast.List)
	if !ok || len(list.Items) < 2 || col+len(flat) <= MaxWidth {
		return flat
	}

	open, closer := delimiters(list)
	var sb strings.Builder
	sb.WriteString(open)

	// Lists that do not start with a symbol are data (binding lists,
	// parameter lists, clauses): one item per line, aligned.
	if _, isSym := list.Items[0].(*ast.Symbol); !isSym {
		for i, item := range list.Items {
			if i > 0 {
				sb.WriteString("\n")
				sb.WriteString(indent(col + 1))
			}
			sb.WriteString(f.layout(item, col+1))
		}
		sb.WriteString(closer)
		return sb.String()
	}

	first := 1 + headerItems[list.Head()]
	if first > len(list.Items) {
		first = len(list.Items)
	}
	cur := col + 1
	for i, item := range list.Items[:first] {
		if i > 0 {
			sb.WriteString(" ")
			cur++
		}
		s := f.layout(item, cur)
		sb.WriteString(s)
		cur = endColumn(s, cur)
	}
	for _, item := range list.Items[first:] {
		sb.WriteString("\n")
		sb.WriteString(indent(col + 2))
		sb.WriteString(f.layout(item, col+2))
	}
	sb.WriteString(closer)
	return sb.String()
}

func delimiters(l *ast.List) (string, string) {
	if l.Brackets {
		return "[", "]"
	}
	return "(", ")"
}

func indent(n int) string {
	return strings.Repeat(" ", n)
}

// endColumn is the column after s when s was written starting at col.
func endColumn(s string, col int) int {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return len(s) - i - 1
	}
	return col + len(s)
}
