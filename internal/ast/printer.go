package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of datums for debugging
func Print(datums ...Datum) string {
	var sb strings.Builder
	for _, d := range datums {
		printDatum(&sb, d, 0)
	}
	return sb.String()
}

func printDatum(sb *strings.Builder, d Datum, indent int) {
	if d == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := d.(type) {
	case *List:
		kind := "List"
		if n.Brackets {
			kind = "Vector"
		}
		sb.WriteString(fmt.Sprintf("%s%s (%d items) @%s\n", prefix, kind, len(n.Items), n.Start))
		for _, item := range n.Items {
			printDatum(sb, item, indent+1)
		}
	case *Symbol:
		sb.WriteString(fmt.Sprintf("%sSymbol: %s\n", prefix, n.Name))
	case *Number:
		sb.WriteString(fmt.Sprintf("%sNumber: %s\n", prefix, n.Text))
	case *String:
		sb.WriteString(fmt.Sprintf("%sString: %s\n", prefix, Quote(n.Value)))
	case *Bool:
		sb.WriteString(fmt.Sprintf("%sBool: %t\n", prefix, n.Value))
	case *Nil:
		sb.WriteString(prefix + "Nil\n")
	}
}

// Text renders a datum back to source on a single line.
func Text(d Datum) string {
	switch n := d.(type) {
	case *List:
		open, closer := "(", ")"
		if n.Brackets {
			open, closer = "[", "]"
		}
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = Text(item)
		}
		return open + strings.Join(parts, " ") + closer
	case *Symbol:
		return n.Name
	case *Number:
		return n.Text
	case *String:
		return Quote(n.Value)
	case *Bool:
		if n.Value {
			return "true"
		}
		return "false"
	case *Nil:
		return "nil"
	default:
		return ""
	}
}

// Quote renders s as a Quill string literal using the escapes the lexer
// understands.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
