package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Print returns a tree-like string representation of the program for
// debugging.
func Print(prog *Program) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Program %s (%d forms)\n", prog.Name, len(prog.Forms)))
	for _, form := range prog.Forms {
		printNode(&sb, form, 1)
	}
	return sb.String()
}

func printNode(sb *strings.Builder, n Node, indent int) {
	if n == nil {
		return
	}
	prefix := strings.Repeat("  ", indent)

	switch n := n.(type) {
	case *Number:
		sb.WriteString(fmt.Sprintf("%sNumber %s\n", prefix, n.Text))
	case *String:
		sb.WriteString(fmt.Sprintf("%sString %s\n", prefix, strconv.Quote(n.Value)))
	case *Bool:
		sb.WriteString(fmt.Sprintf("%sBool %t\n", prefix, n.Value))
	case *Nil:
		sb.WriteString(prefix + "Nil\n")
	case *Ref:
		sb.WriteString(fmt.Sprintf("%sRef %s\n", prefix, n.Name))
	case *Op:
		sb.WriteString(fmt.Sprintf("%sOp %s\n", prefix, n.Operator))
	case *Call:
		sb.WriteString(prefix + "Call\n")
	case *If:
		sb.WriteString(prefix + "If\n")
	case *Let:
		sb.WriteString(fmt.Sprintf("%sLet [%s]\n", prefix, strings.Join(n.Names(), " ")))
	case *Fn:
		name := n.Name
		if name == "" {
			name = "<anonymous>"
		}
		sb.WriteString(fmt.Sprintf("%sFn %s (%s)\n", prefix, name, strings.Join(n.Params, " ")))
	case *Do:
		sb.WriteString(prefix + "Do\n")
	case *Def:
		sb.WriteString(fmt.Sprintf("%sDef %s\n", prefix, n.Name))
	case *Set:
		sb.WriteString(fmt.Sprintf("%sSet %s\n", prefix, n.Name))
	}

	for _, c := range Children(n) {
		printNode(sb, c, indent+1)
	}
}
