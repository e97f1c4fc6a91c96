package ir

import (
	"encoding/json"
	"io"
)

// FprintJSON writes a JSON representation of the program to w.
func FprintJSON(w io.Writer, prog *Program) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	forms := make([]interface{}, len(prog.Forms))
	for i, f := range prog.Forms {
		forms[i] = toJSON(f)
	}
	return enc.Encode(map[string]interface{}{
		"type":  "Program",
		"name":  prog.Name,
		"forms": forms,
	})
}

func toJSON(node Node) interface{} {
	if node == nil {
		return nil
	}

	m := map[string]interface{}{
		"kind": node.Kind().String(),
		"pos":  node.Pos().String(),
	}

	switch n := node.(type) {
	case *Number:
		m["text"] = n.Text
		m["float"] = n.Float
	case *String:
		m["value"] = n.Value
	case *Bool:
		m["value"] = n.Value
	case *Nil:
	case *Ref:
		m["name"] = n.Name
	case *Op:
		m["operator"] = n.Operator.String()
		m["operands"] = mapNodes(n.Operands)
	case *Call:
		m["callee"] = toJSON(n.Callee)
		m["args"] = mapNodes(n.Args)
	case *If:
		m["cond"] = toJSON(n.Cond)
		m["then"] = toJSON(n.Then)
		m["else"] = toJSON(n.Else)
	case *Let:
		bindings := make([]interface{}, len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = map[string]interface{}{
				"name":  b.Name,
				"value": toJSON(b.Value),
			}
		}
		m["bindings"] = bindings
		m["body"] = toJSON(n.Body)
	case *Fn:
		if n.Name != "" {
			m["name"] = n.Name
		}
		m["params"] = n.Params
		m["body"] = toJSON(n.Body)
	case *Do:
		m["exprs"] = mapNodes(n.Exprs)
	case *Def:
		m["name"] = n.Name
		m["value"] = toJSON(n.Value)
	case *Set:
		m["name"] = n.Name
		m["value"] = toJSON(n.Value)
	}
	return m
}

func mapNodes(nodes []Node) []interface{} {
	out := make([]interface{}, len(nodes))
	for i, n := range nodes {
		out[i] = toJSON(n)
	}
	return out
}
