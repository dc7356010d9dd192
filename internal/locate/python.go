package locate

import sitter "github.com/smacker/go-tree-sitter"

func pythonSymbols(root *sitter.Node, src []byte) []Symbol {
	var syms []Symbol
	for _, n := range children(root) {
		def, outer := pythonDefinition(n)
		switch def.Type() {
		case "function_definition":
			syms = append(syms, newSymbol(outer, fieldText(def, "name", src), KindFunction))

		case "class_definition":
			className := fieldText(def, "name", src)
			syms = append(syms, newSymbol(outer, className, KindClass))

			body := def.ChildByFieldName("body")
			if body == nil {
				continue
			}
			for _, item := range children(body) {
				mdef, mouter := pythonDefinition(item)
				if mdef.Type() != "function_definition" {
					continue
				}
				m := newSymbol(mouter, fieldText(mdef, "name", src), KindMethod)
				m.Receiver = className
				syms = append(syms, m)
			}
		}
	}
	return syms
}

// pythonDefinition unwraps decorators. The outer node carries the full range.
func pythonDefinition(n *sitter.Node) (def, outer *sitter.Node) {
	if n.Type() == "decorated_definition" {
		if d := n.ChildByFieldName("definition"); d != nil {
			return d, n
		}
	}
	return n, n
}
