package locate

import sitter "github.com/smacker/go-tree-sitter"

func goSymbols(root *sitter.Node, src []byte) []Symbol {
	var syms []Symbol
	for _, n := range children(root) {
		switch n.Type() {
		case "function_declaration":
			syms = append(syms, newSymbol(n, fieldText(n, "name", src), KindFunction))

		case "method_declaration":
			s := newSymbol(n, fieldText(n, "name", src), KindMethod)
			s.Receiver = goReceiver(n, src)
			syms = append(syms, s)

		case "type_declaration":
			for _, spec := range children(n) {
				if spec.Type() != "type_spec" && spec.Type() != "type_alias" {
					continue
				}
				kind := KindType
				if t := spec.ChildByFieldName("type"); t != nil {
					switch t.Type() {
					case "struct_type":
						kind = KindStruct
					case "interface_type":
						kind = KindInterface
					}
				}
				target := spec
				if n.NamedChildCount() == 1 {
					target = n
				}
				syms = append(syms, newSymbol(target, fieldText(spec, "name", src), kind))
			}

		case "var_declaration", "const_declaration":
			kind := KindVar
			if n.Type() == "const_declaration" {
				kind = KindConst
			}
			for _, spec := range children(n) {
				if spec.Type() != "var_spec" && spec.Type() != "const_spec" {
					continue
				}
				target := spec
				if n.NamedChildCount() == 1 {
					target = n
				}
				syms = append(syms, newSymbol(target, fieldText(spec, "name", src), kind))
			}
		}
	}
	return syms
}

// goReceiver returns the receiver's type name, e.g. "Rectangle" for (r *Rectangle).
func goReceiver(n *sitter.Node, src []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for _, param := range children(recv) {
		if t := param.ChildByFieldName("type"); t != nil {
			return baseTypeName(t.Content(src))
		}
	}
	return ""
}
