package locate

import sitter "github.com/smacker/go-tree-sitter"

var rustKinds = map[string]Kind{
	"function_item": KindFunction,
	"struct_item":   KindStruct,
	"enum_item":     KindEnum,
	"trait_item":    KindTrait,
	"type_item":     KindType,
	"mod_item":      KindModule,
	"const_item":    KindConst,
	"static_item":   KindVar,
}

func rustSymbols(root *sitter.Node, src []byte) []Symbol {
	var syms []Symbol
	for _, n := range children(root) {
		if kind, ok := rustKinds[n.Type()]; ok {
			syms = append(syms, newSymbol(n, fieldText(n, "name", src), kind))
			continue
		}
		if n.Type() != "impl_item" {
			continue
		}

		typeName := baseTypeName(fieldText(n, "type", src))
		impl := newSymbol(n, typeName, KindImpl)
		if trait := fieldText(n, "trait", src); trait != "" {
			impl.Trait = trait
		}
		syms = append(syms, impl)

		body := n.ChildByFieldName("body")
		if body == nil {
			continue
		}
		for _, item := range children(body) {
			if item.Type() != "function_item" {
				continue
			}
			m := newSymbol(item, fieldText(item, "name", src), KindMethod)
			m.Receiver = typeName
			syms = append(syms, m)
		}
	}
	return syms
}
