package rdbgxml

// dictionaryTypes and valueTableTypes name the container type strings
// that trigger the C6 fallback reissue flows (SPEC_FULL.md §4.6).
var dictionaryTypes = map[string]bool{
	"Соответствие": true,
	"Map":          true,
}

var valueTableTypes = map[string]bool{
	"ТаблицаЗначений": true,
	"ValueTable":      true,
}

// IsDictionaryType reports whether a decoded type name is one of the
// dictionary-like container types eligible for the enum-interface
// fallback.
func IsDictionaryType(typeName string) bool {
	return dictionaryTypes[typeName]
}

// IsValueTableType reports whether a decoded type name is a
// value-table container eligible for the collection-interface
// fallback.
func IsValueTableType(typeName string) bool {
	return valueTableTypes[typeName]
}

// IsValueTableMetadataOnly reports the "only metadata children"
// shape (exactly "columns" and "indexes") that signals a value table
// needs the fallback reissue rather than already holding row data.
func IsValueTableMetadataOnly(children []EvalChild) bool {
	if len(children) != 2 {
		return false
	}
	names := map[string]bool{children[0].Name: true, children[1].Name: true}
	return names["columns"] && names["indexes"]
}

// ParseEvalResult decodes an evalExpr/evalLocalVariables response body
// into an EvalValue.
func ParseEvalResult(root *Node) EvalValue {
	return parseEvalValue(root)
}

// ParseEvalBatch decodes a batched evalLocalVariables response, keyed
// by each sub-expression's expressionResultID.
func ParseEvalBatch(root *Node) map[string]EvalValue {
	out := map[string]EvalValue{}
	for _, n := range root.All("item") {
		id := textOf(n, "expressionResultID")
		if id == "" {
			continue
		}
		out[id] = parseEvalValue(n)
	}
	return out
}

func parseEvalValue(n *Node) EvalValue {
	v := EvalValue{
		Display:    textOf(n, "result"),
		TypeName:   textOf(n, "typeName"),
		Expandable: textOf(n, "isExpandable") == "true",
	}
	if s := textOf(n, "collectionSize"); s != "" {
		size := atoiOr(s, 0)
		v.CollectionSize = &size
	}

	if children := n.Get("children"); children != nil {
		v.Children = parseEvalChildren(children.All("item"))
	}
	return v
}

func parseEvalChildren(items []*Node) []EvalChild {
	if len(items) == 0 {
		return nil
	}
	out := make([]EvalChild, len(items))
	for i, it := range items {
		out[i] = EvalChild{
			Name:  textOf(it, "name"),
			Value: parseEvalValue(it),
		}
	}
	return out
}

// DictionaryChildrenFromRows maps enum-interface rows (each a
// key/value pair) into the {key, value} children shape the fallback
// expects (scenario S5).
func DictionaryChildrenFromRows(rows []*Node) []EvalChild {
	out := make([]EvalChild, 0, len(rows))
	for _, row := range rows {
		key := textOf(row, "Ключ")
		if key == "" {
			key = textOf(row, "Key")
		}
		val := textOf(row, "Значение")
		if val == "" {
			val = textOf(row, "Value")
		}
		out = append(out, EvalChild{Name: key, Value: EvalValue{Display: val}})
	}
	return out
}
