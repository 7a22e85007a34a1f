package rdbgxml

// ParseTargets decodes a getDbgTargets response's <result> array (each
// <item> describing one target).
func ParseTargets(root *Node) []TargetInfo {
	res := root.Get("result")
	if res == nil {
		return nil
	}

	items := res.All("item")
	targets := make([]TargetInfo, len(items))
	for i, it := range items {
		targets[i] = targetFromNode(it)
	}
	return targets
}

func targetFromNode(n *Node) TargetInfo {
	return TargetInfo{
		ID:         textOf(n, "id"),
		IDStr:      textOf(n, "targetIDStr"),
		SeanceID:   textOf(n, "seanceId"),
		TargetType: textOf(n, "targetType"),
		UserName:   textOf(n, "userName"),
	}
}

// ParseAttachResult extracts the textual result of an attachDebugUI
// call ("registered" on success, or one of the documented failure
// reasons).
func ParseAttachResult(root *Node) string {
	return textOf(root, "result")
}
