package filter

// SimpleToAdvanced builds the tree view of a simple, flat list of conditions: a
// single AND node holding the conditions in order.  No conditions produce an empty
// AND, which matches every subject.  Nil conditions are skipped.
func SimpleToAdvanced(conditions []Condition) *Node {
	children := make([]Filter, 0, len(conditions))
	for _, c := range conditions {
		if c == nil {
			continue
		}
		children = append(children, c)
	}
	return &Node{op: LogicalAnd, children: cloneAll(children)}
}

// IsCollapsible returns true if the filter can be shown as a flat list of
// conditions: either a single condition, or an AND node whose children are all
// conditions.
//
// The test is purely structural.  Any OR, NOT or nested group makes the tree
// non-collapsible, even when it's logically redundant (eg. an AND within an AND).
func IsCollapsible(f Filter) bool {
	return collapseCheck(f) == nil
}

// AdvancedToSimple returns the flat list of conditions for a collapsible filter.
// Non-collapsible filters return a *CollapseError; logic is never dropped to make
// a tree fit.
func AdvancedToSimple(f Filter) ([]Condition, error) {
	if err := collapseCheck(f); err != nil {
		return nil, err
	}

	switch v := f.(type) {
	case nil:
		return nil, nil
	case Condition:
		return []Condition{cloneCondition(v)}, nil
	case *Node:
		if v == nil {
			return nil, nil
		}
		out := make([]Condition, len(v.children))
		for i, c := range v.children {
			out[i] = cloneCondition(c.(Condition))
		}
		return out, nil
	}
	return nil, &CollapseError{Reason: "unknown filter type"}
}

// collapseCheck returns a *CollapseError describing the first construct which
// prevents flattening, or nil.  A nil filter is an empty list.
func collapseCheck(f Filter) error {
	switch v := f.(type) {
	case nil:
		return nil
	case Condition:
		return nil
	case *Node:
		if v == nil {
			return nil
		}
		switch v.op {
		case LogicalOr:
			return &CollapseError{Reason: "contains an OR group"}
		case LogicalNot:
			return &CollapseError{Reason: "contains a NOT group"}
		}
		for _, c := range v.children {
			child, ok := c.(*Node)
			if !ok {
				continue
			}
			switch child.op {
			case LogicalOr:
				return &CollapseError{Reason: "contains an OR group"}
			case LogicalNot:
				return &CollapseError{Reason: "contains a NOT group"}
			default:
				return &CollapseError{Reason: "contains nested grouping"}
			}
		}
		return nil
	default:
		return &CollapseError{Reason: "unknown filter type"}
	}
}
