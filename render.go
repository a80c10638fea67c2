package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression renders f as a CEL expression for display, eg.
//
//	entity["task"] == "VISU" && participant["age"] > 25
//
// The rendering is informational; filters are never parsed back from text.  Inert
// conditions and empty AND nodes render as true, empty OR nodes as false.
func Expression(f Filter) string {
	if f == nil || isNilNode(f) {
		return "true"
	}
	return render(f, true)
}

func render(f Filter, top bool) string {
	switch v := f.(type) {
	case *Node:
		return renderNode(v, top)
	case Condition:
		return renderCondition(v)
	}
	return "false"
}

func renderNode(n *Node, top bool) string {
	switch n.op {
	case LogicalNot:
		return "!(" + render(n.children[0], true) + ")"
	case LogicalAnd, LogicalOr:
		if len(n.children) == 0 {
			if n.op == LogicalAnd {
				return "true"
			}
			return "false"
		}
		sep := " && "
		if n.op == LogicalOr {
			sep = " || "
		}
		parts := make([]string, len(n.children))
		for i, c := range n.children {
			parts[i] = render(c, false)
		}
		out := strings.Join(parts, sep)
		if len(parts) > 1 && !top {
			out = "(" + out + ")"
		}
		return out
	}
	return "false"
}

func renderCondition(c Condition) string {
	if c.Inert() {
		return "true"
	}

	switch v := c.(type) {
	case SubjectIDCondition:
		return "subject in " + quoteList(v.IDs)
	case ModalityCondition:
		return "modality in " + quoteList(v.Modalities)
	case EntityCondition:
		ident := fmt.Sprintf("entity[%s]", strconv.Quote(v.Entity))
		parts := make([]string, len(v.Values))
		for i, val := range v.Values {
			parts[i] = renderComparison(ident, v.Operator, val)
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return "(" + strings.Join(parts, " || ") + ")"
	case ParticipantAttributeCondition:
		return renderComparison(fmt.Sprintf("participant[%s]", strconv.Quote(v.Attribute)), v.Operator, v.Value)
	case ChannelAttributeCondition:
		return renderComparison(fmt.Sprintf("channel[%s]", strconv.Quote(v.Attribute)), v.Operator, v.Value)
	case ElectrodeAttributeCondition:
		return renderComparison(fmt.Sprintf("electrode[%s]", strconv.Quote(v.Attribute)), v.Operator, v.Value)
	}
	return "false"
}

func renderComparison(ident string, op Operator, value string) string {
	switch op.or(OpEquals) {
	case OpEquals:
		return ident + " == " + literal(value)
	case OpNotEquals:
		return ident + " != " + literal(value)
	case OpContains:
		return ident + ".contains(" + strconv.Quote(value) + ")"
	case OpGreaterThan:
		return ident + " > " + literal(value)
	case OpLessThan:
		return ident + " < " + literal(value)
	}
	return "false"
}

// literal renders numeric-looking values unquoted, in the same way that values are
// compared numerically when both sides parse.
func literal(value string) string {
	if f, ok := toNumber(value); ok && !strings.ContainsAny(value, "xXnN") {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.Quote(value)
}

func quoteList(vals []string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Describe returns the label and detail text shown for a condition in a tree view,
// eg. ("Entity", "Task equals VISU").
func Describe(c Condition) (label, detail string) {
	switch v := c.(type) {
	case SubjectIDCondition:
		return "Subject ID", orAny(strings.Join(v.IDs, ", "))
	case ModalityCondition:
		return "Modality", orAny(strings.Join(v.Modalities, ", "))
	case EntityCondition:
		if v.Entity == "" {
			return "Entity", "(any)"
		}
		return "Entity", fmt.Sprintf("%s %s %s", EntityName(v.Entity), v.Operator.or(OpEquals), orAny(strings.Join(v.Values, ", ")))
	case ParticipantAttributeCondition:
		return "Subject Attribute", describeAttribute(v.Attribute, v.Operator, v.Value)
	case ChannelAttributeCondition:
		return "Channel Attribute", describeAttribute(v.Attribute, v.Operator, v.Value)
	case ElectrodeAttributeCondition:
		return "Electrode Attribute", describeAttribute(v.Attribute, v.Operator, v.Value)
	}
	return "Unknown", ""
}

func describeAttribute(attribute string, op Operator, value string) string {
	if attribute == "" {
		return "(any)"
	}
	return fmt.Sprintf("%s %s %s", attribute, op.or(OpEquals), orAny(value))
}

func orAny(s string) string {
	if s == "" {
		return "(any)"
	}
	return s
}
