package filter

import (
	"slices"

	"github.com/pkg/errors"
)

// LogicalOperator combines the results of a node's children.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
	LogicalNot LogicalOperator = "NOT"
)

func (o LogicalOperator) Valid() bool {
	switch o {
	case LogicalAnd, LogicalOr, LogicalNot:
		return true
	}
	return false
}

// Node is an AND, OR or NOT combinator over an ordered list of children, each of
// which is either a Condition or another *Node.
//
// Nodes are immutable.  Every mutation returns a new node holding deep copies of
// its children, so no subtree is ever reachable from two parents.  A NOT node always
// has exactly one child; this is checked whenever a node is created or changed.
type Node struct {
	op       LogicalOperator
	children []Filter
}

// NewNode returns a node combining deep copies of the given children.
func NewNode(op LogicalOperator, children ...Filter) (*Node, error) {
	if !op.Valid() {
		return nil, errors.Errorf("invalid logical operator %q", op)
	}
	for i, c := range children {
		if c == nil || isNilNode(c) {
			return nil, errors.Errorf("child %d of %s node is nil", i, op)
		}
	}
	if err := checkArity(op, len(children)); err != nil {
		return nil, err
	}
	return &Node{op: op, children: cloneAll(children)}, nil
}

// And returns an AND node over the given children.  An AND without children matches
// everything.  It panics if any child is nil; use NewNode for unchecked input.
func And(children ...Filter) *Node {
	return mustNode(NewNode(LogicalAnd, children...))
}

// Or returns an OR node over the given children.  An OR without children matches
// nothing.  It panics if any child is nil; use NewNode for unchecked input.
func Or(children ...Filter) *Node {
	return mustNode(NewNode(LogicalOr, children...))
}

// Not returns a NOT node negating child.  It panics if child is nil; use NewNode for
// unchecked input.
func Not(child Filter) *Node {
	return mustNode(NewNode(LogicalNot, child))
}

func mustNode(n *Node, err error) *Node {
	if err != nil {
		panic(err)
	}
	return n
}

func checkArity(op LogicalOperator, n int) error {
	if op == LogicalNot && n != 1 {
		return &ConstructionError{Operator: op, Children: n}
	}
	return nil
}

func isNilNode(f Filter) bool {
	n, ok := f.(*Node)
	return ok && n == nil
}

func cloneAll(children []Filter) []Filter {
	if len(children) == 0 {
		return nil
	}
	out := make([]Filter, len(children))
	for i, c := range children {
		out[i] = c.Clone()
	}
	return out
}

func (n *Node) isFilter() {}

// Operator returns the node's logical operator.
func (n *Node) Operator() LogicalOperator {
	return n.op
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns a copy of the i-th child.
func (n *Node) Child(i int) Filter {
	return n.children[i].Clone()
}

// Children returns copies of every direct child, in order.
func (n *Node) Children() []Filter {
	return cloneAll(n.children)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() Filter {
	return &Node{op: n.op, children: cloneAll(n.children)}
}

// Evaluate evaluates every child and combines the results.
func (n *Node) Evaluate(s *Subject) bool {
	switch n.op {
	case LogicalAnd:
		ok := true
		for _, c := range n.children {
			ok = c.Evaluate(s) && ok
		}
		return ok
	case LogicalOr:
		ok := false
		for _, c := range n.children {
			ok = c.Evaluate(s) || ok
		}
		return ok
	case LogicalNot:
		return !n.children[0].Evaluate(s)
	default:
		return false
	}
}

func (n *Node) String() string {
	return Expression(n)
}

// WithOperator returns a copy of the node using op.
func (n *Node) WithOperator(op LogicalOperator) (*Node, error) {
	return NewNode(op, n.children...)
}

// Append returns a copy of the node with child added last.
func (n *Node) Append(child Filter) (*Node, error) {
	return n.Insert(len(n.children), child)
}

// Insert returns a copy of the node with child inserted at index i.
func (n *Node) Insert(i int, child Filter) (*Node, error) {
	if i < 0 || i > len(n.children) {
		return nil, indexError(i, len(n.children)+1)
	}
	return NewNode(n.op, slices.Insert(slices.Clone(n.children), i, child)...)
}

// Remove returns a copy of the node without its i-th child.
func (n *Node) Remove(i int) (*Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, indexError(i, len(n.children))
	}
	return NewNode(n.op, slices.Delete(slices.Clone(n.children), i, i+1)...)
}

// Replace returns a copy of the node with its i-th child swapped for child.
func (n *Node) Replace(i int, child Filter) (*Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, indexError(i, len(n.children))
	}
	next := slices.Clone(n.children)
	next[i] = child
	return NewNode(n.op, next...)
}

// Move returns a copy of the node with the child at from moved to index to.
func (n *Node) Move(from, to int) (*Node, error) {
	if from < 0 || from >= len(n.children) {
		return nil, indexError(from, len(n.children))
	}
	if to < 0 || to >= len(n.children) {
		return nil, indexError(to, len(n.children))
	}
	next := slices.Clone(n.children)
	c := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, c)
	return NewNode(n.op, next...)
}

func indexError(i, n int) error {
	return errors.Errorf("child index %d out of range [0, %d)", i, n)
}
