package filter

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Editor is a mutable, id-stable filter tree for interactive editing.
//
// The editor is kept apart from the immutable Filter values used for evaluation and
// encoding: callers edit freely and call Build to obtain a Filter.  Drafts may
// contain a NOT group which has not been given its child yet; such drafts fail to
// Build.  A NOT group never accepts a second child.
//
// Editors aren't safe for concurrent use.
type Editor struct {
	roots []*editNode
	index map[string]*editNode

	clipboard *editNode
	// cutID is the ID of the node which is removed when the clipboard is pasted.
	cutID string

	clean uint64
}

type editNode struct {
	id       string
	cond     Condition
	op       LogicalOperator
	children []*editNode
	parent   *editNode
}

func (n *editNode) group() bool {
	return n.cond == nil
}

// NodeView is a read-only snapshot of an editor node.
type NodeView struct {
	ID string
	// Condition is nil for groups.
	Condition Condition
	// Operator is empty for conditions.
	Operator LogicalOperator
	// Children holds the IDs of the node's children, in order.
	Children []string
	// Parent is empty for top-level nodes.
	Parent string
}

func NewEditor() *Editor {
	e := &Editor{index: map[string]*editNode{}}
	e.MarkClean()
	return e
}

// Load replaces the editor's content with f and marks the editor clean.  A pending
// cut is dropped, as the cut node no longer exists; the clipboard is kept.
func (e *Editor) Load(f Filter) {
	e.roots = nil
	e.index = map[string]*editNode{}
	e.cutID = ""
	if f != nil && !isNilNode(f) {
		e.roots = []*editNode{e.fromFilter(f, nil)}
	}
	e.MarkClean()
}

// Reset removes every node.  The clipboard is kept.
func (e *Editor) Reset() {
	e.roots = nil
	e.index = map[string]*editNode{}
	e.cutID = ""
}

func (e *Editor) fromFilter(f Filter, parent *editNode) *editNode {
	n := &editNode{id: uuid.NewString(), parent: parent}
	switch v := f.(type) {
	case *Node:
		n.op = v.op
		for _, c := range v.children {
			n.children = append(n.children, e.fromFilter(c, n))
		}
	case Condition:
		n.cond = cloneCondition(v)
	}
	e.index[n.id] = n
	return n
}

// Roots returns the IDs of top-level nodes.
func (e *Editor) Roots() []string {
	return ids(e.roots)
}

// Node returns a snapshot of the node with the given ID.
func (e *Editor) Node(id string) (NodeView, bool) {
	n, ok := e.index[id]
	if !ok {
		return NodeView{}, false
	}
	v := NodeView{ID: n.id, Operator: n.op, Children: ids(n.children)}
	if n.cond != nil {
		v.Condition = cloneCondition(n.cond)
	}
	if n.parent != nil {
		v.Parent = n.parent.id
	}
	return v, true
}

func ids(nodes []*editNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.id
	}
	return out
}

// AddCondition appends c to the group parentID, or to the top level when parentID
// is empty, and returns the new node's ID.
func (e *Editor) AddCondition(parentID string, c Condition) (string, error) {
	if c == nil {
		return "", errors.Errorf("condition is nil")
	}
	n := &editNode{id: uuid.NewString(), cond: cloneCondition(c)}
	if err := e.attach(parentID, n, -1); err != nil {
		return "", err
	}
	return n.id, nil
}

// AddGroup appends an empty group to parentID, or to the top level when parentID is
// empty, and returns the new node's ID.
func (e *Editor) AddGroup(parentID string, op LogicalOperator) (string, error) {
	if !op.Valid() {
		return "", errors.Errorf("invalid logical operator %q", op)
	}
	n := &editNode{id: uuid.NewString(), op: op}
	if err := e.attach(parentID, n, -1); err != nil {
		return "", err
	}
	return n.id, nil
}

// attach inserts n, and its subtree, into parentID's children at idx (-1 appends).
func (e *Editor) attach(parentID string, n *editNode, idx int) error {
	if parentID == "" {
		n.parent = nil
		e.roots = insertAt(e.roots, idx, n)
		e.register(n)
		return nil
	}

	parent, ok := e.index[parentID]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "parent %s", parentID)
	}
	if !parent.group() {
		return errors.Errorf("cannot add children to condition %s", parentID)
	}
	if parent.op == LogicalNot && len(parent.children) >= 1 {
		return &ConstructionError{Operator: LogicalNot, Children: len(parent.children) + 1, NodeID: parent.id}
	}

	n.parent = parent
	parent.children = insertAt(parent.children, idx, n)
	e.register(n)
	return nil
}

func insertAt(nodes []*editNode, idx int, n *editNode) []*editNode {
	if idx < 0 || idx >= len(nodes) {
		return append(nodes, n)
	}
	return slices.Insert(nodes, idx, n)
}

func (e *Editor) register(n *editNode) {
	e.index[n.id] = n
	for _, c := range n.children {
		e.register(c)
	}
}

func (e *Editor) unregister(n *editNode) {
	delete(e.index, n.id)
	for _, c := range n.children {
		e.unregister(c)
	}
}

// SetCondition replaces the condition held by node id.
func (e *Editor) SetCondition(id string, c Condition) error {
	n, ok := e.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}
	if n.group() {
		return errors.Errorf("node %s is a group", id)
	}
	if c == nil {
		return errors.Errorf("condition is nil")
	}
	n.cond = cloneCondition(c)
	return nil
}

// SetOperator changes the operator of group id.  A group with more than one child
// can't become a NOT group.
func (e *Editor) SetOperator(id string, op LogicalOperator) error {
	n, ok := e.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}
	if !n.group() {
		return errors.Errorf("node %s is a condition", id)
	}
	if !op.Valid() {
		return errors.Errorf("invalid logical operator %q", op)
	}
	if op == LogicalNot && len(n.children) > 1 {
		return &ConstructionError{Operator: op, Children: len(n.children), NodeID: id}
	}
	n.op = op
	return nil
}

// Remove deletes node id and its subtree.
func (e *Editor) Remove(id string) error {
	n, ok := e.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}
	e.detach(n)
	if e.cutID != "" {
		if _, ok := e.index[e.cutID]; !ok {
			e.cutID = ""
		}
	}
	return nil
}

func (e *Editor) detach(n *editNode) {
	siblings := e.siblings(n)
	*siblings = slices.DeleteFunc(*siblings, func(s *editNode) bool { return s == n })
	e.unregister(n)
	n.parent = nil
}

func (e *Editor) siblings(n *editNode) *[]*editNode {
	if n.parent == nil {
		return &e.roots
	}
	return &n.parent.children
}

// MoveUp swaps node id with its previous sibling.  Moving the first sibling is a
// no-op.
func (e *Editor) MoveUp(id string) error {
	return e.move(id, -1)
}

// MoveDown swaps node id with its next sibling.  Moving the last sibling is a no-op.
func (e *Editor) MoveDown(id string) error {
	return e.move(id, 1)
}

func (e *Editor) move(id string, delta int) error {
	n, ok := e.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}
	siblings := *e.siblings(n)
	i := slices.Index(siblings, n)
	j := i + delta
	if j < 0 || j >= len(siblings) {
		return nil
	}
	siblings[i], siblings[j] = siblings[j], siblings[i]
	return nil
}

// Copy places a deep copy of node id on the clipboard.
func (e *Editor) Copy(id string) error {
	n, ok := e.index[id]
	if !ok {
		return errors.Wrapf(ErrNodeNotFound, "node %s", id)
	}
	e.clipboard = cloneEditNode(n, nil)
	e.cutID = ""
	return nil
}

// Cut places a deep copy of node id on the clipboard; the node itself is removed
// when the clipboard is pasted.
func (e *Editor) Cut(id string) error {
	if err := e.Copy(id); err != nil {
		return err
	}
	e.cutID = id
	return nil
}

// Cutting returns the ID of the node pending removal by Paste, if any.
func (e *Editor) Cutting() string {
	return e.cutID
}

// Paste inserts a fresh copy of the clipboard and returns its ID.  Pasting onto a
// group appends the copy as its last child; pasting onto a condition inserts the
// copy as the next sibling; an empty targetID appends at the top level.  A cut item
// can't be pasted into itself or its descendants.
func (e *Editor) Paste(targetID string) (string, error) {
	if e.clipboard == nil {
		return "", errors.Errorf("clipboard is empty")
	}

	var (
		parentID string
		idx      = -1
	)
	if targetID != "" {
		target, ok := e.index[targetID]
		if !ok {
			return "", errors.Wrapf(ErrNodeNotFound, "node %s", targetID)
		}
		if e.cutID != "" && e.isAncestorOrSelf(e.cutID, target) {
			return "", ErrInvalidPaste
		}
		if target.group() {
			parentID = target.id
		} else {
			if target.parent != nil {
				parentID = target.parent.id
			}
			idx = slices.Index(*e.siblings(target), target) + 1
		}
	}

	pasted := cloneEditNode(e.clipboard, nil)
	if err := e.attach(parentID, pasted, idx); err != nil {
		return "", err
	}

	if e.cutID != "" {
		if cut, ok := e.index[e.cutID]; ok {
			e.detach(cut)
		}
		e.clipboard = nil
		e.cutID = ""
	}
	return pasted.id, nil
}

func (e *Editor) isAncestorOrSelf(ancestorID string, n *editNode) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.id == ancestorID {
			return true
		}
	}
	return false
}

// cloneEditNode deep copies n, assigning fresh IDs throughout.
func cloneEditNode(n *editNode, parent *editNode) *editNode {
	c := &editNode{id: uuid.NewString(), op: n.op, parent: parent}
	if n.cond != nil {
		c.cond = cloneCondition(n.cond)
	}
	for _, child := range n.children {
		c.children = append(c.children, cloneEditNode(child, c))
	}
	return c
}

// Build returns the immutable filter for the editor's content.  No nodes build to
// nil.  Several top-level nodes are combined with an implicit AND.
func (e *Editor) Build() (Filter, error) {
	switch len(e.roots) {
	case 0:
		return nil, nil
	case 1:
		return build(e.roots[0])
	}

	children := make([]Filter, len(e.roots))
	for i, r := range e.roots {
		f, err := build(r)
		if err != nil {
			return nil, err
		}
		children[i] = f
	}
	return NewNode(LogicalAnd, children...)
}

func build(n *editNode) (Filter, error) {
	if !n.group() {
		return cloneCondition(n.cond), nil
	}
	children := make([]Filter, len(n.children))
	for i, c := range n.children {
		f, err := build(c)
		if err != nil {
			return nil, err
		}
		children[i] = f
	}
	node, err := NewNode(n.op, children...)
	if err != nil {
		if cerr, ok := err.(*ConstructionError); ok {
			cerr.NodeID = n.id
		}
		return nil, err
	}
	return node, nil
}

// MarkClean records the current content as saved.
func (e *Editor) MarkClean() {
	e.clean = e.fingerprint()
}

// Dirty returns true if the content changed since it was loaded or marked clean.
// Node IDs and moves which restore the previous order don't count as changes.
func (e *Editor) Dirty() bool {
	return e.fingerprint() != e.clean
}

func (e *Editor) fingerprint() uint64 {
	d := xxhash.New()
	for _, r := range e.roots {
		writeEditNode(d, r)
	}
	return d.Sum64()
}

func writeEditNode(d *xxhash.Digest, n *editNode) {
	if !n.group() {
		writeFingerprint(d, n.cond)
		return
	}
	_, _ = d.WriteString(fmt.Sprintf("G%d:%s(", len(n.children), n.op))
	for _, c := range n.children {
		writeEditNode(d, c)
	}
	_, _ = d.WriteString(")")
}
