package filter

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArity is the root cause of every construction error: a NOT node
	// must have exactly one child.
	ErrInvalidArity = errors.New("invalid logical node arity")
	// ErrNotCollapsible is returned when a tree cannot be shown as a flat list of
	// conditions.
	ErrNotCollapsible = errors.New("filter cannot be simplified")
	// ErrMalformedPreset is the root cause of every decode failure other than an
	// unsupported version.
	ErrMalformedPreset = errors.New("corrupted preset")
	// ErrUnsupportedVersion is returned for presets with an unknown format_version.
	ErrUnsupportedVersion = errors.New("unsupported preset format version")
	// ErrInvalidOperator is returned for comparison operators outside Operators.
	ErrInvalidOperator = errors.New("invalid comparison operator")
	// ErrEmptyFilter is returned when encoding a nil filter.
	ErrEmptyFilter = errors.New("no filter to encode")
	// ErrNodeNotFound is returned by the editor for unknown node IDs.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidPaste is returned when pasting a cut item into itself or its descendants.
	ErrInvalidPaste = errors.New("cannot paste an item into itself or its descendants")
)

// ConstructionError reports an attempt to build a logical node with an invalid
// number of children.
type ConstructionError struct {
	Operator LogicalOperator
	Children int
	// NodeID is set when the error came from an editor node.
	NodeID string
}

func (e *ConstructionError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s node %s must have exactly one child, has %d", e.Operator, e.NodeID, e.Children)
	}
	return fmt.Sprintf("%s node must have exactly one child, has %d", e.Operator, e.Children)
}

func (e *ConstructionError) Cause() error  { return ErrInvalidArity }
func (e *ConstructionError) Unwrap() error { return ErrInvalidArity }

// CollapseError explains why a filter tree cannot be flattened to simple mode.
type CollapseError struct {
	Reason string
}

func (e *CollapseError) Error() string {
	return fmt.Sprintf("cannot simplify: %s", e.Reason)
}

func (e *CollapseError) Cause() error  { return ErrNotCollapsible }
func (e *CollapseError) Unwrap() error { return ErrNotCollapsible }

// DecodeError identifies the node and field of a preset document which failed
// to decode.
type DecodeError struct {
	// Path is the JSONPath of the failing node, eg. "$.filter.conditions[1]".
	Path string
	// Field is the failing field within the node, if any.
	Field  string
	Reason string

	cause error
	// err is the underlying failure, if any, eg. a *ConstructionError.
	err error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s.%s: %s", e.cause, e.Path, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.cause, e.Path, e.Reason)
}

func (e *DecodeError) Cause() error { return e.cause }

// Unwrap exposes both the root cause and any underlying failure, so that
// errors.Is(err, ErrInvalidArity) holds for a NOT node with the wrong arity.
func (e *DecodeError) Unwrap() []error {
	if e.err == nil {
		return []error{e.cause}
	}
	return []error{e.cause, e.err}
}

// EncodeError identifies the node and field of a filter which cannot be encoded.
type EncodeError struct {
	// Path is the JSONPath the node would be written at, eg. "$.filter.conditions[0]".
	Path   string
	Field  string
	Reason string

	err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode %s.%s: %s", e.Path, e.Field, e.Reason)
}

func (e *EncodeError) Cause() error  { return e.err }
func (e *EncodeError) Unwrap() error { return e.err }
