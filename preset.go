package filter

import (
	"fmt"
	"strconv"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/pkg/errors"
)

// FormatVersion is the preset envelope version written by this package.
const FormatVersion = "1.0"

// supportedVersions lists every format_version which can be decoded.
var supportedVersions = map[string]struct{}{
	FormatVersion: {},
}

// Mode is the editing mode a preset was saved from.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeAdvanced Mode = "advanced"
)

func (m Mode) Valid() bool {
	return m == ModeSimple || m == ModeAdvanced
}

// typeLogical is the "type" tag of encoded logical nodes.
const typeLogical = "logical_operation"

// Preset is a decoded preset document.
type Preset struct {
	Version string
	Mode    Mode
	Root    Filter
	// Legacy is true when the document had no envelope and was upgraded on decode.
	Legacy bool
}

// ModeFor returns the mode a filter is naturally edited in: simple when it's
// collapsible, advanced otherwise.
func ModeFor(f Filter) Mode {
	if IsCollapsible(f) {
		return ModeSimple
	}
	return ModeAdvanced
}

// Marshal encodes root and mode as an indented JSON preset document.
func Marshal(root Filter, mode Mode) ([]byte, error) {
	doc, err := EncodeDocument(root, mode)
	if err != nil {
		return nil, err
	}
	return oj.Marshal(doc, &ojg.Options{Indent: 2, Sort: true})
}

// Unmarshal decodes a JSON preset document.
func Unmarshal(data []byte) (*Preset, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, &DecodeError{
			Path:   jp.R().String(),
			Reason: fmt.Sprintf("invalid JSON: %s", err),
			cause:  ErrMalformedPreset,
		}
	}
	return DecodeDocument(doc)
}

// EncodeDocument returns the structured preset document for root:
//
//	{"format_version": "1.0", "mode": "simple", "filter": {...}}
//
// Simple mode can only be recorded for collapsible filters.  Conditions with an
// unknown operator fail with an *EncodeError, as they could never be decoded.
func EncodeDocument(root Filter, mode Mode) (map[string]any, error) {
	if root == nil || isNilNode(root) {
		return nil, ErrEmptyFilter
	}
	if !mode.Valid() {
		return nil, errors.Errorf("invalid preset mode %q", mode)
	}
	if err := checkEncodable(root, jp.R().C("filter")); err != nil {
		return nil, err
	}
	if mode == ModeSimple {
		if err := collapseCheck(root); err != nil {
			return nil, err
		}
	}
	return map[string]any{
		"format_version": FormatVersion,
		"mode":           string(mode),
		"filter":         encodeFilter(root),
	}, nil
}

// checkEncodable returns an *EncodeError for the first condition, in document
// order, whose operator can't be written.
func checkEncodable(f Filter, path jp.Expr) error {
	switch v := f.(type) {
	case *Node:
		for i, c := range v.children {
			if err := checkEncodable(c, path.C("conditions").N(i)); err != nil {
				return err
			}
		}
	case EntityCondition:
		return checkOperator(v.Operator, path)
	case ParticipantAttributeCondition:
		return checkOperator(v.Operator, path)
	case ChannelAttributeCondition:
		return checkOperator(v.Operator, path)
	case ElectrodeAttributeCondition:
		return checkOperator(v.Operator, path)
	}
	return nil
}

func checkOperator(op Operator, path jp.Expr) error {
	if op.or(OpEquals).Valid() {
		return nil
	}
	return &EncodeError{
		Path:   path.String(),
		Field:  "operator",
		Reason: fmt.Sprintf("invalid operator %q", op),
		err:    ErrInvalidOperator,
	}
}

func encodeFilter(f Filter) map[string]any {
	switch v := f.(type) {
	case *Node:
		children := make([]any, len(v.children))
		for i, c := range v.children {
			children[i] = encodeFilter(c)
		}
		return map[string]any{
			"type":       typeLogical,
			"operator":   string(v.op),
			"conditions": children,
		}
	case SubjectIDCondition:
		return map[string]any{
			"type": string(KindSubjectID),
			"ids":  stringList(v.IDs),
		}
	case ModalityCondition:
		return map[string]any{
			"type":       string(KindModality),
			"modalities": stringList(v.Modalities),
		}
	case EntityCondition:
		return map[string]any{
			"type":        string(KindEntity),
			"entity_code": v.Entity,
			"operator":    string(v.Operator.or(OpEquals)),
			"values":      stringList(v.Values),
		}
	case ParticipantAttributeCondition:
		return encodeAttribute(KindParticipant, v.Attribute, v.Operator, v.Value)
	case ChannelAttributeCondition:
		return encodeAttribute(KindChannel, v.Attribute, v.Operator, v.Value)
	case ElectrodeAttributeCondition:
		return encodeAttribute(KindElectrode, v.Attribute, v.Operator, v.Value)
	}
	// Filter is sealed; this is unreachable for values built by this package.
	panic(fmt.Sprintf("unknown filter type %T", f))
}

func encodeAttribute(kind ConditionKind, attribute string, op Operator, value string) map[string]any {
	return map[string]any{
		"type":           string(kind),
		"attribute_name": attribute,
		"operator":       string(op.or(OpEquals)),
		"value":          value,
	}
}

func stringList(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// DecodeDocument decodes a structured preset document, as produced by
// EncodeDocument or by parsing preset JSON.
//
// Documents without a "mode" are given the mode ModeFor infers.  Documents without
// an envelope, holding a bare filter as older versions saved them, are upgraded.
// A document claiming simple mode for a non-collapsible filter is opened in
// advanced mode so that no logic is hidden.
func DecodeDocument(doc any) (*Preset, error) {
	root := jp.R()
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, malformed(root, "", "preset must be an object")
	}

	rawVersion, hasVersion := m["format_version"]
	if !hasVersion {
		if _, bare := m["type"]; bare {
			f, err := decodeFilter(m, root)
			if err != nil {
				return nil, err
			}
			return &Preset{Version: FormatVersion, Mode: ModeFor(f), Root: f, Legacy: true}, nil
		}
		return nil, malformed(root, "format_version", "missing required field")
	}

	version, ok := rawVersion.(string)
	if !ok {
		return nil, malformed(root, "format_version", "must be a string")
	}
	if _, ok := supportedVersions[version]; !ok {
		return nil, &DecodeError{
			Path:   root.String(),
			Field:  "format_version",
			Reason: fmt.Sprintf("version %q is not supported", version),
			cause:  ErrUnsupportedVersion,
		}
	}

	rawFilter, ok := m["filter"]
	if !ok {
		return nil, malformed(root, "filter", "missing required field")
	}
	f, err := decodeFilter(rawFilter, root.C("filter"))
	if err != nil {
		return nil, err
	}

	mode := ModeFor(f)
	if rawMode, ok := m["mode"]; ok {
		s, _ := rawMode.(string)
		declared := Mode(s)
		if !declared.Valid() {
			return nil, malformed(root, "mode", fmt.Sprintf("invalid mode %v", rawMode))
		}
		if declared == ModeAdvanced {
			mode = ModeAdvanced
		}
	}

	return &Preset{Version: version, Mode: mode, Root: f}, nil
}

func decodeFilter(v any, path jp.Expr) (Filter, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, malformed(path, "", "filter must be an object")
	}
	kind, err := requireString(m, "type", path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case typeLogical:
		return decodeNode(m, path)
	case string(KindSubjectID):
		ids, err := decodeSet(m, path, "ids", "subject_ids", "subject_id")
		if err != nil {
			return nil, err
		}
		return SubjectIDCondition{IDs: ids}, nil
	case string(KindModality):
		mods, err := decodeSet(m, path, "modalities", "", "modality")
		if err != nil {
			return nil, err
		}
		return ModalityCondition{Modalities: mods}, nil
	case string(KindEntity):
		code, err := requireString(m, "entity_code", path)
		if err != nil {
			return nil, err
		}
		op, err := decodeOperator(m, path)
		if err != nil {
			return nil, err
		}
		vals, err := decodeSet(m, path, "values", "", "value")
		if err != nil {
			return nil, err
		}
		return EntityCondition{Entity: code, Operator: op, Values: vals}, nil
	case string(KindParticipant), string(KindChannel), string(KindElectrode):
		attr, err := requireString(m, "attribute_name", path)
		if err != nil {
			return nil, err
		}
		op, err := decodeOperator(m, path)
		if err != nil {
			return nil, err
		}
		val := ""
		if raw, ok := m["value"]; ok {
			if val, ok = scalarString(raw); !ok {
				return nil, malformed(path, "value", "must be a string or number")
			}
		}
		switch ConditionKind(kind) {
		case KindParticipant:
			return ParticipantAttributeCondition{Attribute: attr, Operator: op, Value: val}, nil
		case KindChannel:
			return ChannelAttributeCondition{Attribute: attr, Operator: op, Value: val}, nil
		default:
			return ElectrodeAttributeCondition{Attribute: attr, Operator: op, Value: val}, nil
		}
	}

	return nil, malformed(path, "type", fmt.Sprintf("unknown filter type %q", kind))
}

func decodeNode(m map[string]any, path jp.Expr) (Filter, error) {
	rawOp, err := requireString(m, "operator", path)
	if err != nil {
		return nil, err
	}
	op := LogicalOperator(rawOp)
	if !op.Valid() {
		return nil, malformed(path, "operator", fmt.Sprintf("invalid logical operator %q", rawOp))
	}

	raw, ok := m["conditions"]
	if !ok {
		return nil, malformed(path, "conditions", "missing required field")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, malformed(path, "conditions", "must be a list")
	}

	children := make([]Filter, len(list))
	for i, item := range list {
		child, err := decodeFilter(item, path.C("conditions").N(i))
		if err != nil {
			return nil, err
		}
		children[i] = child
	}

	n, err := NewNode(op, children...)
	if err != nil {
		derr := malformed(path, "conditions", err.Error())
		derr.err = err
		return nil, derr
	}
	return n, nil
}

func decodeOperator(m map[string]any, path jp.Expr) (Operator, error) {
	raw, ok := m["operator"]
	if !ok {
		return OpEquals, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", malformed(path, "operator", "must be a string")
	}
	op, err := ParseOperator(s)
	if err != nil {
		derr := malformed(path, "operator", err.Error())
		derr.err = err
		return "", derr
	}
	return op, nil
}

// decodeSet reads a value set from field, falling back to the legacy list and
// scalar field names used by older presets.  Empty legacy scalars yield no values.
func decodeSet(m map[string]any, path jp.Expr, field, legacyList, legacyScalar string) ([]string, error) {
	for _, name := range []string{field, legacyList} {
		if name == "" {
			continue
		}
		raw, ok := m[name]
		if !ok {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, malformed(path, name, "must be a list")
		}
		if len(list) == 0 {
			return nil, nil
		}
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := scalarString(item)
			if !ok {
				return nil, malformed(path.C(name).N(i), "", "must be a string or number")
			}
			out[i] = s
		}
		return out, nil
	}

	if raw, ok := m[legacyScalar]; ok {
		s, ok := scalarString(raw)
		if !ok {
			return nil, malformed(path, legacyScalar, "must be a string or number")
		}
		if s == "" {
			return nil, nil
		}
		return []string{s}, nil
	}

	if field == "values" {
		return nil, nil
	}
	return nil, malformed(path, field, "missing required field")
}

func requireString(m map[string]any, field string, path jp.Expr) (string, error) {
	raw, ok := m[field]
	if !ok {
		return "", malformed(path, field, "missing required field")
	}
	s, ok := raw.(string)
	if !ok {
		return "", malformed(path, field, "must be a string")
	}
	return s, nil
}

// scalarString returns the string form of a JSON string or number.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	}
	return "", false
}

func malformed(path jp.Expr, field, reason string) *DecodeError {
	return &DecodeError{
		Path:   path.String(),
		Field:  field,
		Reason: reason,
		cause:  ErrMalformedPreset,
	}
}
