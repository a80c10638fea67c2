package filter

import (
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a structural hash of f.
//
// Two filters have the same fingerprint when they have the same shape, operators
// and fields.  Members of a condition's value set are hashed in sorted order, as
// sets are order-irrelevant, while children of a node are hashed in order.  Note
// that fingerprints are hashes: equal fingerprints are overwhelmingly likely but
// not guaranteed to mean equal filters, so use Equal when exactness matters.
func Fingerprint(f Filter) uint64 {
	d := xxhash.New()
	writeFingerprint(d, f)
	return d.Sum64()
}

// Equal returns true if both filters are structurally equal: same operators and
// ordered children, and the same fields per condition with sets compared without
// regard to order.
func Equal(a, b Filter) bool {
	return canonical(a) == canonical(b)
}

func writeFingerprint(d *xxhash.Digest, f Filter) {
	_, _ = d.WriteString(canonical(f))
}

// canonical returns the canonical textual form used for hashing and equality.
// Every string is length-prefixed so that no two structures share a form.
func canonical(f Filter) string {
	b := make([]byte, 0, 64)
	return string(appendCanonical(b, f))
}

func appendCanonical(b []byte, f Filter) []byte {
	if f == nil || isNilNode(f) {
		return append(b, 'N')
	}

	switch v := f.(type) {
	case *Node:
		b = append(b, 'L')
		b = appendField(b, string(v.op))
		b = strconv.AppendInt(b, int64(len(v.children)), 10)
		b = append(b, '(')
		for _, c := range v.children {
			b = appendCanonical(b, c)
		}
		return append(b, ')')
	case SubjectIDCondition:
		b = appendField(b, string(KindSubjectID))
		return appendSet(b, v.IDs)
	case ModalityCondition:
		b = appendField(b, string(KindModality))
		return appendSet(b, v.Modalities)
	case EntityCondition:
		b = appendField(b, string(KindEntity))
		b = appendField(b, v.Entity)
		b = appendField(b, string(v.Operator.or(OpEquals)))
		return appendSet(b, v.Values)
	case ParticipantAttributeCondition:
		return appendAttribute(b, KindParticipant, v.Attribute, v.Operator, v.Value)
	case ChannelAttributeCondition:
		return appendAttribute(b, KindChannel, v.Attribute, v.Operator, v.Value)
	case ElectrodeAttributeCondition:
		return appendAttribute(b, KindElectrode, v.Attribute, v.Operator, v.Value)
	}
	return append(b, '?')
}

func appendAttribute(b []byte, kind ConditionKind, attribute string, op Operator, value string) []byte {
	b = appendField(b, string(kind))
	b = appendField(b, attribute)
	b = appendField(b, string(op.or(OpEquals)))
	return appendField(b, value)
}

func appendSet(b []byte, vals []string) []byte {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	b = strconv.AppendInt(b, int64(len(sorted)), 10)
	b = append(b, '[')
	for _, v := range sorted {
		b = appendField(b, v)
	}
	return append(b, ']')
}

func appendField(b []byte, s string) []byte {
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, ':')
	return append(b, s...)
}
