package filter

import (
	"slices"
)

// Filter is the root unit handed to the evaluator, converter and codec: either a
// Condition or a *Node.  Filters are values; they're never modified after creation
// and every tree owns its children exclusively.
type Filter interface {
	// Evaluate returns true if the subject passes the filter.  Evaluation never
	// modifies the subject and never fails: missing data is a non-match.
	Evaluate(s *Subject) bool
	// Clone returns a deep copy sharing no slices with the receiver.
	Clone() Filter

	isFilter()
}

// ConditionKind discriminates the six leaf predicate types.  The values double as
// the "type" tag within presets.
type ConditionKind string

const (
	KindSubjectID   ConditionKind = "subject_id"
	KindModality    ConditionKind = "modality"
	KindEntity      ConditionKind = "entity"
	KindParticipant ConditionKind = "participant_attribute"
	KindChannel     ConditionKind = "channel_attribute"
	KindElectrode   ConditionKind = "electrode_attribute"
)

// Condition is a leaf predicate evaluated against a single subject.
type Condition interface {
	Filter

	Kind() ConditionKind
	// Inert returns true when the condition has no criteria configured.  Inert
	// conditions match every subject, including subjects without any data.
	Inert() bool
}

// cloneCondition deep copies a condition, keeping its static type.
func cloneCondition(c Condition) Condition {
	return c.Clone().(Condition)
}

// SubjectIDCondition matches subjects whose ID is in IDs.  The order of IDs is
// irrelevant and an empty set matches every subject.
type SubjectIDCondition struct {
	IDs []string
}

// SubjectIDs returns a SubjectIDCondition accepting the given IDs.
func SubjectIDs(ids ...string) SubjectIDCondition {
	return SubjectIDCondition{IDs: ids}
}

func (c SubjectIDCondition) Kind() ConditionKind { return KindSubjectID }
func (c SubjectIDCondition) Inert() bool         { return len(c.IDs) == 0 }
func (c SubjectIDCondition) isFilter()           {}

func (c SubjectIDCondition) Clone() Filter {
	return SubjectIDCondition{IDs: slices.Clone(c.IDs)}
}

func (c SubjectIDCondition) Evaluate(s *Subject) bool {
	if c.Inert() {
		return true
	}
	if s == nil {
		return false
	}
	return slices.Contains(c.IDs, s.ID)
}

// ModalityCondition matches subjects with at least one file, at subject or session
// level, whose modality is in Modalities.
type ModalityCondition struct {
	Modalities []string
}

// Modality returns a ModalityCondition accepting any of the given modalities.
func Modality(modalities ...string) ModalityCondition {
	return ModalityCondition{Modalities: modalities}
}

func (c ModalityCondition) Kind() ConditionKind { return KindModality }
func (c ModalityCondition) Inert() bool         { return len(c.Modalities) == 0 }
func (c ModalityCondition) isFilter()           {}

func (c ModalityCondition) Clone() Filter {
	return ModalityCondition{Modalities: slices.Clone(c.Modalities)}
}

func (c ModalityCondition) Evaluate(s *Subject) bool {
	if c.Inert() {
		return true
	}
	return Resolve(s, CategoryModality, "").Any(func(v any) bool {
		return slices.Contains(c.Modalities, v.(string))
	})
}

// EntityCondition matches subjects where any occurrence of the entity passes the
// operator against any of Values.
//
// A single comparison value is a one element set.  An unset Operator means equals,
// which is how presets written before entity operators existed are evaluated.
type EntityCondition struct {
	Entity   string
	Operator Operator
	Values   []string
}

// Entity returns an EntityCondition for the given entity code.
func Entity(code string, op Operator, values ...string) EntityCondition {
	return EntityCondition{Entity: code, Operator: op, Values: values}
}

func (c EntityCondition) Kind() ConditionKind { return KindEntity }
func (c EntityCondition) Inert() bool         { return c.Entity == "" || len(c.Values) == 0 }
func (c EntityCondition) isFilter()           {}

func (c EntityCondition) Clone() Filter {
	return EntityCondition{Entity: c.Entity, Operator: c.Operator, Values: slices.Clone(c.Values)}
}

func (c EntityCondition) Evaluate(s *Subject) bool {
	if c.Inert() {
		return true
	}
	op := c.Operator.or(OpEquals)
	return Resolve(s, CategoryEntity, c.Entity).Any(func(v any) bool {
		for _, want := range c.Values {
			if compare(v, op, want) {
				return true
			}
		}
		return false
	})
}

// ParticipantAttributeCondition compares a participants.tsv column against Value.
type ParticipantAttributeCondition struct {
	Attribute string
	Operator  Operator
	Value     string
}

// Participant returns a ParticipantAttributeCondition.
func Participant(attribute string, op Operator, value string) ParticipantAttributeCondition {
	return ParticipantAttributeCondition{Attribute: attribute, Operator: op, Value: value}
}

func (c ParticipantAttributeCondition) Kind() ConditionKind { return KindParticipant }
func (c ParticipantAttributeCondition) Inert() bool {
	return c.Attribute == "" || c.Value == ""
}
func (c ParticipantAttributeCondition) isFilter()     {}
func (c ParticipantAttributeCondition) Clone() Filter { return c }

func (c ParticipantAttributeCondition) Evaluate(s *Subject) bool {
	if c.Inert() {
		return true
	}
	return matchAttribute(s, CategoryParticipant, c.Attribute, c.Operator, c.Value)
}

// ChannelAttributeCondition matches subjects with at least one row, across all of
// their iEEG channel tables, whose Attribute column passes the operator.
type ChannelAttributeCondition struct {
	Attribute string
	Operator  Operator
	Value     string
}

// Channel returns a ChannelAttributeCondition.
func Channel(attribute string, op Operator, value string) ChannelAttributeCondition {
	return ChannelAttributeCondition{Attribute: attribute, Operator: op, Value: value}
}

func (c ChannelAttributeCondition) Kind() ConditionKind { return KindChannel }
func (c ChannelAttributeCondition) Inert() bool         { return c.Attribute == "" || c.Value == "" }
func (c ChannelAttributeCondition) isFilter()           {}
func (c ChannelAttributeCondition) Clone() Filter       { return c }

func (c ChannelAttributeCondition) Evaluate(s *Subject) bool {
	if c.Inert() {
		return true
	}
	return matchAttribute(s, CategoryChannel, c.Attribute, c.Operator, c.Value)
}

// ElectrodeAttributeCondition is the electrode table counterpart of
// ChannelAttributeCondition.
type ElectrodeAttributeCondition struct {
	Attribute string
	Operator  Operator
	Value     string
}

// Electrode returns an ElectrodeAttributeCondition.
func Electrode(attribute string, op Operator, value string) ElectrodeAttributeCondition {
	return ElectrodeAttributeCondition{Attribute: attribute, Operator: op, Value: value}
}

func (c ElectrodeAttributeCondition) Kind() ConditionKind { return KindElectrode }
func (c ElectrodeAttributeCondition) Inert() bool         { return c.Attribute == "" || c.Value == "" }
func (c ElectrodeAttributeCondition) isFilter()           {}
func (c ElectrodeAttributeCondition) Clone() Filter       { return c }

func (c ElectrodeAttributeCondition) Evaluate(s *Subject) bool {
	if c.Inert() {
		return true
	}
	return matchAttribute(s, CategoryElectrode, c.Attribute, c.Operator, c.Value)
}

func matchAttribute(s *Subject, cat Category, attribute string, op Operator, value string) bool {
	op = op.or(OpEquals)
	return Resolve(s, cat, attribute).Any(func(v any) bool {
		return compare(v, op, value)
	})
}
