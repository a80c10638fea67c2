package filter

// Category identifies where an attribute value is taken from on a subject.
type Category int

const (
	CategoryNone Category = iota

	CategorySubjectID
	CategoryModality
	CategoryEntity
	CategoryParticipant
	CategoryChannel
	CategoryElectrode
)

func (c Category) String() string {
	switch c {
	case CategorySubjectID:
		return "subject_id"
	case CategoryModality:
		return "modality"
	case CategoryEntity:
		return "entity"
	case CategoryParticipant:
		return "participant"
	case CategoryChannel:
		return "channel"
	case CategoryElectrode:
		return "electrode"
	default:
		return "none"
	}
}

// sessionEntity is resolved against session identifiers instead of file entities.
const sessionEntity = "ses"

// Candidates are the values a condition compares against for a single subject.
//
// Absent candidates mean the subject carries no data of the requested kind at all;
// this is reported separately from an empty, present value list so that callers can
// tell "no participants.tsv row" apart from "row without this column".
type Candidates struct {
	values  []any
	present bool
}

// Absent returns true when the subject had no data for the request.
func (c Candidates) Absent() bool {
	return !c.present
}

// Values returns the resolved values.  Scalars resolve to a single element.
func (c Candidates) Values() []any {
	return c.values
}

// Any returns true if fn returns true for any value.  Absent candidates never match.
func (c Candidates) Any(fn func(v any) bool) bool {
	if !c.present {
		return false
	}
	for _, v := range c.values {
		if fn(v) {
			return true
		}
	}
	return false
}

func absent() Candidates {
	return Candidates{}
}

// Resolve returns the comparison candidates for the given category and name.
//
// Participant attributes resolve to a single scalar.  Entities resolve to every
// occurrence across files (or session IDs for "ses").  Channel and electrode
// attributes resolve to the named column across every row of every table of that
// kind, skipping rows without the column.
func Resolve(s *Subject, category Category, name string) Candidates {
	if s == nil {
		return absent()
	}

	switch category {
	case CategorySubjectID:
		return Candidates{values: []any{s.ID}, present: true}
	case CategoryModality:
		return resolveModality(s)
	case CategoryEntity:
		return resolveEntity(s, name)
	case CategoryParticipant:
		if s.Participant == nil {
			return absent()
		}
		v, ok := s.Participant[name]
		if !ok || v == nil {
			return absent()
		}
		return Candidates{values: []any{v}, present: true}
	case CategoryChannel:
		if s.IEEG == nil || s.IEEG.Channels == nil {
			return absent()
		}
		return resolveRows(s.IEEG.Channels, name)
	case CategoryElectrode:
		if s.IEEG == nil || s.IEEG.Electrodes == nil {
			return absent()
		}
		return resolveRows(s.IEEG.Electrodes, name)
	default:
		return absent()
	}
}

func resolveModality(s *Subject) Candidates {
	c := Candidates{}
	s.allFiles(func(f *File) bool {
		c.present = true
		if f.Modality != "" {
			c.values = append(c.values, f.Modality)
		}
		return true
	})
	return c
}

func resolveEntity(s *Subject, code string) Candidates {
	c := Candidates{}
	if code == sessionEntity {
		for _, ses := range s.Sessions {
			if ses.ID == "" {
				continue
			}
			c.present = true
			c.values = append(c.values, ses.ID)
		}
		return c
	}

	s.allFiles(func(f *File) bool {
		if v, ok := f.Entities[code]; ok {
			c.present = true
			c.values = append(c.values, v)
		}
		return true
	})
	return c
}

func resolveRows(tables map[string][]Row, column string) Candidates {
	c := Candidates{present: true}
	for _, rows := range tables {
		for _, row := range rows {
			v, ok := row[column]
			if !ok {
				continue
			}
			c.values = append(c.values, v)
		}
	}
	return c
}
