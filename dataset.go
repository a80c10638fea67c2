package filter

import (
	"sort"
)

// Dataset is a fully materialized BIDS dataset as handed over by a loader.  Filters
// never modify a Dataset; Apply returns a projection with a new subject slice.
type Dataset struct {
	// Root is the dataset's root directory.
	Root string
	// Description holds the parsed dataset_description.json.
	Description map[string]any
	// Files lists dataset-level files (README, CHANGES, participants.tsv, ...).
	Files []string
	// DerivativesRoot links the dataset to its derivatives folder, if any.
	DerivativesRoot string
	// Subjects are kept in loader order.  Every result preserves this order.
	Subjects []Subject
}

// Subject returns the subject with the given identifier.
func (d *Dataset) Subject(id string) (*Subject, bool) {
	for i := range d.Subjects {
		if d.Subjects[i].ID == id {
			return &d.Subjects[i], true
		}
	}
	return nil, false
}

// Subject is a single participant within a dataset.
type Subject struct {
	ID       string
	Sessions []Session
	// Files are subject-level files which do not belong to a session.
	Files []File
	// Participant holds the participants.tsv row for the subject.  A nil map means
	// the subject has no participant data at all, which is distinct from an empty row.
	Participant map[string]any
	// IEEG is nil when no iEEG sidecar tables were found (or loaded) for the subject.
	IEEG *IEEGData
	// Derivatives are carried along when subjects are projected.
	Derivatives []Derivative
}

type Session struct {
	ID    string
	Files []File
}

type File struct {
	Path      string
	Modality  string
	Suffix    string
	Extension string
	// Entities maps BIDS entity codes to values, eg. {"task": "rest", "run": "01"}.
	Entities map[string]string
}

// IEEGData holds iEEG sidecar tables keyed by the table's identity (usually the
// path of the _channels.tsv or _electrodes.tsv file).
type IEEGData struct {
	Channels   map[string][]Row
	Electrodes map[string][]Row
}

// Row is a single TSV row, mapping column name to the raw cell value.
type Row map[string]string

type Derivative struct {
	Pipeline string
	Files    []File
}

// allFiles calls fn for every file at subject and session level, stopping early
// if fn returns false.
func (s *Subject) allFiles(fn func(f *File) bool) {
	for i := range s.Files {
		if !fn(&s.Files[i]) {
			return
		}
	}
	for i := range s.Sessions {
		for j := range s.Sessions[i].Files {
			if !fn(&s.Sessions[i].Files[j]) {
				return
			}
		}
	}
}

// ParticipantAttributes returns the sorted set of participant attribute names seen
// across the dataset.
func ParticipantAttributes(d *Dataset) []string {
	seen := map[string]struct{}{}
	for _, s := range d.Subjects {
		for k := range s.Participant {
			seen[k] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// ChannelAttributes returns the sorted set of column names found in channel tables.
func ChannelAttributes(d *Dataset) []string {
	return tableColumns(d, func(i *IEEGData) map[string][]Row { return i.Channels })
}

// ElectrodeAttributes returns the sorted set of column names found in electrode tables.
func ElectrodeAttributes(d *Dataset) []string {
	return tableColumns(d, func(i *IEEGData) map[string][]Row { return i.Electrodes })
}

func tableColumns(d *Dataset, tables func(*IEEGData) map[string][]Row) []string {
	seen := map[string]struct{}{}
	for _, s := range d.Subjects {
		if s.IEEG == nil {
			continue
		}
		for _, rows := range tables(s.IEEG) {
			for _, row := range rows {
				for k := range row {
					seen[k] = struct{}{}
				}
			}
		}
	}
	return sortedKeys(seen)
}

// EntityValues returns every value the given entity code takes in the dataset.
func EntityValues(d *Dataset, code string) []string {
	seen := map[string]struct{}{}
	for i := range d.Subjects {
		for _, v := range resolveEntity(&d.Subjects[i], code).values {
			seen[v.(string)] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Modalities returns every modality tag present in the dataset.
func Modalities(d *Dataset) []string {
	seen := map[string]struct{}{}
	for i := range d.Subjects {
		d.Subjects[i].allFiles(func(f *File) bool {
			if f.Modality != "" {
				seen[f.Modality] = struct{}{}
			}
			return true
		})
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
