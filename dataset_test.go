package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testDataset returns the fixture used throughout the package tests:
//
//	01: age=30 group=control, task=VISU, ses=pre, ieeg
//	02: age=20 group=patient, task=REST, ses=pre/post, anat + ieeg
//	03: no participant data, task=VISU, no files at session level
//	04: group=patient only, no files
func testDataset() *Dataset {
	return &Dataset{
		Root:            "/data/ds001",
		Description:     map[string]any{"Name": "ds001", "BIDSVersion": "1.8.0"},
		Files:           []string{"README", "participants.tsv"},
		DerivativesRoot: "/data/ds001/derivatives",
		Subjects: []Subject{
			{
				ID:          "01",
				Participant: map[string]any{"age": "30", "group": "control", "sex": "F"},
				Sessions: []Session{
					{
						ID: "pre",
						Files: []File{
							{
								Path:     "sub-01/ses-pre/ieeg/sub-01_ses-pre_task-VISU_run-01_ieeg.edf",
								Modality: "ieeg",
								Suffix:   "ieeg",
								Entities: map[string]string{"sub": "01", "ses": "pre", "task": "VISU", "run": "01"},
							},
						},
					},
				},
				IEEG: &IEEGData{
					Channels: map[string][]Row{
						"sub-01_channels.tsv": {
							{"name": "LA1", "type": "SEEG", "low_cutoff": "0.5"},
							{"name": "LA2", "type": "SEEG", "low_cutoff": "0.5"},
							{"name": "ECG1", "type": "ECG"},
						},
					},
					Electrodes: map[string][]Row{
						"sub-01_electrodes.tsv": {
							{"name": "LA1", "x": "-12.5", "hemisphere": "L"},
						},
					},
				},
			},
			{
				ID:          "02",
				Participant: map[string]any{"age": "20", "group": "patient", "sex": "M"},
				Files: []File{
					{
						Path:     "sub-02/anat/sub-02_T1w.nii.gz",
						Modality: "anat",
						Suffix:   "T1w",
						Entities: map[string]string{"sub": "02"},
					},
				},
				Sessions: []Session{
					{
						ID: "pre",
						Files: []File{
							{
								Path:     "sub-02/ses-pre/ieeg/sub-02_ses-pre_task-REST_ieeg.edf",
								Modality: "ieeg",
								Entities: map[string]string{"sub": "02", "ses": "pre", "task": "REST"},
							},
						},
					},
					{ID: "post"},
				},
				IEEG: &IEEGData{
					Channels: map[string][]Row{
						"sub-02_channels.tsv": {
							{"name": "RA1", "type": "ECOG", "low_cutoff": "1"},
						},
					},
				},
			},
			{
				ID: "03",
				Files: []File{
					{
						Path:     "sub-03/func/sub-03_task-VISU_bold.nii.gz",
						Modality: "func",
						Entities: map[string]string{"sub": "03", "task": "VISU"},
					},
				},
			},
			{
				ID:          "04",
				Participant: map[string]any{"group": "patient"},
			},
		},
	}
}

func TestDataset(t *testing.T) {
	ds := testDataset()

	t.Run("It finds subjects by ID", func(t *testing.T) {
		s, ok := ds.Subject("03")
		require.True(t, ok)
		require.Equal(t, "03", s.ID)

		_, ok = ds.Subject("99")
		require.False(t, ok)
	})

	t.Run("It lists participant attributes", func(t *testing.T) {
		require.Equal(t, []string{"age", "group", "sex"}, ParticipantAttributes(ds))
	})

	t.Run("It lists channel and electrode columns", func(t *testing.T) {
		require.Equal(t, []string{"low_cutoff", "name", "type"}, ChannelAttributes(ds))
		require.Equal(t, []string{"hemisphere", "name", "x"}, ElectrodeAttributes(ds))
	})

	t.Run("It lists entity values", func(t *testing.T) {
		require.Equal(t, []string{"REST", "VISU"}, EntityValues(ds, "task"))
		require.Equal(t, []string{"01"}, EntityValues(ds, "run"))
		require.Equal(t, []string{"post", "pre"}, EntityValues(ds, "ses"))
		require.Empty(t, EntityValues(ds, "acq"))
	})

	t.Run("It lists modalities", func(t *testing.T) {
		require.Equal(t, []string{"anat", "func", "ieeg"}, Modalities(ds))
	})

	t.Run("It handles empty datasets", func(t *testing.T) {
		empty := &Dataset{}
		require.Empty(t, ParticipantAttributes(empty))
		require.Empty(t, ChannelAttributes(empty))
		require.Empty(t, Modalities(empty))
	})
}

func TestResolve(t *testing.T) {
	ds := testDataset()
	sub := func(id string) *Subject {
		s, ok := ds.Subject(id)
		require.True(t, ok)
		return s
	}

	t.Run("It resolves subject IDs", func(t *testing.T) {
		require.Equal(t, []any{"02"}, Resolve(sub("02"), CategorySubjectID, "").Values())
	})

	t.Run("It resolves modalities across subject and session files", func(t *testing.T) {
		c := Resolve(sub("02"), CategoryModality, "")
		require.False(t, c.Absent())
		require.Equal(t, []any{"anat", "ieeg"}, c.Values())
	})

	t.Run("It resolves the session entity from session IDs", func(t *testing.T) {
		c := Resolve(sub("02"), CategoryEntity, "ses")
		require.Equal(t, []any{"pre", "post"}, c.Values())
	})

	t.Run("It resolves entities from files", func(t *testing.T) {
		require.Equal(t, []any{"VISU"}, Resolve(sub("01"), CategoryEntity, "task").Values())
		require.True(t, Resolve(sub("01"), CategoryEntity, "acq").Absent())
	})

	t.Run("It reports missing participant data as absent", func(t *testing.T) {
		require.True(t, Resolve(sub("03"), CategoryParticipant, "age").Absent())
		require.True(t, Resolve(sub("04"), CategoryParticipant, "age").Absent())
		require.Equal(t, []any{"patient"}, Resolve(sub("04"), CategoryParticipant, "group").Values())
	})

	t.Run("It skips rows without the column", func(t *testing.T) {
		c := Resolve(sub("01"), CategoryChannel, "low_cutoff")
		require.False(t, c.Absent())
		require.Equal(t, []any{"0.5", "0.5"}, c.Values())
	})

	t.Run("It reports missing iEEG tables as absent", func(t *testing.T) {
		require.True(t, Resolve(sub("03"), CategoryChannel, "type").Absent())
		require.True(t, Resolve(sub("02"), CategoryElectrode, "x").Absent())
	})

	t.Run("It never matches absent candidates", func(t *testing.T) {
		c := Resolve(nil, CategorySubjectID, "")
		require.True(t, c.Absent())
		require.False(t, c.Any(func(any) bool { return true }))
	})

	t.Run("It names categories", func(t *testing.T) {
		require.Equal(t, "participant", CategoryParticipant.String())
		require.Equal(t, "none", CategoryNone.String())
	})
}
