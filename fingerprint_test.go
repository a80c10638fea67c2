package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	t.Run("It ignores set order", func(t *testing.T) {
		require.True(t, Equal(SubjectIDs("01", "02"), SubjectIDs("02", "01")))
		require.True(t, Equal(Entity("task", OpEquals, "A", "B"), Entity("task", OpEquals, "B", "A")))
		require.Equal(t, Fingerprint(Modality("anat", "ieeg")), Fingerprint(Modality("ieeg", "anat")))
	})

	t.Run("It treats an unset operator as equals", func(t *testing.T) {
		require.True(t, Equal(EntityCondition{Entity: "task", Values: []string{"A"}}, Entity("task", OpEquals, "A")))
		require.True(t, Equal(ParticipantAttributeCondition{Attribute: "age", Value: "1"}, Participant("age", OpEquals, "1")))
	})

	t.Run("It respects child order", func(t *testing.T) {
		a, b := SubjectIDs("01"), SubjectIDs("02")
		require.False(t, Equal(And(a, b), And(b, a)))
		require.NotEqual(t, Fingerprint(And(a, b)), Fingerprint(And(b, a)))
	})

	t.Run("It distinguishes kinds, operators and fields", func(t *testing.T) {
		pairs := [][2]Filter{
			{Participant("age", OpEquals, "1"), Channel("age", OpEquals, "1")},
			{Participant("age", OpEquals, "1"), Participant("age", OpNotEquals, "1")},
			{Participant("age", OpEquals, "1"), Participant("age", OpEquals, "2")},
			{And(SubjectIDs("01")), Or(SubjectIDs("01"))},
			{And(SubjectIDs("01")), SubjectIDs("01")},
			{SubjectIDs("a", "b"), SubjectIDs("ab")},
			{Entity("ab", OpEquals, "c"), Entity("a", OpEquals, "bc")},
			{And(), nil},
		}
		for _, p := range pairs {
			require.False(t, Equal(p[0], p[1]), "%s vs %s", Expression(p[0]), Expression(p[1]))
			require.NotEqual(t, Fingerprint(p[0]), Fingerprint(p[1]))
		}
	})

	t.Run("It compares nested trees", func(t *testing.T) {
		a := And(Or(SubjectIDs("01", "02"), Not(Modality("anat"))), Participant("age", OpLessThan, "9"))
		b := And(Or(SubjectIDs("02", "01"), Not(Modality("anat"))), Participant("age", OpLessThan, "9"))
		require.True(t, Equal(a, b))
		require.True(t, Equal(a, a.Clone()))
		require.Equal(t, Fingerprint(a), Fingerprint(b))
	})
}
