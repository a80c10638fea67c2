package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditorBuild(t *testing.T) {
	t.Run("It builds nothing from an empty editor", func(t *testing.T) {
		e := NewEditor()
		f, err := e.Build()
		require.NoError(t, err)
		require.Nil(t, f)
		require.False(t, e.Dirty())
	})

	t.Run("It builds a single top-level node directly", func(t *testing.T) {
		e := NewEditor()
		_, err := e.AddCondition("", SubjectIDs("01"))
		require.NoError(t, err)

		f, err := e.Build()
		require.NoError(t, err)
		require.Equal(t, SubjectIDs("01"), f)
	})

	t.Run("It combines top-level nodes with AND", func(t *testing.T) {
		e := NewEditor()
		_, err := e.AddCondition("", SubjectIDs("01"))
		require.NoError(t, err)
		or, err := e.AddGroup("", LogicalOr)
		require.NoError(t, err)
		_, err = e.AddCondition(or, Modality("anat"))
		require.NoError(t, err)
		_, err = e.AddCondition(or, Modality("ieeg"))
		require.NoError(t, err)

		f, err := e.Build()
		require.NoError(t, err)
		want := And(SubjectIDs("01"), Or(Modality("anat"), Modality("ieeg")))
		require.True(t, Equal(want, f), Expression(f))
	})

	t.Run("It reports the empty NOT group which fails to build", func(t *testing.T) {
		e := NewEditor()
		not, err := e.AddGroup("", LogicalNot)
		require.NoError(t, err)

		_, err = e.Build()
		require.ErrorIs(t, err, ErrInvalidArity)
		var cerr *ConstructionError
		require.ErrorAs(t, err, &cerr)
		require.Equal(t, not, cerr.NodeID)

		_, err = e.AddCondition(not, SubjectIDs("01"))
		require.NoError(t, err)
		f, err := e.Build()
		require.NoError(t, err)
		require.True(t, Equal(Not(SubjectIDs("01")), f))
	})

	t.Run("It round trips loaded filters", func(t *testing.T) {
		f := Or(And(SubjectIDs("01"), Not(Modality("anat"))), Entity("task", OpEquals, "VISU"))
		e := NewEditor()
		e.Load(f)
		require.False(t, e.Dirty())

		out, err := e.Build()
		require.NoError(t, err)
		require.True(t, Equal(f, out))
	})
}

func TestEditorMutations(t *testing.T) {
	setup := func(t *testing.T) (*Editor, string, string, string) {
		e := NewEditor()
		and, err := e.AddGroup("", LogicalAnd)
		require.NoError(t, err)
		a, err := e.AddCondition(and, SubjectIDs("a"))
		require.NoError(t, err)
		b, err := e.AddCondition(and, SubjectIDs("b"))
		require.NoError(t, err)
		e.MarkClean()
		return e, and, a, b
	}

	t.Run("It exposes node views", func(t *testing.T) {
		e, and, a, b := setup(t)
		require.Equal(t, []string{and}, e.Roots())

		v, ok := e.Node(and)
		require.True(t, ok)
		require.Equal(t, LogicalAnd, v.Operator)
		require.Nil(t, v.Condition)
		require.Equal(t, []string{a, b}, v.Children)
		require.Empty(t, v.Parent)

		v, ok = e.Node(a)
		require.True(t, ok)
		require.Equal(t, SubjectIDs("a"), v.Condition)
		require.Equal(t, and, v.Parent)

		_, ok = e.Node("missing")
		require.False(t, ok)
	})

	t.Run("It rejects children under conditions and unknown parents", func(t *testing.T) {
		e, _, a, _ := setup(t)
		_, err := e.AddCondition(a, SubjectIDs("c"))
		require.Error(t, err)
		_, err = e.AddGroup("missing", LogicalOr)
		require.ErrorIs(t, err, ErrNodeNotFound)
		_, err = e.AddGroup("", LogicalOperator("XOR"))
		require.Error(t, err)
	})

	t.Run("It never gives a NOT group a second child", func(t *testing.T) {
		e := NewEditor()
		not, err := e.AddGroup("", LogicalNot)
		require.NoError(t, err)
		_, err = e.AddCondition(not, SubjectIDs("a"))
		require.NoError(t, err)

		_, err = e.AddCondition(not, SubjectIDs("b"))
		require.ErrorIs(t, err, ErrInvalidArity)
		var cerr *ConstructionError
		require.ErrorAs(t, err, &cerr)
		require.Equal(t, not, cerr.NodeID)
	})

	t.Run("It changes operators", func(t *testing.T) {
		e, and, a, _ := setup(t)
		require.NoError(t, e.SetOperator(and, LogicalOr))
		require.True(t, e.Dirty())
		require.ErrorIs(t, e.SetOperator(and, LogicalNot), ErrInvalidArity)
		require.Error(t, e.SetOperator(a, LogicalOr))

		f, err := e.Build()
		require.NoError(t, err)
		require.Equal(t, LogicalOr, f.(*Node).Operator())
	})

	t.Run("It sets conditions", func(t *testing.T) {
		e, and, a, _ := setup(t)
		require.NoError(t, e.SetCondition(a, Modality("anat")))
		require.Error(t, e.SetCondition(and, Modality("anat")))
		require.ErrorIs(t, e.SetCondition("missing", Modality("anat")), ErrNodeNotFound)

		v, _ := e.Node(a)
		require.Equal(t, Modality("anat"), v.Condition)
	})

	t.Run("It removes subtrees", func(t *testing.T) {
		e, and, a, b := setup(t)
		require.NoError(t, e.Remove(and))
		require.Empty(t, e.Roots())
		for _, id := range []string{and, a, b} {
			_, ok := e.Node(id)
			require.False(t, ok)
		}
		require.ErrorIs(t, e.Remove(and), ErrNodeNotFound)
	})

	t.Run("It moves siblings", func(t *testing.T) {
		e, and, a, b := setup(t)
		require.NoError(t, e.MoveUp(a))
		v, _ := e.Node(and)
		require.Equal(t, []string{a, b}, v.Children)

		require.NoError(t, e.MoveDown(a))
		v, _ = e.Node(and)
		require.Equal(t, []string{b, a}, v.Children)
		require.True(t, e.Dirty())

		require.NoError(t, e.MoveDown(a))
		require.NoError(t, e.MoveUp(a))
		v, _ = e.Node(and)
		require.Equal(t, []string{a, b}, v.Children)

		// Restoring the saved order is not a change.
		require.False(t, e.Dirty())
	})
}

func TestEditorClipboard(t *testing.T) {
	t.Run("It copies with fresh IDs", func(t *testing.T) {
		e := NewEditor()
		or, _ := e.AddGroup("", LogicalOr)
		a, _ := e.AddCondition(or, SubjectIDs("a"))

		require.NoError(t, e.Copy(or))
		pasted, err := e.Paste("")
		require.NoError(t, err)
		require.NotEqual(t, or, pasted)
		require.Equal(t, []string{or, pasted}, e.Roots())

		v, _ := e.Node(pasted)
		require.Len(t, v.Children, 1)
		require.NotEqual(t, a, v.Children[0])

		// The clipboard is kept after copy-paste.
		_, err = e.Paste("")
		require.NoError(t, err)
		require.Len(t, e.Roots(), 3)
	})

	t.Run("It pastes after a condition", func(t *testing.T) {
		e := NewEditor()
		and, _ := e.AddGroup("", LogicalAnd)
		a, _ := e.AddCondition(and, SubjectIDs("a"))
		b, _ := e.AddCondition(and, SubjectIDs("b"))

		require.NoError(t, e.Copy(b))
		pasted, err := e.Paste(a)
		require.NoError(t, err)

		v, _ := e.Node(and)
		require.Equal(t, []string{a, pasted, b}, v.Children)
	})

	t.Run("It moves cut nodes", func(t *testing.T) {
		e := NewEditor()
		and, _ := e.AddGroup("", LogicalAnd)
		or, _ := e.AddGroup(and, LogicalOr)
		a, _ := e.AddCondition(and, SubjectIDs("a"))

		require.NoError(t, e.Cut(a))
		require.Equal(t, a, e.Cutting())

		pasted, err := e.Paste(or)
		require.NoError(t, err)
		require.Empty(t, e.Cutting())

		_, ok := e.Node(a)
		require.False(t, ok)
		v, _ := e.Node(or)
		require.Equal(t, []string{pasted}, v.Children)
		v, _ = e.Node(and)
		require.Equal(t, []string{or}, v.Children)

		_, err = e.Paste("")
		require.Error(t, err)

		f, err := e.Build()
		require.NoError(t, err)
		require.True(t, Equal(And(Or(SubjectIDs("a"))), f))
	})

	t.Run("It refuses to paste a cut node into itself", func(t *testing.T) {
		e := NewEditor()
		and, _ := e.AddGroup("", LogicalAnd)
		or, _ := e.AddGroup(and, LogicalOr)

		require.NoError(t, e.Cut(and))
		_, err := e.Paste(or)
		require.ErrorIs(t, err, ErrInvalidPaste)
		_, err = e.Paste(and)
		require.ErrorIs(t, err, ErrInvalidPaste)

		// Nothing changed.
		require.Equal(t, []string{and}, e.Roots())
		require.Equal(t, and, e.Cutting())
	})

	t.Run("It forgets cuts of removed nodes", func(t *testing.T) {
		e := NewEditor()
		a, _ := e.AddCondition("", SubjectIDs("a"))
		require.NoError(t, e.Cut(a))
		require.NoError(t, e.Remove(a))
		require.Empty(t, e.Cutting())

		_, err := e.Paste("")
		require.NoError(t, err)
		require.Len(t, e.Roots(), 1)
	})

	t.Run("It drops pending cuts on load", func(t *testing.T) {
		e := NewEditor()
		a, _ := e.AddCondition("", SubjectIDs("a"))
		require.NoError(t, e.Cut(a))

		e.Load(Or(Modality("anat")))
		require.Empty(t, e.Cutting())

		// The clipboard survives and pastes as a copy.
		pasted, err := e.Paste("")
		require.NoError(t, err)
		_, err = e.Paste("")
		require.NoError(t, err)
		require.Len(t, e.Roots(), 3)

		v, ok := e.Node(pasted)
		require.True(t, ok)
		require.Equal(t, SubjectIDs("a"), v.Condition)
	})

	t.Run("It resets", func(t *testing.T) {
		e := NewEditor()
		_, _ = e.AddCondition("", SubjectIDs("a"))
		e.Reset()
		require.Empty(t, e.Roots())
		require.False(t, e.Dirty())
	})
}
