package filter

import (
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// Evaluator applies filters to datasets.  Evaluators hold no state between calls
// and are safe for concurrent use.
type Evaluator struct {
	concurrency int
	log         zerolog.Logger
}

type EvaluatorOption func(e *Evaluator)

// WithConcurrency evaluates subjects on up to n goroutines.  Results keep the
// dataset's subject order regardless of the value.  n <= 1 evaluates serially.
func WithConcurrency(n int) EvaluatorOption {
	return func(e *Evaluator) {
		e.concurrency = n
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.log = l
	}
}

func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		concurrency: 1,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = NewEvaluator()

// Apply returns a dataset holding only the subjects that pass root.  See
// Evaluator.Apply.
func Apply(ds *Dataset, root Filter) *Dataset {
	return defaultEvaluator.Apply(ds, root)
}

// MatchingIDs returns the IDs of subjects passing root, in dataset order.
func MatchingIDs(ds *Dataset, root Filter) []string {
	return defaultEvaluator.MatchingIDs(ds, root)
}

// Apply returns a new dataset holding only the subjects that pass root, in their
// original order.  Every dataset-level field is copied unchanged; subjects are
// shared with the input, not rebuilt.  A nil root matches every subject.
func (e *Evaluator) Apply(ds *Dataset, root Filter) *Dataset {
	matched := e.match(ds, root)

	subjects := make([]Subject, 0, len(ds.Subjects))
	for i, ok := range matched {
		if ok {
			subjects = append(subjects, ds.Subjects[i])
		}
	}

	e.log.Debug().
		Str("op", "apply").
		Int("subjects", len(ds.Subjects)).
		Int("matched", len(subjects)).
		Msg("applied filter")

	return &Dataset{
		Root:            ds.Root,
		Description:     ds.Description,
		Files:           ds.Files,
		DerivativesRoot: ds.DerivativesRoot,
		Subjects:        subjects,
	}
}

// MatchingIDs returns the IDs of subjects passing root, in dataset order.
func (e *Evaluator) MatchingIDs(ds *Dataset, root Filter) []string {
	matched := e.match(ds, root)

	ids := []string{}
	for i, ok := range matched {
		if ok {
			ids = append(ids, ds.Subjects[i].ID)
		}
	}

	e.log.Debug().
		Str("op", "matching_ids").
		Int("subjects", len(ds.Subjects)).
		Int("matched", len(ids)).
		Msg("applied filter")

	return ids
}

// match returns, per subject index, whether the subject passes root.
func (e *Evaluator) match(ds *Dataset, root Filter) []bool {
	if root == nil || isNilNode(root) {
		all := make([]bool, len(ds.Subjects))
		for i := range all {
			all[i] = true
		}
		return all
	}

	if e.concurrency <= 1 {
		out := make([]bool, len(ds.Subjects))
		for i := range ds.Subjects {
			out[i] = root.Evaluate(&ds.Subjects[i])
		}
		return out
	}

	mapper := iter.Mapper[Subject, bool]{MaxGoroutines: e.concurrency}
	return mapper.Map(ds.Subjects, func(s *Subject) bool {
		return root.Evaluate(s)
	})
}
