package presetstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bidsio/filter"
)

// MatchAll evaluates every stored preset against ds and returns the matching
// subject IDs keyed by preset name.  Presets are evaluated concurrently, up to the
// store's configured concurrency.  The first load error cancels the remaining work.
func (s *Store) MatchAll(ctx context.Context, ds *filter.Dataset) (map[string][]string, error) {
	names, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		lock    sync.Mutex
		results = make(map[string][]string, len(names))
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Concurrency)
	for _, name := range names {
		eg.Go(func() error {
			p, err := s.Load(ctx, name)
			if err != nil {
				return errors.Wrapf(err, "cannot match preset %q", name)
			}
			ids := filter.MatchingIDs(ds, p.Root)

			lock.Lock()
			results[name] = ids
			lock.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	s.log.Debug().Int("presets", len(names)).Msg("matched presets")
	return results, nil
}
