package engine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pathweaver/internal/model"
)

// SearchIndex is the course search collaborator. Searches must be
// idempotent and side-effect-free; results come back best match first.
type SearchIndex interface {
	Search(ctx context.Context, text string, q model.StructuredQuery, credits float64, limit int) ([]model.CatalogCourse, error)
}

// dispatch issues one search per requirement concurrently and collects the
// result sets in requirement order. Each worker owns its own slot in the
// pre-sized results slice, so ordering is restored by index regardless of
// completion order and no locking is needed.
//
// A failed search never fails the batch: the slot records an empty result
// set and the resolver applies the placeholder policy. That includes
// searches cut short by context cancellation.
func (e *Engine) dispatch(ctx context.Context, query string, reqs []FlatRequirement, queries []model.StructuredQuery) [][]model.CatalogCourse {
	results := make([][]model.CatalogCourse, len(reqs))

	var g errgroup.Group
	g.SetLimit(e.opts.FanOut)
	for i, req := range reqs {
		g.Go(func() error {
			courses, err := e.index.Search(ctx, query, queries[i], req.Slot.Credits, e.opts.ResultLimit)
			if err != nil {
				e.log.Warn("requirement search failed, falling back to placeholder",
					zap.String("requirement", req.Slot.Name),
					zap.Int("position", i),
					zap.Error(err))
				return nil
			}
			results[i] = courses
			return nil
		})
	}
	// Join barrier: assembly must not start until every slot is settled.
	_ = g.Wait()

	return results
}
