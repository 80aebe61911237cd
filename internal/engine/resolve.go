package engine

import "pathweaver/internal/model"

// Resolve turns one requirement's search results into a recommendation.
// Pure and total: an empty result set is a valid outcome, represented by a
// synthesized placeholder rather than an error. The index is trusted to
// rank best-first, so the primary is results[0] and the full ordered set
// becomes the candidate list.
func Resolve(slot model.RequirementSlot, results []model.CatalogCourse) model.ResolvedCourse {
	if len(results) == 0 {
		return model.NewPlaceholder(slot)
	}
	return model.ResolvedCourse{
		CatalogCourse: results[0],
		Candidates:    results,
	}
}
