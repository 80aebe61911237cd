// Package engine implements the pathway completion pipeline: flatten a
// template into atomic requirements, translate each into a structured
// query, fan searches out against the course index, resolve every
// requirement to a recommendation, and reassemble the plan hierarchy with
// candidates and a narrative summary attached.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pathweaver/internal/model"
	"pathweaver/internal/summarize"
	"pathweaver/internal/translate"
)

// ErrNoPathways is returned when similarity retrieval finds no template to
// complete.
var ErrNoPathways = errors.New("no pathway templates matched the query")

// PathwayStore is the template retrieval collaborator.
type PathwayStore interface {
	FindSimilar(ctx context.Context, query string, limit int) ([]model.PathwayTemplate, error)
	GetByID(ctx context.Context, id string) (model.PathwayTemplate, error)
}

// Options tune the completion pipeline.
type Options struct {
	// SimilarLimit is how many candidate templates to retrieve. Default 8.
	SimilarLimit int
	// ResultLimit caps each requirement's search results. Default 10.
	ResultLimit int
	// FanOut bounds concurrent requirement searches. Default 8.
	FanOut int
	// SummarizePlaceholders includes synthesized placeholders in the
	// summarizer input. Off by default: there is nothing to say about a
	// course that does not exist.
	SummarizePlaceholders bool
}

func (o Options) withDefaults() Options {
	if o.SimilarLimit <= 0 {
		o.SimilarLimit = 8
	}
	if o.ResultLimit <= 0 {
		o.ResultLimit = 10
	}
	if o.FanOut <= 0 {
		o.FanOut = 8
	}
	return o
}

// Engine completes pathway templates against a live course catalog. All
// collaborators are injected; the engine holds no global state and is safe
// for concurrent requests.
type Engine struct {
	index      SearchIndex
	store      PathwayStore
	translator translate.Translator
	summarizer summarize.Summarizer
	opts       Options
	log        *zap.Logger
}

// New constructs an Engine. Lifecycle of the collaborators stays with the
// caller.
func New(index SearchIndex, store PathwayStore, translator translate.Translator, summarizer summarize.Summarizer, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		index:      index,
		store:      store,
		translator: translator,
		summarizer: summarizer,
		opts:       opts.withDefaults(),
		log:        log.Named("engine"),
	}
}

// Predict completes the pathway most similar to the free-text query. The
// remaining similar templates populate the candidate list.
func (e *Engine) Predict(ctx context.Context, query string) (model.CompletedPathway, error) {
	templates, err := e.store.FindSimilar(ctx, query, e.opts.SimilarLimit)
	if err != nil {
		return model.CompletedPathway{}, fmt.Errorf("pathway retrieval failed: %w", err)
	}
	if len(templates) == 0 {
		return model.CompletedPathway{}, ErrNoPathways
	}
	return e.complete(ctx, query, templates)
}

// PredictByID completes the named template. Absent ids fail with the
// store's NotFound before any search work starts. Similar templates are
// appended to the candidate list, de-duplicated, with the requested
// template kept first.
func (e *Engine) PredictByID(ctx context.Context, id, query string) (model.CompletedPathway, error) {
	tpl, err := e.store.GetByID(ctx, id)
	if err != nil {
		return model.CompletedPathway{}, err
	}

	similar, err := e.store.FindSimilar(ctx, query, e.opts.SimilarLimit)
	if err != nil {
		// Candidate enrichment only; the requested template still completes.
		e.log.Warn("similar pathway retrieval failed", zap.Error(err))
		similar = nil
	}

	templates := dedupeTemplates(append([]model.PathwayTemplate{tpl}, similar...))
	return e.complete(ctx, query, templates)
}

// complete runs the pipeline for templates[0].
func (e *Engine) complete(ctx context.Context, query string, templates []model.PathwayTemplate) (model.CompletedPathway, error) {
	tpl := templates[0]
	if err := tpl.Validate(); err != nil {
		return model.CompletedPathway{}, err
	}

	reqs := Flatten(tpl)

	names := make([]string, len(reqs))
	for i, req := range reqs {
		names[i] = req.Slot.Name
	}

	queries, err := e.translator.Translate(ctx, names)
	if err != nil {
		// Degrade to pure semantic search rather than failing the request.
		e.log.Warn("query translation failed, proceeding without structured filters", zap.Error(err))
		queries = nil
	}
	queries = e.alignQueries(queries, len(reqs))

	results := e.dispatch(ctx, query, reqs, queries)

	resolved := make([]model.ResolvedCourse, len(reqs))
	for i, req := range reqs {
		resolved[i] = Resolve(req.Slot, results[i])
	}

	candidates := make([]string, len(templates))
	for i, t := range templates {
		candidates[i] = t.ProgramName
	}

	summary := e.buildSummary(ctx, resolved, query)

	e.log.Info("pathway completed",
		zap.String("program", tpl.ProgramName),
		zap.Int("requirements", len(reqs)),
		zap.Int("candidates", len(candidates)))

	return assemble(tpl, resolved, candidates, summary), nil
}

// alignQueries pins the translator output to the requirement count. Short
// output is padded with zero-value queries (no structured filters for the
// tail), long output is truncated. Either way the mismatch is logged; it
// never stops the pipeline.
func (e *Engine) alignQueries(queries []model.StructuredQuery, n int) []model.StructuredQuery {
	if len(queries) == n {
		return queries
	}
	if queries != nil {
		e.log.Warn("translator query count mismatch",
			zap.Int("requirements", n),
			zap.Int("queries", len(queries)))
	}
	aligned := make([]model.StructuredQuery, n)
	copy(aligned, queries)
	return aligned
}

// buildSummary asks the summarizer for the narrative. Failures degrade to
// an empty summary; they never fail the request.
func (e *Engine) buildSummary(ctx context.Context, resolved []model.ResolvedCourse, query string) string {
	var descs []string
	for _, course := range resolved {
		if course.IsPlaceholder() && !e.opts.SummarizePlaceholders {
			continue
		}
		descs = append(descs, fmt.Sprintf("%s %s: %s", course.Code(), course.Title, course.Description))
	}

	summary, err := e.summarizer.Summarize(ctx, descs, query)
	if err != nil {
		e.log.Warn("summarization failed, returning pathway without narrative", zap.Error(err))
		return ""
	}
	return summary
}

func dedupeTemplates(templates []model.PathwayTemplate) []model.PathwayTemplate {
	seen := make(map[string]bool, len(templates))
	out := templates[:0]
	for _, tpl := range templates {
		if tpl.PathwayID != "" && seen[tpl.PathwayID] {
			continue
		}
		seen[tpl.PathwayID] = true
		out = append(out, tpl)
	}
	return out
}
