package translate

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"pathweaver/internal/model"
)

// CachedTranslator wraps a backend with a per-name LRU cache. Requirement
// names repeat heavily across pathway templates ("MATH 241" shows up in
// most STEM plans), so only cache misses reach the backend.
type CachedTranslator struct {
	inner Translator
	cache *lru.Cache[string, model.StructuredQuery]
}

// NewCachedTranslator wraps inner with an LRU of the given size.
func NewCachedTranslator(inner Translator, size int) (*CachedTranslator, error) {
	cache, err := lru.New[string, model.StructuredQuery](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create translation cache: %w", err)
	}
	return &CachedTranslator{inner: inner, cache: cache}, nil
}

// Translate serves cached names locally and batches the misses into a
// single backend call, preserving input order.
func (t *CachedTranslator) Translate(ctx context.Context, names []string) ([]model.StructuredQuery, error) {
	queries := make([]model.StructuredQuery, len(names))

	var missNames []string
	var missIdx []int
	seen := map[string]int{}
	for i, name := range names {
		if q, ok := t.cache.Get(name); ok {
			queries[i] = q
			continue
		}
		if _, dup := seen[name]; !dup {
			seen[name] = len(missNames)
			missNames = append(missNames, name)
		}
		missIdx = append(missIdx, i)
	}
	if len(missNames) == 0 {
		return queries, nil
	}

	translated, err := t.inner.Translate(ctx, missNames)
	if err != nil {
		return nil, err
	}
	if len(translated) != len(missNames) {
		return nil, fmt.Errorf("translator returned %d queries for %d names", len(translated), len(missNames))
	}

	for name, pos := range seen {
		t.cache.Add(name, translated[pos])
	}
	for _, i := range missIdx {
		queries[i] = translated[seen[names[i]]]
	}
	return queries, nil
}
