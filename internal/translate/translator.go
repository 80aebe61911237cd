// Package translate converts free-text requirement names ("ICS 300+",
// "FQ designation elective") into structured catalog queries. The engine
// consumes the Translator capability interface so backing implementations
// can be swapped: a live generative translator, a deterministic rule
// parser, or either wrapped in a cache.
package translate

import (
	"context"
	"fmt"

	"pathweaver/internal/model"
)

// Translator turns an ordered list of requirement names into an ordered,
// equally long list of structured queries. Implementations must preserve
// input order.
type Translator interface {
	Translate(ctx context.Context, names []string) ([]model.StructuredQuery, error)
}

// Options selects and configures a translator backend.
type Options struct {
	// Provider: "rules", "genai" or "openai"
	Provider string
	APIKey   string
	Model    string
	BaseURL  string

	// CacheSize > 0 wraps the backend in a per-name LRU cache.
	CacheSize int
}

// New builds a translator from options. The zero Provider defaults to the
// offline rule parser.
func New(opts Options) (Translator, error) {
	var inner Translator
	var err error
	switch opts.Provider {
	case "", "rules":
		inner = NewRuleTranslator()
	case "genai":
		inner, err = NewGeminiTranslator(opts.APIKey, opts.Model)
	case "openai":
		inner, err = NewOpenAITranslator(opts.APIKey, opts.Model, opts.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported translator provider: %s (use 'rules', 'genai' or 'openai')", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	if opts.CacheSize > 0 {
		return NewCachedTranslator(inner, opts.CacheSize)
	}
	return inner, nil
}
