package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"pathweaver/internal/model"
)

// translatePrompt carries the domain rules the generative backends follow.
// It mirrors how advisors read requirement names off a pathway sheet.
const translatePrompt = `Your job is to build structured queries to search a catalog of courses.
For every requirement name in the input array, output one query object with
these optional fields:

subject_code: 2-4 letter all-caps subject code (e.g. "ICS")
course_number: 3 digit course number
course_number_gte: lower bound when the name reads like "300+"
course_suffix: a single capital letter attached to the number
designations: category codes of two or more capital letters

Rules:
- "ICS 300+" means course_number_gte 300, not course_number.
- Designations usually appear in parens: "(DY)" -> ["DY"].
- "FG (A/B/C)" expands to ["FGA", "FGB", "FGC"].
- Single letters next to a course number are suffix alternatives; the
  search cannot express several at once, so "MEDT 331 (E, W)" searches
  just 331.
- An elective that can be any course gets an empty query object.
- Designations are two or more letters; that separates them from suffixes.

Respond with JSON: {"queries": [ ... ]} with exactly one object per input
name, in input order.`

// GeminiTranslator builds structured queries with the Gemini API in JSON
// mode, one batched call per requirement list.
type GeminiTranslator struct {
	client *genai.Client
	model  string
}

// NewGeminiTranslator creates a Gemini-backed translator.
func NewGeminiTranslator(apiKey, modelName string) (*GeminiTranslator, error) {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiTranslator{client: client, model: modelName}, nil
}

type queryEnvelope struct {
	Queries []model.StructuredQuery `json:"queries"`
}

// Translate sends all names in one request and decodes the JSON response.
func (t *GeminiTranslator) Translate(ctx context.Context, names []string) ([]model.StructuredQuery, error) {
	if len(names) == 0 {
		return nil, nil
	}

	input, _ := json.MarshalIndent(names, "", "  ")
	full := translatePrompt + "\n\n[INPUT JSON]\n" + string(input)

	resp, err := t.client.Models.GenerateContent(ctx, t.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return nil, fmt.Errorf("query translation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("query translation returned no content")
	}

	var envelope queryEnvelope
	if err := json.Unmarshal([]byte(resp.Candidates[0].Content.Parts[0].Text), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode translated queries: %w", err)
	}
	return envelope.Queries, nil
}
