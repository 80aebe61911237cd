package translate

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"

	"pathweaver/internal/model"
)

// OpenAITranslator builds structured queries through the OpenAI Responses
// API with JSON object output.
type OpenAITranslator struct {
	client openai.Client
	model  string
}

// NewOpenAITranslator creates an OpenAI-backed translator. baseURL is
// optional and supports OpenAI-compatible gateways.
func NewOpenAITranslator(apiKey, modelName, baseURL string) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	opts := []ooption.RequestOption{ooption.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, ooption.WithBaseURL(baseURL))
	}
	return &OpenAITranslator{client: openai.NewClient(opts...), model: modelName}, nil
}

// Translate sends all names in one request and decodes the JSON response.
func (t *OpenAITranslator) Translate(ctx context.Context, names []string) ([]model.StructuredQuery, error) {
	if len(names) == 0 {
		return nil, nil
	}

	input, _ := json.MarshalIndent(names, "", "  ")

	obj := oshared.NewResponseFormatJSONObjectParam()
	params := oresponses.ResponseNewParams{
		Model:        oshared.ResponsesModel(t.model),
		Instructions: openai.String(translatePrompt),
		Input: oresponses.ResponseNewParamsInputUnion{
			OfString: openai.String("[INPUT JSON]\n" + string(input)),
		},
		Text: oresponses.ResponseTextConfigParam{
			Format: oresponses.ResponseFormatTextConfigUnionParam{OfJSONObject: &obj},
		},
	}

	resp, err := t.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("query translation failed: %w", err)
	}

	var envelope queryEnvelope
	if err := json.Unmarshal([]byte(resp.OutputText()), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode translated queries: %w", err)
	}
	return envelope.Queries, nil
}
