package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAI creates a langchaingo client bound to the given default model.
// Individual stages override the model per call with llms.WithModel.
func GoogleAI(ctx context.Context, apiKey, defaultModel string) (*googleai.GoogleAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(defaultModel))
	if err != nil {
		return nil, fmt.Errorf("failed to init Google AI client: %w", err)
	}

	return llm, nil
}
