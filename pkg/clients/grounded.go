package clients

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GroundedResponse is the flattened result of a search-grounded generation
// call: the response text plus the grounding metadata linking spans of that
// text back to the source documents the model retrieved.
type GroundedResponse struct {
	Text     string
	Supports []GroundingSupport
	Chunks   []GroundingChunk
}

// GroundingSupport ties one contiguous span of the response text to one or
// more grounding chunks. HasEnd is false when the API omitted the end offset
// of the segment; such supports carry no usable span.
type GroundingSupport struct {
	StartIndex   int
	EndIndex     int
	HasEnd       bool
	ChunkIndices []int
}

type GroundingChunk struct {
	URI   string
	Title string
}

// GroundedClient wraps the genai client for generation calls that use the
// Google Search tool. The langchaingo layer does not surface grounding
// metadata, so web research talks to genai directly.
type GroundedClient struct {
	client *genai.Client
}

func NewGroundedClient(ctx context.Context, apiKey string) (*GroundedClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GroundedClient{client: client}, nil
}

func (c *GroundedClient) GenerateGrounded(ctx context.Context, model, prompt string) (*GroundedResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("grounded generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("grounded generation returned no candidates")
	}

	out := &GroundedResponse{Text: resp.Text()}

	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return out, nil
	}

	for _, chunk := range meta.GroundingChunks {
		gc := GroundingChunk{}
		if chunk.Web != nil {
			gc.URI = chunk.Web.URI
			gc.Title = chunk.Web.Title
		}
		out.Chunks = append(out.Chunks, gc)
	}

	for _, support := range meta.GroundingSupports {
		if support.Segment == nil {
			continue
		}
		gs := GroundingSupport{
			StartIndex: int(support.Segment.StartIndex),
			EndIndex:   int(support.Segment.EndIndex),
			HasEnd:     support.Segment.EndIndex > 0,
		}
		for _, idx := range support.GroundingChunkIndices {
			gs.ChunkIndices = append(gs.ChunkIndices, int(idx))
		}
		out.Supports = append(out.Supports, gs)
	}

	return out, nil
}
