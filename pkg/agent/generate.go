package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// generateQueries asks the fast model for count diversified search
// queries. An empty query list is a hard failure for the run.
func (e *Engine) generateQueries(ctx context.Context, conv Conversation, count int) (*SearchQueryList, error) {
	e.Logger.Info("Generating search queries", "count", count)

	if count < 1 {
		return nil, fmt.Errorf("query count must be >= 1, got %d", count)
	}

	var out SearchQueryList
	_, err := e.generateWithRetry(ctx, e.Config.QueryGeneratorModel, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, queryWriterPrompt(conv.ResearchTopic(), count)),
	}, func(content string) error {
		out = SearchQueryList{}
		if err := json.Unmarshal([]byte(content), &out); err != nil {
			return fmt.Errorf("json parse error: %w (content: %s)", err, content)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(out.Queries) == 0 {
		return nil, ErrNoQueries
	}
	if len(out.Queries) > count {
		out.Queries = out.Queries[:count]
	}

	e.Logger.Info("Generated queries", "queries", out.Queries, "rationale", out.Rationale)
	return &out, nil
}
