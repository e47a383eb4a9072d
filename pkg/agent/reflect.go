package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// reflect judges whether the gathered summaries suffice to answer the
// question and, if not, proposes follow-up queries.
func (e *Engine) reflect(ctx context.Context, conv Conversation, state *ResearchState) (*Reflection, error) {
	e.Logger.Info("Reflecting on summaries", "summaries", len(state.Summaries), "loop", state.LoopCount)

	var out Reflection
	_, err := e.generateWithRetry(ctx, e.Config.ReflectionModel, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, reflectionPrompt(conv.ResearchTopic(), state.Summaries)),
	}, func(content string) error {
		out = Reflection{}
		if err := json.Unmarshal([]byte(content), &out); err != nil {
			return fmt.Errorf("json parse error: %w (content: %s)", err, content)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.Logger.Info("Reflection verdict", "is_sufficient", out.IsSufficient, "follow_ups", len(out.FollowUpQueries))
	return &out, nil
}
