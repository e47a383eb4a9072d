package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// finalize synthesizes the final answer from all summaries and expands the
// short-token reference markers back to full source URLs.
func (e *Engine) finalize(ctx context.Context, conv Conversation, state *ResearchState) (*Result, error) {
	e.Logger.Info("Finalizing answer", "summaries", len(state.Summaries), "sources", state.Sources.Len())

	resp, err := e.LLM.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, answerPrompt(conv.ResearchTopic(), state.Summaries)),
	}, llms.WithModel(e.Config.AnswerModel))
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("answer generation returned no choices")
	}

	text, cited := ExpandCitations(resp.Choices[0].Content, state.Sources.All())

	e.Logger.Info("Final answer generated", "length", len(text), "cited_sources", len(cited))
	return &Result{
		Message:      Message{Role: RoleAssistant, Content: text},
		CitedSources: cited,
	}, nil
}
