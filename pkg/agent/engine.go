package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/mikeboe/research-agent/pkg/clients"
)

// Config is the immutable parameter bundle for one research run.
type Config struct {
	InitialQueryCount   int
	MaxResearchLoops    int
	QueryGeneratorModel string
	ReflectionModel     string
	AnswerModel         string
}

// GroundedGenerator is the retrieval-capable generation call used by the
// web research stage.
type GroundedGenerator interface {
	GenerateGrounded(ctx context.Context, model, prompt string) (*clients.GroundedResponse, error)
}

// Engine orchestrates one research run: query generation, concurrent web
// research, reflection, and answer finalization.
type Engine struct {
	Config Config
	LLM    llms.Model
	Search GroundedGenerator
	Logger *slog.Logger

	// OnStateUpdate, if set, is called with a snapshot of the shared state
	// after every stage transition.
	OnStateUpdate func(state ResearchState)
}

func NewEngine(cfg Config, llm llms.Model, search GroundedGenerator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InitialQueryCount < 1 {
		cfg.InitialQueryCount = 1
	}
	if cfg.MaxResearchLoops < 0 {
		cfg.MaxResearchLoops = 0
	}
	return &Engine{
		Config: cfg,
		LLM:    llm,
		Search: search,
		Logger: logger,
	}
}

func (e *Engine) notify(state *ResearchState) {
	if e.OnStateUpdate != nil {
		e.OnStateUpdate(*state)
	}
}

// generateWithRetry calls the model and validates the response with the
// provided function. It retries up to 3 times on transport errors and
// unparseable output; structurally empty results are the caller's problem
// and are never retried here.
func (e *Engine) generateWithRetry(ctx context.Context, model string, prompts []llms.MessageContent, validator func(string) error) (string, error) {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		if i > 0 {
			e.Logger.Warn("Retrying LLM generation", "attempt", i+1, "last_error", lastErr)
			time.Sleep(time.Second * time.Duration(i)) // Linear backoff
		}

		resp, err := e.LLM.GenerateContent(ctx, prompts, llms.WithModel(model), llms.WithJSONMode())
		if err != nil {
			lastErr = fmt.Errorf("llm generation failed: %w", err)
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("llm returned no choices")
			continue
		}

		content := resp.Choices[0].Content
		if err := validator(content); err != nil {
			lastErr = fmt.Errorf("validation failed: %w", err)
			continue
		}

		return content, nil
	}

	return "", fmt.Errorf("operation failed after %d retries: %w", maxRetries, lastErr)
}
