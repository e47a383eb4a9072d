package agent

import (
	"context"
	"errors"
)

// Stage is an explicit state tag in the research control-flow graph.
type Stage string

const (
	StageGenerating  Stage = "generate_query"
	StageResearching Stage = "web_research"
	StageReflecting  Stage = "reflection"
	StageFinalizing  Stage = "finalize_answer"
	StageDone        Stage = "done"
)

// routeAfterReflection is the single loop-exit decision: keep researching
// unless the reflector declared the evidence sufficient or the loop budget
// is exhausted. Both exits route to finalization. LoopCount has already
// been incremented for the pass that just completed.
func routeAfterReflection(state *ResearchState, maxLoops int) Stage {
	if state.IsSufficient || state.LoopCount >= maxLoops {
		return StageFinalizing
	}
	return StageResearching
}

// Run executes one research run over the conversation and returns the
// terminal result. The cycle web_research -> reflection -> web_research is
// driven by explicit state tags rather than recursion; every fatal failure
// is reported as a StageError naming the stage it occurred in.
func (e *Engine) Run(ctx context.Context, conv Conversation) (*Result, error) {
	if len(conv) == 0 {
		return nil, &StageError{Stage: StageGenerating, Err: errors.New("empty conversation")}
	}

	state := NewResearchState()
	var result *Result

	for stage := StageGenerating; stage != StageDone; {
		e.notify(state)

		switch stage {
		case StageGenerating:
			queries, err := e.generateQueries(ctx, conv, e.Config.InitialQueryCount)
			if err != nil {
				return nil, &StageError{Stage: StageGenerating, Err: err}
			}
			state.apply(stateUpdate{pendingQueries: queries.Queries})
			stage = StageResearching

		case StageResearching:
			if err := e.researchBatch(ctx, state); err != nil {
				return nil, &StageError{Stage: StageResearching, Err: err}
			}
			stage = StageReflecting

		case StageReflecting:
			reflection, err := e.reflect(ctx, conv, state)
			if err != nil {
				return nil, &StageError{Stage: StageReflecting, Err: err}
			}
			state.apply(stateUpdate{
				loopDelta:      1,
				isSufficient:   &reflection.IsSufficient,
				knowledgeGap:   &reflection.KnowledgeGap,
				pendingQueries: reflection.FollowUpQueries,
			})

			stage = routeAfterReflection(state, e.Config.MaxResearchLoops)
			if stage == StageResearching && len(state.PendingQueries) == 0 {
				// Insufficient verdict with no follow-up queries while the
				// loop still has budget: the reflector produced a malformed
				// response and the run cannot make progress.
				return nil, &StageError{Stage: StageReflecting, Err: ErrNoFollowUp}
			}

		case StageFinalizing:
			res, err := e.finalize(ctx, conv, state)
			if err != nil {
				return nil, &StageError{Stage: StageFinalizing, Err: err}
			}
			result = res
			stage = StageDone
		}
	}

	e.notify(state)
	return result, nil
}
