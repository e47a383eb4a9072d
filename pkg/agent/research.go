package agent

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// webResearch runs one grounded search for query, assigns short tokens to
// newly seen sources, and returns the summary text with inline citation
// markers inserted.
func (e *Engine) webResearch(ctx context.Context, query string, id int, sources *SourceMap) (Summary, error) {
	e.Logger.Info("Researching", "query_id", id, "query", query)

	resp, err := e.Search.GenerateGrounded(ctx, e.Config.QueryGeneratorModel, webSearcherPrompt(query))
	if err != nil {
		return Summary{}, fmt.Errorf("research for query %d failed: %w", id, err)
	}

	var spans []Span
	for _, support := range resp.Supports {
		// Malformed grounding data: a support without an end offset has no
		// usable span. Drop it, keep the run going.
		if !support.HasEnd {
			continue
		}

		var spanSources []Source
		for _, idx := range support.ChunkIndices {
			if idx < 0 || idx >= len(resp.Chunks) {
				continue
			}
			chunk := resp.Chunks[idx]
			if chunk.URI == "" {
				continue
			}
			spanSources = append(spanSources, sources.Resolve(chunk.URI, chunk.Title))
		}
		if len(spanSources) == 0 {
			continue
		}

		spans = append(spans, Span{
			StartOffset: support.StartIndex,
			EndOffset:   support.EndIndex,
			Sources:     spanSources,
		})
	}

	return Summary{
		QueryID:    id,
		Query:      query,
		Text:       InsertCitationMarkers(resp.Text, spans),
		CitedSpans: spans,
	}, nil
}

// researchBatch fans out one web research task per pending query and waits
// for the whole batch. Query ids continue from the count of queries issued
// so far. Summaries land in the shared state in completion order; a failed
// task does not cancel its siblings, the batch drains and then fails.
func (e *Engine) researchBatch(ctx context.Context, state *ResearchState) error {
	queries := state.PendingQueries
	baseID := len(state.Queries)
	state.apply(stateUpdate{queries: queries, resetPending: true})

	var g errgroup.Group
	var mu sync.Mutex

	for i, q := range queries {
		id := baseID + i
		query := q
		g.Go(func() error {
			summary, err := e.webResearch(ctx, query, id, state.Sources)
			if err != nil {
				return err
			}
			mu.Lock()
			state.apply(stateUpdate{summaries: []Summary{summary}})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	e.Logger.Info("Research batch complete", "queries", len(queries), "sources", state.Sources.Len())
	return nil
}
