package agent

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceMapAssignsMonotonicTokens(t *testing.T) {
	m := NewSourceMap()

	a := m.Resolve("https://a.com", "a.com")
	b := m.Resolve("https://b.com", "b.com")
	again := m.Resolve("https://a.com", "a.com")

	assert.Equal(t, 0, a.ID)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, a, again, "token must be stable for the rest of the run")
	assert.Equal(t, shortURLPrefix+"0", a.ShortURL)
	assert.Equal(t, 2, m.Len())
}

func TestSourceMapConcurrentFirstSighting(t *testing.T) {
	m := NewSourceMap()

	const workers = 50
	const distinct = 5

	var wg sync.WaitGroup
	results := make([]Source, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://site-%d.com", i%distinct)
			results[i] = m.Resolve(url, "title")
		}(i)
	}
	wg.Wait()

	require.Equal(t, distinct, m.Len(), "concurrent first-sightings of a URI must resolve to a single token")

	// Same URL always mapped to the same token.
	byURL := make(map[string]int)
	for i, src := range results {
		url := fmt.Sprintf("https://site-%d.com", i%distinct)
		if seen, ok := byURL[url]; ok {
			assert.Equal(t, seen, src.ID)
		} else {
			byURL[url] = src.ID
		}
	}

	// Tokens are 0..distinct-1 with no gaps.
	all := m.All()
	for i, src := range all {
		assert.Equal(t, i, src.ID)
	}
}

func TestStateApplyMergeRules(t *testing.T) {
	s := NewResearchState()

	s.apply(stateUpdate{
		queries:        []string{"q0", "q1"},
		pendingQueries: []string{"q0", "q1"},
	})
	s.apply(stateUpdate{
		queries:   []string{"q2"},
		summaries: []Summary{{QueryID: 0, Text: "t"}},
	})

	assert.Equal(t, []string{"q0", "q1", "q2"}, s.Queries, "queries append")
	assert.Len(t, s.Summaries, 1, "summaries append")
	assert.Equal(t, []string{"q0", "q1"}, s.PendingQueries)

	sufficient := true
	gap := "needs depth"
	s.apply(stateUpdate{
		loopDelta:    1,
		isSufficient: &sufficient,
		knowledgeGap: &gap,
		resetPending: true,
	})

	assert.Equal(t, 1, s.LoopCount)
	assert.True(t, s.IsSufficient)
	assert.Equal(t, "needs depth", s.KnowledgeGap)
	assert.Empty(t, s.PendingQueries, "resetPending clears the batch")

	// Scalars overwrite, never accumulate.
	insufficient := false
	s.apply(stateUpdate{isSufficient: &insufficient})
	assert.False(t, s.IsSufficient)
	assert.Equal(t, 1, s.LoopCount)
}

func TestConversationResearchTopic(t *testing.T) {
	single := Conversation{{Role: RoleUser, Content: "what is quantum supremacy?"}}
	assert.Equal(t, "what is quantum supremacy?", single.ResearchTopic())

	multi := Conversation{
		{Role: RoleUser, Content: "who won?"},
		{Role: RoleAssistant, Content: "won what?"},
		{Role: RoleUser, Content: "the 2024 election"},
	}
	topic := multi.ResearchTopic()
	assert.Contains(t, topic, "User: who won?")
	assert.Contains(t, topic, "Assistant: won what?")
	assert.Contains(t, topic, "User: the 2024 election")
}
