package agent

import (
	"fmt"
	"sync"
)

const shortURLPrefix = "https://vertexaisearch.cloud.google.com/id/"

// SourceMap assigns short tokens to source URIs. Tokens are monotonically
// increasing and stable for the remainder of the run; concurrent research
// tasks resolving the same URI get the same token (first writer wins).
type SourceMap struct {
	mu    sync.Mutex
	byURL map[string]Source
	order []Source
}

func NewSourceMap() *SourceMap {
	return &SourceMap{byURL: make(map[string]Source)}
}

// Resolve returns the Source for url, assigning a fresh token if this is
// the first sighting in the run.
func (m *SourceMap) Resolve(url, title string) Source {
	m.mu.Lock()
	defer m.mu.Unlock()

	if src, ok := m.byURL[url]; ok {
		return src
	}

	src := Source{
		ID:       len(m.order),
		URL:      url,
		Title:    title,
		ShortURL: fmt.Sprintf("%s%d", shortURLPrefix, len(m.order)),
	}
	m.byURL[url] = src
	m.order = append(m.order, src)
	return src
}

// All returns every assigned source in token order.
func (m *SourceMap) All() []Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Source, len(m.order))
	copy(out, m.order)
	return out
}

func (m *SourceMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// ResearchState accretes across one orchestration run and is discarded
// when the finalizer produces its output.
type ResearchState struct {
	Queries        []string   `json:"queries"`
	Summaries      []Summary  `json:"summaries"`
	Sources        *SourceMap `json:"-"`
	LoopCount      int        `json:"loop_count"`
	IsSufficient   bool       `json:"is_sufficient"`
	KnowledgeGap   string     `json:"knowledge_gap"`
	PendingQueries []string   `json:"pending_queries"`
}

func NewResearchState() *ResearchState {
	return &ResearchState{Sources: NewSourceMap()}
}

// stateUpdate is the partial update a stage hands back to the loop
// controller. Merge rules: sequences append, pendingQueries and scalars
// overwrite, loopDelta adds.
type stateUpdate struct {
	queries        []string
	summaries      []Summary
	pendingQueries []string
	resetPending   bool
	loopDelta      int
	isSufficient   *bool
	knowledgeGap   *string
}

func (s *ResearchState) apply(u stateUpdate) {
	s.Queries = append(s.Queries, u.queries...)
	s.Summaries = append(s.Summaries, u.summaries...)
	if u.pendingQueries != nil || u.resetPending {
		s.PendingQueries = u.pendingQueries
	}
	s.LoopCount += u.loopDelta
	if u.isSufficient != nil {
		s.IsSufficient = *u.isSufficient
	}
	if u.knowledgeGap != nil {
		s.KnowledgeGap = *u.knowledgeGap
	}
}
