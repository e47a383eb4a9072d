package agent

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered message history for one research run. The run
// treats it as immutable input; the finalizer produces the terminal
// assistant message the caller may append.
type Conversation []Message

// ResearchTopic collapses the conversation into the text the prompt
// templates reason about. A single user message passes through unchanged.
func (c Conversation) ResearchTopic() string {
	if len(c) == 1 {
		return c[0].Content
	}
	var b strings.Builder
	for _, m := range c {
		switch m.Role {
		case RoleUser:
			b.WriteString("User: ")
		case RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// Source is one distinct web source seen during a run. ID is the short
// token assigned on first sighting; ShortURL is the inline marker target
// the finalizer later expands back to URL.
type Source struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	ShortURL string `json:"short_url"`
}

// Span marks a contiguous region of summary text attributed to one or more
// sources. Offsets are byte offsets into the original (pre-marker) text,
// 0 <= StartOffset < EndOffset <= len(text).
type Span struct {
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Sources     []Source `json:"sources"`
}

// Summary is the annotated output of one web research task.
type Summary struct {
	QueryID    int    `json:"query_id"`
	Query      string `json:"query"`
	Text       string `json:"text"`
	CitedSpans []Span `json:"cited_spans"`
}

// SearchQueryList is the structured output of the query generation stage.
type SearchQueryList struct {
	Queries   []string `json:"query"`
	Rationale string   `json:"rationale"`
}

// Reflection is the structured output of the reflection stage.
type Reflection struct {
	IsSufficient    bool     `json:"is_sufficient"`
	KnowledgeGap    string   `json:"knowledge_gap"`
	FollowUpQueries []string `json:"follow_up_queries"`
}

// Result is the terminal output of a run: the final assistant message with
// citation markers expanded, plus every source actually cited in it.
type Result struct {
	Message      Message  `json:"message"`
	CitedSources []Source `json:"cited_sources"`
}
