package agent

import (
	"fmt"
	"strings"
	"time"
)

func currentDate() string {
	return time.Now().Format("January 2, 2006")
}

func queryWriterPrompt(topic string, count int) string {
	return fmt.Sprintf(`Your goal is to generate sophisticated and diverse web search queries for a research assistant.

Instructions:
- Always prefer a single search query, only add more if the original question requests multiple aspects and one query is not enough.
- Each query should focus on one specific aspect of the original question.
- Don't produce more than %d queries.
- Queries should be diverse; if the topic is broad, generate more than one query.
- Don't generate multiple similar queries, one is enough.
- Queries should ensure the most current information is gathered. The current date is %s.

Format your response as a JSON object with these exact keys:
{
  "rationale": "Brief explanation of why these queries are relevant",
  "query": ["a list of search queries"]
}

Context: %s`, count, currentDate(), topic)
}

func webSearcherPrompt(query string) string {
	return fmt.Sprintf(`Conduct targeted Google Searches to gather the most recent, credible information on "%s" and synthesize it into a verifiable text artifact.

Instructions:
- Query should ensure that the most current information is gathered. The current date is %s.
- Conduct multiple, diverse searches to gather comprehensive information.
- Consolidate key findings while meticulously tracking the source(s) for each specific piece of information.
- The output should be a well-written summary or report based on your search findings.
- Only include the information found in the search results, don't make up any information.

Research Topic:
%s`, query, currentDate(), query)
}

func reflectionPrompt(topic string, summaries []Summary) string {
	return fmt.Sprintf(`You are an expert research assistant analyzing summaries about "%s".

Instructions:
- Identify knowledge gaps or areas that need deeper exploration and generate a follow-up query.
- If the provided summaries are sufficient to answer the user's question, don't generate a follow-up query.
- If there is a knowledge gap, generate a follow-up query that would help expand your understanding.
- Focus on technical details, implementation specifics, or emerging trends that weren't fully covered.

Format your response as a JSON object with these exact keys:
{
  "is_sufficient": true or false,
  "knowledge_gap": "Describe what information is missing or needs clarification",
  "follow_up_queries": ["Write a specific question to address this gap"]
}

Summaries:
%s`, topic, joinSummaries(summaries))
}

func answerPrompt(topic string, summaries []Summary) string {
	return fmt.Sprintf(`Generate a high-quality answer to the user's question based on the provided summaries.

Instructions:
- The current date is %s.
- You are the final step of a multi-step research process, don't mention that you are the final step.
- You have access to all the information gathered from the previous steps.
- Generate a high-quality answer to the user's question based on the provided summaries and the user's question.
- Include the citation markers from the summaries in the answer correctly, keeping their markdown link form.

User Context:
%s

Summaries:
%s`, currentDate(), topic, joinSummaries(summaries))
}

func joinSummaries(summaries []Summary) string {
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
