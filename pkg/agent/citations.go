package agent

import (
	"fmt"
	"sort"
	"strings"
)

// citationLabel derives the inline marker label from a source title.
// Grounding chunk titles are usually hostnames ("example.com"); the final
// extension is dropped for readability.
func citationLabel(title string) string {
	if i := strings.LastIndex(title, "."); i > 0 {
		return title[:i]
	}
	return title
}

// InsertCitationMarkers inserts an inline reference marker after each cited
// span. Spans are processed in descending StartOffset order so that each
// insertion only shifts text past offsets already handled; earlier spans
// keep valid offsets throughout.
func InsertCitationMarkers(text string, spans []Span) string {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartOffset != sorted[j].StartOffset {
			return sorted[i].StartOffset > sorted[j].StartOffset
		}
		return sorted[i].EndOffset > sorted[j].EndOffset
	})

	for _, span := range sorted {
		if span.StartOffset < 0 || span.EndOffset <= span.StartOffset || span.EndOffset > len(text) {
			continue
		}
		var marker strings.Builder
		for _, src := range span.Sources {
			fmt.Fprintf(&marker, " [%s](%s)", citationLabel(src.Title), src.ShortURL)
		}
		text = text[:span.EndOffset] + marker.String() + text[span.EndOffset:]
	}

	return text
}

// ExpandCitations replaces every short-URL reference marker still present
// in text with the full source URL, and reports which sources were actually
// cited. Tokens assigned during research but absent from the final text are
// dropped.
func ExpandCitations(text string, sources []Source) (string, []Source) {
	// Replace higher tokens first: "…/id/1" is a prefix of "…/id/10".
	byLen := make([]Source, len(sources))
	copy(byLen, sources)
	sort.Slice(byLen, func(i, j int) bool { return byLen[i].ID > byLen[j].ID })

	var cited []Source
	for _, src := range byLen {
		if !strings.Contains(text, src.ShortURL) {
			continue
		}
		text = strings.ReplaceAll(text, src.ShortURL, src.URL)
		cited = append(cited, src)
	}

	sort.Slice(cited, func(i, j int) bool { return cited[i].ID < cited[j].ID })
	return text, cited
}
