package agent

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource(id int, title, url string) Source {
	return Source{
		ID:       id,
		Title:    title,
		URL:      url,
		ShortURL: shortURLPrefix + strconv.Itoa(id),
	}
}

func TestCitationLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Hostname", "example.com", "example"},
		{"Subdomain", "docs.example.com", "docs.example"},
		{"No extension", "example", "example"},
		{"Leading dot kept", ".hidden", ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, citationLabel(tt.input))
		})
	}
}

func TestInsertCitationMarkersOrderIndependent(t *testing.T) {
	text := strings.Repeat("x", 40)
	a := testSource(0, "alpha.com", "https://alpha.com/page")
	b := testSource(1, "beta.org", "https://beta.org/page")

	spans := []Span{
		{StartOffset: 10, EndOffset: 12, Sources: []Source{a}},
		{StartOffset: 30, EndOffset: 32, Sources: []Source{b}},
	}
	reversed := []Span{spans[1], spans[0]}

	got := InsertCitationMarkers(text, spans)
	gotReversed := InsertCitationMarkers(text, reversed)

	assert.Equal(t, got, gotReversed)

	wantGrowth := len(" [alpha](" + a.ShortURL + ")" + " [beta](" + b.ShortURL + ")")
	assert.Equal(t, len(text)+wantGrowth, len(got))

	// The early marker sits right after offset 12 of the original text.
	assert.True(t, strings.HasPrefix(got[12:], " [alpha]("+a.ShortURL+")"))
	assert.Contains(t, got, " [beta]("+b.ShortURL+")")
}

func TestInsertCitationMarkersMultipleSourcesPerSpan(t *testing.T) {
	text := "climate change accelerates glacier melt"
	a := testSource(0, "nasa.gov", "https://nasa.gov/x")
	b := testSource(1, "noaa.gov", "https://noaa.gov/y")

	got := InsertCitationMarkers(text, []Span{
		{StartOffset: 0, EndOffset: 14, Sources: []Source{a, b}},
	})

	require.True(t, strings.HasPrefix(got, "climate change [nasa]("+a.ShortURL+") [noaa]("+b.ShortURL+")"))
	assert.True(t, strings.HasSuffix(got, " accelerates glacier melt"))
}

func TestInsertCitationMarkersSkipsInvalidSpans(t *testing.T) {
	text := "short text"
	src := testSource(0, "example.com", "https://example.com")

	got := InsertCitationMarkers(text, []Span{
		{StartOffset: 2, EndOffset: 2, Sources: []Source{src}},   // empty span
		{StartOffset: 5, EndOffset: 999, Sources: []Source{src}}, // past end
		{StartOffset: -1, EndOffset: 4, Sources: []Source{src}},  // negative start
	})

	assert.Equal(t, text, got)
}

func TestInsertCitationMarkersOverlappingSpans(t *testing.T) {
	text := strings.Repeat("a", 20)
	a := testSource(0, "one.com", "https://one.com")
	b := testSource(1, "two.com", "https://two.com")

	got := InsertCitationMarkers(text, []Span{
		{StartOffset: 5, EndOffset: 10, Sources: []Source{b}},
		{StartOffset: 5, EndOffset: 15, Sources: []Source{a}},
	})

	// Same start offset: higher end resolves first, so both markers land
	// at their original offsets without corrupting each other.
	wantShort := " [two](" + b.ShortURL + ")"
	wantLong := " [one](" + a.ShortURL + ")"
	assert.Equal(t, text[:10]+wantShort+text[10:15]+wantLong+text[15:], got)
}

func TestExpandCitationsRoundTrip(t *testing.T) {
	cited := testSource(0, "alpha.com", "https://alpha.com/long/path")
	uncited := testSource(1, "beta.org", "https://beta.org/other")

	text := "Fact one [alpha](" + cited.ShortURL + ") and plain text."

	got, sources := ExpandCitations(text, []Source{cited, uncited})

	assert.Equal(t, "Fact one [alpha](https://alpha.com/long/path) and plain text.", got)
	require.Len(t, sources, 1)
	assert.Equal(t, cited.URL, sources[0].URL)
	assert.NotContains(t, got, shortURLPrefix)
}

func TestExpandCitationsTokenPrefixSafety(t *testing.T) {
	// Token 1 is a string prefix of token 10; expansion must not corrupt
	// the longer token's marker.
	var sources []Source
	for i := 0; i <= 10; i++ {
		sources = append(sources, testSource(i, "site.com", "https://site.com/"+strconv.Itoa(i)))
	}

	text := "a (" + sources[1].ShortURL + ") b (" + sources[10].ShortURL + ")"
	got, cited := ExpandCitations(text, sources)

	assert.Equal(t, "a (https://site.com/1) b (https://site.com/10)", got)
	require.Len(t, cited, 2)
	assert.Equal(t, 1, cited[0].ID)
	assert.Equal(t, 10, cited[1].ID)
}
