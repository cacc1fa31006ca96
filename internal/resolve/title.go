// Package resolve reconciles title signals from search, extraction and
// scoring into a single best-effort title.
package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobradar/internal/model"
)

// Origin records which signal supplied the final title.
type Origin string

const (
	OriginExtracted  Origin = "extracted"
	OriginSearch     Origin = "search"
	OriginScoring    Origin = "scoring"
	OriginSnippet    Origin = "snippet"
	OriginUnresolved Origin = "unresolved"
)

// Snippet titles must be strictly longer than minSnippetTitle and strictly
// shorter than maxSnippetTitle characters.
const (
	minSnippetTitle = 3
	maxSnippetTitle = 100
)

// Candidates are the fallback signals, in trust order.
type Candidates struct {
	Search  string   // title reported by the search provider
	Scoring []string // titles inferred by the scoring service, in track order
	Snippet string   // search snippet
}

// Resolution is the outcome of Title.
type Resolution struct {
	Title  string
	Origin Origin
}

// Unresolved reports whether no usable title was found.
func (r Resolution) Unresolved() bool {
	return r.Origin == OriginUnresolved
}

// Title returns current unless it is blank or the placeholder. Otherwise the
// first usable candidate wins: the search title, then scoring titles, then
// the snippet's leading segment. If none is usable the placeholder is kept.
func Title(current string, c Candidates) Resolution {
	if usable(current) {
		return Resolution{Title: strings.TrimSpace(current), Origin: OriginExtracted}
	}
	if usable(c.Search) {
		return Resolution{Title: strings.TrimSpace(c.Search), Origin: OriginSearch}
	}
	for _, t := range c.Scoring {
		if usable(t) {
			return Resolution{Title: strings.TrimSpace(t), Origin: OriginScoring}
		}
	}
	if t, ok := SnippetTitle(c.Snippet); ok {
		return Resolution{Title: t, Origin: OriginSnippet}
	}
	return Resolution{Title: model.Placeholder, Origin: OriginUnresolved}
}

// snippetBreaks end the leading segment of a snippet.
const snippetBreaks = ".—|\n"

// SnippetTitle takes the snippet up to the first period, em dash, pipe or
// newline and accepts it only if its length looks like a title.
func SnippetTitle(snippet string) (string, bool) {
	segment := snippet
	if i := strings.IndexAny(snippet, snippetBreaks); i >= 0 {
		segment = snippet[:i]
	}
	segment = strings.TrimSpace(segment)
	n := utf8.RuneCountInString(segment)
	if n <= minSnippetTitle || n >= maxSnippetTitle {
		return "", false
	}
	return segment, true
}

func usable(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != model.Placeholder
}
