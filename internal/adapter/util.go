package adapter

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/amishk599/jobradar/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// CleanText collapses whitespace runs to single spaces, drops non-printable
// characters (newlines excepted) and trims. The placeholder passes through.
func CleanText(s string) string {
	if s == "" || s == model.Placeholder {
		return s
	}
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	return strings.TrimSpace(s)
}

// htmlToText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (structured data is often double-encoded;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func htmlToText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// slugName turns a URL slug like "acme-labs" into "Acme Labs".
func slugName(slug string) string {
	return titleCase(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// orPlaceholder returns s, or the placeholder if s is empty.
func orPlaceholder(s string) string {
	if s == "" {
		return model.Placeholder
	}
	return s
}
