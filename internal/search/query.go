package search

import (
	"strings"
	"time"
)

// Keywords are a profile's query terms. Focus terms describe the domain,
// roles the job family; each group is OR-ed and the groups are AND-ed.
type Keywords struct {
	Focus []string `yaml:"focus"`
	Roles []string `yaml:"roles"`
}

// BuildQuery assembles the boolean query, e.g.
//
//	(AI OR "climate tech") AND (analyst OR "product manager") AND (site:boards.greenhouse.io) AND ("United States" OR remote)
//
// Multi-word terms are quoted; locations are always quoted.
func BuildQuery(kw Keywords, boards, locations []string) string {
	var parts []string
	if len(kw.Focus) > 0 {
		parts = append(parts, group(kw.Focus, quoteIfSpaced))
	}
	if len(kw.Roles) > 0 {
		parts = append(parts, group(kw.Roles, quoteIfSpaced))
	}
	if len(boards) > 0 {
		parts = append(parts, group(boards, func(b string) string { return "site:" + b }))
	}
	if len(locations) > 0 {
		parts = append(parts, group(locations, quote))
	}
	return strings.Join(parts, " AND ")
}

// WithRecency appends an after: filter for the last days days.
func WithRecency(query string, now time.Time, days int) string {
	if days <= 0 {
		return query
	}
	return query + " after:" + now.AddDate(0, 0, -days).Format("2006-01-02")
}

func group(terms []string, format func(string) string) string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = format(t)
	}
	return "(" + strings.Join(out, " OR ") + ")"
}

func quoteIfSpaced(s string) string {
	if strings.Contains(s, " ") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + s + `"`
}
