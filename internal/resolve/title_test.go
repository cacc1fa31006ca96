package resolve

import (
	"strings"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

func TestTitle_Order(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		candidates Candidates
		want       string
		origin     Origin
	}{
		{
			name:       "extracted title kept",
			current:    "Data Engineer",
			candidates: Candidates{Search: "Other", Scoring: []string{"LLM"}, Snippet: "Snippet title. More"},
			want:       "Data Engineer",
			origin:     OriginExtracted,
		},
		{
			name:       "search title beats scoring",
			current:    model.Placeholder,
			candidates: Candidates{Search: "Search Title", Scoring: []string{"LLM Title"}},
			want:       "Search Title",
			origin:     OriginSearch,
		},
		{
			name:       "blank current is resolved",
			current:    "   ",
			candidates: Candidates{Search: "Search Title"},
			want:       "Search Title",
			origin:     OriginSearch,
		},
		{
			name:       "first usable scoring title in track order",
			current:    model.Placeholder,
			candidates: Candidates{Search: model.Placeholder, Scoring: []string{"", "Second Track Title"}},
			want:       "Second Track Title",
			origin:     OriginScoring,
		},
		{
			name:       "snippet used last",
			current:    "",
			candidates: Candidates{Snippet: "Climate Data Scientist | Acme. Join us"},
			want:       "Climate Data Scientist",
			origin:     OriginSnippet,
		},
		{
			name:       "nothing usable keeps placeholder",
			current:    model.Placeholder,
			candidates: Candidates{Snippet: "Hi. There"},
			want:       model.Placeholder,
			origin:     OriginUnresolved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.current, tt.candidates)
			if got.Title != tt.want || got.Origin != tt.origin {
				t.Errorf("Title() = %+v, want %q from %s", got, tt.want, tt.origin)
			}
		})
	}
}

func TestTitle_AlwaysTerminates(t *testing.T) {
	inputs := []Candidates{
		{},
		{Scoring: nil},
		{Scoring: []string{model.Placeholder, model.Placeholder}},
		{Snippet: strings.Repeat("x", 10000)},
		{Snippet: "\n\n\n"},
	}
	for _, c := range inputs {
		got := Title(model.Placeholder, c)
		if got.Title == "" {
			t.Errorf("Title(%+v) returned an empty title", c)
		}
		if got.Title == model.Placeholder && !got.Unresolved() {
			t.Errorf("placeholder result should be marked unresolved: %+v", got)
		}
	}
}

func TestSnippetTitle(t *testing.T) {
	tests := []struct {
		snippet string
		want    string
		ok      bool
	}{
		{"Senior Engineer. Apply today", "Senior Engineer", true},
		{"Senior Engineer — Acme Corp", "Senior Engineer", true},
		{"Senior Engineer | Lever", "Senior Engineer", true},
		{"Senior Engineer\nRemote", "Senior Engineer", true},
		{"  Analyst  ", "Analyst", true},
		{"Dev. Join", "", false},     // 3 characters is too short
		{"Devs. Join", "Devs", true}, // 4 is enough
		{strings.Repeat("a", 99), strings.Repeat("a", 99), true},
		{strings.Repeat("a", 100), "", false}, // 100 is too long
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := SnippetTitle(tt.snippet)
		if got != tt.want || ok != tt.ok {
			t.Errorf("SnippetTitle(%q) = %q, %v, want %q, %v", tt.snippet, got, ok, tt.want, tt.ok)
		}
	}
}
