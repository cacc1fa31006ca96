package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/fit.tmpl
var fitPromptRaw string

//go:embed prompts/location.tmpl
var locationPromptRaw string

// Parsed once at package init; reused on every call.
var (
	FitTemplate      = template.Must(template.New("fit").Parse(fitPromptRaw))
	LocationTemplate = template.Must(template.New("location").Parse(locationPromptRaw))
)

// Prompt input limits, in characters.
const (
	maxDescriptionChars         = 10000
	maxLocationDescriptionChars = 8000
	maxSnippetChars             = 1000
)

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
