package adapter

import (
	"regexp"

	"github.com/amishk599/jobradar/internal/model"
)

var ashbySlug = regexp.MustCompile(`jobs\.ashbyhq\.com/([^/?#]+)`)

// Ashby pages are rendered client-side, so the structured-data strategies
// often carry the result. The company only ever comes from the URL or JSON-LD.
func Ashby() Site {
	return Site{
		Source: model.SourceAshby,
		Hosts:  []string{"ashbyhq.com"},
		Title: Chain{Field: "title", Strategies: []Strategy{
			Text("h1"),
			Text(".job-title"),
			Text(`[data-testid="job-title"]`),
			ldTitle,
			Meta("og:title"),
		}},
		Company: Chain{Field: "company", Strategies: []Strategy{
			URLSlug(ashbySlug),
			ldCompany,
		}},
		Location: Chain{Field: "location", Strategies: []Strategy{
			Text(".location"),
			Text(`[class*="location"]`),
			ldLocation,
		}},
		Description: Chain{Field: "description", Strategies: []Strategy{
			Block(`[class*="description"]`),
			Block("main"),
			Block("article"),
			Block(`[data-testid*="description"]`),
			Block(".job-details"),
			Block(".job-content"),
			Stripped("main"),
			ldDescription,
		}},
	}
}
