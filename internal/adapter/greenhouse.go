package adapter

import (
	"regexp"

	"github.com/amishk599/jobradar/internal/model"
)

var greenhouseSlug = regexp.MustCompile(`(?:job-)?boards\.greenhouse\.io/([^/?#]+)`)

// Greenhouse covers boards.greenhouse.io and job-boards.greenhouse.io. Its
// tenants customise templates heavily, hence the long description chain.
func Greenhouse() Site {
	return Site{
		Source: model.SourceGreenhouse,
		Hosts:  []string{"greenhouse.io"},
		Title: Chain{Field: "title", Strategies: []Strategy{
			Text("h1"),
			Text("h1.app-title"),
			Text(".job-title"),
			ldTitle,
			Meta("og:title"),
		}},
		Company: Chain{Field: "company", Strategies: []Strategy{
			Text(".company-name"),
			URLSlug(greenhouseSlug),
			ldCompany,
		}},
		Location: Chain{Field: "location", Strategies: []Strategy{
			Text(".location"),
			Text(".job__location"),
			ldLocation,
		}},
		Description: Chain{Field: "description", Strategies: []Strategy{
			Block("#content"),
			Block(".job-description"),
			Block(".content"),
			Block(`[id*="content"]`),
			Block(`[class*="description"]`),
			Block("main"),
			Block("article"),
			Stripped("body"),
			ldDescription,
		}},
	}
}
