package adapter

import (
	"regexp"

	"github.com/amishk599/jobradar/internal/model"
)

var workableSlug = regexp.MustCompile(`apply\.workable\.com/([^/?#]+)`)

// Workable marks most fields with data-ui attributes.
func Workable() Site {
	return Site{
		Source: model.SourceWorkable,
		Hosts:  []string{"workable.com"},
		Title: Chain{Field: "title", Strategies: []Strategy{
			Text("h1"),
			Text(`[data-ui="job-title"]`),
			ldTitle,
			Meta("og:title"),
		}},
		Company: Chain{Field: "company", Strategies: []Strategy{
			Text(".company-name"),
			URLSlug(workableSlug),
			ldCompany,
		}},
		Location: Chain{Field: "location", Strategies: []Strategy{
			Text(".job-location"),
			Text(`[data-ui="job-location"]`),
			ldLocation,
		}},
		// The description containers here only hold the posting body, so
		// any non-empty text is accepted.
		Description: Chain{Field: "description", MinLength: 1, Strategies: []Strategy{
			Block(".description"),
			Block(`[data-ui="job-description"]`),
			Block("main"),
			ldDescription,
		}},
	}
}
