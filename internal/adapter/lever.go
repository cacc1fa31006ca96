package adapter

import (
	"regexp"

	"github.com/amishk599/jobradar/internal/model"
)

var leverSlug = regexp.MustCompile(`jobs\.lever\.co/([^/?#]+)`)

// Lever postings put the title in an h2 inside .posting-headline.
func Lever() Site {
	return Site{
		Source: model.SourceLever,
		Hosts:  []string{"lever.co"},
		Title: Chain{Field: "title", Strategies: []Strategy{
			Text("h2"),
			Text(".posting-headline h2"),
			ldTitle,
			Meta("og:title"),
		}},
		Company: Chain{Field: "company", Strategies: []Strategy{
			Text(".main-header-text-primary"),
			URLSlug(leverSlug),
			ldCompany,
		}},
		Location: Chain{Field: "location", Strategies: []Strategy{
			Text(".posting-categories .location"),
			Text(".workplaceTypes"),
			ldLocation,
		}},
		// The description containers here only hold the posting body, so
		// any non-empty text is accepted.
		Description: Chain{Field: "description", MinLength: 1, Strategies: []Strategy{
			Block(".posting-description"),
			Block(".section-wrapper.page-full-width"),
			Block(".posting-page"),
			ldDescription,
		}},
	}
}
