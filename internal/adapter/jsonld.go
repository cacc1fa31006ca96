package adapter

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobradar/internal/fetch"
)

// jobPosting is the subset of schema.org/JobPosting that boards embed as
// JSON-LD. Fields are raw because tenants disagree on their shapes.
type jobPosting struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	DatePosted         string          `json:"datePosted"`
	HiringOrganization json.RawMessage `json:"hiringOrganization"`
	JobLocation        json.RawMessage `json:"jobLocation"`
	JobLocationType    string          `json:"jobLocationType"`
}

type ldAddress struct {
	Address struct {
		Locality string `json:"addressLocality"`
		Region   string `json:"addressRegion"`
		Country  any    `json:"addressCountry"`
	} `json:"address"`
}

// findJobPosting returns the first JobPosting object embedded in the page.
func findJobPosting(page *fetch.Page) *jobPosting {
	var found *jobPosting
	page.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var doc any
		if err := json.Unmarshal([]byte(s.Text()), &doc); err != nil {
			return true
		}
		obj := searchJobPosting(doc)
		if obj == nil {
			return true
		}
		raw, err := json.Marshal(obj)
		if err != nil {
			return true
		}
		var jp jobPosting
		if err := json.Unmarshal(raw, &jp); err != nil {
			return true
		}
		found = &jp
		return false
	})
	return found
}

func searchJobPosting(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return searchJobPosting(graph)
		}
	case []any:
		for _, item := range t {
			if obj := searchJobPosting(item); obj != nil {
				return obj
			}
		}
	}
	return nil
}

func isJobPostingType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "JobPosting"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func (jp *jobPosting) company() string {
	if len(jp.HiringOrganization) == 0 {
		return ""
	}
	var org struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(jp.HiringOrganization, &org) == nil {
		return org.Name
	}
	var name string
	if json.Unmarshal(jp.HiringOrganization, &name) == nil {
		return name
	}
	return ""
}

func (jp *jobPosting) location() string {
	var places []ldAddress
	if len(jp.JobLocation) > 0 {
		if err := json.Unmarshal(jp.JobLocation, &places); err != nil {
			var one ldAddress
			if json.Unmarshal(jp.JobLocation, &one) == nil {
				places = []ldAddress{one}
			}
		}
	}

	var out []string
	for _, p := range places {
		var parts []string
		for _, s := range []string{p.Address.Locality, p.Address.Region, countryName(p.Address.Country)} {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, ", "))
		}
	}
	if strings.EqualFold(jp.JobLocationType, "TELECOMMUTE") {
		out = append(out, "Remote")
	}
	return strings.Join(out, "; ")
}

func countryName(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if name, ok := t["name"].(string); ok {
			return name
		}
	}
	return ""
}

func (jp *jobPosting) postedAt() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(jp.DatePosted)); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Structured-data strategies. Boards that render client-side usually still
// ship JSON-LD in the initial HTML, so these close most chains.
var (
	ldTitle = Strategy{Name: "json-ld title", Apply: func(p *fetch.Page) string {
		if jp := findJobPosting(p); jp != nil {
			return jp.Title
		}
		return ""
	}}
	ldCompany = Strategy{Name: "json-ld hiringOrganization", Apply: func(p *fetch.Page) string {
		if jp := findJobPosting(p); jp != nil {
			return jp.company()
		}
		return ""
	}}
	ldLocation = Strategy{Name: "json-ld jobLocation", Apply: func(p *fetch.Page) string {
		if jp := findJobPosting(p); jp != nil {
			return jp.location()
		}
		return ""
	}}
	ldDescription = Strategy{Name: "json-ld description", Apply: func(p *fetch.Page) string {
		if jp := findJobPosting(p); jp != nil {
			return htmlToText(jp.Description)
		}
		return ""
	}}
)
