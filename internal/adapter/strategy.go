package adapter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/amishk599/jobradar/internal/fetch"
	"github.com/amishk599/jobradar/internal/model"
)

// Strategy is one attempt at recovering a field from a page. Apply returns
// the empty string when the strategy does not match.
type Strategy struct {
	Name  string
	Apply func(page *fetch.Page) string
}

// Chain is an ordered list of strategies for one field. The first strategy
// whose cleaned result is at least MinLength characters wins. A description
// chain with MinLength 0 takes the extractor's configured minimum.
type Chain struct {
	Field      string
	MinLength  int
	Strategies []Strategy
}

// Resolve evaluates the chain left to right. It returns the winning value and
// the name of the strategy that produced it, or two empty strings.
func (c Chain) Resolve(page *fetch.Page) (value, strategy string) {
	min := c.MinLength
	if min < 1 {
		min = 1
	}
	for _, s := range c.Strategies {
		v := CleanText(s.Apply(page))
		if v == "" || v == model.Placeholder {
			continue
		}
		if utf8.RuneCountInString(v) >= min {
			return v, s.Name
		}
	}
	return "", ""
}

// withMin returns a copy of the chain with a different length threshold.
func (c Chain) withMin(n int) Chain {
	c.MinLength = n
	return c
}

// Text takes the text of the first element matching selector.
func Text(selector string) Strategy {
	return Strategy{
		Name: selector,
		Apply: func(page *fetch.Page) string {
			return page.Doc.Find(selector).First().Text()
		},
	}
}

// Attr takes an attribute of the first element matching selector.
func Attr(selector, attr string) Strategy {
	return Strategy{
		Name: selector + "@" + attr,
		Apply: func(page *fetch.Page) string {
			return page.Doc.Find(selector).First().AttrOr(attr, "")
		},
	}
}

// Meta reads an OpenGraph-style meta property.
func Meta(property string) Strategy {
	return Attr(`meta[property="`+property+`"]`, "content")
}

// Block takes the text of the first element matching selector, one line per
// text node, so adjacent block elements never run together.
func Block(selector string) Strategy {
	return Strategy{
		Name: selector,
		Apply: func(page *fetch.Page) string {
			return blockText(page.Doc.Find(selector).First())
		},
	}
}

// defaultNoise is removed before falling back to whole-region text.
var defaultNoise = []string{"script", "style", "noscript", "nav", "header", "footer"}

// Stripped takes the block text of the first element matching scope after
// removing noise elements from a copy of it.
func Stripped(scope string, noise ...string) Strategy {
	if len(noise) == 0 {
		noise = defaultNoise
	}
	sel := strings.Join(noise, ", ")
	return Strategy{
		Name: scope + " (stripped)",
		Apply: func(page *fetch.Page) string {
			region := page.Doc.Find(scope).First()
			if region.Length() == 0 {
				return ""
			}
			clone := region.Clone()
			clone.Find(sel).Remove()
			return blockText(clone)
		},
	}
}

// URLSlug derives a name from the first capture group of pattern applied to
// the page URL, e.g. the company slug in a board URL.
func URLSlug(pattern *regexp.Regexp) Strategy {
	return Strategy{
		Name: "url slug",
		Apply: func(page *fetch.Page) string {
			m := pattern.FindStringSubmatch(page.URL)
			if len(m) < 2 {
				return ""
			}
			return slugName(m[1])
		},
	}
}

func blockText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}
