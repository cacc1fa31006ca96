package adapter

import (
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// Site describes how to extract a posting from one job board. Adding a board
// means adding a Site; the extractor itself never changes.
type Site struct {
	Source      model.Source
	Hosts       []string // substrings identifying the board's URLs
	Title       Chain
	Company     Chain
	Location    Chain
	Description Chain
}

// Sites returns every supported board, in detection order.
func Sites() []Site {
	return []Site{Greenhouse(), Ashby(), Lever(), Workable()}
}

// DetectSource identifies the board a URL belongs to. ok is false for URLs
// no Site recognises.
func DetectSource(url string) (source model.Source, ok bool) {
	lower := strings.ToLower(url)
	for _, s := range Sites() {
		for _, h := range s.Hosts {
			if strings.Contains(lower, h) {
				return s.Source, true
			}
		}
	}
	return "", false
}
