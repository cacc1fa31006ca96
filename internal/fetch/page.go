// Package fetch retrieves job posting pages.
package fetch

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Page is a fetched and parsed HTML document.
type Page struct {
	URL       string
	FetchedAt time.Time
	Doc       *goquery.Document
}

// ParsePage decodes body to UTF-8 using the declared or sniffed charset and
// parses it.
func ParsePage(url string, body []byte, contentType string) (*Page, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	data, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if !utf8.Valid(body) {
			return nil, fmt.Errorf("decoding %s: %w", url, err)
		}
		data = body
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return &Page{URL: url, FetchedAt: time.Now().UTC(), Doc: doc}, nil
}
