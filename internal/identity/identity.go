// Package identity computes stable deduplication keys for job postings.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// Length is the number of hex characters in every job ID.
const Length = 16

const delimiter = "|"

// JobID hashes a posting's normalized URL, title and company. The query
// string is dropped from the URL; all three fields are trimmed and lower-cased.
func JobID(url, title, company string) string {
	if i := strings.Index(url, "?"); i >= 0 {
		url = url[:i]
	}
	key := strings.Join([]string{normalize(url), normalize(title), normalize(company)}, delimiter)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:Length]
}

// LeadID is the key available before extraction, when only the URL and the
// search result's title are known.
func LeadID(lead model.Lead) string {
	return JobID(lead.URL, lead.Title, "")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
