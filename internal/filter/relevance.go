// Package filter decides which extracted candidates are postings of interest.
package filter

import "strings"

// DefaultKeywords match internship and new-grad titles
var DefaultKeywords = []string{"intern", "grad", "early"}

// Relevance is a keyword match on lowercased titles. The match is a plain
// substring test, so "Internal Tools Engineer" matches "intern".
type Relevance struct {
	keywords []string
}

// NewRelevance creates a filter for the given keywords, or DefaultKeywords when none
func NewRelevance(keywords []string) *Relevance {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(k); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &Relevance{keywords: lowered}
}

// Keywords returns the lowercased keyword set
func (r *Relevance) Keywords() []string {
	return r.keywords
}

// Include reports whether a candidate titled title on site is kept.
// Empty titles never pass; the empty site name accepts every title.
func (r *Relevance) Include(site, title string) bool {
	if title == "" {
		return false
	}
	if site == "" {
		return true
	}
	lower := strings.ToLower(title)
	for _, k := range r.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
