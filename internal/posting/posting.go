// Package posting defines a scraped job posting and the identity rules
// used to decide whether two postings are the same.
package posting

// Posting represents one scraped job listing.
//
// URL is nil when no link could be extracted. Date is the ISO-8601 day the
// posting was first recorded; empty means the entry is never pruned.
type Posting struct {
	Site  string
	Title string
	URL   *string
	Date  string

	// set when decoded from a record that had no url key, or whose date
	// was present but empty ("" or null)
	urlOmitted bool
	emptyDate  string
}

// Key is the identity of a posting. Two postings are the same posting iff
// their keys are equal; no normalisation is applied.
type Key struct {
	Site   string
	Title  string
	URL    string
	HasURL bool
}

// New builds an undated posting. An empty url is recorded as absent.
func New(site, title, url string) Posting {
	p := Posting{Site: site, Title: title}
	if url != "" {
		p.URL = &url
	}
	return p
}

// Key returns the identity key of the posting
func (p Posting) Key() Key {
	k := Key{Site: p.Site, Title: p.Title}
	if p.URL != nil {
		k.URL = *p.URL
		k.HasURL = true
	}
	return k
}

// Link returns the posting URL or an empty string when absent
func (p Posting) Link() string {
	if p.URL == nil {
		return ""
	}
	return *p.URL
}

// Dedupe removes later postings whose key was already seen, preserving
// first-seen order.
func Dedupe(postings []Posting) []Posting {
	seen := make(map[Key]struct{}, len(postings))
	out := make([]Posting, 0, len(postings))
	for _, p := range postings {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Diff returns the members of current whose key is absent from existing,
// in current's order. A key repeated within current is reported once.
func Diff(current, existing []Posting) []Posting {
	known := make(map[Key]struct{}, len(existing)+len(current))
	for _, p := range existing {
		known[p.Key()] = struct{}{}
	}

	out := make([]Posting, 0)
	for _, p := range current {
		k := p.Key()
		if _, ok := known[k]; ok {
			continue
		}
		known[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
