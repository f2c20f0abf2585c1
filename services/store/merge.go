package store

import (
	"time"

	"swecron/internal/posting"
)

// DateLayout is the ISO-8601 calendar date written to recorded postings
const DateLayout = "2006-01-02"

// DefaultRetentionDays is how long a dated posting is kept
const DefaultRetentionDays = 60

// MergeAndPrune stamps each new posting with today's date, places the new
// postings ahead of existing ones and drops dated entries strictly older
// than today minus retentionDays. Undated entries and entries whose date
// cannot be parsed are always kept. retentionDays <= 0 disables pruning.
func MergeAndPrune(newPostings, existing []posting.Posting, retentionDays int, today time.Time) []posting.Posting {
	stamp := today.Format(DateLayout)

	merged := make([]posting.Posting, 0, len(newPostings)+len(existing))
	for _, p := range newPostings {
		p.Date = stamp
		merged = append(merged, p)
	}
	merged = append(merged, existing...)

	if retentionDays <= 0 {
		return merged
	}
	return Prune(merged, retentionDays, today)
}

// Prune drops dated postings recorded before today minus retentionDays
func Prune(postings []posting.Posting, retentionDays int, today time.Time) []posting.Posting {
	y, m, d := today.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -retentionDays)

	kept := make([]posting.Posting, 0, len(postings))
	for _, p := range postings {
		if p.Date == "" {
			kept = append(kept, p)
			continue
		}
		recorded, err := time.Parse(DateLayout, p.Date)
		if err != nil {
			kept = append(kept, p)
			continue
		}
		if !recorded.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	return kept
}
