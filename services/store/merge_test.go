package store

import (
	"testing"
	"time"

	"swecron/internal/posting"

	"github.com/stretchr/testify/assert"
)

func dated(site, title, url, date string) posting.Posting {
	p := posting.New(site, title, url)
	p.Date = date
	return p
}

func TestMergeAndPrune(t *testing.T) {
	today := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)

	existing := []posting.Posting{
		dated("Acme", "Intern A", "https://acme.example/a", "2026-08-19"), // exactly at cutoff
		dated("Acme", "Intern B", "https://acme.example/b", "2026-08-18"), // one day past
		posting.New("Acme", "Undated", "https://acme.example/u"),
		dated("Acme", "Bad date", "https://acme.example/x", "last tuesday"),
	}
	newPostings := []posting.Posting{
		posting.New("Globex", "New Grad", "https://globex.example/1"),
	}

	merged := MergeAndPrune(newPostings, existing, 60, today)

	assert.Equal(t, []posting.Posting{
		dated("Globex", "New Grad", "https://globex.example/1", "2026-10-18"),
		existing[0],
		existing[2],
		existing[3],
	}, merged)

	// inputs are not mutated
	assert.Equal(t, "", newPostings[0].Date)
}

func TestMergeAndPrune_Disabled(t *testing.T) {
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	existing := []posting.Posting{dated("Acme", "Ancient", "https://acme.example/old", "2019-01-01")}

	merged := MergeAndPrune(nil, existing, 0, today)
	assert.Equal(t, existing, merged)
}

func TestMergeAndPrune_KeepsAllExistingWithinWindow(t *testing.T) {
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	existing := []posting.Posting{
		dated("Acme", "Intern A", "https://acme.example/a", "2026-10-17"),
		dated("Acme", "Intern B", "https://acme.example/b", "2026-10-18"),
	}
	newPostings := []posting.Posting{posting.New("Acme", "Intern C", "")}

	merged := MergeAndPrune(newPostings, existing, DefaultRetentionDays, today)
	assert.Len(t, merged, 3)
	for _, p := range existing {
		assert.Contains(t, merged, p)
	}
}

func TestPrune(t *testing.T) {
	today := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	postings := []posting.Posting{
		dated("Acme", "Kept", "", "2026-02-22"),
		dated("Acme", "Dropped", "", "2026-02-21"),
	}

	pruned := Prune(postings, 7, today)
	assert.Equal(t, []posting.Posting{postings[0]}, pruned)
}
