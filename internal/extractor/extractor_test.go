package extractor

import (
	"testing"

	"swecron/internal/filter"
	"swecron/internal/posting"

	"github.com/stretchr/testify/assert"
)

func TestResolveLink(t *testing.T) {
	page := "https://acme.example/careers/list?page=2&team=eng"

	testCases := []struct {
		name string
		href string
		want string
	}{
		{"empty", "", ""},
		{"absolute https", "https://jobs.example/1", "https://jobs.example/1"},
		{"absolute http", "http://jobs.example/1", "http://jobs.example/1"},
		{"root relative", "/jobs/1", "https://acme.example/jobs/1"},
		{"path relative", "detail/1", "https://acme.example/careers/detail/1"},
		{"parent", "../jobs/1", "https://acme.example/jobs/1"},
		{"query only", "?id=5", "https://acme.example/careers/list?id=5"},
		{"fragment", "#apply", "https://acme.example/careers/list#apply"},
		{"scheme relative", "//cdn.example/jobs/1", "https://cdn.example/jobs/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveLink(page, tc.href))
		})
	}
}

func TestResolveLink_PageWithoutQuery(t *testing.T) {
	assert.Equal(t, "https://acme.example/jobs/1", ResolveLink("https://acme.example/careers", "jobs/1"))
}

func TestPostings(t *testing.T) {
	candidates := []Candidate{
		{Title: "  Software Engineering Intern ", Href: "/jobs/1"},
		{Title: "Senior Staff Engineer", Href: "/jobs/2"},
		{Title: "New Grad SWE", Href: ""},
		{Title: "", Href: "/jobs/4"},
	}

	got := Postings("Acme", "https://acme.example/jobs?q=intern", candidates, filter.NewRelevance(nil))
	assert.Equal(t, []posting.Posting{
		posting.New("Acme", "Software Engineering Intern", "https://acme.example/jobs/1"),
		posting.New("Acme", "New Grad SWE", ""),
	}, got)
}

func TestPostings_EmptySiteAcceptsAnyTitle(t *testing.T) {
	candidates := []Candidate{{Title: "Senior Staff Engineer", Href: "https://acme.example/2"}}
	got := Postings("", "https://acme.example", candidates, filter.NewRelevance([]string{"intern"}))
	assert.Len(t, got, 1)
}

func TestNew(t *testing.T) {
	for _, engine := range []string{EngineStatic, EnginePlaywright, EngineChromedp} {
		e, err := New(engine, nil)
		assert.NoError(t, err)
		assert.NotNil(t, e)
	}

	_, err := New("selenium", nil)
	assert.Error(t, err)
}
