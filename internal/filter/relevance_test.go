package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevance_Include(t *testing.T) {
	r := NewRelevance(nil)

	testCases := []struct {
		name     string
		site     string
		title    string
		expected bool
	}{
		{"intern", "Acme", "Software Engineering Intern", true},
		{"senior", "Acme", "Senior Staff Engineer", false},
		{"new grad", "Acme", "New Grad Software Engineer", true},
		{"early career", "Acme", "Early Career Backend Engineer", true},
		{"case insensitive", "Acme", "SOFTWARE INTERNSHIP", true},
		{"substring match", "Acme", "Internal Tools Engineer", true},
		{"graduate substring", "Acme", "Postgraduate Researcher", true},
		{"wildcard site", "", "Senior Staff Engineer", true},
		{"empty title", "Acme", "", false},
		{"empty title wildcard site", "", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Include(tc.site, tc.title))
		})
	}
}

func TestRelevance_InternOnly(t *testing.T) {
	r := NewRelevance([]string{"Intern"})
	assert.Equal(t, []string{"intern"}, r.Keywords())
	assert.True(t, r.Include("Acme", "Software Engineering Intern"))
	assert.False(t, r.Include("Acme", "New Grad Software Engineer"))
}

func TestNewRelevance_Defaults(t *testing.T) {
	assert.Equal(t, DefaultKeywords, NewRelevance(nil).Keywords())
	assert.Equal(t, DefaultKeywords, NewRelevance([]string{}).Keywords())
}
