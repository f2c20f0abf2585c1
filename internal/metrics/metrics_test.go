package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.SitesVisitedTotal.Inc()
	m.SitesVisitedTotal.Inc()
	m.PostingsFoundTotal.WithLabelValues("Acme").Add(3)
	m.SitesFailedTotal.WithLabelValues("Globex", "extraction").Inc()
	m.StoredPostings.Set(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SitesVisitedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PostingsFoundTotal.WithLabelValues("Acme")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SitesFailedTotal.WithLabelValues("Globex", "extraction")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.StoredPostings))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.NewPostingsTotal.Add(4)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "swecron_new_postings_total 4")
}

func TestMetrics_Push(t *testing.T) {
	var path string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := New()
	m.RunsTotal.WithLabelValues("write", "success").Inc()
	require.NoError(t, m.Push(context.Background(), gateway.URL))
	assert.Equal(t, "/metrics/job/swecron", path)
}
