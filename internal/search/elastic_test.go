package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeElastic answers just enough of the REST API for the client under test.
func fakeElastic(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"version":{"number":"8.19.1"},"tagline":"You Know, for Search"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/products":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"}}`))
		case strings.HasPrefix(r.URL.Path, "/products/_doc/"):
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"result":"not_found"}`))
				return
			}
			_, _ = w.Write([]byte(`{"result":"created"}`))
		case strings.HasSuffix(r.URL.Path, "/_search"):
			var q map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_id":"p-1","_source":{"id":"p-1","name":"Desk Lamp"}}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTrip(t *testing.T) {
	srv := fakeElastic(t)

	c, err := NewClient(&Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	ctx := context.Background()

	assert.NoError(t, c.CreateIndex(ctx, "products", `{"mappings":{}}`))
	assert.NoError(t, c.Index(ctx, "products", "p-1", map[string]string{"name": "Desk Lamp"}))
	assert.NoError(t, c.Delete(ctx, "products", "missing"))

	res, err := c.Search(ctx, "products", map[string]interface{}{"query": map[string]interface{}{"match_all": map[string]interface{}{}}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "p-1", res.Hits.Hits[0].ID)
}
